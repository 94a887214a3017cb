package model

import "time"

// StudentScan 学生扫码流水表 — 对应 student_scans
// 每次被接受的二维码扫码落一行；教师结算只消费其中"首个合格扫码"
type StudentScan struct {
	ScanID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"scan_id"`
	SchoolID  string    `gorm:"type:uuid;not null;index"                       json:"school_id"`
	StudentID string    `gorm:"type:uuid;not null;index"                       json:"student_id"`
	ClassID   string    `gorm:"type:uuid;not null"                             json:"class_id"`
	ScannedAt time.Time `gorm:"not null"                                       json:"scanned_at"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (StudentScan) TableName() string { return "student_scans" }
