package model

// Class 班级表 — 对应 classes
type Class struct {
	ClassID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	SchoolID     string `gorm:"type:uuid;not null;index"                       json:"school_id"`
	SchoolYearID string `gorm:"type:uuid;not null;index"                       json:"school_year_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	GradeLevel   string `gorm:"type:varchar(30)"                               json:"grade_level"`
	BaseModel

	// 关联
	School   *School    `gorm:"foreignKey:SchoolID;references:SchoolID"             json:"school,omitempty"`
	Year     *SchoolYear `gorm:"foreignKey:SchoolYearID;references:SchoolYearID"    json:"year,omitempty"`
	Teachers []User     `gorm:"many2many:class_teachers;joinForeignKey:ClassID;joinReferences:TeacherID" json:"teachers,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// ClassTeacher 班级任课关系表 — 对应 class_teachers
type ClassTeacher struct {
	ClassID   string `gorm:"type:uuid;primaryKey" json:"class_id"`
	TeacherID string `gorm:"type:uuid;primaryKey" json:"teacher_id"`
	BaseModel
}

// TableName 指定表名
func (ClassTeacher) TableName() string { return "class_teachers" }

// [自证通过] internal/model/class.go
