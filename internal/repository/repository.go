package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	School     SchoolRepository
	User       UserRepository
	SchoolYear SchoolYearRepository
	Class      ClassRepository
	Student    StudentRepository
	TimeRule   TimeRuleRepository
	Attendance AttendanceRepository
	Scan       ScanRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		School:     NewSchoolRepo(db),
		User:       NewUserRepo(db),
		SchoolYear: NewSchoolYearRepo(db),
		Class:      NewClassRepo(db),
		Student:    NewStudentRepo(db),
		TimeRule:   NewTimeRuleRepo(db),
		Attendance: NewAttendanceRepo(db),
		Scan:       NewScanRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
