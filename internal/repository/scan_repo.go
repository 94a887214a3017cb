package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"qrattend/internal/model"
)

// ScanRepository 学生扫码流水数据访问接口
type ScanRepository interface {
	Create(ctx context.Context, scan *model.StudentScan) error
	ListByDate(ctx context.Context, schoolID string, date time.Time) ([]model.StudentScan, error)
}

type scanRepo struct {
	db *gorm.DB
}

// NewScanRepo 创建 ScanRepository 实例
func NewScanRepo(db *gorm.DB) ScanRepository {
	return &scanRepo{db: db}
}

func (r *scanRepo) Create(ctx context.Context, scan *model.StudentScan) error {
	return r.db.WithContext(ctx).Create(scan).Error
}

func (r *scanRepo) ListByDate(ctx context.Context, schoolID string, date time.Time) ([]model.StudentScan, error) {
	var scans []model.StudentScan
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND scanned_at >= ? AND scanned_at < ?",
			schoolID, dayStart, dayStart.AddDate(0, 0, 1)).
		Order("scanned_at ASC").
		Find(&scans).Error
	return scans, err
}
