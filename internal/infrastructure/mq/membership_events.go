package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// 入群事件类型
const (
	EventMembershipRequested = "membership.requested"
	EventMembershipApproved  = "membership.approved"
	EventMembershipDeclined  = "membership.declined"
	EventMembershipRemoved   = "membership.removed"
)

// MembershipEvent 入群状态变化事件
type MembershipEvent struct {
	Type         string    `json:"type"`
	MembershipID uint      `json:"membershipId,omitempty"`
	GroupId      string    `json:"groupId"`
	UserId       string    `json:"userId"`
	ActorId      string    `json:"actorId"`
	Fallback     bool      `json:"fallback,omitempty"` // 申请写入了备用存储
	At           time.Time `json:"at"`
}

// EventPublisher 事件发布接口，发布失败只记录日志
type EventPublisher interface {
	Publish(ctx context.Context, event MembershipEvent)
}

// KafkaEventPublisher 写入 membershipTopic，以小组 id 为 key 保证同组有序
type KafkaEventPublisher struct {
	writer MessageWriter
}

// NewKafkaEventPublisher 创建 Kafka 事件发布者
func NewKafkaEventPublisher(writer MessageWriter) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

// Publish 发布事件
func (p *KafkaEventPublisher) Publish(ctx context.Context, event MembershipEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	value, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("marshal membership event", zap.Error(err))
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(event.GroupId), Value: value}); err != nil {
		zap.L().Error("publish membership event",
			zap.String("type", event.Type),
			zap.String("group_id", event.GroupId),
			zap.Error(err))
	}
}

// LogEventPublisher channel 模式下只写日志
type LogEventPublisher struct{}

// Publish 记录事件
func (LogEventPublisher) Publish(_ context.Context, event MembershipEvent) {
	zap.L().Info("membership event",
		zap.String("type", event.Type),
		zap.Uint("membership_id", event.MembershipID),
		zap.String("group_id", event.GroupId),
		zap.String("user_id", event.UserId),
		zap.String("actor_id", event.ActorId),
		zap.Bool("fallback", event.Fallback))
}
