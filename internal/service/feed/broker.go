// broker.go
// 核心职责：定义帖子分发代理接口，支持单机 Channel 与 Kafka 两种实现
package feed

import (
	"context"

	"church_app_server/internal/dto/respond"
	"church_app_server/pkg/constants"

	"go.uber.org/zap"
)

// Broker 帖子分发代理
// ChannelBroker 只在本进程内扇出；KafkaBroker 经由主题扇出到所有实例
type Broker interface {
	Publish(ctx context.Context, post respond.GroupPostView) error
	// Start 阻塞运行消费循环，ctx 取消后返回
	Start(ctx context.Context)
	Close()
}

// ChannelBroker 单机模式，不依赖外部消息队列
type ChannelBroker struct {
	hub      *Hub
	transmit chan respond.GroupPostView
}

// NewChannelBroker 创建单机代理
func NewChannelBroker(hub *Hub) *ChannelBroker {
	return &ChannelBroker{
		hub:      hub,
		transmit: make(chan respond.GroupPostView, constants.CHANNEL_SIZE),
	}
}

// Publish 投递到转发通道；通道已满时在调用方协程直接扇出
func (b *ChannelBroker) Publish(ctx context.Context, post respond.GroupPostView) error {
	select {
	case b.transmit <- post:
	default:
		zap.L().Warn("feed transmit channel full, deliver inline", zap.String("group_id", post.GroupId))
		b.hub.Deliver(post)
	}
	return nil
}

func (b *ChannelBroker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case post := <-b.transmit:
			b.hub.Deliver(post)
		}
	}
}

func (b *ChannelBroker) Close() {
	b.hub.Close()
}
