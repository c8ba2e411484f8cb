// kafka_broker.go
// 核心职责：分布式模式下的帖子分发
// 每个实例使用独立的消费者组读取全量帖子，再推送给本机在线连接
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"church_app_server/internal/dto/respond"
	"church_app_server/internal/infrastructure/mq"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBroker 经 Kafka 主题扇出帖子
type KafkaBroker struct {
	hub    *Hub
	writer mq.MessageWriter
	reader mq.MessageReader
}

// NewKafkaBroker 创建 Kafka 代理，writer/reader 由 mq.KafkaClient 统一关闭
func NewKafkaBroker(hub *Hub, writer mq.MessageWriter, reader mq.MessageReader) *KafkaBroker {
	return &KafkaBroker{hub: hub, writer: writer, reader: reader}
}

// Publish 以小组 ID 作为分区键，保证同一小组的帖子有序
func (b *KafkaBroker) Publish(ctx context.Context, post respond.GroupPostView) error {
	value, err := json.Marshal(post)
	if err != nil {
		return err
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(post.GroupId),
		Value: value,
	})
}

func (b *KafkaBroker) Start(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("kafka feed consumer panic", zap.Any("panic", r))
		}
	}()
	for {
		msg, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			zap.L().Error("read feed message", zap.Error(err))
			continue
		}
		var post respond.GroupPostView
		if err := json.Unmarshal(msg.Value, &post); err != nil {
			zap.L().Error("decode feed message", zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		b.hub.Deliver(post)
	}
}

func (b *KafkaBroker) Close() {
	b.hub.Close()
}
