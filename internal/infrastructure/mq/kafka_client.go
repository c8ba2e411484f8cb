// Package mq 封装 Kafka 基础设施
// 纯技术组件：负责 Writer/Reader 的创建与关闭，不包含业务逻辑
package mq

import (
	"context"
	"time"

	"church_app_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter kafka.Writer 的最小接口，便于测试替换
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader kafka.Reader 的最小接口
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// 每条消息都在请求路径上同步写入，批次等待过长会拖慢接口
const writerBatchTimeout = 10 * time.Millisecond

// KafkaClient 按主题创建生产者与消费者，并在退出时统一关闭
type KafkaClient struct {
	cfg     config.KafkaConfig
	writers []*kafka.Writer
	readers []*kafka.Reader
}

// NewKafkaClient 创建 Kafka 客户端
func NewKafkaClient(cfg config.KafkaConfig) *KafkaClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 1
	}
	return &KafkaClient{cfg: cfg}
}

// Writer 创建指定主题的生产者，按 key 做 Hash 分区
func (k *KafkaClient) Writer(topic string) *kafka.Writer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(k.cfg.HostPort),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           writerBatchTimeout,
		WriteTimeout:           k.cfg.Timeout * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
	}
	k.writers = append(k.writers, w)
	return w
}

// Reader 创建指定主题的消费者，从最新位置开始读
func (k *KafkaClient) Reader(topic, groupID string) *kafka.Reader {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{k.cfg.HostPort},
		Topic:          topic,
		CommitInterval: k.cfg.Timeout * time.Second,
		GroupID:        groupID,
		StartOffset:    kafka.LastOffset,
	})
	k.readers = append(k.readers, r)
	return r
}

// Close 关闭全部生产者和消费者
func (k *KafkaClient) Close() {
	for _, w := range k.writers {
		if err := w.Close(); err != nil {
			zap.L().Error("close kafka writer", zap.String("topic", w.Topic), zap.Error(err))
		}
	}
	for _, r := range k.readers {
		if err := r.Close(); err != nil {
			zap.L().Error("close kafka reader", zap.String("topic", r.Config().Topic), zap.Error(err))
		}
	}
}
