// Package mq 提供 Kafka 生产者封装，供 outbox 投递使用
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/smarthome/pkg/logger"
)

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers      []string
	MaxRetries   int
	RetryBackoff int
}

// Message 待发送的消息
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
	Time    time.Time
}

// Producer 消息生产者接口
type Producer interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

// KafkaProducer Kafka 生产者
type KafkaProducer struct {
	writer *kafka.Writer
	config KafkaConfig
}

// NewProducer 创建 Kafka 生产者，topic 由每条消息自行指定
func NewProducer(cfg KafkaConfig) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll, // 等待所有副本确认
		MaxAttempts:            cfg.MaxRetries,
		WriteBackoffMin:        time.Duration(cfg.RetryBackoff) * time.Millisecond,
		WriteBackoffMax:        time.Duration(cfg.RetryBackoff*10) * time.Millisecond,
	}

	logger.Info(context.Background(), "Kafka producer created successfully", "brokers", cfg.Brokers)
	return &KafkaProducer{
		writer: writer,
		config: cfg,
	}
}

// Publish 批量发送消息，同一 key 的消息落在同一分区以保证顺序
func (kp *KafkaProducer) Publish(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}

	kafkaMessages := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		km := kafka.Message{
			Topic: m.Topic,
			Key:   []byte(m.Key),
			Value: m.Value,
			Time:  m.Time,
		}
		for k, v := range m.Headers {
			km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
		}
		kafkaMessages = append(kafkaMessages, km)
	}

	if err := kp.writer.WriteMessages(ctx, kafkaMessages...); err != nil {
		logger.Error(ctx, "Failed to send Kafka messages",
			"count", len(kafkaMessages),
			"error", err,
		)
		return err
	}

	logger.Debug(ctx, "Kafka messages sent", "count", len(kafkaMessages))
	return nil
}

// SendMessage 发送单条 JSON 消息
func (kp *KafkaProducer) SendMessage(ctx context.Context, topic string, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return kp.Publish(ctx, Message{Topic: topic, Key: key, Value: data, Time: time.Now()})
}

// Close 关闭生产者
func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}
