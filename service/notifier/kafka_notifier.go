/*
 * @module service/notifier/kafka_notifier
 * @description Kafka运行完成通知器，校验运行结束后把结论摘要发布到消息总线，
 *              供下游入库流程和告警系统消费
 * @architecture 适配器模式 - 封装第三方Kafka客户端，提供统一的发布接口
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 连接建立 -> 运行完成事件发布 -> 连接断开
 * @rules 通知失败只记录日志，绝不影响校验结论和退出码
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/scheduler/validation_scheduler.go, service/review/summary.go
 */

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic 运行完成事件的默认主题
const DefaultTopic = "datacheck.run.completed"

// RunCompletedEvent 一次校验运行的完成事件
type RunCompletedEvent struct {
	RunID          string    `json:"run_id"`
	Dataset        string    `json:"dataset"`
	Overall        string    `json:"overall"`
	BlockerCount   int       `json:"blocker_count"`
	WarningCount   int       `json:"warning_count"`
	ConvertedCount int       `json:"converted_count"`
	ExitCode       int       `json:"exit_code"`
	OutputDir      string    `json:"output_dir"`
	CompletedAt    time.Time `json:"completed_at"`
}

// KafkaNotifier 校验运行完成通知器
type KafkaNotifier struct {
	writer *kafka.Writer
	mutex  sync.Mutex
	closed bool
}

// NewKafkaNotifierFromEnv 从环境变量构建通知器。
// KAFKA_BROKERS 未设置时返回 (nil, nil)，通知是可选能力
func NewKafkaNotifierFromEnv() (*KafkaNotifier, error) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil, nil
	}
	topic := os.Getenv("KAFKA_RUN_TOPIC")
	if topic == "" {
		topic = DefaultTopic
	}
	return NewKafkaNotifier(strings.Split(brokers, ","), topic), nil
}

// NewKafkaNotifier 创建通知器
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaNotifier{writer: writer}
}

// PublishRunCompleted 发布运行完成事件。
// key 为数据集名，保证同一数据集的事件有序
func (n *KafkaNotifier) PublishRunCompleted(ctx context.Context, event *RunCompletedEvent) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.closed {
		return fmt.Errorf("通知器已关闭")
	}

	if event.CompletedAt.IsZero() {
		event.CompletedAt = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化运行完成事件失败: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Dataset),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("发布运行完成事件失败: %w", err)
	}

	slog.Info("运行完成事件已发布",
		"dataset", event.Dataset,
		"overall", event.Overall,
		"run_id", event.RunID)
	return nil
}

// Close 关闭底层生产者
func (n *KafkaNotifier) Close() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.writer.Close()
}
