// Package kafka 提供了导出任务的生产与消费。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog-planner-go/internal/config"
	"blog-planner-go/pkg/log"
	"blog-planner-go/pkg/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
)

const (
	// 同一任务最多处理的次数，超过后提交 offset 放弃重试。
	maxAttempts = 3
	// 第 n 次失败后等待 n*retryBackoff 再重试
	retryBackoff = 2 * time.Second
)

// TaskProcessor 处理单个导出任务，解耦消费者与具体的处理管道。
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.PlanExportTask) error
}

// Producer 把导出任务写入 Kafka。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	p := &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers(cfg.Brokers)...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
	log.Info("Kafka 生产者初始化成功")
	return p
}

// PublishExportTask 发送一个导出任务，以 ExportID 作为消息 key。
func (p *Producer) PublishExportTask(ctx context.Context, task tasks.PlanExportTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal export task: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", task.ExportID)),
		Value: taskBytes,
	})
}

// Close 关闭底层 writer，刷新未发送的消息。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// StartConsumer 启动消费者循环，直到 ctx 取消或读取失败。
// FetchMessage 不会因为未提交而重新投递同一条消息，所以失败的任务在进程内重试；
// 成功或达到上限后才提交 offset。进程在重试中途退出时 offset 未提交，
// 重启后的消费者会从这条消息继续，Redis 中的计数保证总次数不超过上限。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor, rdb *redis.Client) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers(cfg.Brokers),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	counter := NewRedisAttemptCounter(rdb)
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("Kafka 消费者已停止")
				return
			}
			log.Error("从 Kafka 读取消息失败", err)
			return
		}

		var task tasks.PlanExportTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 格式错误的消息直接提交，避免阻塞队列
			commit(ctx, r, m)
			continue
		}

		if !processWithRetry(ctx, processor, counter, task, retryBackoff) {
			// ctx 已取消，不提交 offset，下次启动重新消费
			log.Infof("Kafka 消费者已停止, 导出任务未完成: ExportID=%d", task.ExportID)
			return
		}
		commit(ctx, r, m)
	}
}

// AttemptCounter 记录每个导出任务已经失败的次数。
type AttemptCounter interface {
	Incr(ctx context.Context, exportID uint) (int64, error)
	Reset(ctx context.Context, exportID uint) error
}

type redisAttemptCounter struct {
	rdb *redis.Client
}

// NewRedisAttemptCounter 返回保存在 Redis 中的失败计数，键保留 24 小时。
func NewRedisAttemptCounter(rdb *redis.Client) AttemptCounter {
	return &redisAttemptCounter{rdb: rdb}
}

func attemptsKey(exportID uint) string {
	return fmt.Sprintf("kafka:attempts:export:%d", exportID)
}

func (c *redisAttemptCounter) Incr(ctx context.Context, exportID uint) (int64, error) {
	key := attemptsKey(exportID)
	attempts, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = c.rdb.Expire(ctx, key, 24*time.Hour).Err()
	return attempts, nil
}

func (c *redisAttemptCounter) Reset(ctx context.Context, exportID uint) error {
	return c.rdb.Del(ctx, attemptsKey(exportID)).Err()
}

// processWithRetry 处理一个任务，失败后按 attempts*backoff 等待再试。
// 返回 true 表示任务已结束（成功或放弃），可以提交 offset；
// 返回 false 表示 ctx 被取消，任务还需要再次消费。
func processWithRetry(ctx context.Context, processor TaskProcessor, counter AttemptCounter, task tasks.PlanExportTask, backoff time.Duration) bool {
	var local int64
	for {
		log.Infof("开始处理导出任务: ExportID=%d, Format=%s", task.ExportID, task.Format)
		err := processor.Process(ctx, task)
		if err == nil {
			log.Infof("导出任务处理成功: ExportID=%d", task.ExportID)
			if err := counter.Reset(ctx, task.ExportID); err != nil {
				log.Warnf("清除导出任务失败计数失败: ExportID=%d, Error: %v", task.ExportID, err)
			}
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		log.Errorf("处理导出任务失败: ExportID=%d, Error: %v", task.ExportID, err)

		local++
		attempts, incErr := counter.Incr(ctx, task.ExportID)
		if incErr != nil {
			log.Warnf("记录导出任务失败次数失败: ExportID=%d, Error: %v", task.ExportID, incErr)
		}
		// Redis 不可用时以本进程内的次数为准
		if attempts < local {
			attempts = local
		}
		if attempts >= maxAttempts {
			log.Errorf("导出任务多次失败(>=%d)，提交 offset 终止重试: ExportID=%d", maxAttempts, task.ExportID)
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Duration(attempts) * backoff):
		}
	}
}

func commit(ctx context.Context, r *kafka.Reader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}

// brokers 把逗号分隔的地址列表拆开。
func brokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
