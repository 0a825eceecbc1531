package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	rediscommon "github.com/ervinstupac-byte/anohubsapp-sub009/hydro-common/redis"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/config"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 流读取参数
const (
	streamBlock       = 2 * time.Second
	initialBackoff    = time.Second
	maxBackoff        = 30 * time.Second
	metricsReportTick = 60 * time.Second
)

// Metrics 监控指标
type Metrics struct {
	mu sync.RWMutex

	MessagesProcessed int64 // 处理的消息总数
	MessagesSucceeded int64 // 成功合并的消息数
	MessagesFailed    int64 // 处理失败的消息数

	// 错误分类统计
	ErrorsParse int64 // 解析错误
	ErrorsCache int64 // 缓存更新失败

	TotalProcessingTime time.Duration
	LastProcessTime     time.Time
	StartTime           time.Time
}

// GetSnapshot 获取指标快照（线程安全）
func (m *Metrics) GetSnapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		MessagesProcessed:   m.MessagesProcessed,
		MessagesSucceeded:   m.MessagesSucceeded,
		MessagesFailed:      m.MessagesFailed,
		ErrorsParse:         m.ErrorsParse,
		ErrorsCache:         m.ErrorsCache,
		TotalProcessingTime: m.TotalProcessingTime,
		LastProcessTime:     m.LastProcessTime,
		StartTime:           m.StartTime,
	}
}

// IncrementProcessed 增加处理计数
func (m *Metrics) IncrementProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesProcessed++
}

// IncrementSucceeded 增加成功计数
func (m *Metrics) IncrementSucceeded(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSucceeded++
	m.TotalProcessingTime += duration
	m.LastProcessTime = time.Now()
}

// IncrementFailed 增加失败计数
func (m *Metrics) IncrementFailed(errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesFailed++
	switch errorType {
	case "parse":
		m.ErrorsParse++
	case "cache_failed":
		m.ErrorsCache++
	}
}

// SnapshotConsumer 遥测流消费者，合并到最新快照缓存
type SnapshotConsumer struct {
	config      *config.Config
	redisClient *redis.Client
	cache       *CacheManager
	logger      *zap.Logger
	metrics     *Metrics
}

// NewSnapshotConsumer 创建快照消费者
func NewSnapshotConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	cache *CacheManager,
	logger *zap.Logger,
) *SnapshotConsumer {
	return &SnapshotConsumer{
		config:      cfg,
		redisClient: redisClient,
		cache:       cache,
		logger:      logger,
		metrics: &Metrics{
			StartTime: time.Now(),
		},
	}
}

// Metrics 当前指标快照
func (c *SnapshotConsumer) Metrics() Metrics {
	return c.metrics.GetSnapshot()
}

// Start 启动消费者
func (c *SnapshotConsumer) Start(ctx context.Context) error {
	stream := c.config.Kernel.Stream.Name
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, stream, c.config.Kernel.Stream.Group); err != nil {
		return fmt.Errorf("failed to create consumer group for %s: %w", stream, err)
	}

	c.logger.Info("Snapshot consumer started",
		zap.String("consumer_group", c.config.Kernel.Stream.Group),
		zap.String("consumer_name", c.config.Kernel.Stream.Consumer),
		zap.String("stream", stream),
	)

	metricsCtx, metricsCancel := context.WithCancel(ctx)
	defer metricsCancel()
	go c.reportMetrics(metricsCtx)

	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Snapshot consumer stopped")
			return nil
		default:
		}

		if _, err := c.ConsumeOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to consume stream",
				zap.Error(err),
				zap.Duration("backoff", backoff),
			)

			// 指数退避
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
			continue
		}
		backoff = initialBackoff
	}
}

// ConsumeOnce 读取一批消息并合并，返回处理条数
// 消息处理后一律确认，解析失败的消息不重投
func (c *SnapshotConsumer) ConsumeOnce(ctx context.Context) (int, error) {
	stream := c.config.Kernel.Stream.Name
	group := c.config.Kernel.Stream.Group

	batch := int64(c.config.Kernel.Stream.BatchSize)
	if batch <= 0 {
		batch = 10
	}

	messages, err := rediscommon.ReadFromStream(
		ctx,
		c.redisClient,
		stream,
		group,
		c.config.Kernel.Stream.Consumer,
		batch,
		streamBlock,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to read from stream: %w", err)
	}

	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		c.metrics.IncrementProcessed()
		if err := c.processMessage(ctx, msg); err != nil {
			c.logger.Error("Failed to process message",
				zap.String("stream_id", msg.ID),
				zap.Error(err),
			)
			// 继续处理下一条消息，不中断
		}
		ids = append(ids, msg.ID)
	}

	if err := rediscommon.AckMessages(ctx, c.redisClient, stream, group, ids...); err != nil {
		return len(messages), fmt.Errorf("failed to ack messages: %w", err)
	}
	return len(messages), nil
}

func (c *SnapshotConsumer) processMessage(ctx context.Context, msg rediscommon.StreamMessage) error {
	startTime := time.Now()

	data, err := msg.Data()
	if err != nil {
		c.metrics.IncrementFailed("parse")
		return err
	}

	var t models.PartialTelemetry
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		c.metrics.IncrementFailed("parse")
		return fmt.Errorf("failed to unmarshal message data: %w", err)
	}
	if t.AssetID == "" {
		c.metrics.IncrementFailed("parse")
		return fmt.Errorf("message %s has no asset id", msg.ID)
	}

	if _, err := c.cache.MergeSnapshot(ctx, t); err != nil {
		c.metrics.IncrementFailed("cache_failed")
		return fmt.Errorf("failed to update snapshot: %w", err)
	}

	duration := time.Since(startTime)
	c.metrics.IncrementSucceeded(duration)

	c.logger.Debug("Merged telemetry into snapshot",
		zap.String("asset_id", t.AssetID),
		zap.String("stream_id", msg.ID),
		zap.Duration("processing_time", duration),
	)
	return nil
}

// reportMetrics 定期报告指标（每60秒）
func (c *SnapshotConsumer) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(metricsReportTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := c.metrics.GetSnapshot()

			var avgProcessingTime time.Duration
			if snapshot.MessagesSucceeded > 0 {
				avgProcessingTime = snapshot.TotalProcessingTime / time.Duration(snapshot.MessagesSucceeded)
			}

			successRate := float64(0)
			if snapshot.MessagesProcessed > 0 {
				successRate = float64(snapshot.MessagesSucceeded) / float64(snapshot.MessagesProcessed) * 100
			}

			c.logger.Info("Metrics report",
				zap.Int64("messages_processed", snapshot.MessagesProcessed),
				zap.Int64("messages_succeeded", snapshot.MessagesSucceeded),
				zap.Int64("messages_failed", snapshot.MessagesFailed),
				zap.Float64("success_rate", successRate),
				zap.Int64("errors_parse", snapshot.ErrorsParse),
				zap.Int64("errors_cache", snapshot.ErrorsCache),
				zap.Duration("avg_processing_time", avgProcessingTime),
				zap.Duration("uptime", time.Since(snapshot.StartTime)),
			)
		}
	}
}
