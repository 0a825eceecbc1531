package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqttcommon "github.com/ervinstupac-byte/anohubsapp-sub009/hydro-common/mqtt"
	rediscommon "github.com/ervinstupac-byte/anohubsapp-sub009/hydro-common/redis"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/config"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/safety"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Broker MQTT 订阅/发布
type Broker interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// TelemetryAlert 入站遥测的校验告警
type TelemetryAlert struct {
	AssetID     string                    `json:"asset_id"`
	Timestamp   int64                     `json:"timestamp"`
	Validations []safety.ValidationResult `json:"validations,omitempty"`
	Effects     []safety.Effect           `json:"effects,omitempty"`
}

// TelemetryConsumer MQTT 遥测消费者
// 校验后写入 Redis Streams，由 SnapshotConsumer 合并
type TelemetryConsumer struct {
	config      *config.Config
	broker      Broker
	redisClient *redis.Client
	logger      *zap.Logger
	now         func() time.Time
}

// NewTelemetryConsumer 创建遥测消费者
func NewTelemetryConsumer(
	cfg *config.Config,
	broker Broker,
	redisClient *redis.Client,
	logger *zap.Logger,
) *TelemetryConsumer {
	return &TelemetryConsumer{
		config:      cfg,
		broker:      broker,
		redisClient: redisClient,
		logger:      logger,
		now:         time.Now,
	}
}

// Start 启动消费者
func (c *TelemetryConsumer) Start(ctx context.Context) error {
	topic := c.config.Kernel.Topics.Telemetry
	if err := c.broker.Subscribe(topic, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to telemetry topic: %w", err)
	}

	c.logger.Info("Telemetry consumer started",
		zap.String("topic", topic),
	)

	// 等待上下文取消
	<-ctx.Done()
	return nil
}

// Stop 停止消费者
func (c *TelemetryConsumer) Stop(ctx context.Context) error {
	if err := c.broker.Unsubscribe(c.config.Kernel.Topics.Telemetry); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}

	c.logger.Info("Telemetry consumer stopped")
	return nil
}

// handleMessage 处理遥测消息
// 主题格式: hydro/{asset_id}/telemetry
func (c *TelemetryConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[1] == "" {
		return fmt.Errorf("invalid topic format: %s", topic)
	}
	assetID := parts[1]

	var t models.PartialTelemetry
	if err := json.Unmarshal(payload, &t); err != nil {
		c.logger.Error("Failed to unmarshal telemetry",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	// 以主题中的机组为准
	t.AssetID = assetID
	if t.Timestamp == 0 {
		t.Timestamp = c.now().Unix()
	}

	ctx := context.Background()
	if err := c.screen(&t); err != nil {
		return err
	}

	streamName := c.config.Kernel.Stream.Name
	streamID, err := rediscommon.PublishJSONToStream(ctx, c.redisClient, streamName, t, c.config.Kernel.Stream.MaxLen)
	if err != nil {
		c.logger.Error("Failed to publish to Redis Streams",
			zap.String("stream", streamName),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	c.logger.Debug("Published telemetry to Redis Streams",
		zap.String("asset_id", assetID),
		zap.String("stream", streamName),
		zap.String("stream_id", streamID),
	)
	return nil
}

// screen 物理限值与跨专业影响校验
// 物理上不可能的读数整条丢弃，告警级别的读数照常入流并发布告警
func (c *TelemetryConsumer) screen(t *models.PartialTelemetry) error {
	readings := t.Readings()
	results := safety.ValidateBatch(readings)
	for _, r := range results {
		if !r.IsValid {
			c.logger.Warn("Rejected physically impossible telemetry",
				zap.String("asset_id", t.AssetID),
				zap.String("field", r.Field),
				zap.Float64("value", r.Value),
				zap.String("message", r.Message),
			)
			return fmt.Errorf("telemetry rejected for %s: %s", t.AssetID, r.Message)
		}
	}

	effects := safety.CrossSectorEffects(readings)
	if len(results) == 0 && len(effects) == 0 {
		return nil
	}

	c.logger.Warn("Telemetry outside safe envelope",
		zap.String("asset_id", t.AssetID),
		zap.Int("validation_count", len(results)),
		zap.Int("effect_count", len(effects)),
	)
	c.publishAlert(TelemetryAlert{
		AssetID:     t.AssetID,
		Timestamp:   t.Timestamp,
		Validations: results,
		Effects:     effects,
	})
	return nil
}

func (c *TelemetryConsumer) publishAlert(alert TelemetryAlert) {
	format := c.config.Kernel.Topics.AlertFormat
	if format == "" {
		return
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		c.logger.Error("Failed to marshal telemetry alert", zap.Error(err))
		return
	}
	topic := fmt.Sprintf(format, alert.AssetID)
	if err := c.broker.Publish(topic, c.config.MQTT.QoS, false, payload); err != nil {
		c.logger.Error("Failed to publish telemetry alert",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}
