package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/config"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 缓存未命中
var (
	ErrSnapshotNotFound = errors.New("telemetry snapshot not found")
	ErrHealthNotFound   = errors.New("health snapshot not found")
)

// 合并快照时乐观锁冲突的最大重试次数
const mergeMaxRetries = 5

// CacheManager Redis 缓存管理器（最新遥测快照与健康读模型）
type CacheManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewCacheManager 创建缓存管理器
func NewCacheManager(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) *CacheManager {
	return &CacheManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (c *CacheManager) snapshotKey(assetID string) string {
	return fmt.Sprintf("%s%s%s",
		c.config.Kernel.Cache.SnapshotPrefix,
		assetID,
		c.config.Kernel.Cache.SnapshotSuffix,
	)
}

func (c *CacheManager) healthKey(assetID string) string {
	return fmt.Sprintf("%s%s%s",
		c.config.Kernel.Cache.HealthKeyPrefix,
		assetID,
		c.config.Kernel.Cache.HealthSuffix,
	)
}

// GetSnapshot 读取机组最新遥测快照
func (c *CacheManager) GetSnapshot(ctx context.Context, assetID string) (*models.PartialTelemetry, error) {
	val, err := c.redisClient.Get(ctx, c.snapshotKey(assetID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, assetID)
		}
		return nil, fmt.Errorf("failed to get snapshot cache: %w", err)
	}

	var snap models.PartialTelemetry
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// MergeSnapshot 将部分遥测合并进最新快照（WATCH 乐观锁，冲突时重试）
func (c *CacheManager) MergeSnapshot(ctx context.Context, update models.PartialTelemetry) (models.PartialTelemetry, error) {
	if update.AssetID == "" {
		return models.PartialTelemetry{}, errors.New("snapshot update without asset id")
	}
	key := c.snapshotKey(update.AssetID)

	var merged models.PartialTelemetry
	txf := func(tx *redis.Tx) error {
		current := models.PartialTelemetry{AssetID: update.AssetID}
		val, err := tx.Get(ctx, key).Result()
		switch {
		case err == redis.Nil:
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(val), &current); err != nil {
				c.logger.Warn("Discarding corrupt snapshot cache",
					zap.String("asset_id", update.AssetID),
					zap.Error(err),
				)
				current = models.PartialTelemetry{AssetID: update.AssetID}
			}
		}

		merged = current.Merge(update)
		jsonData, err := json.Marshal(merged)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, jsonData, 0)
			return nil
		})
		return err
	}

	for i := 0; i < mergeMaxRetries; i++ {
		err := c.redisClient.Watch(ctx, txf, key)
		if err == nil {
			c.logger.Debug("Merged telemetry snapshot",
				zap.String("asset_id", update.AssetID),
				zap.String("key", key),
			)
			return merged, nil
		}
		if err != redis.TxFailedErr {
			return models.PartialTelemetry{}, fmt.Errorf("failed to merge snapshot: %w", err)
		}
	}
	return models.PartialTelemetry{}, fmt.Errorf("failed to merge snapshot for %s: too many concurrent writers", update.AssetID)
}

// SetHealth 写入健康读模型（设置 TTL）
func (c *CacheManager) SetHealth(ctx context.Context, snapshot models.HealthSnapshot) error {
	key := c.healthKey(snapshot.AssetID)

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal health snapshot: %w", err)
	}

	err = c.redisClient.Set(
		ctx,
		key,
		jsonData,
		time.Duration(c.config.Kernel.Cache.HealthTTL)*time.Second,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set health cache: %w", err)
	}

	c.logger.Debug("Updated health cache",
		zap.String("asset_id", snapshot.AssetID),
		zap.String("key", key),
		zap.String("status", string(snapshot.Health.Status)),
	)
	return nil
}

// GetHealth 读取健康读模型
func (c *CacheManager) GetHealth(ctx context.Context, assetID string) (*models.HealthSnapshot, error) {
	val, err := c.redisClient.Get(ctx, c.healthKey(assetID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", ErrHealthNotFound, assetID)
		}
		return nil, fmt.Errorf("failed to get health cache: %w", err)
	}

	var snap models.HealthSnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal health snapshot: %w", err)
	}
	return &snap, nil
}

// GetAllAssetIDs 获取所有有遥测快照的机组 ID（扫描 Redis 键）
// 没有配置资产仓库时使用
func (c *CacheManager) GetAllAssetIDs(ctx context.Context) ([]string, error) {
	prefix := c.config.Kernel.Cache.SnapshotPrefix
	suffix := c.config.Kernel.Cache.SnapshotSuffix
	pattern := fmt.Sprintf("%s*%s", prefix, suffix)

	var assetIDs []string
	iter := c.redisClient.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if len(key) < len(prefix)+len(suffix) {
			continue
		}
		// 去掉前缀和后缀
		assetIDs = append(assetIDs, key[len(prefix):len(key)-len(suffix)])
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	return assetIDs, nil
}
