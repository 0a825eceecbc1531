package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/config"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/healthsync"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/repository"

	"go.uber.org/zap"
)

// AssetLister 机组列表来源
type AssetLister interface {
	ListAssets(ctx context.Context) ([]repository.AssetInfo, error)
}

// StateSource 机组技术状态来源（数据库或外部资产存储）
type StateSource interface {
	GetProjectState(ctx context.Context, assetID string) (*models.TechnicalProjectState, error)
}

// HealthSyncConsumer 健康同步消费者（轮询最新遥测快照，重算健康读模型）
type HealthSyncConsumer struct {
	config *config.Config
	cache  *CacheManager
	states *StateManager
	assets AssetLister
	source StateSource
	logger *zap.Logger
	now    func() time.Time
}

// NewHealthSyncConsumer 创建健康同步消费者
// assets 为 nil 时从快照缓存扫描机组
func NewHealthSyncConsumer(
	cfg *config.Config,
	cache *CacheManager,
	states *StateManager,
	assets AssetLister,
	source StateSource,
	logger *zap.Logger,
) *HealthSyncConsumer {
	return &HealthSyncConsumer{
		config: cfg,
		cache:  cache,
		states: states,
		assets: assets,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

func (c *HealthSyncConsumer) pollInterval() time.Duration {
	if c.config.Kernel.PollInterval <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.config.Kernel.PollInterval) * time.Second
}

// Start 启动消费者（轮询模式）
func (c *HealthSyncConsumer) Start(ctx context.Context) error {
	interval := c.pollInterval()
	c.logger.Info("Health sync consumer started",
		zap.Duration("poll_interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 立即执行一次
	if err := c.SyncAll(ctx); err != nil {
		c.logger.Error("Failed to sync asset health on startup",
			zap.Error(err),
		)
	}

	// 定期轮询
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Health sync consumer stopped")
			return nil
		case <-ticker.C:
			if err := c.SyncAll(ctx); err != nil {
				c.logger.Error("Failed to sync asset health",
					zap.Error(err),
				)
				// 继续执行，不中断
			}
		}
	}
}

func (c *HealthSyncConsumer) listAssetIDs(ctx context.Context) ([]string, error) {
	if c.assets == nil {
		return c.cache.GetAllAssetIDs(ctx)
	}
	assets, err := c.assets.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.AssetID)
	}
	return ids, nil
}

// SyncAll 同步所有机组；单台失败只记录日志
func (c *HealthSyncConsumer) SyncAll(ctx context.Context) error {
	assetIDs, err := c.listAssetIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list assets: %w", err)
	}

	c.logger.Debug("Syncing asset health",
		zap.Int("asset_count", len(assetIDs)),
	)

	for _, assetID := range assetIDs {
		// 检查上下文是否已取消
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := c.SyncAsset(ctx, assetID); err != nil {
			c.logger.Error("Failed to sync asset",
				zap.String("asset_id", assetID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// SyncAsset 合并最新快照并重算单台机组的健康读模型
func (c *HealthSyncConsumer) SyncAsset(ctx context.Context, assetID string) (*models.HealthSnapshot, error) {
	state, err := c.ProjectState(ctx, assetID)
	if err != nil {
		return nil, err
	}

	snap, err := c.cache.GetSnapshot(ctx, assetID)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		// 还没有遥测，按静态状态计算
		c.logger.Debug("No telemetry snapshot for asset",
			zap.String("asset_id", assetID),
		)
	case err != nil:
		return nil, err
	default:
		merged := healthsync.ApplyTelemetry(*state, *snap)
		state = &merged
	}

	out := models.HealthSnapshot{
		AssetID:    assetID,
		Health:     healthsync.Recompute(*state),
		ComputedAt: c.now().Unix(),
	}
	if err := c.cache.SetHealth(ctx, out); err != nil {
		return nil, err
	}

	if out.Health.Status == models.HealthCritical {
		c.logger.Warn("Asset health critical",
			zap.String("asset_id", assetID),
			zap.Float64("hoop_safety_factor", out.Health.HoopSafetyFactor),
			zap.Float64("eccentricity", out.Health.Eccentricity),
		)
	}
	return &out, nil
}

// ProjectState 先读缓存，未命中再读来源并回填
func (c *HealthSyncConsumer) ProjectState(ctx context.Context, assetID string) (*models.TechnicalProjectState, error) {
	state, err := c.states.GetState(ctx, assetID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, ErrStateNotFound) {
		c.logger.Warn("State cache read failed, falling back to source",
			zap.String("asset_id", assetID),
			zap.Error(err),
		)
	}

	if c.source == nil {
		return nil, fmt.Errorf("no state source for asset %s", assetID)
	}
	state, err = c.source.GetProjectState(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project state: %w", err)
	}

	if err := c.states.SetState(ctx, state); err != nil {
		c.logger.Warn("Failed to cache project state",
			zap.String("asset_id", assetID),
			zap.Error(err),
		)
	}
	return state, nil
}

// InvalidateState 资产数据变更后丢弃缓存状态
func (c *HealthSyncConsumer) InvalidateState(ctx context.Context, assetID string) error {
	return c.states.DeleteState(ctx, assetID)
}
