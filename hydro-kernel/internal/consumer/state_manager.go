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

// ErrStateNotFound 技术状态缓存未命中
var ErrStateNotFound = errors.New("project state not found")

// StateManager 机组技术状态缓存
// 缓存的是持久化状态，Physics 派生字段写入前清空
type StateManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewStateManager 创建状态管理器
func NewStateManager(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) *StateManager {
	return &StateManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// GetStateKey 构建状态键
func (s *StateManager) GetStateKey(assetID string) string {
	return fmt.Sprintf("%s%s", s.config.Kernel.Cache.StatePrefix, assetID)
}

func (s *StateManager) ttl() time.Duration {
	return time.Duration(s.config.Kernel.Cache.StateTTL) * time.Second
}

// SetState 写入状态（带 TTL）
func (s *StateManager) SetState(ctx context.Context, state *models.TechnicalProjectState) error {
	stored := *state
	stored.Physics = nil

	jsonData, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := s.redisClient.Set(ctx, s.GetStateKey(state.AssetID), jsonData, s.ttl()).Err(); err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}
	return nil
}

// GetState 读取状态
func (s *StateManager) GetState(ctx context.Context, assetID string) (*models.TechnicalProjectState, error) {
	val, err := s.redisClient.Get(ctx, s.GetStateKey(assetID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", ErrStateNotFound, assetID)
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	var state models.TechnicalProjectState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

// DeleteState 删除状态（资产数据变更后使缓存失效）
func (s *StateManager) DeleteState(ctx context.Context, assetID string) error {
	if err := s.redisClient.Del(ctx, s.GetStateKey(assetID)).Err(); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}
