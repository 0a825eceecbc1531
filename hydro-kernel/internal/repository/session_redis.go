package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-common/redis"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/commissioning"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"go.uber.org/zap"
)

// DefaultSessionKeyPrefix 会话键前缀
const DefaultSessionKeyPrefix = "hydro:commissioning:"

// RedisSessionRepository 调试会话仓库（Redis）
// 每次保存刷新 TTL，ttl 为 0 表示不过期
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionRepository 创建 Redis 会话仓库
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSessionRepository {
	return &RedisSessionRepository{
		client: client,
		prefix: DefaultSessionKeyPrefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisSessionRepository) key(id string) string {
	return r.prefix + id
}

// Save 写入会话
func (r *RedisSessionRepository) Save(ctx context.Context, s *models.CommissioningSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

// Load 读取会话
func (r *RedisSessionRepository) Load(ctx context.Context, id string) (*models.CommissioningSession, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", commissioning.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var s models.CommissioningSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}
