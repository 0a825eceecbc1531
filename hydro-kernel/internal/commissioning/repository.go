package commissioning

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
)

// Repository 调试会话持久化
// Load 找不到会话时返回包装了 ErrSessionNotFound 的错误
type Repository interface {
	Save(ctx context.Context, s *models.CommissioningSession) error
	Load(ctx context.Context, id string) (*models.CommissioningSession, error)
}

// MemoryRepository 进程内会话存储
// 以 JSON 形式保存，读写双方不共享指针
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemoryRepository 创建内存存储
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string][]byte)}
}

// Save 保存会话
func (r *MemoryRepository) Save(ctx context.Context, s *models.CommissioningSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	r.mu.Lock()
	r.sessions[s.SessionID] = data
	r.mu.Unlock()
	return nil
}

// Load 读取会话
func (r *MemoryRepository) Load(ctx context.Context, id string) (*models.CommissioningSession, error) {
	r.mu.RLock()
	data, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	var s models.CommissioningSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}
