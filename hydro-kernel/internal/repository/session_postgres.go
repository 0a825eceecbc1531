package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/commissioning"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"go.uber.org/zap"
)

// PostgresSessionRepository 调试会话仓库（PostgreSQL）
// 会话整体以 JSONB 存储，asset_id/status 单独成列便于查询
type PostgresSessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresSessionRepository 创建调试会话仓库
func NewPostgresSessionRepository(db *sql.DB, logger *zap.Logger) *PostgresSessionRepository {
	return &PostgresSessionRepository{
		db:     db,
		logger: logger,
	}
}

// Save 写入会话（存在则覆盖）
func (r *PostgresSessionRepository) Save(ctx context.Context, s *models.CommissioningSession) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	query := `
		INSERT INTO commissioning_sessions (
			session_id,
			asset_id,
			status,
			payload,
			updated_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			asset_id = EXCLUDED.asset_id,
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		s.SessionID,
		s.AssetID,
		string(s.Status),
		payload,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save commissioning session: %w", err)
	}
	return nil
}

// Load 读取会话
func (r *PostgresSessionRepository) Load(ctx context.Context, id string) (*models.CommissioningSession, error) {
	query := `
		SELECT payload
		FROM commissioning_sessions
		WHERE session_id = $1
	`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", commissioning.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to query commissioning session: %w", err)
	}

	var s models.CommissioningSession
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal commissioning session: %w", err)
	}
	return &s, nil
}

// ListByAsset 查询机组的全部调试会话 ID，按更新时间倒序
func (r *PostgresSessionRepository) ListByAsset(ctx context.Context, assetID string) ([]string, error) {
	query := `
		SELECT session_id
		FROM commissioning_sessions
		WHERE asset_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query commissioning sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return ids, nil
}
