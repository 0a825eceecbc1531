package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"go.uber.org/zap"
)

// ErrAssetNotFound 机组不存在
var ErrAssetNotFound = errors.New("asset not found")

// AssetRepository 机组仓库
type AssetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAssetRepository 创建机组仓库
func NewAssetRepository(db *sql.DB, logger *zap.Logger) *AssetRepository {
	return &AssetRepository{
		db:     db,
		logger: logger,
	}
}

// AssetInfo 机组基本信息
type AssetInfo struct {
	AssetID       string
	AssetName     string
	TurbineFamily models.TurbineFamily
}

// ListAssets 列出全部机组
func (r *AssetRepository) ListAssets(ctx context.Context) ([]AssetInfo, error) {
	query := `
		SELECT
			asset_id,
			asset_name,
			turbine_family
		FROM assets
		ORDER BY asset_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []AssetInfo
	for rows.Next() {
		var a AssetInfo
		var family sql.NullString
		if err := rows.Scan(&a.AssetID, &a.AssetName, &family); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		if family.Valid {
			a.TurbineFamily = models.ParseTurbineFamily(family.String)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}
	return assets, nil
}

// GetProjectState 读取机组技术状态
// Physics 为派生数据，不从数据库读取
func (r *AssetRepository) GetProjectState(ctx context.Context, assetID string) (*models.TechnicalProjectState, error) {
	query := `
		SELECT
			asset_name,
			state
		FROM assets
		WHERE asset_id = $1
	`

	var name string
	var stateJSON []byte
	err := r.db.QueryRowContext(ctx, query, assetID).Scan(&name, &stateJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, assetID)
		}
		return nil, fmt.Errorf("failed to query asset state: %w", err)
	}

	var state models.TechnicalProjectState
	if len(stateJSON) > 0 {
		if err := json.Unmarshal(stateJSON, &state); err != nil {
			return nil, fmt.Errorf("failed to parse asset state: %w", err)
		}
	}
	state.AssetID = assetID
	if state.AssetName == "" {
		state.AssetName = name
	}
	state.Physics = nil
	return &state, nil
}
