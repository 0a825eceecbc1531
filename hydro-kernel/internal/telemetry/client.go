// Package telemetry 外部资产/遥测存储的 HTTP 客户端
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-common/config"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// 客户端默认值
const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetryCount = 3
)

// ErrNoData 存储返回成功但没有数据
var ErrNoData = errors.New("asset store returned no data")

// Response 存储服务统一响应包
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// AssetStoreClient 资产存储客户端
type AssetStoreClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewAssetStoreClient 创建资产存储客户端
func NewAssetStoreClient(cfg *config.HTTPClientConfig, logger *zap.Logger) *AssetStoreClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retry := cfg.RetryCount
	if retry < 0 {
		retry = DefaultRetryCount
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(retry).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &AssetStoreClient{
		httpClient: client,
		logger:     logger,
	}
}

// get 请求并解包，code 非 0 或 HTTP 错误均返回错误
func (c *AssetStoreClient) get(ctx context.Context, path, assetID string, out interface{}) error {
	var response Response
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", assetID).
		SetResult(&response).
		SetError(&response).
		Get(path)

	if err != nil {
		c.logger.Error("Asset store call failed",
			zap.String("asset_id", assetID),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call asset store: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("asset store http %d: %s", resp.StatusCode(), response.Message)
	}

	if response.Code != 0 {
		c.logger.Warn("Asset store returned error",
			zap.String("asset_id", assetID),
			zap.Int("code", response.Code),
			zap.String("message", response.Message),
		)
		return fmt.Errorf("asset store error: %s (code: %d)", response.Message, response.Code)
	}

	if len(response.Data) == 0 || string(response.Data) == "null" {
		return fmt.Errorf("%w: %s", ErrNoData, assetID)
	}
	if err := json.Unmarshal(response.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal asset store data: %w", err)
	}
	return nil
}

// GetLatestSnapshot 最新遥测快照
func (c *AssetStoreClient) GetLatestSnapshot(ctx context.Context, assetID string) (*models.PartialTelemetry, error) {
	var snap models.PartialTelemetry
	if err := c.get(ctx, "/assets/{id}/telemetry/latest", assetID, &snap); err != nil {
		return nil, err
	}
	if snap.AssetID == "" {
		snap.AssetID = assetID
	}
	return &snap, nil
}

// GetProjectState 机组技术状态（Physics 字段忽略）
func (c *AssetStoreClient) GetProjectState(ctx context.Context, assetID string) (*models.TechnicalProjectState, error) {
	var state models.TechnicalProjectState
	if err := c.get(ctx, "/assets/{id}/state", assetID, &state); err != nil {
		return nil, err
	}
	state.AssetID = assetID
	state.Physics = nil
	return &state, nil
}
