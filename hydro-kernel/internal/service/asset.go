package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/consumer"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/feasibility"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/safety"

	"go.uber.org/zap"
)

// ErrAssetIDRequired 缺少机组 ID
var ErrAssetIDRequired = errors.New("asset_id is required")

// SafetyReport 机组安全包络
type SafetyReport struct {
	AssetID     string                    `json:"asset_id"`
	ClosingTime safety.ClosingTimeResult  `json:"closing_time"`
	Zone        safety.ZoneResult         `json:"zone"`
	Validations []safety.ValidationResult `json:"validations"`
	Effects     []safety.Effect           `json:"effects"`
}

// FeasibilityReport 机组站点可行性复核
type FeasibilityReport struct {
	AssetID string                     `json:"asset_id"`
	Result  feasibility.Result         `json:"result"`
	Impact  feasibility.ImpactAnalysis `json:"impact"`
}

// AssetService 机组查询服务层
// 职责：
// 1. 参数校验
// 2. 读模型优先，缺失时即时计算
// 3. 编排安全包络与可行性复核
type AssetService struct {
	cache       *consumer.CacheManager
	health      *consumer.HealthSyncConsumer
	guard       *safety.Guard
	feasibility *feasibility.Engine
	logger      *zap.Logger
}

// NewAssetService 创建机组服务
func NewAssetService(
	cache *consumer.CacheManager,
	health *consumer.HealthSyncConsumer,
	guard *safety.Guard,
	engine *feasibility.Engine,
	logger *zap.Logger,
) *AssetService {
	return &AssetService{
		cache:       cache,
		health:      health,
		guard:       guard,
		feasibility: engine,
		logger:      logger,
	}
}

// GetHealth 获取机组健康读模型
// 缓存过期或尚未计算时即时同步一次
func (s *AssetService) GetHealth(ctx context.Context, assetID string) (*models.HealthSnapshot, error) {
	if assetID == "" {
		return nil, ErrAssetIDRequired
	}

	snap, err := s.cache.GetHealth(ctx, assetID)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, consumer.ErrHealthNotFound) {
		return nil, err
	}

	s.logger.Debug("Health read-model missing, syncing on demand",
		zap.String("asset_id", assetID),
	)
	snap, err = s.health.SyncAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to sync asset health: %w", err)
	}
	return snap, nil
}

// SafetyEnvelope 机组当前安全包络
// 运行区以站点毛水头和额定流量为额定值
func (s *AssetService) SafetyEnvelope(ctx context.Context, assetID string) (*SafetyReport, error) {
	if assetID == "" {
		return nil, ErrAssetIDRequired
	}

	state, err := s.health.ProjectState(ctx, assetID)
	if err != nil {
		return nil, err
	}
	snap, err := s.GetHealth(ctx, assetID)
	if err != nil {
		return nil, err
	}

	// 管径与壁厚在状态中以 m 存储
	closing := s.guard.SafeClosingTime(
		state.Penstock.Length,
		state.Penstock.Diameter*1000,
		state.Penstock.WallThickness*1000,
		state.Penstock.Material,
	)

	flow := state.Hydraulic.Flow
	if latest, err := s.cache.GetSnapshot(ctx, assetID); err == nil && latest.Flow != nil {
		flow = *latest.Flow
	}
	zone := s.guard.CheckOperatingZone(safety.OperatingPoint{
		NetHead:     snap.Health.NetHead,
		Flow:        flow,
		PowerOutput: snap.Health.PowerMW,
	}, state.Site.GrossHead, state.Site.RatedFlow)

	readings := map[string]float64{
		"flow":          flow,
		"gridFrequency": state.Hydraulic.GridFrequency,
		"vibration":     max(state.Mechanical.VibrationX, state.Mechanical.VibrationY),
		"head":          snap.Health.NetHead,
	}
	if state.Mechanical.BearingTempC != nil {
		readings["bearingTemp"] = *state.Mechanical.BearingTempC
	}
	if state.Mechanical.AlignmentMmM != nil {
		readings["alignment"] = *state.Mechanical.AlignmentMmM
	}

	return &SafetyReport{
		AssetID:     assetID,
		ClosingTime: closing,
		Zone:        zone,
		Validations: safety.ValidateBatch(readings),
		Effects:     safety.CrossSectorEffects(readings),
	}, nil
}

// ReviewFeasibility 用机组站点参数复核可行性与管道影响
func (s *AssetService) ReviewFeasibility(ctx context.Context, assetID string) (*FeasibilityReport, error) {
	if assetID == "" {
		return nil, ErrAssetIDRequired
	}

	state, err := s.health.ProjectState(ctx, assetID)
	if err != nil {
		return nil, err
	}

	return &FeasibilityReport{
		AssetID: assetID,
		Result:  s.feasibility.CalculateFeasibility(state.Site),
		Impact:  s.feasibility.ValidateImpact(state.Site),
	}, nil
}
