// Package commissioning 机组调试会话状态机
//
// 会话从 IN_PROGRESS 开始，依次记录 5 个负荷等级的健康基线、转子对中、
// 水压试验和几何专项测量，满足条件后进入 COMPLETED；也可主动置为 FAILED。
// 终态会话拒绝一切修改。每个会话同一时刻只有一个写者。
package commissioning

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/geometry"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/spectrum"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Analyzer 调试分析器
type Analyzer struct {
	repo     Repository
	spectrum spectrum.Analyzer
	logger   *zap.Logger
	opts     options

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock 会话级互斥锁，refs 为持有和等待者数量，归零时从表中移除
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewAnalyzer 创建调试分析器
func NewAnalyzer(repo Repository, analyzer spectrum.Analyzer, logger *zap.Logger, opts ...Option) *Analyzer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if analyzer == nil {
		analyzer = spectrum.NewDFT()
	}
	return &Analyzer{
		repo:     repo,
		spectrum: analyzer,
		logger:   logger,
		opts:     o,
		locks:    make(map[string]*sessionLock),
	}
}

// lockSession 锁住会话，返回的函数释放锁
func (a *Analyzer) lockSession(id string) func() {
	a.mu.Lock()
	l, ok := a.locks[id]
	if !ok {
		l = &sessionLock{}
		a.locks[id] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, id)
		}
		a.mu.Unlock()
	}
}

// mutate 加锁、读取、修改、保存
// 终态会话返回 ErrSessionClosed；fn 返回错误时不保存
func (a *Analyzer) mutate(ctx context.Context, id string, fn func(s *models.CommissioningSession) error) (*models.CommissioningSession, error) {
	unlock := a.lockSession(id)
	defer unlock()

	s, err := a.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrSessionClosed, id, s.Status)
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := a.repo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s, nil
}

// newSessionID COMMISSION-<unix 毫秒>-<8 位十六进制>
func (a *Analyzer) newSessionID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("COMMISSION-%d-%s", a.opts.clock().UnixMilli(), suffix)
}

// StartCommissioning 创建调试会话
func (a *Analyzer) StartCommissioning(ctx context.Context, assetID, assetName string, family models.TurbineFamily) (*models.CommissioningSession, error) {
	s := &models.CommissioningSession{
		SessionID:     a.newSessionID(),
		AssetID:       assetID,
		AssetName:     assetName,
		TurbineFamily: models.ParseTurbineFamily(string(family)),
		Status:        models.SessionInProgress,
		StartedAt:     a.opts.clock(),
		Baselines:     []models.BaselineFingerprint{},
		Overrides:     []models.AIValidationOverride{},
	}
	if err := a.repo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	a.logger.Info("Commissioning started",
		zap.String("session_id", s.SessionID),
		zap.String("asset_id", assetID),
		zap.String("turbine_family", string(s.TurbineFamily)),
	)
	return s, nil
}

// GetSession 只读查询
func (a *Analyzer) GetSession(ctx context.Context, id string) (*models.CommissioningSession, error) {
	return a.repo.Load(ctx, id)
}

// CompleteCommissioning 5 个基线齐全且对中已定稿后进入 COMPLETED
func (a *Analyzer) CompleteCommissioning(ctx context.Context, id string) (*models.CommissioningSession, error) {
	s, err := a.mutate(ctx, id, func(s *models.CommissioningSession) error {
		if n := s.DistinctLoadLevels(); n < len(LoadLevels) {
			return fmt.Errorf("%w: have %d", ErrBaselinesIncomplete, n)
		}
		if s.Alignment == nil || !s.Alignment.Finalized {
			return ErrAlignmentRequired
		}
		now := a.opts.clock()
		s.Status = models.SessionCompleted
		s.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("Commissioning completed",
		zap.String("session_id", id),
		zap.Int("baselines", len(s.Baselines)),
		zap.Bool("alignment_pass", s.Alignment.MeetsStandard),
		zap.Bool("hydro_static_done", s.HydroStaticTest != nil),
		zap.Int("overrides", len(s.Overrides)),
	)
	return s, nil
}

// FailCommissioning 终止会话并记录原因
func (a *Analyzer) FailCommissioning(ctx context.Context, id, reason string) (*models.CommissioningSession, error) {
	s, err := a.mutate(ctx, id, func(s *models.CommissioningSession) error {
		now := a.opts.clock()
		s.Status = models.SessionFailed
		s.CompletedAt = &now
		s.FailureReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Warn("Commissioning failed",
		zap.String("session_id", id),
		zap.String("reason", reason),
	)
	return s, nil
}

// ValidateAIDiagnosis 追加工程师对诊断结论的修正
func (a *Analyzer) ValidateAIDiagnosis(ctx context.Context, id string, override models.AIValidationOverride) (*models.AIValidationOverride, error) {
	if !override.Severity.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeverity, override.Severity)
	}

	override.OverrideID = uuid.New().String()
	override.RecordedAt = a.opts.clock()

	_, err := a.mutate(ctx, id, func(s *models.CommissioningSession) error {
		s.Overrides = append(s.Overrides, override)
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("Diagnosis override recorded",
		zap.String("session_id", id),
		zap.String("engineer_id", override.EngineerID),
		zap.String("ai_diagnosis", override.AIDiagnosis),
		zap.String("actual_diagnosis", override.ActualDiagnosis),
		zap.String("severity", string(override.Severity)),
	)
	return &override, nil
}

// AttachSpecialMeasurement 保存几何专项测量摘要
func (a *Analyzer) AttachSpecialMeasurement(ctx context.Context, id string, cmp *geometry.Comparison, gap geometry.EfficiencyGapAnalysis, source models.MeasurementSource) (*models.SpecialMeasurementData, error) {
	if cmp == nil {
		return nil, ErrNoGeometryData
	}

	data := &models.SpecialMeasurementData{
		RecordedAt:       a.opts.clock(),
		Source:           source,
		GeometryPoints:   make([]models.MeasuredDeviation, 0, len(cmp.Deviations)),
		AverageDeviation: cmp.AverageDeviation,
		EfficiencyGap:    gap.PredictedEfficiencyLoss,
	}
	for _, d := range cmp.Deviations {
		data.GeometryPoints = append(data.GeometryPoints, models.MeasuredDeviation{
			Name:      d.Point,
			X:         d.Measured.X,
			Y:         d.Measured.Y,
			Z:         d.Measured.Z,
			Deviation: d.Deviation,
		})
	}

	_, err := a.mutate(ctx, id, func(s *models.CommissioningSession) error {
		s.SpecialMeasurements = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("Special measurement attached",
		zap.String("session_id", id),
		zap.String("source", string(source)),
		zap.Int("points", len(data.GeometryPoints)),
		zap.Float64("efficiency_gap", data.EfficiencyGap),
	)
	return data, nil
}
