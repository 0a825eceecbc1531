// Package jetbalance 多喷嘴冲击式机组的逐喷嘴声学诊断与转子受力平衡
package jetbalance

import (
	"math"
	"time"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/spectrum"

	"go.uber.org/zap"
)

// 标定常数
const (
	WhistleBandStart   = 0.4 // 高频段起点（频谱长度的比例）
	WhistleScale       = 20
	WhistleMax         = 10
	ErodedWhistle      = 4
	SandDamageWhistle  = 7
	NozzleDiameterM    = 0.1
	NormalBearingLifeH = 100000.0
	DefaultBinWidth    = 10.0 // Hz
)

// DefaultForceConstant ρ·π·r²，r = 0.05 m
var DefaultForceConstant = physics.WaterDensity * math.Pi * (NozzleDiameterM / 2) * (NozzleDiameterM / 2)

// ImpactPattern 射流冲击形态
type ImpactPattern string

const (
	PatternClean      ImpactPattern = "CLEAN"
	PatternEroded     ImpactPattern = "ERODED"
	PatternSandDamage ImpactPattern = "SAND_DAMAGE"
)

// NozzleReading 单个喷嘴的原始读数
type NozzleReading struct {
	NozzleID       int       `json:"nozzle_id"`
	AcousticData   []float64 `json:"acoustic_data"` // 喷嘴附近麦克风原始采样
	PressureBar    float64   `json:"pressure_bar"`
	NeedlePosition float64   `json:"needle_position"` // %
}

// JetAcoustic 射流声学指纹
type JetAcoustic struct {
	Spectrum          []float64     `json:"spectrum"`
	DominantFrequency float64       `json:"dominant_frequency"` // Hz
	WhistleIndex      float64       `json:"whistle_index"`      // 0-10
	ImpactPattern     ImpactPattern `json:"impact_pattern"`
}

// JetAnalysis 单喷嘴分析结果
type JetAnalysis struct {
	NozzleID       int         `json:"nozzle_id"`
	Acoustic       JetAcoustic `json:"acoustic"`
	JetVelocity    float64     `json:"jet_velocity"` // m/s
	JetAngle       float64     `json:"jet_angle"`    // 偏离理想角度（度），需激光测量
	NeedlePosition float64     `json:"needle_position"`
	ErosionLevel   float64     `json:"erosion_level"` // 0-100 %
}

// ResultantForce 合力
type ResultantForce struct {
	Magnitude float64 `json:"magnitude"` // N
	Angle     float64 `json:"angle"`     // 度
}

// ForceBalance 转子受力平衡
type ForceBalance struct {
	CalculatedAt         time.Time      `json:"calculated_at"`
	NozzleForces         []float64      `json:"nozzle_forces"` // N
	Resultant            ResultantForce `json:"resultant"`
	ImbalanceRatio       float64        `json:"imbalance_ratio"`        // 0 为完全平衡
	BearingLoadIncrease  float64        `json:"bearing_load_increase"`  // %
	PredictedBearingLife float64        `json:"predicted_bearing_life"` // h
	PredictedBearingWear float64        `json:"predicted_bearing_wear"` // 寿命损失 h
}

// Option 分析器配置项
type Option func(*Analyzer)

// WithForceConstant 覆盖喷嘴受力常数
func WithForceConstant(k float64) Option {
	return func(a *Analyzer) {
		if k > 0 {
			a.forceConstant = k
		}
	}
}

// WithBinWidth 频谱每个频点的宽度（Hz）
func WithBinWidth(hz float64) Option {
	return func(a *Analyzer) {
		if hz > 0 {
			a.binWidth = hz
		}
	}
}

// WithClock 替换时钟（测试用）
func WithClock(clock func() time.Time) Option {
	return func(a *Analyzer) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// Analyzer 喷嘴平衡分析器
type Analyzer struct {
	spectrum      spectrum.Analyzer
	logger        *zap.Logger
	forceConstant float64
	binWidth      float64
	clock         func() time.Time
}

// NewAnalyzer 创建分析器，analyzer 为空时使用占位 DFT
func NewAnalyzer(analyzer spectrum.Analyzer, logger *zap.Logger, opts ...Option) *Analyzer {
	if analyzer == nil {
		analyzer = spectrum.NewDFT()
	}
	a := &Analyzer{
		spectrum:      analyzer,
		logger:        logger,
		forceConstant: DefaultForceConstant,
		binWidth:      DefaultBinWidth,
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WhistleIndex 高频能量占比 ×20，上限 10
func WhistleIndex(bins []float64) float64 {
	return math.Min(WhistleMax, spectrum.BandEnergyRatio(bins, WhistleBandStart)*WhistleScale)
}

// ClassifyImpact 按啸叫指数分类
func ClassifyImpact(whistle float64) ImpactPattern {
	switch {
	case whistle > SandDamageWhistle:
		return PatternSandDamage
	case whistle > ErodedWhistle:
		return PatternEroded
	default:
		return PatternClean
	}
}

// JetVelocity 伯努利 v = sqrt(2·p/ρ)，p 单位 bar
func JetVelocity(pressureBar float64) float64 {
	p := physics.SafeFloat(pressureBar)
	if p <= 0 {
		return 0
	}
	return math.Sqrt(2 * p * 1e5 / physics.WaterDensity)
}

// AnalyzeJet 单喷嘴诊断
func (a *Analyzer) AnalyzeJet(r NozzleReading) JetAnalysis {
	if limit, ok := spectrum.DecimationLimit(a.spectrum, len(r.AcousticData)); ok {
		a.logger.Warn("Nozzle acoustic data decimated",
			zap.Int("nozzle_id", r.NozzleID),
			zap.Int("samples", len(r.AcousticData)),
			zap.Int("max_samples", limit),
		)
	}
	bins := a.spectrum.Spectrum(r.AcousticData)

	dominant := 0.0
	if peaks := spectrum.FindPeaks(bins, a.binWidth); len(peaks) > 0 {
		dominant = peaks[0].Frequency
	}

	whistle := physics.SafeFloat(WhistleIndex(bins))
	pattern := ClassifyImpact(whistle)

	jet := JetAnalysis{
		NozzleID: r.NozzleID,
		Acoustic: JetAcoustic{
			Spectrum:          bins,
			DominantFrequency: dominant,
			WhistleIndex:      whistle,
			ImpactPattern:     pattern,
		},
		JetVelocity:    JetVelocity(r.PressureBar),
		NeedlePosition: r.NeedlePosition,
		ErosionLevel:   math.Min(100, whistle*10),
	}

	if pattern != PatternClean {
		a.logger.Warn("Nozzle impact degraded",
			zap.Int("nozzle_id", r.NozzleID),
			zap.String("pattern", string(pattern)),
			zap.Float64("whistle_index", whistle),
		)
	}
	return jet
}

// ForceBalance 喷嘴沿圆周均布，求合力与不平衡度
func (a *Analyzer) ForceBalance(jets []JetAnalysis) ForceBalance {
	fb := ForceBalance{
		CalculatedAt:         a.clock(),
		NozzleForces:         make([]float64, len(jets)),
		PredictedBearingLife: NormalBearingLifeH,
	}
	n := len(jets)
	if n == 0 {
		return fb
	}

	step := 2 * math.Pi / float64(n)
	var fx, fy, sum float64
	for i, jet := range jets {
		f := physics.SafeFloat(a.forceConstant * jet.JetVelocity * jet.JetVelocity * jet.NeedlePosition / 100)
		fb.NozzleForces[i] = f
		sum += f
		fx += f * math.Cos(float64(i)*step)
		fy += f * math.Sin(float64(i)*step)
	}

	magnitude := math.Hypot(fx, fy)
	fb.Resultant = ResultantForce{
		Magnitude: magnitude,
		Angle:     math.Atan2(fy, fx) * 180 / math.Pi,
	}

	mean := sum / float64(n)
	if mean > 0 {
		fb.ImbalanceRatio = physics.SafeFloat(magnitude / (mean * float64(n)))
	}
	fb.BearingLoadIncrease = fb.ImbalanceRatio * 100

	loadFactor := 1 + fb.BearingLoadIncrease/100
	fb.PredictedBearingLife = NormalBearingLifeH / (loadFactor * loadFactor * loadFactor)
	fb.PredictedBearingWear = NormalBearingLifeH - fb.PredictedBearingLife

	a.logger.Debug("Jet force balance computed",
		zap.Int("nozzles", n),
		zap.Float64("resultant_n", magnitude),
		zap.Float64("imbalance_ratio", fb.ImbalanceRatio),
	)
	return fb
}
