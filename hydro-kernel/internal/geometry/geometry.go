// Package geometry 激光跟踪仪实测几何与理想蓝图的比对
//
// 逐点按名称匹配蓝图点，计算三维偏差、容差内点数和平均/最大偏差，
// 再由经验公式估算效率损失与修复投资回报。
package geometry

import (
	"math"
	"sort"
	"time"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"

	"go.uber.org/zap"
)

// 效率损失模型参数
const (
	DefaultReferenceDimensionMM = 3000.0  // 典型蜗壳直径
	DefaultReconstructionPerMM  = 50000.0 // 每 mm 平均偏差的修复费用
	DefaultCapacityFactor       = 0.75
	DefaultHorizonYears         = 10
	HoursPerYear                = 8760.0
)

// 各机型损失系数 k
var lossCoefficient = map[models.TurbineFamily]float64{
	models.TurbineFrancis: 2.5, // 蜗壳变形
	models.TurbineKaplan:  3.0, // 轮毂变形
	models.TurbinePelton:  1.8, // 机壳对中
}

// Coord 三维坐标（mm）
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MeasuredPoint 实测点
type MeasuredPoint struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Coord
}

// BlueprintPoint 蓝图理想点
type BlueprintPoint struct {
	Name string `json:"name"`
	Coord
	Tolerance float64 `json:"tolerance"` // mm
}

// Blueprint 理想蓝图
type Blueprint struct {
	TurbineFamily models.TurbineFamily `json:"turbine_family"`
	Variant       string               `json:"variant"`
	Points        []BlueprintPoint     `json:"points"`
}

// PointDeviation 单点偏差
type PointDeviation struct {
	Point           string  `json:"point"`
	Measured        Coord   `json:"measured"`
	Ideal           Coord   `json:"ideal"`
	Deviation       float64 `json:"deviation"` // mm
	Tolerance       float64 `json:"tolerance"`
	WithinTolerance bool    `json:"within_tolerance"`
}

// MaxDeviation 最大偏差点
type MaxDeviation struct {
	Point     string  `json:"point"`
	Deviation float64 `json:"deviation"`
}

// Comparison 实测与蓝图比对结果
type Comparison struct {
	ComparedAt            time.Time        `json:"compared_at"`
	TotalPoints           int              `json:"total_points"`
	MatchedPoints         int              `json:"matched_points"`
	PointsWithinTolerance int              `json:"points_within_tolerance"`
	AverageDeviation      float64          `json:"average_deviation"`
	MaxDeviation          MaxDeviation     `json:"max_deviation"`
	Deviations            []PointDeviation `json:"deviations"`
	Unmatched             []string         `json:"unmatched,omitempty"`
}

// EfficiencyGapAnalysis 几何变形造成的效率损失与修复回报
type EfficiencyGapAnalysis struct {
	GeometryDeviation       float64 `json:"geometry_deviation"`        // mm
	PredictedEfficiencyLoss float64 `json:"predicted_efficiency_loss"` // %
	LostEnergyMWh           float64 `json:"lost_energy_mwh"`
	LostRevenueAnnual       float64 `json:"lost_revenue_annual"`
	ReconstructionCost      float64 `json:"reconstruction_cost"`
	ROIPercent              float64 `json:"roi_percent"`
	PaybackMonths           float64 `json:"payback_months"`
}

// Assessment 修复建议等级
type Assessment string

const (
	AssessmentAcceptable Assessment = "ACCEPTABLE"
	AssessmentModerate   Assessment = "MODERATE"
	AssessmentCritical   Assessment = "CRITICAL"
)

// Option 分析器配置项
type Option func(*Analyzer)

// WithReconstructionCostPerMM 修复费用系数
func WithReconstructionCostPerMM(cost float64) Option {
	return func(a *Analyzer) {
		if cost > 0 {
			a.reconstructionPerMM = cost
		}
	}
}

// WithReferenceDimension 参考尺寸（mm）
func WithReferenceDimension(mm float64) Option {
	return func(a *Analyzer) {
		if mm > 0 {
			a.referenceDimension = mm
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

// Analyzer 几何合规分析器
type Analyzer struct {
	logger              *zap.Logger
	referenceDimension  float64
	reconstructionPerMM float64
	clock               func() time.Time
}

// NewAnalyzer 创建几何分析器
func NewAnalyzer(logger *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:              logger,
		referenceDimension:  DefaultReferenceDimensionMM,
		reconstructionPerMM: DefaultReconstructionPerMM,
		clock:               time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compare 按名称匹配实测点与蓝图点
// 平均偏差的分母为全部实测点数（包括未匹配点）
func (a *Analyzer) Compare(measured []MeasuredPoint, blueprint Blueprint) *Comparison {
	ideal := make(map[string]BlueprintPoint, len(blueprint.Points))
	for _, p := range blueprint.Points {
		ideal[p.Name] = p
	}

	cmp := &Comparison{
		ComparedAt:  a.clock(),
		TotalPoints: len(measured),
		Deviations:  make([]PointDeviation, 0, len(measured)),
	}

	total := 0.0
	for _, m := range measured {
		bp, ok := ideal[m.Name]
		if !ok {
			a.logger.Warn("Blueprint point not found",
				zap.String("point", m.Name),
				zap.String("variant", blueprint.Variant),
			)
			cmp.Unmatched = append(cmp.Unmatched, m.Name)
			continue
		}

		dx := m.X - bp.X
		dy := m.Y - bp.Y
		dz := m.Z - bp.Z
		deviation := math.Sqrt(dx*dx + dy*dy + dz*dz)
		total += deviation

		within := deviation <= bp.Tolerance
		if within {
			cmp.PointsWithinTolerance++
		}
		if deviation > cmp.MaxDeviation.Deviation {
			cmp.MaxDeviation = MaxDeviation{Point: m.Name, Deviation: deviation}
		}
		cmp.MatchedPoints++
		cmp.Deviations = append(cmp.Deviations, PointDeviation{
			Point:           m.Name,
			Measured:        m.Coord,
			Ideal:           bp.Coord,
			Deviation:       deviation,
			Tolerance:       bp.Tolerance,
			WithinTolerance: within,
		})
	}

	if len(measured) > 0 {
		cmp.AverageDeviation = total / float64(len(measured))
	}

	a.logger.Info("Geometry compared with blueprint",
		zap.Int("total_points", cmp.TotalPoints),
		zap.Int("matched_points", cmp.MatchedPoints),
		zap.Int("within_tolerance", cmp.PointsWithinTolerance),
		zap.Float64("average_deviation_mm", cmp.AverageDeviation),
	)
	return cmp
}

// EfficiencyGap 效率损失模型 loss% = k·ln(1 + avg/refDim)
// ROI 以 10 年收入为口径；分母为 0 时 ROI 与回收期为 0
func (a *Analyzer) EfficiencyGap(cmp *Comparison, family models.TurbineFamily, ratedPowerMW, energyPrice float64) EfficiencyGapAnalysis {
	k, ok := lossCoefficient[models.ParseTurbineFamily(string(family))]
	if !ok {
		k = lossCoefficient[models.TurbineFrancis]
	}

	avg := 0.0
	if cmp != nil {
		avg = cmp.AverageDeviation
	}

	loss := k * math.Log1p(avg/a.referenceDimension)
	annualMWh := ratedPowerMW * HoursPerYear * DefaultCapacityFactor
	lostMWh := annualMWh * loss / 100
	lostRevenue := lostMWh * energyPrice
	reconstruction := avg * a.reconstructionPerMM

	roi, payback := 0.0, 0.0
	if reconstruction > 0 {
		roi = (lostRevenue*DefaultHorizonYears - reconstruction) / reconstruction * 100
	}
	if lostRevenue > 0 {
		payback = reconstruction / lostRevenue * 12
	}

	return EfficiencyGapAnalysis{
		GeometryDeviation:       physics.SafeFloat(avg),
		PredictedEfficiencyLoss: physics.SafeFloat(loss),
		LostEnergyMWh:           physics.SafeFloat(lostMWh),
		LostRevenueAnnual:       physics.SafeFloat(lostRevenue),
		ReconstructionCost:      physics.SafeFloat(reconstruction),
		ROIPercent:              physics.SafeFloat(roi),
		PaybackMonths:           physics.SafeFloat(payback),
	}
}

// Assess 效率损失 > 1% 立即修复，> 0.5% 大修时修复
func Assess(gap EfficiencyGapAnalysis) Assessment {
	switch {
	case gap.PredictedEfficiencyLoss > 1.0:
		return AssessmentCritical
	case gap.PredictedEfficiencyLoss > 0.5:
		return AssessmentModerate
	default:
		return AssessmentAcceptable
	}
}

// TopDeviations 偏差最大的 n 个点
func TopDeviations(cmp *Comparison, n int) []PointDeviation {
	if cmp == nil || n <= 0 {
		return nil
	}
	out := make([]PointDeviation, len(cmp.Deviations))
	copy(out, cmp.Deviations)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deviation > out[j].Deviation
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
