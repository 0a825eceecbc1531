// Package feasibility 建设前期可行性评估
//
// 包括流量历时曲线发电量积分与机组推荐、管道/螺栓/腐蚀影响校核、
// 设备投标评估、大件运输校核以及审批工期关键路径。
// 所有数值计算走 physics 内核；非法或缺失输入返回零值结果与原因，不返回 error。
package feasibility

import (
	"sort"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 发电量积分参数
const (
	SystemEfficiency     = 0.91 // 全站综合效率
	FlatCapacityFactor   = 0.65 // 无流量曲线时的容量系数
	DesignExceedance     = 30.0 // 设计流量取 Q30
	DefaultDesignFlow    = 10.0 // m³/s
	DefaultPipeLength    = 100.0
	HoursPerYear         = 8760.0
	KaplanHeadLimit      = 30.0
	FrancisHeadLimit     = 400.0
	KaplanVariabilityMin = 0.2
	FrancisPartLoadRatio = 0.3
)

// 结果原因
const (
	ReasonInsufficientData  = "insufficient data"
	ReasonCalculationFailed = "calculation failed"
)

// 缺省流量曲线对应的变化率（10 m³/s → 1 m³/s）
const defaultVariability = 0.1

// Recommendation 机组配置推荐
type Recommendation struct {
	Count     int    `json:"count"`
	Type      string `json:"type"`
	Reasoning string `json:"reasoning"`
}

// Result 可行性计算结果
type Result struct {
	NetHead             float64        `json:"net_head"`      // m
	FrictionLoss        float64        `json:"friction_loss"` // m
	DesignFlow          float64        `json:"design_flow"`   // m³/s
	OptimalFlow         float64        `json:"optimal_flow"`  // 扣除生态流量后的可用流量
	AnnualProductionMWh float64        `json:"annual_production_mwh"`
	Recommendation      Recommendation `json:"recommended_aggregates"`
	Reason              string         `json:"reason,omitempty"`
}

// Engine 可行性评估引擎
type Engine struct {
	logger *zap.Logger
}

// NewEngine 创建评估引擎
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

func zeroResult(reason, recType string) Result {
	return Result{
		Recommendation: Recommendation{Count: 0, Type: recType, Reasoning: reason},
		Reason:         reason,
	}
}

// CalculateFeasibility 计算净水头、年发电量并推荐机组
func (e *Engine) CalculateFeasibility(site models.SiteParameters) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Feasibility calculation failed",
				zap.Any("panic", r),
				zap.Float64("gross_head", site.GrossHead),
			)
			result = zeroResult(ReasonCalculationFailed, "Error")
		}
	}()

	if site.GrossHead <= 0 || site.PipeDiameter <= 0 {
		e.logger.Warn("Feasibility skipped, insufficient site data",
			zap.Float64("gross_head", site.GrossHead),
			zap.Float64("pipe_diameter_mm", site.PipeDiameter),
		)
		return zeroResult(ReasonInsufficientData, "N/A")
	}

	curve := sortedCurve(site.FlowDurationCurve)
	design := designFlow(curve, site.RatedFlow)
	useful := maxFloat(0, design-site.EcologicalFlow)

	length := site.PipeLength
	if length <= 0 {
		length = DefaultPipeLength
	}
	chain := physics.ComputeFrictionChain(useful, site.PipeDiameter/1000, length, physics.RoughnessMM(site.PipeMaterial))
	netHead := decimal.Max(decimal.Zero, physics.Dec(site.GrossHead).Sub(chain.HeadLoss))
	hNet := physics.Float(netHead)

	var energyMWh decimal.Decimal
	if len(curve) >= 2 {
		energyMWh = integrateCurve(curve, design, site.EcologicalFlow, hNet)
	} else {
		watts := physics.Power(hNet, useful, SystemEfficiency)
		energyMWh = physics.ToMW(watts).Mul(physics.Dec(HoursPerYear * FlatCapacityFactor))
	}

	result = Result{
		NetHead:             hNet,
		FrictionLoss:        physics.Float(chain.HeadLoss),
		DesignFlow:          physics.SafeFloat(design),
		OptimalFlow:         physics.SafeFloat(useful),
		AnnualProductionMWh: physics.Float(energyMWh),
		Recommendation:      recommend(hNet, useful, design, variability(curve)),
	}

	e.logger.Debug("Feasibility calculated",
		zap.Float64("net_head", result.NetHead),
		zap.Float64("annual_mwh", result.AnnualProductionMWh),
		zap.String("recommendation", result.Recommendation.Type),
	)
	return result
}

// sortedCurve 按超越概率升序排序的副本
func sortedCurve(points []models.FlowPoint) []models.FlowPoint {
	curve := make([]models.FlowPoint, len(points))
	copy(curve, points)
	sort.SliceStable(curve, func(i, j int) bool {
		return curve[i].Probability < curve[j].Probability
	})
	return curve
}

// designFlow 曲线上第一个超越概率 ≥ 30% 的流量；无此点时用额定流量，再缺省 10 m³/s
func designFlow(curve []models.FlowPoint, rated float64) float64 {
	for _, p := range curve {
		if p.Probability >= DesignExceedance && p.Flow > 0 {
			return p.Flow
		}
	}
	if rated > 0 {
		return rated
	}
	return DefaultDesignFlow
}

// integrateCurve 分段梯形积分，返回 MWh
func integrateCurve(curve []models.FlowPoint, design, eco, netHead float64) decimal.Decimal {
	total := decimal.Zero
	for i := 0; i < len(curve)-1; i++ {
		p1, p2 := curve[i], curve[i+1]
		hours := (p2.Probability - p1.Probability) / 100 * HoursPerYear
		avg := (p1.Flow + p2.Flow) / 2
		turbineFlow := minFloat(avg-eco, design)
		if turbineFlow <= 0 || hours <= 0 {
			continue
		}
		watts := physics.Power(netHead, turbineFlow, SystemEfficiency)
		total = total.Add(physics.ToMW(watts).Mul(physics.Dec(hours)))
	}
	return total
}

// variability 曲线末端与首端流量之比
func variability(curve []models.FlowPoint) float64 {
	if len(curve) == 0 {
		return defaultVariability
	}
	first := curve[0].Flow
	if first <= 0 {
		return 0
	}
	return curve[len(curve)-1].Flow / first
}

func recommend(netHead, useful, design, ratio float64) Recommendation {
	switch {
	case netHead < KaplanHeadLimit:
		if ratio < KaplanVariabilityMin {
			return Recommendation{Count: 2, Type: string(models.TurbineKaplan), Reasoning: "kaplan_double_regulation"}
		}
		return Recommendation{Count: 1, Type: string(models.TurbineKaplan), Reasoning: "kaplan_single"}
	case netHead < FrancisHeadLimit:
		if useful < FrancisPartLoadRatio*design {
			return Recommendation{Count: 2, Type: string(models.TurbineFrancis), Reasoning: "francis_part_load"}
		}
		return Recommendation{Count: 1, Type: string(models.TurbineFrancis), Reasoning: "francis_single"}
	default:
		return Recommendation{Count: 1, Type: string(models.TurbinePelton), Reasoning: "pelton_high_head"}
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
