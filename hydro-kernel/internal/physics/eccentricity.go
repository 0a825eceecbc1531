package physics

import (
	"math"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"github.com/shopspring/decimal"
)

// EccentricityTuning 轴心轨迹偏心率的经验参数
// 这些值为现场标定的可调参数，不是物理推导结果
type EccentricityTuning struct {
	PeltonXBoost        float64 // Pelton 水平方向放大
	KaplanYBoost        float64 // Kaplan 垂直方向放大
	NegligibleAmplitude float64 // 低于该值视为无振动
	SingleAxisCap       float64 // 单轴振动时的偏心率上限
}

// DefaultEccentricityTuning 默认标定参数
func DefaultEccentricityTuning() EccentricityTuning {
	return EccentricityTuning{
		PeltonXBoost:        1.2,
		KaplanYBoost:        1.2,
		NegligibleAmplitude: 0.01,
		SingleAxisCap:       0.75,
	}
}

// Eccentricity 轴心轨迹偏心率 e = sqrt(1 - (min/max)²)
//
// 按机型修正振幅后计算。两轴均为 0 时返回 0；
// 只有一轴有振动时不返回朴素的 e=1（会误报严重），而是：
// 主轴振幅 < NegligibleAmplitude 返回 0，否则返回与主轴振幅成比例、不超过 SingleAxisCap 的值。
func Eccentricity(vibX, vibY float64, family models.TurbineFamily, tuning EccentricityTuning) decimal.Decimal {
	x := math.Abs(SafeFloat(vibX))
	y := math.Abs(SafeFloat(vibY))

	switch family {
	case models.TurbinePelton:
		x *= tuning.PeltonXBoost
	case models.TurbineKaplan:
		y *= tuning.KaplanYBoost
	}

	major := math.Max(x, y)
	minor := math.Min(x, y)

	if major == 0 {
		return decimal.Zero
	}
	if minor == 0 {
		if major < tuning.NegligibleAmplitude {
			return decimal.Zero
		}
		proportional := major / (major + 1) * tuning.SingleAxisCap
		return fromFloat(math.Min(tuning.SingleAxisCap, proportional))
	}

	ratio := fromFloat(minor).Div(fromFloat(major))
	return sqrt(decimal.NewFromInt(1).Sub(ratio.Mul(ratio)))
}

// OrbitAnalysis 轴心轨迹形状分析
type OrbitAnalysis struct {
	Eccentricity       decimal.Decimal
	IsElliptical       bool
	LoosenessSuspected bool
}

// 轨迹判定阈值
const (
	EllipticalThreshold   = 0.75
	PeltonLoosenessLimit  = 0.82
	DefaultLoosenessLimit = 0.78
	LoosenessAcousticMin  = 6.0
)

// OrbitShape 轨迹形状：偏心率 > 0.75 判为椭圆；
// 偏心率超过机型限值且声学指数 > 6 时怀疑轴承松动
func OrbitShape(vibX, vibY float64, family models.TurbineFamily, acousticIndex float64, tuning EccentricityTuning) OrbitAnalysis {
	e := Eccentricity(vibX, vibY, family, tuning)

	limit := DefaultLoosenessLimit
	if family == models.TurbinePelton {
		limit = PeltonLoosenessLimit
	}

	return OrbitAnalysis{
		Eccentricity:       e,
		IsElliptical:       e.GreaterThan(fromFloat(EllipticalThreshold)),
		LoosenessSuspected: e.GreaterThan(fromFloat(limit)) && acousticIndex > LoosenessAcousticMin,
	}
}
