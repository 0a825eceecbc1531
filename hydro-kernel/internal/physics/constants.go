// Package physics 水力-结构物理内核
//
// 所有函数均为无状态纯函数，输入为显式单位的 float64（m、m³/s、Pa、°C），
// 结果为 decimal.Decimal。四则运算以十进制精确计算，开方/对数/指数等
// 超越运算在 float64 中完成后再转回 decimal，阈值比较统一在 decimal 上进行。
package physics

import (
	"math"

	"github.com/shopspring/decimal"
)

// 物理常数
const (
	Gravity              = 9.81    // m/s²
	WaterDensity         = 1000.0  // kg/m³
	KinematicViscosity   = 1.14e-6 // m²/s，15 °C 水
	WaterBulkModulus     = 2.15e9  // Pa
	AtmosphericPressure  = 101325  // Pa
	SteelModulusGPa      = 210.0
	LaminarReynoldsLimit = 2300
)

var (
	decG   = decimal.NewFromFloat(Gravity)
	decRho = decimal.NewFromFloat(WaterDensity)
	decPi  = decimal.NewFromFloat(math.Pi)
	decNu  = decimal.NewFromFloat(KinematicViscosity)
	decK   = decimal.NewFromFloat(WaterBulkModulus)

	decTwo     = decimal.NewFromInt(2)
	decMillion = decimal.NewFromInt(1000000)
	decKilo    = decimal.NewFromInt(1000)
)

// fromFloat 将 float64 转为 decimal，NaN/Inf 归零
func fromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// sqrt 在 float64 中开方，负数返回 0
func sqrt(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}
	return fromFloat(math.Sqrt(d.InexactFloat64()))
}

// safeDiv 除数为 0 时返回 0
func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// circleArea π·(d/2)²
func circleArea(diameter decimal.Decimal) decimal.Decimal {
	r := diameter.Div(decTwo)
	return decPi.Mul(r).Mul(r)
}

// SafeFloat NaN/Inf 归零，供引擎在结果离开前统一使用
func SafeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Float 将 decimal 结果转为 float64
func Float(d decimal.Decimal) float64 {
	return SafeFloat(d.InexactFloat64())
}

// Dec 将 float64 转为 decimal（NaN/Inf 归零），供阈值比较使用
func Dec(v float64) decimal.Decimal {
	return fromFloat(v)
}
