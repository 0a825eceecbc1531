package physics

import (
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"github.com/shopspring/decimal"
)

// 管材弹性模量（GPa）
var modulusGPa = map[models.PipeMaterial]float64{
	models.MaterialSteel:    SteelModulusGPa,
	models.MaterialGRP:      25,
	models.MaterialPEHD:     1.1,
	models.MaterialConcrete: 30,
}

// MaterialModulus 按材料查弹性模量（Pa），未知材料按钢
func MaterialModulus(material models.PipeMaterial) float64 {
	if e, ok := modulusGPa[material]; ok {
		return e * 1e9
	}
	return SteelModulusGPa * 1e9
}

// WaveSpeed 压力波速 a = sqrt(K/ρ / (1 + (K/E)·(D/t)))，m/s
// d、t 单位一致即可；eModulus 单位 Pa，≤ 0 时按钢
func WaveSpeed(d, t, eModulus float64) decimal.Decimal {
	if t <= 0 {
		return decimal.Zero
	}
	e := fromFloat(eModulus)
	if e.Sign() <= 0 {
		e = fromFloat(SteelModulusGPa * 1e9)
	}
	ratio := fromFloat(d).Div(fromFloat(t))
	denominator := decimal.NewFromInt(1).Add(decK.Div(e).Mul(ratio))
	return sqrt(decK.Div(decRho).Div(denominator))
}

// SurgePressure Joukowsky 水锤压力 ΔP = ρ·a·Δv，Pa
func SurgePressure(a, deltaV float64) decimal.Decimal {
	return decRho.Mul(fromFloat(a)).Mul(fromFloat(deltaV))
}

// TransitTime 压力波往返时间 2L/a，s
func TransitTime(length, a float64) decimal.Decimal {
	return safeDiv(decTwo.Mul(fromFloat(length)), fromFloat(a))
}
