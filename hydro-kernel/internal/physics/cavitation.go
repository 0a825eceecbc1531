package physics

import (
	"math"

	"github.com/shopspring/decimal"
)

// CavitationRisk 空化风险等级
type CavitationRisk string

const (
	CavitationLow      CavitationRisk = "LOW"
	CavitationMedium   CavitationRisk = "MEDIUM"
	CavitationHigh     CavitationRisk = "HIGH"
	CavitationCritical CavitationRisk = "CRITICAL"
)

// Thoma σ 分级阈值
var (
	sigmaCritical = decimal.NewFromFloat(0.05)
	sigmaHigh     = decimal.NewFromFloat(0.1)
	sigmaMedium   = decimal.NewFromFloat(0.15)
)

// CavitationResult 空化系数计算结果
type CavitationResult struct {
	Sigma decimal.Decimal
	Risk  CavitationRisk
}

// VaporPressure 饱和蒸汽压（Pa），Magnus/Tetens 近似
func VaporPressure(waterTempC float64) decimal.Decimal {
	kPa := 0.61078 * math.Exp(17.27*waterTempC/(waterTempC+237.3))
	return fromFloat(kPa * 1000)
}

// CavitationSigma Thoma 空化系数 σ = (H_atm − H_vapor − H_s) / H
// H_s = runnerEl − tailwaterEl（转轮高于下游水位为正）。
// head ≤ 0 时返回 σ=0、LOW（退化回退）。
func CavitationSigma(head, tailwaterEl, runnerEl, waterTempC float64) CavitationResult {
	if head <= 0 {
		return CavitationResult{Sigma: decimal.Zero, Risk: CavitationLow}
	}

	rhoG := decRho.Mul(decG)
	hAtm := fromFloat(AtmosphericPressure).Div(rhoG)
	hVapor := VaporPressure(waterTempC).Div(rhoG)
	hSuction := fromFloat(runnerEl).Sub(fromFloat(tailwaterEl))

	sigma := hAtm.Sub(hVapor).Sub(hSuction).Div(fromFloat(head))
	return CavitationResult{Sigma: sigma, Risk: ClassifySigma(sigma)}
}

// ClassifySigma σ 分级：<0.05 CRITICAL，<0.10 HIGH，<0.15 MEDIUM，其余 LOW
func ClassifySigma(sigma decimal.Decimal) CavitationRisk {
	switch {
	case sigma.LessThan(sigmaCritical):
		return CavitationCritical
	case sigma.LessThan(sigmaHigh):
		return CavitationHigh
	case sigma.LessThan(sigmaMedium):
		return CavitationMedium
	default:
		return CavitationLow
	}
}
