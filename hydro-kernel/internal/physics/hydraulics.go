package physics

import (
	"math"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"github.com/shopspring/decimal"
)

// 管壁绝对粗糙度（mm）
var roughnessMM = map[models.PipeMaterial]float64{
	models.MaterialSteel:    0.045,
	models.MaterialGRP:      0.01,
	models.MaterialPEHD:     0.005,
	models.MaterialConcrete: 1.5,
}

// RoughnessMM 按材料查管壁粗糙度（mm），未知材料按钢管
func RoughnessMM(material models.PipeMaterial) float64 {
	if r, ok := roughnessMM[material]; ok {
		return r
	}
	return roughnessMM[models.MaterialSteel]
}

// FlowVelocity 管道平均流速 v = Q / (π·(D/2)²)
// D ≤ 0 时面积按 1 m² 处理（退化回退，不视为错误）
func FlowVelocity(q, d float64) decimal.Decimal {
	area := decimal.NewFromInt(1)
	if d > 0 {
		area = circleArea(fromFloat(d))
	}
	return fromFloat(q).Div(area)
}

// Reynolds 雷诺数 Re = v·D/ν
func Reynolds(v, d float64) decimal.Decimal {
	if d <= 0 {
		return decimal.Zero
	}
	return fromFloat(v).Mul(fromFloat(d)).Div(decNu)
}

// FrictionFactor Darcy 摩阻系数
// Re < 2300 为层流 64/Re；否则使用 Swamee–Jain 显式近似：
//   f = 0.25 / [log10(ε/(3.7D) + 5.74/Re^0.9)]²
// roughness 与 d 单位均为 m
func FrictionFactor(re, roughness, d float64) decimal.Decimal {
	if re <= 0 {
		return decimal.Zero
	}
	if re < LaminarReynoldsLimit {
		return decimal.NewFromInt(64).Div(fromFloat(re))
	}

	relative := 0.0
	if d > 0 {
		relative = roughness / (3.7 * d)
	}
	logTerm := math.Log10(relative + 5.74/math.Pow(re, 0.9))
	if logTerm == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(0.25).Div(fromFloat(logTerm * logTerm))
}

// HeadLoss Darcy–Weisbach 沿程水头损失 hf = f·(L/D)·(v²/2g)，单位 m
func HeadLoss(f, length, d, v float64) decimal.Decimal {
	if d <= 0 {
		return decimal.Zero
	}
	vel := fromFloat(v)
	velocityHead := vel.Mul(vel).Div(decTwo.Mul(decG))
	return fromFloat(f).Mul(fromFloat(length).Div(fromFloat(d))).Mul(velocityHead)
}

// FrictionChain 流速→雷诺数→摩阻系数→水头损失的完整链路结果
type FrictionChain struct {
	Velocity       decimal.Decimal
	Reynolds       decimal.Decimal
	FrictionFactor decimal.Decimal
	HeadLoss       decimal.Decimal
}

// ComputeFrictionChain 按内核链路计算沿程损失
// d 单位 m，roughnessMM 单位 mm
func ComputeFrictionChain(q, d, length, roughnessMM float64) FrictionChain {
	v := FlowVelocity(q, d)
	re := Reynolds(Float(v), d)
	f := FrictionFactor(Float(re), roughnessMM/1000, d)
	hf := HeadLoss(Float(f), length, d, Float(v))
	return FrictionChain{
		Velocity:       v,
		Reynolds:       re,
		FrictionFactor: f,
		HeadLoss:       hf,
	}
}
