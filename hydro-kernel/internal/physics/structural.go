package physics

import (
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"github.com/shopspring/decimal"
)

// 螺栓屈服强度（MPa）
var boltYieldMPa = map[models.BoltClass]float64{
	models.BoltClass46:  240,
	models.BoltClass56:  300,
	models.BoltClass88:  640,
	models.BoltClass109: 940,
	models.BoltClass129: 1080,
}

// DefaultBoltYieldMPa 未知等级按 8.8 级
const DefaultBoltYieldMPa = 640

// 管材屈服强度（MPa）
var pipeYieldMPa = map[models.PipeMaterial]float64{
	models.MaterialSteel:    235, // S235
	models.MaterialGRP:      60,
	models.MaterialPEHD:     20,
	models.MaterialConcrete: 30,
}

// BoltYieldStrength 按螺栓等级查屈服强度（MPa）
func BoltYieldStrength(class models.BoltClass) float64 {
	if y, ok := boltYieldMPa[class]; ok {
		return y
	}
	return DefaultBoltYieldMPa
}

// PipeYieldStrength 按管材查屈服强度（MPa），未知材料按 S235
func PipeYieldStrength(material models.PipeMaterial) float64 {
	if y, ok := pipeYieldMPa[material]; ok {
		return y
	}
	return pipeYieldMPa[models.MaterialSteel]
}

// StaticPressure 静水压力 ρgH，Pa
func StaticPressure(head float64) decimal.Decimal {
	return decRho.Mul(decG).Mul(fromFloat(head))
}

// HoopStress Barlow 公式环向应力，静压与水锤压力叠加：
//   σ = (ρgH + P_surge)·D / (2t)
// d、t 单位 m，结果 MPa
func HoopStress(head, surgePa, d, t float64) decimal.Decimal {
	if t <= 0 {
		return decimal.Zero
	}
	total := StaticPressure(head).Add(fromFloat(surgePa))
	sigmaPa := total.Mul(fromFloat(d)).Div(decTwo.Mul(fromFloat(t)))
	return sigmaPa.Div(decMillion)
}

// BoltLoadPerBolt 单个螺栓承受的载荷，kN
// pressurePa 作用在直径 runnerDiameterMM 的圆面上，由 boltCount 个螺栓平均分担
func BoltLoadPerBolt(pressurePa, runnerDiameterMM float64, boltCount int) decimal.Decimal {
	if boltCount <= 0 {
		return decimal.Zero
	}
	area := circleArea(fromFloat(runnerDiameterMM).Div(decKilo)) // m²
	force := fromFloat(pressurePa).Mul(area)                      // N
	return force.Div(decimal.NewFromInt(int64(boltCount))).Div(decKilo)
}

// BoltCapacity 单个螺栓的屈服承载力，kN
// 面积 mm² × 屈服强度 MPa = N
func BoltCapacity(boltDiameterMM, yieldMPa float64) decimal.Decimal {
	area := circleArea(fromFloat(boltDiameterMM))
	return area.Mul(fromFloat(yieldMPa)).Div(decKilo)
}

// SafetyFactor 安全系数 capacity/load，load 为 0 时返回 0
func SafetyFactor(capacity, load decimal.Decimal) decimal.Decimal {
	return safeDiv(capacity, load)
}
