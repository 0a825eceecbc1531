package physics

import (
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"github.com/shopspring/decimal"
)

// Power 水力发电功率 P = ρgHQη，W
// η 可以是小数或百分数：η > 1 时按百分数处理并除以 100
func Power(head, flow, efficiency float64) decimal.Decimal {
	eta := fromFloat(efficiency)
	if eta.GreaterThan(decimal.NewFromInt(1)) {
		eta = eta.Div(decimal.NewFromInt(100))
	}
	return decRho.Mul(decG).Mul(fromFloat(head)).Mul(fromFloat(flow)).Mul(eta)
}

// ToMW W 转 MW
func ToMW(watts decimal.Decimal) decimal.Decimal {
	return watts.Div(decMillion)
}

// TypicalEfficiency 按机型和水头给出典型最高效率（%）
func TypicalEfficiency(family models.TurbineFamily, head float64) decimal.Decimal {
	switch family {
	case models.TurbineFrancis:
		return decimal.NewFromInt(92)
	case models.TurbineKaplan:
		return decimal.NewFromInt(94)
	case models.TurbinePelton:
		if head >= 200 {
			return decimal.NewFromInt(91)
		}
		return decimal.NewFromInt(85)
	case models.TurbineCrossflow:
		return decimal.NewFromInt(82)
	default:
		return decimal.NewFromInt(90)
	}
}

// SpecificWaterConsumption 单位电量耗水量 m³/kWh = Q·3600 / P_kW
func SpecificWaterConsumption(flow, powerKW float64) decimal.Decimal {
	if powerKW <= 0 {
		return decimal.Zero
	}
	return fromFloat(flow).Mul(decimal.NewFromInt(3600)).Div(fromFloat(powerKW))
}

// GridTuning 电网频率应力系数参数
type GridTuning struct {
	NominalHz   float64 // 额定频率
	ToleranceHz float64 // 容差带（±）
	SlopePerHz  float64 // 超出容差后每 Hz 的增量
	MaxFactor   float64 // 上限
}

// DefaultGridTuning 50 Hz 电网默认参数
func DefaultGridTuning() GridTuning {
	return GridTuning{
		NominalHz:   50,
		ToleranceHz: 0.1,
		SlopePerHz:  2.0,
		MaxFactor:   1.5,
	}
}

// GridStressFactor 电网频率应力系数
// 容差带内为 1.0，带外线性增加，封顶 MaxFactor
func GridStressFactor(freq float64, tuning GridTuning) decimal.Decimal {
	one := decimal.NewFromInt(1)
	deviation := fromFloat(freq).Sub(fromFloat(tuning.NominalHz)).Abs()
	tolerance := fromFloat(tuning.ToleranceHz)
	if deviation.LessThanOrEqual(tolerance) {
		return one
	}
	factor := one.Add(deviation.Sub(tolerance).Mul(fromFloat(tuning.SlopePerHz)))
	return decimal.Min(factor, fromFloat(tuning.MaxFactor))
}
