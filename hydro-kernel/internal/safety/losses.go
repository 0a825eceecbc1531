package safety

import (
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"
)

// 损失分摊比例
const (
	TrashRackShare     = 0.10
	PenstockShare      = 0.90
	TransformerLossPct = 0.01
)

// LossBreakdown 水-电全链损失分解（kW）
type LossBreakdown struct {
	GrossHydraulicKW       float64 `json:"gross_hydraulic_kw"`
	HeadLossKW             float64 `json:"head_loss_kw"`
	TrashRackLossKW        float64 `json:"trash_rack_loss_kw"`
	PenstockFrictionLossKW float64 `json:"penstock_friction_loss_kw"`
	TurbineMechLossKW      float64 `json:"turbine_mech_loss_kw"`
	GeneratorElecLossKW    float64 `json:"generator_elec_loss_kw"`
	TransformerLossKW      float64 `json:"transformer_loss_kw"`
	WaterToWireEfficiency  float64 `json:"water_to_wire_efficiency"` // %
}

// nonNegative NaN 和负值归零
func nonNegative(v float64) float64 {
	v = physics.SafeFloat(v)
	if v < 0 {
		return 0
	}
	return v
}

// AnalyzeLosses 将毛水头到上网电量的损失分解到各环节
func (g *Guard) AnalyzeLosses(grossHead, netHead, flow, shaftKW, electricalKW float64) LossBreakdown {
	grossKW := physics.Float(physics.Power(grossHead, flow, 1)) / 1000
	netKW := physics.Float(physics.Power(netHead, flow, 1)) / 1000
	headLossKW := grossKW - netKW
	transformer := electricalKW * TransformerLossPct

	efficiency := 0.0
	if grossKW > 0 {
		efficiency = (electricalKW - transformer) / grossKW * 100
	}

	return LossBreakdown{
		GrossHydraulicKW:       nonNegative(grossKW),
		HeadLossKW:             nonNegative(headLossKW),
		TrashRackLossKW:        nonNegative(headLossKW * TrashRackShare),
		PenstockFrictionLossKW: nonNegative(headLossKW * PenstockShare),
		TurbineMechLossKW:      nonNegative(netKW - shaftKW),
		GeneratorElecLossKW:    nonNegative(shaftKW - electricalKW),
		TransformerLossKW:      nonNegative(transformer),
		WaterToWireEfficiency:  nonNegative(efficiency),
	}
}
