package safety

import (
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"

	"go.uber.org/zap"
)

// Zone 运行区
type Zone string

const (
	ZoneCavitationRisk Zone = "CAVITATION_RISK"
	ZoneVortexRope     Zone = "VORTEX_ROPE"
	ZoneBestEfficiency Zone = "BEST_EFFICIENCY"
	ZoneNormal         Zone = "NORMAL"
)

// OperatingPoint 当前运行点
type OperatingPoint struct {
	NetHead     float64 `json:"net_head"`     // m
	Flow        float64 `json:"flow"`         // m³/s
	PowerOutput float64 `json:"power_output"` // MW
}

// ZoneResult 运行区判定结果
type ZoneResult struct {
	Zone        Zone    `json:"zone"`
	HeadPercent float64 `json:"head_percent"`
	FlowPercent float64 `json:"flow_percent"`
	Alert       string  `json:"alert,omitempty"`
}

// CheckOperatingZone 按额定水头/流量百分比判定运行区
// 区域之间有重叠，按空化 → 涡带 → 最优效率的顺序取第一个命中
func (g *Guard) CheckOperatingZone(point OperatingPoint, ratedHead, ratedFlow float64) ZoneResult {
	if ratedHead <= 0 || ratedFlow <= 0 {
		g.logger.Warn("Operating zone check skipped, rated values missing",
			zap.Float64("rated_head", ratedHead),
			zap.Float64("rated_flow", ratedFlow),
		)
		return ZoneResult{Zone: ZoneNormal}
	}

	hundred := physics.Dec(100)
	headPct := physics.Dec(point.NetHead).Div(physics.Dec(ratedHead)).Mul(hundred)
	flowPct := physics.Dec(point.Flow).Div(physics.Dec(ratedFlow)).Mul(hundred)

	result := ZoneResult{
		HeadPercent: physics.Float(headPct),
		FlowPercent: physics.Float(flowPct),
	}

	switch {
	case headPct.LessThan(physics.Dec(60)) && flowPct.GreaterThan(physics.Dec(80)):
		result.Zone = ZoneCavitationRisk
		result.Alert = "Low head at high flow: cavitation risk on runner blades"
	case flowPct.GreaterThan(physics.Dec(30)) && flowPct.LessThan(physics.Dec(55)):
		result.Zone = ZoneVortexRope
		result.Alert = "Part load: draft tube vortex rope pulsation"
	case headPct.GreaterThanOrEqual(physics.Dec(90)) && headPct.LessThanOrEqual(physics.Dec(110)) &&
		flowPct.GreaterThanOrEqual(physics.Dec(75)) && flowPct.LessThanOrEqual(physics.Dec(95)):
		result.Zone = ZoneBestEfficiency
	default:
		result.Zone = ZoneNormal
	}
	return result
}
