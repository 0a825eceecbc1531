package feasibility

// 运输校核参数
const (
	TransportClearanceM = 0.5  // 挂车高度
	TrailerWeightTons   = 20.0 // 挂车自重
	PortAdvisoryKM      = 500.0
)

// 运输方案
const (
	SolutionSplitRunner       = "SPLIT_RUNNER"
	SolutionReinforceOrLight  = "REINFORCE_OR_LIGHTEN"
	SolutionStandardTransport = "STANDARD_TRANSPORT"
)

// LogisticsConstraints 运输路线限制，≤ 0 表示该项无限制
type LogisticsConstraints struct {
	AccessRoadWidth     float64 `json:"access_road_width"`     // m
	TunnelHeight        float64 `json:"tunnel_height"`         // m
	BridgeCapacity      float64 `json:"bridge_capacity"`       // t
	NearestPortDistance float64 `json:"nearest_port_distance"` // km
}

// LogisticsResult 运输校核结果
type LogisticsResult struct {
	Feasible bool      `json:"feasible"`
	Warnings []Warning `json:"warnings"`
	Solution string    `json:"solution"`
}

// CheckLogistics 校核转轮整体运输是否可行
func (e *Engine) CheckLogistics(runnerDiameterMM, weightTons float64, c LogisticsConstraints) LogisticsResult {
	warnings := []Warning{}
	envelope := runnerDiameterMM/1000 + TransportClearanceM

	dimension := false
	if c.TunnelHeight > 0 && envelope > c.TunnelHeight {
		dimension = true
		warnings = append(warnings, Warning{
			Key:    "runner_exceeds_tunnel",
			Params: map[string]interface{}{"envelope": envelope, "tunnel_height": c.TunnelHeight},
		})
	}
	if c.AccessRoadWidth > 0 && envelope > c.AccessRoadWidth {
		dimension = true
		warnings = append(warnings, Warning{
			Key:    "runner_exceeds_road",
			Params: map[string]interface{}{"envelope": envelope, "road_width": c.AccessRoadWidth},
		})
	}

	overweight := false
	gross := weightTons + TrailerWeightTons
	if c.BridgeCapacity > 0 && gross > c.BridgeCapacity {
		overweight = true
		warnings = append(warnings, Warning{
			Key:    "load_exceeds_bridge",
			Params: map[string]interface{}{"gross_weight": gross, "bridge_capacity": c.BridgeCapacity},
		})
	}

	if c.NearestPortDistance > PortAdvisoryKM {
		warnings = append(warnings, Warning{
			Key:    "port_far",
			Params: map[string]interface{}{"distance_km": c.NearestPortDistance},
		})
	}

	switch {
	case dimension:
		return LogisticsResult{Feasible: false, Warnings: warnings, Solution: SolutionSplitRunner}
	case overweight:
		return LogisticsResult{Feasible: false, Warnings: warnings, Solution: SolutionReinforceOrLight}
	default:
		return LogisticsResult{Feasible: true, Warnings: warnings, Solution: SolutionStandardTransport}
	}
}
