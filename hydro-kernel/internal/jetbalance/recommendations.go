package jetbalance

import (
	"fmt"
	"math"
)

// 不平衡度分级
const (
	CriticalImbalance = 0.15
	WarningImbalance  = 0.08
	VelocitySpread    = 0.1 // 偏离平均速度的比例
)

// Severity 建议等级
type Severity string

const (
	SeverityOK       Severity = "OK"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Recommendation 维护建议；NozzleID 为 0 表示整机
type Recommendation struct {
	NozzleID int      `json:"nozzle_id,omitempty"`
	Severity Severity `json:"severity"`
	Key      string   `json:"key"`
	Message  string   `json:"message"`
}

// BalanceSeverity 不平衡度等级
func BalanceSeverity(imbalance float64) Severity {
	switch {
	case imbalance > CriticalImbalance:
		return SeverityCritical
	case imbalance > WarningImbalance:
		return SeverityWarning
	default:
		return SeverityOK
	}
}

// Recommendations 逐喷嘴损伤、速度偏差与整机平衡建议
func Recommendations(jets []JetAnalysis, balance ForceBalance) []Recommendation {
	var recs []Recommendation

	avgVelocity := 0.0
	for _, j := range jets {
		avgVelocity += j.JetVelocity
	}
	if len(jets) > 0 {
		avgVelocity /= float64(len(jets))
	}

	for _, j := range jets {
		switch j.Acoustic.ImpactPattern {
		case PatternSandDamage:
			recs = append(recs, Recommendation{
				NozzleID: j.NozzleID,
				Severity: SeverityCritical,
				Key:      "jet.sand_damage",
				Message: fmt.Sprintf("Nozzle %d: sand damage (whistle index %.1f). Replace needle and install upstream sand filter.",
					j.NozzleID, j.Acoustic.WhistleIndex),
			})
		case PatternEroded:
			recs = append(recs, Recommendation{
				NozzleID: j.NozzleID,
				Severity: SeverityWarning,
				Key:      "jet.needle_erosion",
				Message: fmt.Sprintf("Nozzle %d: needle erosion at %.0f%%. Plan replacement within 1000 operating hours.",
					j.NozzleID, j.ErosionLevel),
			})
		}

		if diff := math.Abs(j.JetVelocity - avgVelocity); diff > avgVelocity*VelocitySpread {
			recs = append(recs, Recommendation{
				NozzleID: j.NozzleID,
				Severity: SeverityWarning,
				Key:      "jet.velocity_mismatch",
				Message: fmt.Sprintf("Nozzle %d: velocity %.1f m/s off average. Check for blockage or needle calibration.",
					j.NozzleID, diff),
			})
		}
	}

	pct := balance.ImbalanceRatio * 100
	switch BalanceSeverity(balance.ImbalanceRatio) {
	case SeverityCritical:
		recs = append(recs, Recommendation{
			Severity: SeverityCritical,
			Key:      "balance.critical",
			Message: fmt.Sprintf("Rotor force imbalance %.1f%%, bearing load +%.0f%%, bearing life reduced by %.0f h. Balance all nozzles within 5%% and inspect bearings.",
				pct, balance.BearingLoadIncrease, balance.PredictedBearingWear),
		})
	case SeverityWarning:
		recs = append(recs, Recommendation{
			Severity: SeverityWarning,
			Key:      "balance.moderate",
			Message:  fmt.Sprintf("Moderate imbalance %.1f%%. Schedule nozzle calibration at next maintenance window.", pct),
		})
	default:
		recs = append(recs, Recommendation{
			Severity: SeverityOK,
			Key:      "balance.ok",
			Message:  fmt.Sprintf("Jet balance within range (%.1f%%).", pct),
		})
	}
	return recs
}
