package safety

import (
	"fmt"
	"math"
)

// 跨专业连锁影响阈值
const (
	BaseOilLifeYears         = 5.0
	SealVibrationLimit       = 2.8 // mm/s，ISO 10816 "satisfactory" 上限
	GridDeviationLimitHz     = 0.5
	NominalGridHz            = 50.0
	ThermalStressSlope       = 0.1
	GridStressPerHz          = 0.2
	MaxMisalignmentTempRiseC = 15.0
)

// Sector 专业
const (
	SectorMechanical = "MECHANICAL"
	SectorElectrical = "ELECTRICAL/SCADA"
)

// Effect 一个专业的异常对另一个专业造成的应力
type Effect struct {
	SourceSector     string  `json:"source_sector"`
	SourceField      string  `json:"source_field"`
	AffectedSector   string  `json:"affected_sector"`
	AffectedField    string  `json:"affected_field"`
	StressMultiplier float64 `json:"stress_multiplier"`
	Message          string  `json:"message"`
}

// ThermalStressFromAlignment 对中偏差导致的轴承热应力倍数
func ThermalStressFromAlignment(alignmentMmM float64) float64 {
	if alignmentMmM <= GoldenAlignment {
		return 1.0
	}
	ratio := alignmentMmM / GoldenAlignment
	return 1.0 + (ratio*ratio-1)*ThermalStressSlope
}

// OilLongevityImpact 对中偏差对润滑油寿命的影响
func OilLongevityImpact(alignmentMmM float64) (multiplier, yearsLost float64) {
	if alignmentMmM <= GoldenAlignment {
		return 1.0, 0
	}
	ratio := alignmentMmM / GoldenAlignment
	wear := ratio * ratio
	return wear, BaseOilLifeYears - BaseOilLifeYears/wear
}

// PredictBearingTemp 对中偏差引起的轴承温升预测
func PredictBearingTemp(currentTempC, alignmentMmM float64) (predictedC float64, warning bool) {
	rise := (ThermalStressFromAlignment(alignmentMmM) - 1.0) * MaxMisalignmentTempRiseC
	return currentTempC + rise, alignmentMmM > GoldenAlignment
}

// CrossSectorEffects 由遥测读数推导连锁影响
// 读数键名同 PhysicalLimits；缺失的对中/振动按 0，缺失的频率按 50 Hz
func CrossSectorEffects(readings map[string]float64) []Effect {
	effects := make([]Effect, 0)
	alignment := readings["alignment"]
	vibration := readings["vibration"]
	frequency, ok := readings["gridFrequency"]
	if !ok {
		frequency = NominalGridHz
	}

	if alignment > GoldenAlignment {
		stress := ThermalStressFromAlignment(alignment)
		effects = append(effects, Effect{
			SourceSector:     SectorMechanical,
			SourceField:      "Shaft Alignment",
			AffectedSector:   SectorElectrical,
			AffectedField:    "Bearing Temperature",
			StressMultiplier: stress,
			Message:          fmt.Sprintf("Misalignment (%.3f mm/m) applying %.0f%% thermal stress", alignment, (stress-1)*100),
		})

		wear, lost := OilLongevityImpact(alignment)
		effects = append(effects, Effect{
			SourceSector:     SectorMechanical,
			SourceField:      "Shaft Alignment",
			AffectedSector:   SectorMechanical,
			AffectedField:    "Oil Longevity",
			StressMultiplier: wear,
			Message:          fmt.Sprintf("Oil service interval reduced by %.1f years due to accelerated wear", lost),
		})
	}

	if vibration > SealVibrationLimit {
		effects = append(effects, Effect{
			SourceSector:     SectorMechanical,
			SourceField:      "Vibration",
			AffectedSector:   SectorMechanical,
			AffectedField:    "Seal Integrity",
			StressMultiplier: vibration / SealVibrationLimit,
			Message:          fmt.Sprintf("High vibration (%.2f mm/s) accelerating seal wear", vibration),
		})
	}

	deviation := math.Abs(frequency - NominalGridHz)
	if deviation > GridDeviationLimitHz {
		effects = append(effects, Effect{
			SourceSector:     SectorElectrical,
			SourceField:      "Grid Frequency",
			AffectedSector:   SectorElectrical,
			AffectedField:    "Generator Insulation",
			StressMultiplier: 1 + deviation*GridStressPerHz,
			Message:          fmt.Sprintf("Grid deviation (%.2f Hz) inducing insulation stress", deviation),
		})
	}
	return effects
}
