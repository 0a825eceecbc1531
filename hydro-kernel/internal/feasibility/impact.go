package feasibility

import (
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	decMega = decimal.NewFromInt(1000000)
	decTwo  = decimal.NewFromInt(2)
)

// 影响校核参数
const (
	SurgeAllowance        = 1.2  // 静水头 +20% 水锤裕量
	DefaultWallThickness  = 10.0 // mm
	MinHoopSafetyFactor   = 1.5
	BoltPressureLimitMPa  = 2.5
	BaseLifespanYears     = 50
	HighCorrosionLifespan = 25
	MedCorrosionLifespan  = 40
)

// BoltStatus 螺栓校核结论
type BoltStatus string

const (
	BoltOK       BoltStatus = "OK"
	BoltCritical BoltStatus = "CRITICAL"
	BoltFail     BoltStatus = "FAIL"
)

// CorrosionRisk 腐蚀风险
type CorrosionRisk string

const (
	CorrosionLow    CorrosionRisk = "LOW"
	CorrosionMedium CorrosionRisk = "MEDIUM"
	CorrosionHigh   CorrosionRisk = "HIGH"
)

// Warning 结构化告警，Key 供前端做本地化
type Warning struct {
	Key    string                 `json:"key"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// ImpactAnalysis 管道/螺栓/腐蚀影响校核结果
type ImpactAnalysis struct {
	SafetyFactor          float64       `json:"safety_factor"`
	HoopStressMPa         float64       `json:"hoop_stress_mpa"`
	PressureMPa           float64       `json:"pressure_mpa"`
	BoltStatus            BoltStatus    `json:"bolt_stress_status"`
	CorrosionRisk         CorrosionRisk `json:"corrosion_risk"`
	LifespanEstimateYears int           `json:"lifespan_estimate_years"`
	Warnings              []Warning     `json:"warnings"`
}

// ValidateImpact 校核壁厚、螺栓等级与防腐方案
func (e *Engine) ValidateImpact(site models.SiteParameters) ImpactAnalysis {
	warnings := []Warning{}

	head := site.GrossHead * SurgeAllowance
	pressure := physics.StaticPressure(head).Div(decMega)
	pressureMPa := physics.Float(pressure)

	thickness := site.WallThickness
	if thickness <= 0 {
		thickness = DefaultWallThickness
	}
	hoop := pressure.Mul(physics.Dec(site.PipeDiameter)).Div(physics.Dec(thickness).Mul(decTwo))

	yield := physics.Dec(physics.PipeYieldStrength(site.PipeMaterial))
	sf := decimal.Zero
	if hoop.Sign() > 0 {
		sf = yield.Div(hoop)
		if sf.LessThan(physics.Dec(MinHoopSafetyFactor)) {
			warnings = append(warnings, Warning{
				Key: "wall_thin_burst",
				Params: map[string]interface{}{
					"thickness": thickness,
					"head":      head,
					"sf":        physics.Float(sf),
				},
			})
		}
	}

	boltStatus := BoltOK
	if pressure.GreaterThan(physics.Dec(BoltPressureLimitMPa)) {
		switch site.BoltClass {
		case models.BoltClass46:
			boltStatus = BoltFail
			warnings = append(warnings, Warning{Key: "bolt_failure_46"})
		case models.BoltClass56:
			boltStatus = BoltCritical
			warnings = append(warnings, Warning{Key: "bolt_critical_56"})
		}
	}

	lifespan, key := corrosionLifespan(site.PipeMaterial, site.WaterQuality, site.CorrosionProtection)
	if key != "" {
		warnings = append(warnings, Warning{Key: key})
	}

	if len(warnings) > 0 {
		e.logger.Warn("Impact validation raised warnings",
			zap.Int("count", len(warnings)),
			zap.String("bolt_status", string(boltStatus)),
			zap.Int("lifespan_years", lifespan),
		)
	}

	return ImpactAnalysis{
		SafetyFactor:          physics.Float(sf),
		HoopStressMPa:         physics.Float(hoop),
		PressureMPa:           physics.SafeFloat(pressureMPa),
		BoltStatus:            boltStatus,
		CorrosionRisk:         classifyLifespan(lifespan),
		LifespanEstimateYears: lifespan,
		Warnings:              warnings,
	}
}

func isAbrasive(q models.WaterQuality) bool {
	return q == models.WaterSand || q == models.WaterGlacial
}

// corrosionLifespan 按材料/水质/防腐查寿命（年），并返回对应告警 key
func corrosionLifespan(material models.PipeMaterial, quality models.WaterQuality, protection models.CorrosionProtection) (int, string) {
	switch {
	case material == models.MaterialSteel && protection == models.ProtectionNone:
		if quality == models.WaterClean {
			return 30, "corrosion_steel_clean"
		}
		return 10, "corrosion_steel"
	case protection == models.ProtectionPaint && quality == models.WaterSilt:
		return 20, "corrosion_paint"
	case material == models.MaterialSteel && protection == models.ProtectionPaint && isAbrasive(quality):
		return 15, "corrosion_paint_abrasion"
	case protection == models.ProtectionGalvanized && isAbrasive(quality):
		return 30, "corrosion_galvanized_abrasion"
	case material == models.MaterialConcrete && isAbrasive(quality):
		return 35, "concrete_abrasion"
	}
	return BaseLifespanYears, ""
}

func classifyLifespan(years int) CorrosionRisk {
	switch {
	case years < HighCorrosionLifespan:
		return CorrosionHigh
	case years < MedCorrosionLifespan:
		return CorrosionMedium
	default:
		return CorrosionLow
	}
}
