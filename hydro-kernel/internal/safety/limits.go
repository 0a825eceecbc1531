package safety

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownField 限值表中没有该字段
var ErrUnknownField = errors.New("unknown field")

// Severity 校验严重程度
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Limit 物理限值
type Limit struct {
	Min  float64
	Max  float64
	Unit string
	Name string
}

// Range 建议取值范围
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PhysicalLimits 物理上不可能超出的取值范围
var PhysicalLimits = map[string]Limit{
	// 机械
	"alignment": {Min: 0, Max: 2.0, Unit: "mm/m", Name: "Shaft Alignment"},
	"vibration": {Min: 0, Max: 50, Unit: "mm/s", Name: "Vibration Velocity"},
	"axialPlay": {Min: 0, Max: 5.0, Unit: "mm", Name: "Axial Play"},

	// 温度
	"bearingTemp": {Min: -40, Max: 200, Unit: "°C", Name: "Bearing Temperature"},
	"oilTemp":     {Min: -20, Max: 120, Unit: "°C", Name: "Oil Temperature"},
	"ambientTemp": {Min: -50, Max: 60, Unit: "°C", Name: "Ambient Temperature"},

	// 电气
	"insulationResistance": {Min: 0, Max: 10000, Unit: "MΩ", Name: "Insulation Resistance"},
	"gridFrequency":        {Min: 45, Max: 55, Unit: "Hz", Name: "Grid Frequency"},
	"voltage":              {Min: 0, Max: 50, Unit: "kV", Name: "Voltage"},

	// 水力
	"head":       {Min: 0, Max: 2000, Unit: "m", Name: "Net Head"},
	"flow":       {Min: 0, Max: 1000, Unit: "m³/s", Name: "Flow Rate"},
	"efficiency": {Min: 0, Max: 100, Unit: "%", Name: "Efficiency"},

	// 结构
	"hoopStress":    {Min: 0, Max: 500, Unit: "MPa", Name: "Hoop Stress"},
	"wallThickness": {Min: 1, Max: 100, Unit: "mm", Name: "Wall Thickness"},
	"pressure":      {Min: 0, Max: 100, Unit: "bar", Name: "Pressure"},
}

// 轴承温度与对中阈值
const (
	BearingTempWarnC     = 70.0
	BearingTempCriticalC = 85.0
	GoldenAlignment      = 0.05 // mm/m
	AlignmentCriticalMul = 4
)

// ValidationResult 单字段校验结果
type ValidationResult struct {
	IsValid        bool     `json:"is_valid"`
	Field          string   `json:"field"`
	Value          float64  `json:"value"`
	Message        string   `json:"message"`
	Severity       Severity `json:"severity"`
	SuggestedRange *Range   `json:"suggested_range,omitempty"`
}

// ValidateField 按物理限值校验单个字段
func ValidateField(field string, value float64) (ValidationResult, error) {
	limit, ok := PhysicalLimits[field]
	if !ok {
		return ValidationResult{}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	out := ValidationResult{Field: limit.Name, Value: value}
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		out.Message = fmt.Sprintf("%s is not a number", limit.Name)
	case value < limit.Min:
		out.Message = fmt.Sprintf("%s cannot be below %g %s", limit.Name, limit.Min, limit.Unit)
	case value > limit.Max:
		out.Message = fmt.Sprintf("%s of %g %s exceeds physical maximum (%g %s)", limit.Name, value, limit.Unit, limit.Max, limit.Unit)
	default:
		out.IsValid = true
		out.Message = "Value within engineering limits"
		out.Severity = SeverityInfo
		return out, nil
	}
	out.Severity = SeverityError
	out.SuggestedRange = &Range{Min: limit.Min, Max: limit.Max}
	return out, nil
}

// ValidateBearingTemp 轴承温度：> 70 °C 警告，> 85 °C 严重
func ValidateBearingTemp(tempC float64) ValidationResult {
	base, _ := ValidateField("bearingTemp", tempC)
	if !base.IsValid {
		return base
	}
	switch {
	case tempC > BearingTempCriticalC:
		base.Severity = SeverityError
		base.Message = fmt.Sprintf("Critical: %g°C exceeds safe operating limit (%g°C), immediate shutdown recommended", tempC, BearingTempCriticalC)
	case tempC > BearingTempWarnC:
		base.Severity = SeverityWarning
		base.Message = fmt.Sprintf("Warning: %g°C approaching critical threshold", tempC)
	}
	return base
}

// ValidateAlignment 对中：> 0.05 mm/m 警告，> 0.20 mm/m 严重
func ValidateAlignment(alignmentMmM float64) ValidationResult {
	base, _ := ValidateField("alignment", alignmentMmM)
	if !base.IsValid {
		return base
	}
	switch {
	case alignmentMmM > GoldenAlignment*AlignmentCriticalMul:
		base.Severity = SeverityError
		base.Message = fmt.Sprintf("Critical deviation: %g mm/m is %.1fx the %g mm/m standard", alignmentMmM, alignmentMmM/GoldenAlignment, GoldenAlignment)
	case alignmentMmM > GoldenAlignment:
		base.Severity = SeverityWarning
		base.Message = fmt.Sprintf("Deviation: %g mm/m exceeds the %g mm/m standard", alignmentMmM, GoldenAlignment)
	}
	return base
}

// ValidateBatch 批量校验，只返回非 info 的结果；未知字段忽略
// 轴承温度与对中走专用阈值
func ValidateBatch(values map[string]float64) []ValidationResult {
	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	results := make([]ValidationResult, 0)
	for _, field := range fields {
		var r ValidationResult
		switch field {
		case "bearingTemp":
			r = ValidateBearingTemp(values[field])
		case "alignment":
			r = ValidateAlignment(values[field])
		default:
			var err error
			r, err = ValidateField(field, values[field])
			if err != nil {
				continue
			}
		}
		if !r.IsValid || r.Severity != SeverityInfo {
			results = append(results, r)
		}
	}
	return results
}

// HasErrors 结果中是否有 error 级别
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}
