package models

// 遥测字段缺省值
const (
	DefaultWaterTempC    = 15.0 // ν = 1.14e-6 对应的水温
	DefaultGridFrequency = 50.0
)

// PartialTelemetry 部分遥测快照
// 所有字段可选：nil 表示本次未上报，合并时保留状态中已有的值。
//   Flow           缺省 0 m³/s
//   WaterTempC     缺省 15 °C
//   GridFrequency  缺省 50 Hz
//   VibrationX/Y   缺省 0 mm/s
//   BearingTempC   缺省不设置（不做轴承温度校验）
type PartialTelemetry struct {
	AssetID       string   `json:"asset_id"`
	Timestamp     int64    `json:"timestamp"`
	Flow          *float64 `json:"flow,omitempty"`
	WaterTempC    *float64 `json:"water_temp_c,omitempty"`
	GridFrequency *float64 `json:"grid_frequency,omitempty"`
	VibrationX    *float64 `json:"vibration_x,omitempty"`
	VibrationY    *float64 `json:"vibration_y,omitempty"`
	BearingTempC  *float64 `json:"bearing_temp_c,omitempty"`
	AlignmentMmM  *float64 `json:"alignment_mm_m,omitempty"`
	AcousticIndex *float64 `json:"acoustic_index,omitempty"`
	TailwaterEl   *float64 `json:"tailwater_elevation,omitempty"`
}

// Readings 返回已上报的数值字段，键名与 safety 物理限值表一致
func (t *PartialTelemetry) Readings() map[string]float64 {
	values := make(map[string]float64)
	if t.Flow != nil {
		values["flow"] = *t.Flow
	}
	if t.GridFrequency != nil {
		values["gridFrequency"] = *t.GridFrequency
	}
	if t.BearingTempC != nil {
		values["bearingTemp"] = *t.BearingTempC
	}
	if t.AlignmentMmM != nil {
		values["alignment"] = *t.AlignmentMmM
	}
	if t.VibrationX != nil {
		values["vibration"] = *t.VibrationX
	}
	if t.VibrationY != nil {
		if v, ok := values["vibration"]; !ok || *t.VibrationY > v {
			values["vibration"] = *t.VibrationY
		}
	}
	return values
}

// Merge 合并两个快照，newer 中已上报的字段覆盖 t（最后写入者胜出）
func (t PartialTelemetry) Merge(newer PartialTelemetry) PartialTelemetry {
	out := t
	if newer.AssetID != "" {
		out.AssetID = newer.AssetID
	}
	if newer.Timestamp > out.Timestamp {
		out.Timestamp = newer.Timestamp
	}
	if newer.Flow != nil {
		out.Flow = newer.Flow
	}
	if newer.WaterTempC != nil {
		out.WaterTempC = newer.WaterTempC
	}
	if newer.GridFrequency != nil {
		out.GridFrequency = newer.GridFrequency
	}
	if newer.VibrationX != nil {
		out.VibrationX = newer.VibrationX
	}
	if newer.VibrationY != nil {
		out.VibrationY = newer.VibrationY
	}
	if newer.BearingTempC != nil {
		out.BearingTempC = newer.BearingTempC
	}
	if newer.AlignmentMmM != nil {
		out.AlignmentMmM = newer.AlignmentMmM
	}
	if newer.AcousticIndex != nil {
		out.AcousticIndex = newer.AcousticIndex
	}
	if newer.TailwaterEl != nil {
		out.TailwaterEl = newer.TailwaterEl
	}
	return out
}
