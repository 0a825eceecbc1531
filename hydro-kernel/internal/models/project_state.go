package models

// PenstockState 压力管道参数
type PenstockState struct {
	Length             float64      `json:"length"`         // m
	Diameter           float64      `json:"diameter"`       // m
	WallThickness      float64      `json:"wall_thickness"` // m
	Material           PipeMaterial `json:"material"`
	MaterialModulusGPa float64      `json:"material_modulus_gpa,omitempty"` // 0 表示按材料查表
	RoughnessMM        float64      `json:"roughness_mm,omitempty"`         // 0 表示按材料查表
}

// MechanicalState 机械参数
type MechanicalState struct {
	TurbineFamily    TurbineFamily `json:"turbine_family"`
	VibrationX       float64       `json:"vibration_x"` // mm/s
	VibrationY       float64       `json:"vibration_y"` // mm/s
	BoltDiameterMM   float64       `json:"bolt_diameter_mm"`
	BoltCount        int           `json:"bolt_count"`
	BoltClass        BoltClass     `json:"bolt_class"`
	RunnerDiameterMM float64       `json:"runner_diameter_mm"`
	BearingTempC     *float64      `json:"bearing_temp_c,omitempty"`
	AlignmentMmM     *float64      `json:"alignment_mm_m,omitempty"`
	AcousticIndex    float64       `json:"acoustic_index"`
}

// HydraulicState 水力运行参数
type HydraulicState struct {
	Flow               float64 `json:"flow"`         // m³/s
	WaterTempC         float64 `json:"water_temp_c"` // °C
	TailwaterElevation float64 `json:"tailwater_elevation"`
	RunnerElevation    float64 `json:"runner_elevation"`
	GridFrequency      float64 `json:"grid_frequency"` // Hz
}

// FinancialState 经济参数
type FinancialState struct {
	EnergyPrice float64 `json:"energy_price"` // 每 MWh
	Capex       float64 `json:"capex"`
}

// TechnicalProjectState 项目技术状态
// Physics 为派生缓存，仅由 healthsync 整体覆盖写入
type TechnicalProjectState struct {
	AssetID    string          `json:"asset_id"`
	AssetName  string          `json:"asset_name"`
	Site       SiteParameters  `json:"site"`
	Penstock   PenstockState   `json:"penstock"`
	Mechanical MechanicalState `json:"mechanical"`
	Hydraulic  HydraulicState  `json:"hydraulic"`
	Financial  FinancialState  `json:"financial"`
	Physics    *SystemHealth   `json:"physics,omitempty"`
}

// HealthStatus 系统健康总体状态
type HealthStatus string

const (
	HealthNominal  HealthStatus = "NOMINAL"
	HealthWarning  HealthStatus = "WARNING"
	HealthCritical HealthStatus = "CRITICAL"
)

// SystemHealth 实时健康读模型（从不持久化，只缓存）
type SystemHealth struct {
	Velocity         float64 `json:"velocity"` // m/s
	Reynolds         float64 `json:"reynolds"`
	FrictionFactor   float64 `json:"friction_factor"`
	HeadLoss         float64 `json:"head_loss"` // m
	NetHead          float64 `json:"net_head"`  // m
	Efficiency       float64 `json:"efficiency"`
	PowerMW          float64 `json:"power_mw"`
	AnnualEnergyMWh  float64 `json:"annual_energy_mwh"`
	AnnualRevenue    float64 `json:"annual_revenue"`
	ROIPercent       float64 `json:"roi_percent"`
	WaveSpeed        float64 `json:"wave_speed"`     // m/s
	SurgePressure    float64 `json:"surge_pressure"` // Pa
	TransitTime      float64 `json:"transit_time"`   // s，往返 2L/a
	HoopStressMPa    float64 `json:"hoop_stress_mpa"`
	HoopSafetyFactor float64 `json:"hoop_safety_factor"`
	Eccentricity     float64 `json:"eccentricity"`
	GridStressFactor float64 `json:"grid_stress_factor"`
	BoltLoadKN       float64 `json:"bolt_load_kn"`
	BoltCapacityKN   float64 `json:"bolt_capacity_kn"`
	BoltSafetyFactor float64 `json:"bolt_safety_factor"`
	CavitationSigma  float64 `json:"cavitation_sigma"`
	CavitationRisk   string  `json:"cavitation_risk"`
	SpecificWaterUse float64 `json:"specific_water_use"` // m³/kWh

	CavitationFlag bool         `json:"cavitation_flag"`
	ResonanceFlag  bool         `json:"resonance_flag"`
	Status         HealthStatus `json:"status"`
}

// HealthSnapshot 写入缓存的健康快照
type HealthSnapshot struct {
	AssetID    string       `json:"asset_id"`
	Health     SystemHealth `json:"health"`
	ComputedAt int64        `json:"computed_at"` // Unix 秒
}
