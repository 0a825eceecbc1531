package models

import "time"

// SessionStatus 调试会话状态
type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionFailed     SessionStatus = "FAILED"
)

// IsTerminal 是否为终态（终态会话不再接受任何修改）
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionFailed
}

// AcousticSignature 声学指纹
type AcousticSignature struct {
	Spectrum            []float64 `json:"spectrum"`
	DominantFrequencies []float64 `json:"dominant_frequencies"` // Hz
	RMSLevel            float64   `json:"rms_level"`
	CavitationIndex     float64   `json:"cavitation_index"` // 0-10
}

// VibrationSignature 振动指纹
type VibrationSignature struct {
	Horizontal          float64   `json:"horizontal"` // mm/s
	Vertical            float64   `json:"vertical"`
	Axial               float64   `json:"axial"`
	DominantFrequencies []float64 `json:"dominant_frequencies"`
	Phase               float64   `json:"phase"`
}

// BaselineFingerprint 某一负荷等级下的健康基线（记录后不可变）
type BaselineFingerprint struct {
	LoadLevel           int                `json:"load_level"` // 0/25/50/75/100
	RecordedAt          time.Time          `json:"recorded_at"`
	Acoustic            AcousticSignature  `json:"acoustic"`
	Vibration           VibrationSignature `json:"vibration"`
	TemperatureBaseline map[string]float64 `json:"temperature_baseline,omitempty"`
	PressureBaseline    map[string]float64 `json:"pressure_baseline,omitempty"`
	PowerOutput         float64            `json:"power_output"` // MW
	Efficiency          float64            `json:"efficiency"`   // %
	WaterFlow           float64            `json:"water_flow"`   // m³/s
}

// RotorPosition 转子角度位置上的跳动读数
type RotorPosition struct {
	Angle  float64 `json:"angle"`  // 度 (0-360)
	Runout float64 `json:"runout"` // mm
}

// AlignmentMeasurement 对中测量
type AlignmentMeasurement struct {
	StartedAt      time.Time       `json:"started_at"`
	RotorPositions []RotorPosition `json:"rotor_positions"`
	ShaftSag       float64         `json:"shaft_sag"`       // mm
	TotalRunout    float64         `json:"total_runout"`    // mm
	FinalAlignment float64         `json:"final_alignment"` // mm/m
	MeetsStandard  bool            `json:"meets_standard"`
	Finalized      bool            `json:"finalized"`
	FinalizedAt    *time.Time      `json:"finalized_at,omitempty"`
}

// PressureReading 水压试验读数
type PressureReading struct {
	Time     float64 `json:"time"`     // s
	Pressure float64 `json:"pressure"` // bar
}

// LeakIssue 水压试验疑似问题
type LeakIssue string

const (
	IssueMicrocrack  LeakIssue = "MICROCRACK"
	IssueAirInSystem LeakIssue = "AIR_IN_SYSTEM"
	IssueSealLeak    LeakIssue = "SEAL_LEAK"
)

// HydroStaticTestResult 水压试验结果
type HydroStaticTestResult struct {
	RecordedAt       time.Time         `json:"recorded_at"`
	TestDuration     float64           `json:"test_duration"` // s
	InitialPressure  float64           `json:"initial_pressure"`
	PressureReadings []PressureReading `json:"pressure_readings"`
	PressureDropRate float64           `json:"pressure_drop_rate"` // bar/min
	RSquared         float64           `json:"r_squared"`
	IsLinear         bool              `json:"is_linear"`
	SuspectedIssue   *LeakIssue        `json:"suspected_issue,omitempty"`
}

// MeasurementSource 几何测量数据来源
type MeasurementSource string

const (
	SourceLaserTracker MeasurementSource = "LASER_TRACKER"
	SourceManual       MeasurementSource = "MANUAL"
	SourceImported     MeasurementSource = "IMPORTED"
)

// MeasuredDeviation 单点偏差摘要
type MeasuredDeviation struct {
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Deviation float64 `json:"deviation"` // mm
}

// SpecialMeasurementData 几何专项测量摘要
type SpecialMeasurementData struct {
	RecordedAt       time.Time           `json:"recorded_at"`
	Source           MeasurementSource   `json:"source"`
	GeometryPoints   []MeasuredDeviation `json:"geometry_points"`
	AverageDeviation float64             `json:"average_deviation"` // mm
	EfficiencyGap    float64             `json:"efficiency_gap"`    // %
}

// OverrideSeverity 专家修正的严重程度
type OverrideSeverity string

const (
	SeverityMinor       OverrideSeverity = "MINOR"
	SeveritySignificant OverrideSeverity = "SIGNIFICANT"
	SeverityCritical    OverrideSeverity = "CRITICAL"
)

// Valid 严重程度是否合法
func (s OverrideSeverity) Valid() bool {
	switch s {
	case SeverityMinor, SeveritySignificant, SeverityCritical:
		return true
	}
	return false
}

// AIValidationOverride 工程师对诊断结论的修正（只追加的审计日志）
type AIValidationOverride struct {
	OverrideID      string           `json:"override_id"`
	RecordedAt      time.Time        `json:"recorded_at"`
	EngineerID      string           `json:"engineer_id"`
	EngineerName    string           `json:"engineer_name"`
	AIDiagnosis     string           `json:"ai_diagnosis"`
	ActualDiagnosis string           `json:"actual_diagnosis"`
	Reason          string           `json:"reason"`
	Severity        OverrideSeverity `json:"severity"`
}

// CommissioningSession 调试会话
type CommissioningSession struct {
	SessionID           string                  `json:"session_id"`
	AssetID             string                  `json:"asset_id"`
	AssetName           string                  `json:"asset_name"`
	TurbineFamily       TurbineFamily           `json:"turbine_family"`
	Status              SessionStatus           `json:"status"`
	StartedAt           time.Time               `json:"started_at"`
	CompletedAt         *time.Time              `json:"completed_at,omitempty"`
	FailureReason       string                  `json:"failure_reason,omitempty"`
	Baselines           []BaselineFingerprint   `json:"baselines"`
	Alignment           *AlignmentMeasurement   `json:"alignment,omitempty"`
	HydroStaticTest     *HydroStaticTestResult  `json:"hydro_static_test,omitempty"`
	SpecialMeasurements *SpecialMeasurementData `json:"special_measurements,omitempty"`
	Overrides           []AIValidationOverride  `json:"overrides"`
}

// HasBaseline 是否已记录该负荷等级
func (s *CommissioningSession) HasBaseline(loadLevel int) bool {
	for _, b := range s.Baselines {
		if b.LoadLevel == loadLevel {
			return true
		}
	}
	return false
}

// DistinctLoadLevels 已记录的不同负荷等级数量
func (s *CommissioningSession) DistinctLoadLevels() int {
	seen := make(map[int]struct{}, len(s.Baselines))
	for _, b := range s.Baselines {
		seen[b.LoadLevel] = struct{}{}
	}
	return len(seen)
}
