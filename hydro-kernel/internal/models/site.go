package models

import "strings"

// TurbineFamily 水轮机类型
type TurbineFamily string

const (
	TurbineFrancis   TurbineFamily = "FRANCIS"
	TurbineKaplan    TurbineFamily = "KAPLAN"
	TurbinePelton    TurbineFamily = "PELTON"
	TurbineCrossflow TurbineFamily = "CROSSFLOW"
)

// ParseTurbineFamily 解析水轮机类型（大小写不敏感），未知类型原样返回大写形式
func ParseTurbineFamily(s string) TurbineFamily {
	return TurbineFamily(strings.ToUpper(strings.TrimSpace(s)))
}

// PipeMaterial 压力管道材料
type PipeMaterial string

const (
	MaterialSteel    PipeMaterial = "STEEL"
	MaterialGRP      PipeMaterial = "GRP"
	MaterialPEHD     PipeMaterial = "PEHD"
	MaterialConcrete PipeMaterial = "CONCRETE"
)

// BoltClass 螺栓强度等级
type BoltClass string

const (
	BoltClass46  BoltClass = "4.6"
	BoltClass56  BoltClass = "5.6"
	BoltClass88  BoltClass = "8.8"
	BoltClass109 BoltClass = "10.9"
	BoltClass129 BoltClass = "12.9"
)

// WaterQuality 水质类别
type WaterQuality string

const (
	WaterClean   WaterQuality = "CLEAN"
	WaterSilt    WaterQuality = "SILT"
	WaterSand    WaterQuality = "SAND"
	WaterGlacial WaterQuality = "GLACIAL"
)

// CorrosionProtection 防腐措施
type CorrosionProtection string

const (
	ProtectionNone       CorrosionProtection = "NONE"
	ProtectionPaint      CorrosionProtection = "PAINT"
	ProtectionGalvanized CorrosionProtection = "GALVANIZED"
)

// FlowPoint 流量历时曲线上的一个点
// Probability 为超越概率（%），Flow 单位 m³/s
type FlowPoint struct {
	Flow        float64 `json:"flow"`
	Probability float64 `json:"probability"`
}

// SiteParameters 站点参数（每次评估的不可变输入）
type SiteParameters struct {
	GrossHead           float64             `json:"gross_head"`    // m
	PipeLength          float64             `json:"pipe_length"`   // m
	PipeDiameter        float64             `json:"pipe_diameter"` // mm
	PipeMaterial        PipeMaterial        `json:"pipe_material"`
	WallThickness       float64             `json:"wall_thickness"` // mm
	BoltClass           BoltClass           `json:"bolt_class"`
	CorrosionProtection CorrosionProtection `json:"corrosion_protection"`
	WaterQuality        WaterQuality        `json:"water_quality"`
	EcologicalFlow      float64             `json:"ecological_flow"`       // m³/s，必须留在河道中的流量
	RatedFlow           float64             `json:"rated_flow,omitempty"`  // m³/s，无流量曲线时的设计流量
	FlowDurationCurve   []FlowPoint         `json:"flow_duration_curve"`
}
