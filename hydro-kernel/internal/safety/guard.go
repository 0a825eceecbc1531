// Package safety 运行安全包络
//
// 水锤关闭时间、水-电损失分解、运行区判定，以及遥测值的物理限值校验
// 和跨专业连锁影响。
package safety

import (
	"fmt"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"

	"go.uber.org/zap"
)

// Policy 经验安全策略参数（非物理推导，可覆盖）
type Policy struct {
	SafetyMultiplier  float64 // 最小关闭时间 = 临界时间 × 倍数
	ReferenceVelocity float64 // 估算最大水锤时假定的流速 m/s
}

// DefaultPolicy 默认策略：×4，4 m/s
func DefaultPolicy() Policy {
	return Policy{
		SafetyMultiplier:  4,
		ReferenceVelocity: 4,
	}
}

// Guard 安全包络计算
type Guard struct {
	policy Policy
	logger *zap.Logger
}

// NewGuard 创建安全包络计算器，策略字段 ≤ 0 时取默认值
func NewGuard(policy Policy, logger *zap.Logger) *Guard {
	def := DefaultPolicy()
	if policy.SafetyMultiplier <= 0 {
		policy.SafetyMultiplier = def.SafetyMultiplier
	}
	if policy.ReferenceVelocity <= 0 {
		policy.ReferenceVelocity = def.ReferenceVelocity
	}
	return &Guard{policy: policy, logger: logger}
}

// Policy 当前策略
func (g *Guard) Policy() Policy {
	return g.policy
}

// ClosingTimeResult 导叶/针阀安全关闭时间
type ClosingTimeResult struct {
	WaveSpeed           float64 `json:"wave_speed"`       // m/s
	CriticalTime        float64 `json:"critical_time"`    // s，2L/a
	MinClosingTime      float64 `json:"min_closing_time"` // s
	MaxSurgePressurePa  float64 `json:"max_surge_pressure_pa"`
	MaxSurgePressureBar float64 `json:"max_surge_pressure_bar"`
	Recommendation      string  `json:"recommendation"`
}

// SafeClosingTime 计算临界关闭时间与伺服最小关闭时间
// lengthM 单位 m，diameterMM 与 thicknessMM 单位 mm
func (g *Guard) SafeClosingTime(lengthM, diameterMM, thicknessMM float64, material models.PipeMaterial) ClosingTimeResult {
	a := physics.WaveSpeed(diameterMM, thicknessMM, physics.MaterialModulus(material))
	if a.IsZero() {
		g.logger.Warn("Closing time skipped, wave speed is zero",
			zap.Float64("diameter_mm", diameterMM),
			zap.Float64("thickness_mm", thicknessMM),
		)
		return ClosingTimeResult{Recommendation: "insufficient data"}
	}

	aF := physics.Float(a)
	critical := physics.TransitTime(lengthM, aF)
	minimum := critical.Mul(physics.Dec(g.policy.SafetyMultiplier))
	surge := physics.SurgePressure(aF, g.policy.ReferenceVelocity)

	result := ClosingTimeResult{
		WaveSpeed:           aF,
		CriticalTime:        physics.Float(critical),
		MinClosingTime:      physics.Float(minimum),
		MaxSurgePressurePa:  physics.Float(surge),
		MaxSurgePressureBar: physics.Float(surge) / 1e5,
	}
	result.Recommendation = fmt.Sprintf("Servo closing time must not be shorter than %.1f s (critical %.2f s, surge up to %.1f bar)",
		result.MinClosingTime, result.CriticalTime, result.MaxSurgePressureBar)
	return result
}
