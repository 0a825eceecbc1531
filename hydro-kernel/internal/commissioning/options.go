package commissioning

import "time"

// 默认标定值
const (
	DefaultAlignmentStandard  = 0.05 // mm/m
	DefaultLinearityThreshold = 0.95 // R²
	DefaultBinWidth           = 10.0 // Hz
)

// LoadLevels 基线必须覆盖的负荷等级（%）
var LoadLevels = []int{0, 25, 50, 75, 100}

type options struct {
	alignmentStandard  float64
	linearityThreshold float64
	binWidth           float64
	clock              func() time.Time
}

func defaultOptions() options {
	return options{
		alignmentStandard:  DefaultAlignmentStandard,
		linearityThreshold: DefaultLinearityThreshold,
		binWidth:           DefaultBinWidth,
		clock:              time.Now,
	}
}

// Option 分析器配置项
type Option func(*options)

// WithAlignmentStandard 对中合格标准（mm/m）
func WithAlignmentStandard(mmPerM float64) Option {
	return func(o *options) {
		if mmPerM > 0 {
			o.alignmentStandard = mmPerM
		}
	}
}

// WithLinearityThreshold 水压试验线性判定的 R² 阈值
func WithLinearityThreshold(r2 float64) Option {
	return func(o *options) {
		if r2 > 0 && r2 <= 1 {
			o.linearityThreshold = r2
		}
	}
}

// WithBinWidth 声学频谱每个频点的宽度（Hz）
func WithBinWidth(hz float64) Option {
	return func(o *options) {
		if hz > 0 {
			o.binWidth = hz
		}
	}
}

// WithClock 替换时钟（测试用）
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}
