// Package spectrum 频谱分析的占位实现
//
// 诊断分类逻辑只依赖 Analyzer 接口；当前的朴素 DFT 与邻点比较峰值
// 只是占位，数值输出不具规范意义，真实 FFT 可直接替换实现。
package spectrum

import (
	"math"
	"sort"
)

// Analyzer 将时域采样转为幅度谱
type Analyzer interface {
	// Spectrum 返回 N/2 个频点的幅度
	Spectrum(samples []float64) []float64
}

// DFT 朴素离散傅里叶变换，O(n²)
// MaxSamples > 0 时对超长输入按步长抽取，避免音频采样率数据的二次方开销
type DFT struct {
	MaxSamples int
}

// DefaultMaxSamples 默认最大采样点数
const DefaultMaxSamples = 4096

// NewDFT 创建占位 DFT 分析器
func NewDFT() *DFT {
	return &DFT{MaxSamples: DefaultMaxSamples}
}

// Decimate 按步长抽取，使长度不超过 max
func Decimate(samples []float64, max int) []float64 {
	if max <= 0 || len(samples) <= max {
		return samples
	}
	stride := int(math.Ceil(float64(len(samples)) / float64(max)))
	out := make([]float64, 0, len(samples)/stride+1)
	for i := 0; i < len(samples); i += stride {
		out = append(out, samples[i])
	}
	return out
}

// DecimationLimit a 为 DFT 且 n 超过其 MaxSamples 时返回该上限和 true
func DecimationLimit(a Analyzer, n int) (int, bool) {
	d, ok := a.(*DFT)
	if !ok || d.MaxSamples <= 0 || n <= d.MaxSamples {
		return 0, false
	}
	return d.MaxSamples, true
}

// Spectrum 计算幅度谱
func (d *DFT) Spectrum(samples []float64) []float64 {
	samples = Decimate(samples, d.MaxSamples)
	n := len(samples)
	half := n / 2
	out := make([]float64, half)

	for k := 0; k < half; k++ {
		var re, im float64
		for t := 0; t < n; t++ {
			angle := 2 * math.Pi * float64(k) * float64(t) / float64(n)
			re += samples[t] * math.Cos(angle)
			im -= samples[t] * math.Sin(angle)
		}
		out[k] = math.Sqrt(re*re + im*im)
	}
	return out
}

// Peak 频谱峰值
type Peak struct {
	Bin       int
	Frequency float64 // Hz
	Amplitude float64
}

// FindPeaks 邻点比较法找局部极大值，按幅度降序
// binWidth 为每个频点对应的 Hz
func FindPeaks(bins []float64, binWidth float64) []Peak {
	var peaks []Peak
	for i := 1; i < len(bins)-1; i++ {
		if bins[i] > bins[i-1] && bins[i] > bins[i+1] {
			peaks = append(peaks, Peak{
				Bin:       i,
				Frequency: float64(i) * binWidth,
				Amplitude: bins[i],
			})
		}
	}
	sort.SliceStable(peaks, func(a, b int) bool {
		return peaks[a].Amplitude > peaks[b].Amplitude
	})
	return peaks
}

// DominantFrequencies 前 n 个峰值频率
func DominantFrequencies(bins []float64, binWidth float64, n int) []float64 {
	peaks := FindPeaks(bins, binWidth)
	if len(peaks) > n {
		peaks = peaks[:n]
	}
	freqs := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		freqs = append(freqs, p.Frequency)
	}
	return freqs
}

// BandEnergyRatio 高频段能量占比
// 从 floor(len·fromFraction) 开始累加到末尾，总能量为 0 时返回 0
func BandEnergyRatio(bins []float64, fromFraction float64) float64 {
	start := int(math.Floor(float64(len(bins)) * fromFraction))
	var high, total float64
	for i, v := range bins {
		total += v
		if i >= start {
			high += v
		}
	}
	if total == 0 {
		return 0
	}
	return high / total
}

// RMS 均方根，空输入返回 0
func RMS(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(values)))
}
