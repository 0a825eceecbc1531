package commissioning

import (
	"context"
	"fmt"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/spectrum"

	"go.uber.org/zap"
)

const (
	dominantPeakCount    = 5
	cavitationBandStart  = 0.7
	cavitationIndexScale = 10
)

// 转速 1x/2x/3x 谐波（1000 rpm）
var runningSpeedHarmonics = []float64{16.67, 33.33, 50}

// VibrationReading 三向振动（mm/s）
type VibrationReading struct {
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
	Axial      float64 `json:"axial"`
}

// SensorSnapshot 某一负荷等级下的传感器快照
// AcousticSpectrum 为空时用 AcousticSamples 现算频谱
type SensorSnapshot struct {
	AcousticSpectrum []float64          `json:"acoustic_spectrum,omitempty"`
	AcousticSamples  []float64          `json:"acoustic_samples,omitempty"`
	Vibration        VibrationReading   `json:"vibration"`
	Temperatures     map[string]float64 `json:"temperatures,omitempty"`
	Pressures        map[string]float64 `json:"pressures,omitempty"`
	PowerOutput      float64            `json:"power_output"`
	Efficiency       float64            `json:"efficiency"`
	WaterFlow        float64            `json:"water_flow"`
}

func validLoadLevel(load int) bool {
	for _, l := range LoadLevels {
		if l == load {
			return true
		}
	}
	return false
}

// RecordBaseline 记录负荷等级的健康基线，每个等级只能记录一次
func (a *Analyzer) RecordBaseline(ctx context.Context, id string, loadLevel int, snap SensorSnapshot) (*models.BaselineFingerprint, error) {
	if !validLoadLevel(loadLevel) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLoadLevel, loadLevel)
	}

	var baseline models.BaselineFingerprint
	s, err := a.mutate(ctx, id, func(s *models.CommissioningSession) error {
		if s.HasBaseline(loadLevel) {
			return fmt.Errorf("%w: %d%%", ErrDuplicateBaseline, loadLevel)
		}
		baseline = a.fingerprint(id, loadLevel, snap)
		s.Baselines = append(s.Baselines, baseline)
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("session_id", id),
		zap.Int("load_level", loadLevel),
		zap.Float64("acoustic_rms", baseline.Acoustic.RMSLevel),
		zap.Float64("cavitation_index", baseline.Acoustic.CavitationIndex),
		zap.Float64("vibration_h", baseline.Vibration.Horizontal),
		zap.Float64("efficiency", baseline.Efficiency),
	}
	if remaining := remainingLoadLevels(s); len(remaining) > 0 {
		fields = append(fields, zap.Ints("remaining", remaining))
		a.logger.Info("Baseline recorded", fields...)
	} else {
		a.logger.Info("All baselines recorded", fields...)
	}
	return &baseline, nil
}

func (a *Analyzer) fingerprint(id string, loadLevel int, snap SensorSnapshot) models.BaselineFingerprint {
	bins := append([]float64(nil), snap.AcousticSpectrum...)
	if len(bins) == 0 && len(snap.AcousticSamples) > 0 {
		if limit, ok := spectrum.DecimationLimit(a.spectrum, len(snap.AcousticSamples)); ok {
			a.logger.Warn("Acoustic samples decimated",
				zap.String("session_id", id),
				zap.Int("samples", len(snap.AcousticSamples)),
				zap.Int("max_samples", limit),
			)
		}
		bins = a.spectrum.Spectrum(snap.AcousticSamples)
	}

	return models.BaselineFingerprint{
		LoadLevel:  loadLevel,
		RecordedAt: a.opts.clock(),
		Acoustic: models.AcousticSignature{
			Spectrum:            bins,
			DominantFrequencies: spectrum.DominantFrequencies(bins, a.opts.binWidth, dominantPeakCount),
			RMSLevel:            physics.SafeFloat(spectrum.RMS(bins)),
			CavitationIndex:     physics.SafeFloat(spectrum.BandEnergyRatio(bins, cavitationBandStart) * cavitationIndexScale),
		},
		Vibration: models.VibrationSignature{
			Horizontal:          snap.Vibration.Horizontal,
			Vertical:            snap.Vibration.Vertical,
			Axial:               snap.Vibration.Axial,
			DominantFrequencies: append([]float64(nil), runningSpeedHarmonics...),
		},
		TemperatureBaseline: snap.Temperatures,
		PressureBaseline:    snap.Pressures,
		PowerOutput:         snap.PowerOutput,
		Efficiency:          snap.Efficiency,
		WaterFlow:           snap.WaterFlow,
	}
}

func remainingLoadLevels(s *models.CommissioningSession) []int {
	var remaining []int
	for _, l := range LoadLevels {
		if !s.HasBaseline(l) {
			remaining = append(remaining, l)
		}
	}
	return remaining
}
