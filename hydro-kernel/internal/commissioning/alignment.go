package commissioning

import (
	"context"
	"fmt"
	"math"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	sagMinPoints      = 5
	sagTopAngle       = 90.0
	sagBottomAngle    = 270.0
	sagAngleTolerance = 10.0
)

var decThousand = decimal.NewFromInt(1000)

// normalizeAngle 归一到 [0, 360)
func normalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// angularDistance 两角度间的最小夹角
func angularDistance(a, b float64) float64 {
	d := math.Abs(normalizeAngle(a) - normalizeAngle(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// nearestReading 距 target 最近且在容差内的读数
func nearestReading(positions []models.RotorPosition, target float64) (models.RotorPosition, bool) {
	var best models.RotorPosition
	bestDist := math.Inf(1)
	for _, p := range positions {
		if d := angularDistance(p.Angle, target); d <= sagAngleTolerance && d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// shaftSag 上下读数差的一半，任一缺失返回 0
func shaftSag(positions []models.RotorPosition) float64 {
	top, okTop := nearestReading(positions, sagTopAngle)
	bottom, okBottom := nearestReading(positions, sagBottomAngle)
	if !okTop || !okBottom {
		return 0
	}
	return math.Abs(bottom.Runout-top.Runout) / 2
}

// RecordAlignmentPoint 记录转子某一角度的跳动读数
// 卧式机组在读数 >= 5 个后重新计算轴挠度
func (a *Analyzer) RecordAlignmentPoint(ctx context.Context, id string, angle, runout float64, horizontal bool) (*models.AlignmentMeasurement, error) {
	s, err := a.mutate(ctx, id, func(s *models.CommissioningSession) error {
		if s.Alignment == nil {
			s.Alignment = &models.AlignmentMeasurement{
				StartedAt:      a.opts.clock(),
				RotorPositions: []models.RotorPosition{},
			}
		}
		if s.Alignment.Finalized {
			return ErrAlignmentFinalized
		}

		s.Alignment.RotorPositions = append(s.Alignment.RotorPositions, models.RotorPosition{
			Angle:  normalizeAngle(physics.SafeFloat(angle)),
			Runout: physics.SafeFloat(runout),
		})
		if horizontal && len(s.Alignment.RotorPositions) >= sagMinPoints {
			s.Alignment.ShaftSag = shaftSag(s.Alignment.RotorPositions)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Alignment point recorded",
		zap.String("session_id", id),
		zap.Float64("angle", angle),
		zap.Float64("runout_mm", runout),
		zap.Float64("shaft_sag_mm", s.Alignment.ShaftSag),
	)
	return s.Alignment, nil
}

// FinalizeAlignment 计算最终对中 (max-min-sag)/span×1000 (mm/m)
// bearingSpanMM 单位为 mm
func (a *Analyzer) FinalizeAlignment(ctx context.Context, id string, bearingSpanMM float64) (*models.AlignmentMeasurement, error) {
	if !(bearingSpanMM > 0) || math.IsInf(bearingSpanMM, 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBearingSpan, bearingSpanMM)
	}

	s, err := a.mutate(ctx, id, func(s *models.CommissioningSession) error {
		m := s.Alignment
		if m == nil || len(m.RotorPositions) == 0 {
			return ErrNoAlignmentData
		}
		if m.Finalized {
			return ErrAlignmentFinalized
		}

		maxR, minR := physics.Dec(m.RotorPositions[0].Runout), physics.Dec(m.RotorPositions[0].Runout)
		for _, p := range m.RotorPositions[1:] {
			r := physics.Dec(p.Runout)
			maxR = decimal.Max(maxR, r)
			minR = decimal.Min(minR, r)
		}
		total := maxR.Sub(minR)
		compensated := total.Sub(physics.Dec(m.ShaftSag))
		if compensated.IsNegative() {
			a.logger.Warn("Shaft sag exceeds total runout",
				zap.String("session_id", id),
				zap.Float64("total_runout_mm", physics.Float(total)),
				zap.Float64("shaft_sag_mm", m.ShaftSag),
			)
			compensated = decimal.Zero
		}
		final := compensated.Div(physics.Dec(bearingSpanMM)).Mul(decThousand)

		now := a.opts.clock()
		m.TotalRunout = physics.Float(total)
		m.FinalAlignment = physics.Float(final)
		m.MeetsStandard = final.LessThanOrEqual(physics.Dec(a.opts.alignmentStandard))
		m.Finalized = true
		m.FinalizedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	verdict := "PASS"
	if !s.Alignment.MeetsStandard {
		verdict = "FAIL"
	}
	a.logger.Info("Alignment finalized",
		zap.String("session_id", id),
		zap.Float64("total_runout_mm", s.Alignment.TotalRunout),
		zap.Float64("shaft_sag_mm", s.Alignment.ShaftSag),
		zap.Float64("final_alignment_mm_per_m", s.Alignment.FinalAlignment),
		zap.String("verdict", verdict),
	)
	return s.Alignment, nil
}
