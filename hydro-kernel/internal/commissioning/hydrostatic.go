package commissioning

import (
	"context"
	"fmt"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 压降速率分级（bar/min）
const (
	MicrocrackDropRate = 0.5
	AirDropRate        = 0.2
)

// 压降速率与 R² 在比较前统一保留的小数位
const comparePlaces = 6

var (
	decOne       = decimal.NewFromInt(1)
	decPerMinute = decimal.NewFromInt(60)
)

// rSquared 压力对时间的最小二乘拟合决定系数，SS_tot 为 0 时为 1
func rSquared(readings []models.PressureReading) decimal.Decimal {
	n := decimal.NewFromInt(int64(len(readings)))
	sumT, sumP := decimal.Zero, decimal.Zero
	for _, r := range readings {
		sumT = sumT.Add(physics.Dec(r.Time))
		sumP = sumP.Add(physics.Dec(r.Pressure))
	}
	meanT := sumT.Div(n)
	meanP := sumP.Div(n)

	sxy, sxx := decimal.Zero, decimal.Zero
	for _, r := range readings {
		dt := physics.Dec(r.Time).Sub(meanT)
		sxy = sxy.Add(dt.Mul(physics.Dec(r.Pressure).Sub(meanP)))
		sxx = sxx.Add(dt.Mul(dt))
	}
	slope := decimal.Zero
	if sxx.Sign() > 0 {
		slope = sxy.Div(sxx)
	}
	intercept := meanP.Sub(slope.Mul(meanT))

	ssRes, ssTot := decimal.Zero, decimal.Zero
	for _, r := range readings {
		p := physics.Dec(r.Pressure)
		res := p.Sub(slope.Mul(physics.Dec(r.Time)).Add(intercept))
		dev := p.Sub(meanP)
		ssRes = ssRes.Add(res.Mul(res))
		ssTot = ssTot.Add(dev.Mul(dev))
	}
	if ssTot.IsZero() {
		return decOne
	}

	r2 := decOne.Sub(ssRes.Div(ssTot)).Round(comparePlaces)
	switch {
	case r2.Sign() < 0:
		return decimal.Zero
	case r2.GreaterThan(decOne):
		return decOne
	}
	return r2
}

// dropRate (首读数 - 末读数) × 60 / 时长，单位 bar/min
func dropRate(first, last models.PressureReading, duration float64) decimal.Decimal {
	drop := physics.Dec(first.Pressure).Sub(physics.Dec(last.Pressure))
	return drop.Mul(decPerMinute).Div(physics.Dec(duration)).Round(comparePlaces)
}

// diagnose 线性压降视为正常；非线性时按压降速率分类
func diagnose(r2, rate decimal.Decimal, threshold float64) (bool, *models.LeakIssue) {
	if r2.GreaterThan(physics.Dec(threshold)) {
		return true, nil
	}
	var issue models.LeakIssue
	switch {
	case rate.GreaterThan(physics.Dec(MicrocrackDropRate)):
		issue = models.IssueMicrocrack
	case rate.GreaterThan(physics.Dec(AirDropRate)):
		issue = models.IssueAirInSystem
	default:
		issue = models.IssueSealLeak
	}
	return false, &issue
}

// LogHydroStaticTest 记录水压试验并判断泄漏类型
func (a *Analyzer) LogHydroStaticTest(ctx context.Context, id string, readings []models.PressureReading, initialPressure float64) (*models.HydroStaticTestResult, error) {
	if len(readings) < 2 {
		return nil, fmt.Errorf("%w: need at least 2, got %d", ErrInsufficientReadings, len(readings))
	}
	first, last := readings[0], readings[len(readings)-1]
	duration := last.Time - first.Time
	if !(duration > 0) {
		return nil, fmt.Errorf("%w: non-positive duration %v s", ErrInsufficientReadings, duration)
	}

	rate := dropRate(first, last, duration)
	r2Dec := rSquared(readings)
	isLinear, issue := diagnose(r2Dec, rate, a.opts.linearityThreshold)
	drop, r2 := physics.Float(rate), physics.Float(r2Dec)

	result := &models.HydroStaticTestResult{
		RecordedAt:       a.opts.clock(),
		TestDuration:     duration,
		InitialPressure:  initialPressure,
		PressureReadings: append([]models.PressureReading(nil), readings...),
		PressureDropRate: drop,
		RSquared:         r2,
		IsLinear:         isLinear,
		SuspectedIssue:   issue,
	}

	_, err := a.mutate(ctx, id, func(s *models.CommissioningSession) error {
		s.HydroStaticTest = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("session_id", id),
		zap.Float64("duration_s", duration),
		zap.Float64("drop_rate_bar_per_min", drop),
		zap.Float64("r_squared", r2),
		zap.Bool("linear", isLinear),
	}
	if issue != nil {
		a.logger.Warn("Hydrostatic test suspects leak", append(fields, zap.String("issue", string(*issue)))...)
	} else {
		a.logger.Info("Hydrostatic test passed", fields...)
	}
	return result, nil
}
