package commissioning

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/geometry"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/spectrum"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type fakeSpectrum struct {
	out   []float64
	calls int
}

func (f *fakeSpectrum) Spectrum(samples []float64) []float64 {
	f.calls++
	return f.out
}

func newTestAnalyzer(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewAnalyzer(NewMemoryRepository(), nil, zap.NewNop(), opts...)
}

func startSession(t *testing.T, a *Analyzer) string {
	t.Helper()
	s, err := a.StartCommissioning(context.Background(), "unit-1", "Unit 1", models.TurbineFrancis)
	require.NoError(t, err)
	return s.SessionID
}

func recordAllBaselines(t *testing.T, a *Analyzer, id string, levels ...int) {
	t.Helper()
	for _, l := range levels {
		_, err := a.RecordBaseline(context.Background(), id, l, SensorSnapshot{
			AcousticSpectrum: []float64{1, 3, 1},
			PowerOutput:      float64(l) / 10,
		})
		require.NoError(t, err)
	}
}

func TestStartCommissioning(t *testing.T) {
	a := newTestAnalyzer(t)
	s, err := a.StartCommissioning(context.Background(), "unit-1", "Unit 1", "kaplan")
	require.NoError(t, err)

	pattern := `^COMMISSION-` + strconv.FormatInt(fixedNow.UnixMilli(), 10) + `-[0-9a-f]{8}$`
	assert.Regexp(t, regexp.MustCompile(pattern), s.SessionID)
	assert.Equal(t, models.SessionInProgress, s.Status)
	assert.Equal(t, models.TurbineKaplan, s.TurbineFamily)
	assert.Equal(t, fixedNow, s.StartedAt)

	loaded, err := a.GetSession(context.Background(), s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, s.SessionID, loaded.SessionID)

	other, err := a.StartCommissioning(context.Background(), "unit-1", "Unit 1", models.TurbineFrancis)
	require.NoError(t, err)
	assert.NotEqual(t, s.SessionID, other.SessionID)
}

func TestGetSession_NotFound(t *testing.T) {
	a := newTestAnalyzer(t)

	_, err := a.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = a.RecordBaseline(context.Background(), "missing", 0, SensorSnapshot{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRecordBaseline(t *testing.T) {
	a := newTestAnalyzer(t)
	id := startSession(t, a)

	snap := SensorSnapshot{
		AcousticSpectrum: []float64{0, 1, 5, 1, 0, 2, 8, 2, 0, 1},
		Vibration:        VibrationReading{Horizontal: 1.2, Vertical: 0.8, Axial: 0.3},
		Temperatures:     map[string]float64{"bearing": 45},
		PowerOutput:      12.5,
		Efficiency:       92.1,
		WaterFlow:        14,
	}
	b, err := a.RecordBaseline(context.Background(), id, 50, snap)
	require.NoError(t, err)

	assert.Equal(t, 50, b.LoadLevel)
	assert.Equal(t, fixedNow, b.RecordedAt)
	assert.Equal(t, []float64{60, 20}, b.Acoustic.DominantFrequencies)
	assert.InDelta(t, math.Sqrt(10), b.Acoustic.RMSLevel, 1e-9)
	// 高频段 (2+0+1)/20
	assert.InDelta(t, 1.5, b.Acoustic.CavitationIndex, 1e-9)
	assert.Equal(t, []float64{16.67, 33.33, 50}, b.Vibration.DominantFrequencies)
	assert.Equal(t, 1.2, b.Vibration.Horizontal)
	assert.Equal(t, 45.0, b.TemperatureBaseline["bearing"])

	s, err := a.GetSession(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, s.Baselines, 1)
	assert.True(t, s.HasBaseline(50))

	t.Run("duplicate load level", func(t *testing.T) {
		_, err := a.RecordBaseline(context.Background(), id, 50, snap)
		assert.ErrorIs(t, err, ErrDuplicateBaseline)

		s, err := a.GetSession(context.Background(), id)
		require.NoError(t, err)
		assert.Len(t, s.Baselines, 1)
	})

	t.Run("invalid load level", func(t *testing.T) {
		for _, l := range []int{-25, 30, 110} {
			_, err := a.RecordBaseline(context.Background(), id, l, snap)
			assert.ErrorIs(t, err, ErrInvalidLoadLevel, "load=%d", l)
		}
	})

	t.Run("empty spectrum", func(t *testing.T) {
		b, err := a.RecordBaseline(context.Background(), id, 0, SensorSnapshot{})
		require.NoError(t, err)
		assert.Zero(t, b.Acoustic.RMSLevel)
		assert.Zero(t, b.Acoustic.CavitationIndex)
		assert.Empty(t, b.Acoustic.DominantFrequencies)
	})
}

func TestRecordBaseline_FromSamples(t *testing.T) {
	fake := &fakeSpectrum{out: []float64{0, 4, 0, 0}}
	a := NewAnalyzer(NewMemoryRepository(), fake, zap.NewNop(), WithClock(func() time.Time { return fixedNow }), WithBinWidth(25))
	id := startSession(t, a)

	b, err := a.RecordBaseline(context.Background(), id, 25, SensorSnapshot{AcousticSamples: []float64{1, -1, 1, -1}})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, []float64{25}, b.Acoustic.DominantFrequencies)

	// 已提供频谱时不再计算
	_, err = a.RecordBaseline(context.Background(), id, 75, SensorSnapshot{
		AcousticSpectrum: []float64{1},
		AcousticSamples:  []float64{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestRecordBaseline_ConcurrentWriters(t *testing.T) {
	a := newTestAnalyzer(t)
	id := startSession(t, a)

	var wg sync.WaitGroup
	for _, l := range LoadLevels {
		wg.Add(1)
		go func(level int) {
			defer wg.Done()
			_, err := a.RecordBaseline(context.Background(), id, level, SensorSnapshot{})
			assert.NoError(t, err)
		}(l)
	}
	wg.Wait()

	s, err := a.GetSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 5, s.DistinctLoadLevels())
}

func TestSessionLocks_ReleasedAfterUse(t *testing.T) {
	a := newTestAnalyzer(t)
	id := startSession(t, a)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = a.RecordAlignmentPoint(ctx, id, float64(i*18), 0.01, false)
			_, _ = a.RecordAlignmentPoint(ctx, "missing-"+strconv.Itoa(i), 0, 0.01, false)
		}(i)
	}
	wg.Wait()

	_, err := a.FailCommissioning(ctx, id, "aborted")
	require.NoError(t, err)
	_, err = a.RecordAlignmentPoint(ctx, id, 0, 0.01, false)
	assert.ErrorIs(t, err, ErrSessionClosed)

	a.mu.Lock()
	defer a.mu.Unlock()
	assert.Empty(t, a.locks)
}

func TestRecordAlignmentPoint_ShaftSag(t *testing.T) {
	a := newTestAnalyzer(t)
	id := startSession(t, a)
	ctx := context.Background()

	points := []struct{ angle, runout float64 }{
		{0, 0.10},
		{90, 0.20},
		{180, 0.12},
		{270, 0.30},
	}
	for _, p := range points {
		m, err := a.RecordAlignmentPoint(ctx, id, p.angle, p.runout, true)
		require.NoError(t, err)
		assert.Zero(t, m.ShaftSag)
	}

	m, err := a.RecordAlignmentPoint(ctx, id, 355, 0.11, true)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, m.ShaftSag, 1e-9)

	// 最近读数优先
	m, err = a.RecordAlignmentPoint(ctx, id, 98, 0.40, true)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, m.ShaftSag, 1e-9)
	assert.Len(t, m.RotorPositions, 6)

	final, err := a.FinalizeAlignment(ctx, id, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 0.30, final.TotalRunout, 1e-9)
	assert.InDelta(t, 0.25, final.FinalAlignment, 1e-9)
	assert.False(t, final.MeetsStandard)
	assert.True(t, final.Finalized)
	require.NotNil(t, final.FinalizedAt)
}

func TestRecordAlignmentPoint_VerticalKeepsZeroSag(t *testing.T) {
	a := newTestAnalyzer(t)
	id := startSession(t, a)

	var m *models.AlignmentMeasurement
	var err error
	for _, angle := range []float64{0, 90, 180, 270, 360, -90} {
		m, err = a.RecordAlignmentPoint(context.Background(), id, angle, angle/1000, false)
		require.NoError(t, err)
	}
	assert.Zero(t, m.ShaftSag)
	assert.Equal(t, 0.0, m.RotorPositions[4].Angle)
	assert.Equal(t, 270.0, m.RotorPositions[5].Angle)
}

func TestShaftSag_MissingAngle(t *testing.T) {
	positions := []models.RotorPosition{
		{Angle: 0, Runout: 0.1},
		{Angle: 85, Runout: 0.2},
		{Angle: 180, Runout: 0.3},
		{Angle: 250, Runout: 0.4},
		{Angle: 300, Runout: 0.5},
	}
	assert.Zero(t, shaftSag(positions))

	positions = append(positions, models.RotorPosition{Angle: 262, Runout: 0.6})
	assert.InDelta(t, 0.2, shaftSag(positions), 1e-9)
}

func TestFinalizeAlignment_Boundary(t *testing.T) {
	ctx := context.Background()

	finalize := func(t *testing.T, runout float64) *models.AlignmentMeasurement {
		a := newTestAnalyzer(t)
		id := startSession(t, a)
		_, err := a.RecordAlignmentPoint(ctx, id, 0, 0, false)
		require.NoError(t, err)
		_, err = a.RecordAlignmentPoint(ctx, id, 180, runout, false)
		require.NoError(t, err)
		m, err := a.FinalizeAlignment(ctx, id, 1000)
		require.NoError(t, err)
		return m
	}

	pass := finalize(t, 0.05)
	assert.Equal(t, 0.05, pass.FinalAlignment)
	assert.True(t, pass.MeetsStandard)

	fail := finalize(t, 0.0501)
	assert.InDelta(t, 0.0501, fail.FinalAlignment, 1e-12)
	assert.False(t, fail.MeetsStandard)
}

func TestFinalizeAlignment_Errors(t *testing.T) {
	a := newTestAnalyzer(t)
	id := startSession(t, a)
	ctx := context.Background()

	_, err := a.FinalizeAlignment(ctx, id, 1000)
	assert.ErrorIs(t, err, ErrNoAlignmentData)

	_, err = a.RecordAlignmentPoint(ctx, id, 0, 0.02, false)
	require.NoError(t, err)

	for _, span := range []float64{0, -10, math.NaN()} {
		_, err = a.FinalizeAlignment(ctx, id, span)
		assert.ErrorIs(t, err, ErrInvalidBearingSpan)
	}

	_, err = a.FinalizeAlignment(ctx, id, 1000)
	require.NoError(t, err)

	_, err = a.FinalizeAlignment(ctx, id, 1000)
	assert.ErrorIs(t, err, ErrAlignmentFinalized)

	_, err = a.RecordAlignmentPoint(ctx, id, 90, 0.03, false)
	assert.ErrorIs(t, err, ErrAlignmentFinalized)
}

func TestFinalizeAlignment_CustomStandard(t *testing.T) {
	a := newTestAnalyzer(t, WithAlignmentStandard(0.1))
	id := startSession(t, a)
	ctx := context.Background()

	_, err := a.RecordAlignmentPoint(ctx, id, 0, 0, false)
	require.NoError(t, err)
	_, err = a.RecordAlignmentPoint(ctx, id, 180, 0.08, false)
	require.NoError(t, err)

	m, err := a.FinalizeAlignment(ctx, id, 1000)
	require.NoError(t, err)
	assert.True(t, m.MeetsStandard)
}

func pressureSeries(values ...float64) []models.PressureReading {
	out := make([]models.PressureReading, len(values))
	for i, v := range values {
		out[i] = models.PressureReading{Time: float64(i * 60), Pressure: v}
	}
	return out
}

func TestLogHydroStaticTest(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		readings  []models.PressureReading
		dropRate  float64
		wantIssue models.LeakIssue
	}{
		{"seal leak", pressureSeries(10, 10, 10, 10, 10, 9.5), 0.1, models.IssueSealLeak},
		{"air in system", pressureSeries(10, 10, 10, 10, 10, 8.5), 0.3, models.IssueAirInSystem},
		{"microcrack", pressureSeries(10, 10, 10, 10, 10, 7), 0.6, models.IssueMicrocrack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(t)
			id := startSession(t, a)

			r, err := a.LogHydroStaticTest(ctx, id, tt.readings, 10)
			require.NoError(t, err)
			assert.InDelta(t, tt.dropRate, r.PressureDropRate, 1e-9)
			assert.InDelta(t, 3.0/7.0, r.RSquared, 1e-4)
			assert.False(t, r.IsLinear)
			require.NotNil(t, r.SuspectedIssue)
			assert.Equal(t, tt.wantIssue, *r.SuspectedIssue)
			assert.Equal(t, 300.0, r.TestDuration)

			s, err := a.GetSession(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, s.HydroStaticTest)
			assert.Equal(t, tt.wantIssue, *s.HydroStaticTest.SuspectedIssue)
		})
	}

	t.Run("linear drop is normal", func(t *testing.T) {
		a := newTestAnalyzer(t)
		id := startSession(t, a)

		values := make([]float64, 10)
		for i := range values {
			values[i] = 10 - 0.1*float64(i)
		}
		r, err := a.LogHydroStaticTest(ctx, id, pressureSeries(values...), 10)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, r.RSquared, 1e-9)
		assert.True(t, r.IsLinear)
		assert.Nil(t, r.SuspectedIssue)
		assert.InDelta(t, 0.1, r.PressureDropRate, 1e-9)
	})

	t.Run("constant pressure", func(t *testing.T) {
		a := newTestAnalyzer(t)
		id := startSession(t, a)

		r, err := a.LogHydroStaticTest(ctx, id, pressureSeries(10, 10, 10), 10)
		require.NoError(t, err)
		assert.Equal(t, 1.0, r.RSquared)
		assert.True(t, r.IsLinear)
		assert.Zero(t, r.PressureDropRate)
	})

	t.Run("insufficient readings", func(t *testing.T) {
		a := newTestAnalyzer(t)
		id := startSession(t, a)

		_, err := a.LogHydroStaticTest(ctx, id, pressureSeries(10), 10)
		assert.ErrorIs(t, err, ErrInsufficientReadings)

		same := []models.PressureReading{{Time: 5, Pressure: 10}, {Time: 5, Pressure: 9}}
		_, err = a.LogHydroStaticTest(ctx, id, same, 10)
		assert.ErrorIs(t, err, ErrInsufficientReadings)
	})
}

func TestDiagnose_LinearityThreshold(t *testing.T) {
	d := decimal.NewFromFloat

	linear, issue := diagnose(d(0.95), d(0.6), DefaultLinearityThreshold)
	assert.False(t, linear)
	require.NotNil(t, issue)
	assert.Equal(t, models.IssueMicrocrack, *issue)

	linear, issue = diagnose(d(0.9501), d(0.6), DefaultLinearityThreshold)
	assert.True(t, linear)
	assert.Nil(t, issue)

	// 速率阈值本身不进入更高一级
	_, issue = diagnose(d(0.5), d(0.5), DefaultLinearityThreshold)
	assert.Equal(t, models.IssueAirInSystem, *issue)
	_, issue = diagnose(d(0.5), d(0.2), DefaultLinearityThreshold)
	assert.Equal(t, models.IssueSealLeak, *issue)
}

// 名义速率恰好落在阈值上的压降，不同时长与压力组合结论一致
func TestLogHydroStaticTest_NominalRateBoundaries(t *testing.T) {
	ctx := context.Background()

	// 前三个读数保持起始压力，末读数骤降
	series := func(start, end, step float64) []models.PressureReading {
		return []models.PressureReading{
			{Time: 0, Pressure: start},
			{Time: step, Pressure: start},
			{Time: 2 * step, Pressure: start},
			{Time: 3 * step, Pressure: end},
		}
	}

	tests := []struct {
		name      string
		readings  []models.PressureReading
		wantIssue models.LeakIssue
	}{
		{"0.2 bar/min over 90 s", series(10, 9.7, 30), models.IssueSealLeak},
		{"0.2 bar/min over 180 s", series(10, 9.4, 60), models.IssueSealLeak},
		{"0.5 bar/min over 36 s", series(3.3, 3.0, 12), models.IssueAirInSystem},
		{"0.5 bar/min over 120 s", series(10, 9, 40), models.IssueAirInSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(t)
			id := startSession(t, a)

			r, err := a.LogHydroStaticTest(ctx, id, tt.readings, 10)
			require.NoError(t, err)
			assert.InDelta(t, 0.6, r.RSquared, 1e-9)
			assert.False(t, r.IsLinear)
			require.NotNil(t, r.SuspectedIssue)
			assert.Equal(t, tt.wantIssue, *r.SuspectedIssue)
		})
	}

	assert.True(t, dropRate(
		models.PressureReading{Time: 0, Pressure: 10},
		models.PressureReading{Time: 90, Pressure: 9.7}, 90,
	).Equal(decimal.RequireFromString("0.2")))
	assert.True(t, dropRate(
		models.PressureReading{Time: 0, Pressure: 3.3},
		models.PressureReading{Time: 36, Pressure: 3.0}, 36,
	).Equal(decimal.RequireFromString("0.5")))
}

func TestCompleteCommissioning(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t)
	id := startSession(t, a)

	recordAllBaselines(t, a, id, 0, 25, 50, 75)
	_, err := a.CompleteCommissioning(ctx, id)
	assert.ErrorIs(t, err, ErrBaselinesIncomplete)

	recordAllBaselines(t, a, id, 100)
	_, err = a.CompleteCommissioning(ctx, id)
	assert.ErrorIs(t, err, ErrAlignmentRequired)

	_, err = a.RecordAlignmentPoint(ctx, id, 0, 0.01, false)
	require.NoError(t, err)
	_, err = a.CompleteCommissioning(ctx, id)
	assert.ErrorIs(t, err, ErrAlignmentRequired)

	_, err = a.FinalizeAlignment(ctx, id, 1500)
	require.NoError(t, err)

	s, err := a.CompleteCommissioning(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, s.Status)
	require.NotNil(t, s.CompletedAt)
	assert.Equal(t, fixedNow, *s.CompletedAt)

	t.Run("terminal session rejects mutations", func(t *testing.T) {
		_, err := a.RecordBaseline(ctx, id, 0, SensorSnapshot{})
		assert.ErrorIs(t, err, ErrSessionClosed)

		_, err = a.RecordAlignmentPoint(ctx, id, 0, 0.01, false)
		assert.ErrorIs(t, err, ErrSessionClosed)

		_, err = a.LogHydroStaticTest(ctx, id, pressureSeries(10, 9), 10)
		assert.ErrorIs(t, err, ErrSessionClosed)

		_, err = a.ValidateAIDiagnosis(ctx, id, models.AIValidationOverride{Severity: models.SeverityMinor})
		assert.ErrorIs(t, err, ErrSessionClosed)

		_, err = a.CompleteCommissioning(ctx, id)
		assert.ErrorIs(t, err, ErrSessionClosed)

		_, err = a.FailCommissioning(ctx, id, "late")
		assert.ErrorIs(t, err, ErrSessionClosed)

		s, err := a.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.SessionCompleted, s.Status)
	})
}

func TestFailCommissioning(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t)
	id := startSession(t, a)

	s, err := a.FailCommissioning(ctx, id, "stay ring crack")
	require.NoError(t, err)
	assert.Equal(t, models.SessionFailed, s.Status)
	assert.Equal(t, "stay ring crack", s.FailureReason)

	_, err = a.RecordBaseline(ctx, id, 0, SensorSnapshot{})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestValidateAIDiagnosis(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t)
	id := startSession(t, a)

	_, err := a.ValidateAIDiagnosis(ctx, id, models.AIValidationOverride{Severity: "URGENT"})
	assert.ErrorIs(t, err, ErrInvalidSeverity)

	override := models.AIValidationOverride{
		EngineerID:      "eng-7",
		EngineerName:    "Field Engineer",
		AIDiagnosis:     "CAVITATION",
		ActualDiagnosis: "BEARING_WEAR",
		Reason:          "oil sample shows babbitt",
		Severity:        models.SeveritySignificant,
	}
	first, err := a.ValidateAIDiagnosis(ctx, id, override)
	require.NoError(t, err)
	assert.NotEmpty(t, first.OverrideID)
	assert.Equal(t, fixedNow, first.RecordedAt)

	second, err := a.ValidateAIDiagnosis(ctx, id, override)
	require.NoError(t, err)
	assert.NotEqual(t, first.OverrideID, second.OverrideID)

	s, err := a.GetSession(ctx, id)
	require.NoError(t, err)
	require.Len(t, s.Overrides, 2)
	assert.Equal(t, first.OverrideID, s.Overrides[0].OverrideID)
	assert.Equal(t, models.SessionInProgress, s.Status)
}

func TestAttachSpecialMeasurement(t *testing.T) {
	ctx := context.Background()
	a := newTestAnalyzer(t)
	id := startSession(t, a)

	_, err := a.AttachSpecialMeasurement(ctx, id, nil, geometry.EfficiencyGapAnalysis{}, models.SourceManual)
	assert.ErrorIs(t, err, ErrNoGeometryData)

	g := geometry.NewAnalyzer(zap.NewNop())
	cmp := g.Compare([]geometry.MeasuredPoint{
		{Name: "Spiral Case Inlet", Coord: geometry.Coord{X: 1500, Y: 2000, Z: 503}},
	}, geometry.FrancisBlueprint())
	gap := g.EfficiencyGap(cmp, models.TurbineFrancis, 20, 80)

	data, err := a.AttachSpecialMeasurement(ctx, id, cmp, gap, models.SourceLaserTracker)
	require.NoError(t, err)
	assert.Equal(t, models.SourceLaserTracker, data.Source)
	assert.InDelta(t, 3.0, data.AverageDeviation, 1e-9)
	assert.Equal(t, gap.PredictedEfficiencyLoss, data.EfficiencyGap)
	require.Len(t, data.GeometryPoints, 1)
	assert.Equal(t, 503.0, data.GeometryPoints[0].Z)

	s, err := a.GetSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, s.SpecialMeasurements)
	assert.Equal(t, "Spiral Case Inlet", s.SpecialMeasurements.GeometryPoints[0].Name)
}

func TestMemoryRepository_Isolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	s := &models.CommissioningSession{SessionID: "s-1", Status: models.SessionInProgress}
	require.NoError(t, repo.Save(ctx, s))

	s.Status = models.SessionFailed
	loaded, err := repo.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, loaded.Status)

	loaded.AssetID = "changed"
	again, err := repo.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, again.AssetID)
}

func TestWaitForStabilization(t *testing.T) {
	assert.NoError(t, WaitForStabilization(context.Background(), time.Millisecond))
	assert.NoError(t, WaitForStabilization(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, WaitForStabilization(ctx, time.Hour), context.Canceled)
}

func TestRecordBaseline_DecimationWarning(t *testing.T) {
	ctx := context.Background()
	samples := SensorSnapshot{AcousticSamples: make([]float64, 64)}

	core, logs := observer.New(zapcore.WarnLevel)
	a := NewAnalyzer(NewMemoryRepository(), &spectrum.DFT{MaxSamples: 32}, zap.New(core))
	id := startSession(t, a)
	_, err := a.RecordBaseline(ctx, id, 0, samples)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Acoustic samples decimated").Len())

	core, logs = observer.New(zapcore.WarnLevel)
	fake := &fakeSpectrum{out: []float64{1, 2, 1}}
	a = NewAnalyzer(NewMemoryRepository(), fake, zap.New(core))
	id = startSession(t, a)
	_, err = a.RecordBaseline(ctx, id, 0, SensorSnapshot{AcousticSamples: make([]float64, spectrum.DefaultMaxSamples+1)})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Zero(t, logs.FilterMessage("Acoustic samples decimated").Len())
}
