package jetbalance

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/spectrum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type fakeSpectrum struct{ out []float64 }

func (f fakeSpectrum) Spectrum([]float64) []float64 { return f.out }

func TestJetVelocity(t *testing.T) {
	assert.InDelta(t, math.Sqrt(24000), JetVelocity(120), 1e-9)
	assert.Zero(t, JetVelocity(0))
	assert.Zero(t, JetVelocity(-5))
	assert.Zero(t, JetVelocity(math.NaN()))
}

func TestWhistleIndex(t *testing.T) {
	assert.Zero(t, WhistleIndex([]float64{10, 0, 0, 0, 0}))
	assert.Zero(t, WhistleIndex(nil))
	// 0.6·20 封顶
	assert.Equal(t, 10.0, WhistleIndex([]float64{1, 1, 1, 1, 1}))
	assert.InDelta(t, 4.0, WhistleIndex([]float64{1, 1, 1, 1, 0, 0, 0, 0, 0, 1}), 1e-9)
}

func TestClassifyImpact(t *testing.T) {
	tests := []struct {
		whistle float64
		want    ImpactPattern
	}{
		{0, PatternClean},
		{4, PatternClean},
		{4.01, PatternEroded},
		{7, PatternEroded},
		{7.01, PatternSandDamage},
		{10, PatternSandDamage},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyImpact(tt.whistle), "whistle=%v", tt.whistle)
	}
}

func TestAnalyzeJet(t *testing.T) {
	a := NewAnalyzer(fakeSpectrum{out: []float64{0, 5, 0, 1, 1, 1, 1, 1, 1, 1}}, zap.NewNop())

	jet := a.AnalyzeJet(NozzleReading{NozzleID: 3, PressureBar: 120, NeedlePosition: 75})

	assert.Equal(t, 3, jet.NozzleID)
	assert.Equal(t, 10.0, jet.Acoustic.DominantFrequency)
	assert.InDelta(t, 10.0, jet.Acoustic.WhistleIndex, 1e-9)
	assert.Equal(t, PatternSandDamage, jet.Acoustic.ImpactPattern)
	assert.Equal(t, 100.0, jet.ErosionLevel)
	assert.InDelta(t, math.Sqrt(24000), jet.JetVelocity, 1e-9)
	assert.Equal(t, 75.0, jet.NeedlePosition)
}

func TestAnalyzeJet_DFT(t *testing.T) {
	samples := make([]float64, 64)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 5 * float64(i) / 64)
	}

	jet := NewAnalyzer(nil, zap.NewNop()).AnalyzeJet(NozzleReading{NozzleID: 1, AcousticData: samples, PressureBar: 50})

	require.Len(t, jet.Acoustic.Spectrum, 32)
	assert.Equal(t, 50.0, jet.Acoustic.DominantFrequency)
	assert.Equal(t, PatternClean, jet.Acoustic.ImpactPattern)
	assert.Less(t, jet.ErosionLevel, 1.0)
}

func TestForceBalance(t *testing.T) {
	a := NewAnalyzer(nil, zap.NewNop(), WithForceConstant(1), WithClock(func() time.Time { return fixedNow }))

	t.Run("balanced", func(t *testing.T) {
		jets := make([]JetAnalysis, 4)
		for i := range jets {
			jets[i] = JetAnalysis{NozzleID: i + 1, JetVelocity: 150, NeedlePosition: 75}
		}
		fb := a.ForceBalance(jets)

		assert.Equal(t, fixedNow, fb.CalculatedAt)
		require.Len(t, fb.NozzleForces, 4)
		assert.InDelta(t, 150*150*0.75, fb.NozzleForces[0], 1e-9)
		assert.InDelta(t, 0, fb.ImbalanceRatio, 1e-9)
		assert.InDelta(t, NormalBearingLifeH, fb.PredictedBearingLife, 1e-3)
	})

	t.Run("opposed nozzles", func(t *testing.T) {
		fb := a.ForceBalance([]JetAnalysis{
			{NozzleID: 1, JetVelocity: 10, NeedlePosition: 100},
			{NozzleID: 2, JetVelocity: 10, NeedlePosition: 50},
		})

		assert.Equal(t, []float64{100, 50}, fb.NozzleForces)
		assert.InDelta(t, 50, fb.Resultant.Magnitude, 1e-9)
		assert.InDelta(t, 0, fb.Resultant.Angle, 1e-9)
		assert.InDelta(t, 1.0/3.0, fb.ImbalanceRatio, 1e-9)
		assert.InDelta(t, 100.0/3.0, fb.BearingLoadIncrease, 1e-9)

		life := NormalBearingLifeH / math.Pow(4.0/3.0, 3)
		assert.InDelta(t, life, fb.PredictedBearingLife, 1e-6)
		assert.InDelta(t, NormalBearingLifeH-life, fb.PredictedBearingWear, 1e-6)
	})

	t.Run("single nozzle", func(t *testing.T) {
		fb := a.ForceBalance([]JetAnalysis{{NozzleID: 1, JetVelocity: 10, NeedlePosition: 100}})
		assert.InDelta(t, 1.0, fb.ImbalanceRatio, 1e-9)
		assert.InDelta(t, 12500, fb.PredictedBearingLife, 1e-6)
		assert.InDelta(t, 87500, fb.PredictedBearingWear, 1e-6)
	})

	t.Run("closed needles", func(t *testing.T) {
		fb := a.ForceBalance([]JetAnalysis{{JetVelocity: 10}, {JetVelocity: 10}})
		assert.Zero(t, fb.ImbalanceRatio)
		assert.Equal(t, NormalBearingLifeH, fb.PredictedBearingLife)
		assert.Zero(t, fb.PredictedBearingWear)
	})

	t.Run("no nozzles", func(t *testing.T) {
		fb := a.ForceBalance(nil)
		assert.Zero(t, fb.ImbalanceRatio)
		assert.Empty(t, fb.NozzleForces)
	})
}

func TestForceBalance_DefaultConstant(t *testing.T) {
	fb := NewAnalyzer(nil, zap.NewNop()).ForceBalance([]JetAnalysis{{JetVelocity: 10, NeedlePosition: 100}})
	assert.InDelta(t, 1000*math.Pi*0.05*0.05*100, fb.NozzleForces[0], 1e-9)
}

func TestForceBalance_ImbalanceNonNegative(t *testing.T) {
	a := NewAnalyzer(nil, zap.NewNop())
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(6)
		jets := make([]JetAnalysis, n)
		for j := range jets {
			jets[j] = JetAnalysis{
				JetVelocity:    1 + rng.Float64()*200,
				NeedlePosition: 1 + rng.Float64()*99,
			}
		}
		fb := a.ForceBalance(jets)
		assert.GreaterOrEqual(t, fb.ImbalanceRatio, 0.0)
		assert.LessOrEqual(t, fb.ImbalanceRatio, 1.0+1e-9)
	}
}

func TestBalanceSeverity(t *testing.T) {
	tests := []struct {
		ratio float64
		want  Severity
	}{
		{0, SeverityOK},
		{0.08, SeverityOK},
		{0.0801, SeverityWarning},
		{0.15, SeverityWarning},
		{0.1501, SeverityCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BalanceSeverity(tt.ratio), "ratio=%v", tt.ratio)
	}
}

func TestRecommendations(t *testing.T) {
	jets := []JetAnalysis{
		{NozzleID: 1, JetVelocity: 100, Acoustic: JetAcoustic{ImpactPattern: PatternClean}},
		{NozzleID: 2, JetVelocity: 100, Acoustic: JetAcoustic{ImpactPattern: PatternEroded}, ErosionLevel: 48},
		{NozzleID: 3, JetVelocity: 100, Acoustic: JetAcoustic{ImpactPattern: PatternSandDamage, WhistleIndex: 8.2}},
		{NozzleID: 4, JetVelocity: 130, Acoustic: JetAcoustic{ImpactPattern: PatternClean}},
	}

	recs := Recommendations(jets, ForceBalance{ImbalanceRatio: 0.2, BearingLoadIncrease: 20, PredictedBearingWear: 42130})

	keys := make([]string, 0, len(recs))
	for _, r := range recs {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"jet.needle_erosion", "jet.sand_damage", "jet.velocity_mismatch", "balance.critical"}, keys)
	assert.Equal(t, 2, recs[0].NozzleID)
	assert.Contains(t, recs[0].Message, "48%")
	assert.Equal(t, 4, recs[2].NozzleID)
	assert.Equal(t, SeverityCritical, recs[3].Severity)
	assert.Zero(t, recs[3].NozzleID)

	moderate := Recommendations(nil, ForceBalance{ImbalanceRatio: 0.1})
	require.Len(t, moderate, 1)
	assert.Equal(t, "balance.moderate", moderate[0].Key)

	ok := Recommendations(nil, ForceBalance{})
	require.Len(t, ok, 1)
	assert.Equal(t, SeverityOK, ok[0].Severity)
}

func TestAnalyzeJet_DecimationWarning(t *testing.T) {
	long := make([]float64, 64)
	reading := NozzleReading{NozzleID: 2, AcousticData: long, PressureBar: 50}

	core, logs := observer.New(zapcore.WarnLevel)
	NewAnalyzer(&spectrum.DFT{MaxSamples: 32}, zap.New(core)).AnalyzeJet(reading)
	require.Equal(t, 1, logs.FilterMessage("Nozzle acoustic data decimated").Len())
	assert.Equal(t, int64(32), logs.All()[0].ContextMap()["max_samples"])

	// 外部注入的分析器不做抽取，不应告警
	core, logs = observer.New(zapcore.WarnLevel)
	NewAnalyzer(fakeSpectrum{out: make([]float64, 32)}, zap.New(core)).AnalyzeJet(NozzleReading{
		NozzleID:     2,
		AcousticData: make([]float64, spectrum.DefaultMaxSamples+1),
		PressureBar:  50,
	})
	assert.Zero(t, logs.FilterMessage("Nozzle acoustic data decimated").Len())
}
