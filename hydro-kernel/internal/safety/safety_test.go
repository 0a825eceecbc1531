package safety

import (
	"testing"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGuard() *Guard {
	return NewGuard(DefaultPolicy(), zap.NewNop())
}

func TestNewGuard_FillsDefaults(t *testing.T) {
	g := NewGuard(Policy{}, zap.NewNop())
	assert.Equal(t, DefaultPolicy(), g.Policy())

	custom := NewGuard(Policy{SafetyMultiplier: 6, ReferenceVelocity: 3}, zap.NewNop())
	assert.Equal(t, 6.0, custom.Policy().SafetyMultiplier)
}

func TestSafeClosingTime(t *testing.T) {
	r := newTestGuard().SafeClosingTime(1200, 1600, 12, models.MaterialSteel)

	assert.InDelta(t, 953.4, r.WaveSpeed, 1.0)
	assert.InDelta(t, 2400/r.WaveSpeed, r.CriticalTime, 1e-6)
	assert.InDelta(t, 4*r.CriticalTime, r.MinClosingTime, 1e-9)
	assert.InDelta(t, 1000*r.WaveSpeed*4, r.MaxSurgePressurePa, 1e-6)
	assert.InDelta(t, r.MaxSurgePressurePa/1e5, r.MaxSurgePressureBar, 1e-9)
	assert.Contains(t, r.Recommendation, "10.1 s")

	slower := NewGuard(Policy{SafetyMultiplier: 6, ReferenceVelocity: 4}, zap.NewNop()).
		SafeClosingTime(1200, 1600, 12, models.MaterialSteel)
	assert.Greater(t, slower.MinClosingTime, r.MinClosingTime)

	// 柔性管材波速更低
	pehd := newTestGuard().SafeClosingTime(1200, 1600, 12, models.MaterialPEHD)
	assert.Less(t, pehd.WaveSpeed, r.WaveSpeed)

	degenerate := newTestGuard().SafeClosingTime(1200, 1600, 0, models.MaterialSteel)
	assert.Zero(t, degenerate.MinClosingTime)
	assert.Equal(t, "insufficient data", degenerate.Recommendation)
}

func TestAnalyzeLosses(t *testing.T) {
	l := newTestGuard().AnalyzeLosses(50, 45, 10, 4000, 3840)

	assert.InDelta(t, 4905, l.GrossHydraulicKW, 1e-9)
	assert.InDelta(t, 490.5, l.HeadLossKW, 1e-9)
	assert.InDelta(t, 49.05, l.TrashRackLossKW, 1e-9)
	assert.InDelta(t, 441.45, l.PenstockFrictionLossKW, 1e-9)
	assert.InDelta(t, 414.5, l.TurbineMechLossKW, 1e-9)
	assert.InDelta(t, 160, l.GeneratorElecLossKW, 1e-9)
	assert.InDelta(t, 38.4, l.TransformerLossKW, 1e-9)
	assert.InDelta(t, (3840-38.4)/4905*100, l.WaterToWireEfficiency, 1e-9)
}

func TestAnalyzeLosses_NegativeNormalized(t *testing.T) {
	// 轴功率大于水力功率、电功率大于轴功率的异常输入
	l := newTestGuard().AnalyzeLosses(50, 45, 10, 5000, 6000)

	assert.Zero(t, l.TurbineMechLossKW)
	assert.Zero(t, l.GeneratorElecLossKW)

	zero := newTestGuard().AnalyzeLosses(0, 0, 0, 0, 0)
	assert.Zero(t, zero.WaterToWireEfficiency)
}

func TestCheckOperatingZone(t *testing.T) {
	g := newTestGuard()

	cases := []struct {
		name string
		head float64
		flow float64
		want Zone
	}{
		{"low head high flow", 25, 12, ZoneCavitationRisk},
		{"part load", 50, 6, ZoneVortexRope},
		{"best efficiency", 50, 12, ZoneBestEfficiency},
		{"best efficiency lower edge", 45, 10.5, ZoneBestEfficiency},
		{"full flow", 50, 14, ZoneNormal},
		{"low head part load", 25, 6, ZoneVortexRope},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := g.CheckOperatingZone(OperatingPoint{NetHead: tc.head, Flow: tc.flow}, 50, 14)
			assert.Equal(t, tc.want, r.Zone)
		})
	}
}

func TestCheckOperatingZone_CavitationWins(t *testing.T) {
	g := newTestGuard()

	for head := 0.0; head < 30; head += 2.5 {
		for flow := 11.5; flow <= 20; flow += 0.5 {
			r := g.CheckOperatingZone(OperatingPoint{NetHead: head, Flow: flow}, 50, 14)
			require.Equal(t, ZoneCavitationRisk, r.Zone, "head=%v flow=%v", head, flow)
			require.NotEmpty(t, r.Alert)
		}
	}
}

func TestCheckOperatingZone_MissingRated(t *testing.T) {
	r := newTestGuard().CheckOperatingZone(OperatingPoint{NetHead: 10, Flow: 10}, 0, 14)
	assert.Equal(t, ZoneNormal, r.Zone)
}

func TestValidateField(t *testing.T) {
	r, err := ValidateField("flow", -1)
	require.NoError(t, err)
	assert.False(t, r.IsValid)
	assert.Equal(t, SeverityError, r.Severity)
	require.NotNil(t, r.SuggestedRange)
	assert.Equal(t, 1000.0, r.SuggestedRange.Max)

	r, err = ValidateField("gridFrequency", 60)
	require.NoError(t, err)
	assert.False(t, r.IsValid)

	r, err = ValidateField("head", 100)
	require.NoError(t, err)
	assert.True(t, r.IsValid)
	assert.Equal(t, SeverityInfo, r.Severity)

	_, err = ValidateField("rpm", 500)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestValidateBearingTemp(t *testing.T) {
	assert.Equal(t, SeverityInfo, ValidateBearingTemp(60).Severity)
	assert.Equal(t, SeverityWarning, ValidateBearingTemp(75).Severity)
	assert.Equal(t, SeverityError, ValidateBearingTemp(90).Severity)
	assert.True(t, ValidateBearingTemp(90).IsValid)
	assert.False(t, ValidateBearingTemp(250).IsValid)
}

func TestValidateAlignment(t *testing.T) {
	assert.Equal(t, SeverityInfo, ValidateAlignment(0.05).Severity)
	assert.Equal(t, SeverityWarning, ValidateAlignment(0.1).Severity)
	assert.Equal(t, SeverityError, ValidateAlignment(0.25).Severity)
	assert.False(t, ValidateAlignment(3).IsValid)
}

func TestValidateBatch(t *testing.T) {
	results := ValidateBatch(map[string]float64{
		"flow":        10,
		"bearingTemp": 75,
		"alignment":   3,
		"unknown":     1,
	})

	require.Len(t, results, 2)
	assert.Equal(t, "Shaft Alignment", results[0].Field)
	assert.False(t, results[0].IsValid)
	assert.Equal(t, "Bearing Temperature", results[1].Field)
	assert.Equal(t, SeverityWarning, results[1].Severity)
	assert.True(t, HasErrors(results))

	assert.Empty(t, ValidateBatch(map[string]float64{"flow": 10, "gridFrequency": 50}))
}

func TestCrossSectorEffects(t *testing.T) {
	effects := CrossSectorEffects(map[string]float64{
		"alignment":     0.1,
		"vibration":     5.6,
		"gridFrequency": 51,
	})

	require.Len(t, effects, 4)
	assert.Equal(t, "Bearing Temperature", effects[0].AffectedField)
	assert.InDelta(t, 1.3, effects[0].StressMultiplier, 1e-9)
	assert.Equal(t, "Oil Longevity", effects[1].AffectedField)
	assert.InDelta(t, 4.0, effects[1].StressMultiplier, 1e-9)
	assert.Equal(t, "Seal Integrity", effects[2].AffectedField)
	assert.InDelta(t, 2.0, effects[2].StressMultiplier, 1e-9)
	assert.Equal(t, "Generator Insulation", effects[3].AffectedField)
	assert.InDelta(t, 1.2, effects[3].StressMultiplier, 1e-9)

	assert.Empty(t, CrossSectorEffects(map[string]float64{}))
}

func TestOilLongevityAndBearingPrediction(t *testing.T) {
	wear, lost := OilLongevityImpact(0.1)
	assert.InDelta(t, 4.0, wear, 1e-9)
	assert.InDelta(t, 3.75, lost, 1e-9)

	wear, lost = OilLongevityImpact(0.04)
	assert.Equal(t, 1.0, wear)
	assert.Zero(t, lost)

	predicted, warn := PredictBearingTemp(60, 0.1)
	assert.True(t, warn)
	assert.InDelta(t, 64.5, predicted, 1e-9)
}
