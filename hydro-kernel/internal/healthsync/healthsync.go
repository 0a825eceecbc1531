// Package healthsync 由项目技术状态重算系统健康读模型
//
// Recompute 为纯函数：不读时钟、不缓存，相同输入得到完全相同的输出。
// 调用方（consumer.HealthSyncConsumer）负责在每次状态变化后重新调用。
package healthsync

import (
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/physics"

	"github.com/shopspring/decimal"
)

// 读模型参数
const (
	HighHeadLimit        = 100.0
	MediumHeadLimit      = 30.0
	HighHeadEfficiency   = 0.92
	MediumHeadEfficiency = 0.90
	LowHeadEfficiency    = 0.93 // 低水头按 Kaplan 考虑
	CapacityFactor       = 0.65
	HoursPerYear         = 8760.0

	MinHoopSafetyFactor = 1.5
	MinBoltSafetyFactor = 2.0

	CavitationHeadLimit     = 30.0 // m
	CavitationVelocityLimit = 4.0  // m/s
	ResonanceMinSeconds     = 0.5
	ResonanceMaxSeconds     = 1.5
)

func efficiencyTier(netHead float64) float64 {
	switch {
	case netHead > HighHeadLimit:
		return HighHeadEfficiency
	case netHead > MediumHeadLimit:
		return MediumHeadEfficiency
	default:
		return LowHeadEfficiency
	}
}

// Recompute 按内核完整链路重算健康读模型
func Recompute(state models.TechnicalProjectState) models.SystemHealth {
	pen := state.Penstock
	hyd := state.Hydraulic
	mech := state.Mechanical
	gross := state.Site.GrossHead

	roughness := pen.RoughnessMM
	if roughness <= 0 {
		roughness = physics.RoughnessMM(pen.Material)
	}
	chain := physics.ComputeFrictionChain(hyd.Flow, pen.Diameter, pen.Length, roughness)
	netHead := decimal.Max(decimal.Zero, physics.Dec(gross).Sub(chain.HeadLoss))
	net := physics.Float(netHead)
	velocity := physics.Float(chain.Velocity)

	eta := efficiencyTier(net)
	powerMW := physics.ToMW(physics.Power(net, hyd.Flow, eta))
	annual := powerMW.Mul(physics.Dec(HoursPerYear * CapacityFactor))
	revenue := annual.Mul(physics.Dec(state.Financial.EnergyPrice))
	roi := decimal.Zero
	if state.Financial.Capex > 0 {
		roi = revenue.Div(physics.Dec(state.Financial.Capex)).Mul(decimal.NewFromInt(100))
	}

	modulus := pen.MaterialModulusGPa * 1e9
	if modulus <= 0 {
		modulus = physics.MaterialModulus(pen.Material)
	}
	wave := physics.WaveSpeed(pen.Diameter, pen.WallThickness, modulus)
	waveF := physics.Float(wave)
	surge := physics.SurgePressure(waveF, velocity)
	transit := physics.TransitTime(pen.Length, waveF)

	hoop := physics.HoopStress(gross, physics.Float(surge), pen.Diameter, pen.WallThickness)
	hoopSF := decimal.Zero
	if hoop.IsPositive() {
		hoopSF = physics.Dec(physics.PipeYieldStrength(pen.Material)).Div(hoop)
	}

	frequency := hyd.GridFrequency
	if frequency <= 0 {
		frequency = models.DefaultGridFrequency
	}
	waterTemp := hyd.WaterTempC
	if waterTemp <= 0 {
		waterTemp = models.DefaultWaterTempC
	}
	ecc := physics.Eccentricity(mech.VibrationX, mech.VibrationY, mech.TurbineFamily, physics.DefaultEccentricityTuning())
	grid := physics.GridStressFactor(frequency, physics.DefaultGridTuning())

	boltPressure := physics.StaticPressure(gross).Add(surge)
	boltLoad := physics.BoltLoadPerBolt(physics.Float(boltPressure), mech.RunnerDiameterMM, mech.BoltCount)
	boltCapacity := physics.BoltCapacity(mech.BoltDiameterMM, physics.BoltYieldStrength(mech.BoltClass))
	boltSF := physics.SafetyFactor(boltCapacity, boltLoad)

	sigma := physics.CavitationSigma(net, hyd.TailwaterElevation, hyd.RunnerElevation, waterTemp)
	specific := physics.SpecificWaterConsumption(hyd.Flow, physics.Float(powerMW)*1000)

	health := models.SystemHealth{
		Velocity:         velocity,
		Reynolds:         physics.Float(chain.Reynolds),
		FrictionFactor:   physics.Float(chain.FrictionFactor),
		HeadLoss:         physics.Float(chain.HeadLoss),
		NetHead:          net,
		Efficiency:       eta,
		PowerMW:          physics.Float(powerMW),
		AnnualEnergyMWh:  physics.Float(annual),
		AnnualRevenue:    physics.Float(revenue),
		ROIPercent:       physics.Float(roi),
		WaveSpeed:        waveF,
		SurgePressure:    physics.Float(surge),
		TransitTime:      physics.Float(transit),
		HoopStressMPa:    physics.Float(hoop),
		HoopSafetyFactor: physics.Float(hoopSF),
		Eccentricity:     physics.Float(ecc),
		GridStressFactor: physics.Float(grid),
		BoltLoadKN:       physics.Float(boltLoad),
		BoltCapacityKN:   physics.Float(boltCapacity),
		BoltSafetyFactor: physics.Float(boltSF),
		CavitationSigma:  physics.Float(sigma.Sigma),
		CavitationRisk:   string(sigma.Risk),
		SpecificWaterUse: physics.Float(specific),
	}

	health.CavitationFlag = net < CavitationHeadLimit && velocity > CavitationVelocityLimit
	health.ResonanceFlag = transit.GreaterThanOrEqual(physics.Dec(ResonanceMinSeconds)) &&
		transit.LessThanOrEqual(physics.Dec(ResonanceMaxSeconds))

	switch {
	case hoop.IsPositive() && hoopSF.LessThan(physics.Dec(MinHoopSafetyFactor)),
		sigma.Risk == physics.CavitationCritical:
		health.Status = models.HealthCritical
	case health.CavitationFlag, health.ResonanceFlag,
		boltLoad.IsPositive() && boltSF.LessThan(physics.Dec(MinBoltSafetyFactor)),
		grid.GreaterThan(decimal.NewFromInt(1)):
		health.Status = models.HealthWarning
	default:
		health.Status = models.HealthNominal
	}
	return health
}

// Sync 返回附带最新健康读模型的状态副本，Physics 整体覆盖
func Sync(state models.TechnicalProjectState) models.TechnicalProjectState {
	health := Recompute(state)
	state.Physics = &health
	return state
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// ApplyTelemetry 将部分遥测合并到状态副本，未上报的字段保留原值
func ApplyTelemetry(state models.TechnicalProjectState, t models.PartialTelemetry) models.TechnicalProjectState {
	out := state
	out.Mechanical.BearingTempC = copyFloat(state.Mechanical.BearingTempC)
	out.Mechanical.AlignmentMmM = copyFloat(state.Mechanical.AlignmentMmM)

	if t.Flow != nil {
		out.Hydraulic.Flow = *t.Flow
	}
	if t.WaterTempC != nil {
		out.Hydraulic.WaterTempC = *t.WaterTempC
	}
	if t.GridFrequency != nil {
		out.Hydraulic.GridFrequency = *t.GridFrequency
	}
	if t.TailwaterEl != nil {
		out.Hydraulic.TailwaterElevation = *t.TailwaterEl
	}
	if t.VibrationX != nil {
		out.Mechanical.VibrationX = *t.VibrationX
	}
	if t.VibrationY != nil {
		out.Mechanical.VibrationY = *t.VibrationY
	}
	if t.BearingTempC != nil {
		out.Mechanical.BearingTempC = copyFloat(t.BearingTempC)
	}
	if t.AlignmentMmM != nil {
		out.Mechanical.AlignmentMmM = copyFloat(t.AlignmentMmM)
	}
	if t.AcousticIndex != nil {
		out.Mechanical.AcousticIndex = *t.AcousticIndex
	}
	return out
}
