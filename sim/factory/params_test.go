package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateParams_DefaultsFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRateParams(cfg)

	assert.Equal(t, 0.15, r.CNCFailureChance())
	assert.Equal(t, 45.0, r.CNCProcessingTime())
	assert.Equal(t, 30.0, r.AssemblyTime())
	assert.Equal(t, 0.02, r.DefectRate())
	assert.Equal(t, 0.1, r.DailyChance(PowerOutage))
}

func TestEffect_ApplyRevertRoundTripsExactly(t *testing.T) {
	// GIVEN every persistent strategy effect applied on top of each other
	r := NewRateParams(DefaultConfig())
	var before [numParams]float64
	for p := Param(0); p < numParams; p++ {
		before[p] = r.Get(p)
	}
	var effects []Effect
	for _, s := range AllStrategies() {
		if info := s.Info(); len(info.Effect) > 0 {
			e := Effect{Key: "strategy:" + s.String(), Scale: info.Effect}
			e.Apply(r)
			effects = append(effects, e)
		}
	}
	assert.NotEqual(t, before[ParamCNCFailureChance], r.CNCFailureChance())

	// WHEN they are reverted in an order different from application
	for i := 0; i < len(effects); i += 2 {
		effects[i].Revert(r)
	}
	for i := 1; i < len(effects); i += 2 {
		effects[i].Revert(r)
	}

	// THEN every parameter is bit-identical to its starting value
	for p := Param(0); p < numParams; p++ {
		assert.Equal(t, before[p], r.Get(p), "param %s", p)
	}
}

func TestEffect_ApplyIsIdempotentPerKey(t *testing.T) {
	r := NewRateParams(DefaultConfig())
	e := Effect{Key: "pm", Scale: Scaling{ParamCNCFailureChance: 0.2}}

	base := r.CNCFailureChance()

	assert.True(t, e.Apply(r))
	assert.False(t, e.Apply(r))
	assert.Equal(t, base*0.2, r.CNCFailureChance())

	assert.True(t, e.Revert(r))
	assert.False(t, e.Revert(r))
	assert.Equal(t, base, r.CNCFailureChance())
}

func TestRateParams_RebaseKeepsActiveEffects(t *testing.T) {
	// GIVEN flexible workforce applied
	r := NewRateParams(DefaultConfig())
	fw := Effect{Key: "fw", Scale: Scaling{ParamAssemblyTime: 0.7}}
	fw.Apply(r)

	// WHEN the assembly line is upgraded permanently
	r.Rebase(ParamAssemblyTime, 0.7)

	// THEN both factors compose, and reverting the effect leaves the new base
	assert.InDelta(t, 30*0.7*0.7, r.AssemblyTime(), 1e-12)
	fw.Revert(r)
	assert.Equal(t, r.Base(ParamAssemblyTime), r.AssemblyTime())
	assert.InDelta(t, 21.0, r.Base(ParamAssemblyTime), 1e-12)
}

func TestParam_String(t *testing.T) {
	assert.Equal(t, "CNC_FAILURE_CHANCE", ParamCNCFailureChance.String())
	assert.Equal(t, "DEFECT_RATE", ParamDefectRate.String())
	assert.Equal(t, "Param(99)", Param(99).String())
}
