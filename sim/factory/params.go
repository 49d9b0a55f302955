package factory

import "fmt"

// Param names one global rate parameter.
type Param int

const (
	ParamCNCFailureChance Param = iota
	ParamOrderSpikeChance
	ParamSupplyChainChance
	ParamWorkerAbsenceChance
	ParamQualityIssueChance
	ParamPowerOutageChance
	ParamOrderCancellationChance
	ParamCNCProcessingTime
	ParamAssemblyTime
	ParamQCInspectionTime
	ParamDefectRate
	numParams
)

var paramNames = [numParams]string{
	"CNC_FAILURE_CHANCE",
	"SUDDEN_ORDER_SPIKE_CHANCE",
	"SUPPLY_CHAIN_ISSUE_CHANCE",
	"WORKER_ABSENCE_CHANCE",
	"QUALITY_ISSUE_CHANCE",
	"POWER_OUTAGE_CHANCE",
	"ORDER_CANCELLATION_CHANCE",
	"CNC_PROCESSING_TIME",
	"ASSEMBLY_TIME",
	"QC_INSPECTION_TIME",
	"DEFECT_RATE",
}

func (p Param) String() string {
	if p < 0 || p >= numParams {
		return fmt.Sprintf("Param(%d)", int(p))
	}
	return paramNames[p]
}

// Scaling maps parameters to multiplicative factors.
type Scaling map[Param]float64

// Effect is a named, reversible scaling. Apply and Revert are independent
// operations on a RateParams; neither remembers old values.
type Effect struct {
	Key   string
	Scale Scaling
}

// Apply registers the effect's factors. Applying a key twice is a no-op.
func (e Effect) Apply(r *RateParams) bool { return r.apply(e.Key, e.Scale) }

// Revert removes the effect's factors. Reverting an absent key is a no-op.
func (e Effect) Revert(r *RateParams) bool { return r.revert(e.Key) }

type appliedEffect struct {
	key   string
	scale Scaling
}

// RateParams is the single record of global rate parameters. Every value is
// recomputed as base × the factors of the applied effects, in the order they
// were applied, so removing an effect restores the exact earlier value.
//
// Only the StrategyManager and timed effects it creates write to it; the
// pipeline and disruption processes read through the accessors each time
// they run.
type RateParams struct {
	base    [numParams]float64
	applied []appliedEffect
	value   [numParams]float64
}

// NewRateParams initializes bases from cfg.
func NewRateParams(cfg Config) *RateParams {
	r := &RateParams{}
	r.base[ParamCNCFailureChance] = cfg.Disruptions.CNCFailure
	r.base[ParamOrderSpikeChance] = cfg.Disruptions.OrderSpike
	r.base[ParamSupplyChainChance] = cfg.Disruptions.SupplyChain
	r.base[ParamWorkerAbsenceChance] = cfg.Disruptions.WorkerAbsence
	r.base[ParamQualityIssueChance] = cfg.Disruptions.QualityIssue
	r.base[ParamPowerOutageChance] = cfg.Disruptions.PowerOutage
	r.base[ParamOrderCancellationChance] = cfg.Disruptions.OrderCancellation
	r.base[ParamCNCProcessingTime] = cfg.CNCProcessingTime
	r.base[ParamAssemblyTime] = cfg.AssemblyTime
	r.base[ParamQCInspectionTime] = cfg.QCInspectionTime
	r.base[ParamDefectRate] = cfg.BaseDefectRate
	r.value = r.base
	return r
}

// Get returns the current value of p.
func (r *RateParams) Get(p Param) float64 { return r.value[p] }

// Base returns the value of p with no effect applied.
func (r *RateParams) Base(p Param) float64 { return r.base[p] }

// IsApplied reports whether an effect with key is registered.
func (r *RateParams) IsApplied(key string) bool {
	return r.indexOf(key) >= 0
}

// Rebase permanently multiplies the base of p. Active effects stay applied on
// top of the new base.
func (r *RateParams) Rebase(p Param, factor float64) {
	r.base[p] *= factor
	r.recompute(p)
}

func (r *RateParams) apply(key string, s Scaling) bool {
	if r.indexOf(key) >= 0 {
		return false
	}
	r.applied = append(r.applied, appliedEffect{key: key, scale: s})
	for p := range s {
		r.recompute(p)
	}
	return true
}

func (r *RateParams) revert(key string) bool {
	i := r.indexOf(key)
	if i < 0 {
		return false
	}
	removed := r.applied[i]
	r.applied = append(r.applied[:i], r.applied[i+1:]...)
	for p := range removed.scale {
		r.recompute(p)
	}
	return true
}

func (r *RateParams) indexOf(key string) int {
	for i, a := range r.applied {
		if a.key == key {
			return i
		}
	}
	return -1
}

func (r *RateParams) recompute(p Param) {
	v := r.base[p]
	for _, a := range r.applied {
		if f, ok := a.scale[p]; ok {
			v *= f
		}
	}
	r.value[p] = v
}

// Accessors read by the pipeline and the disruption generator.

func (r *RateParams) CNCFailureChance() float64  { return r.value[ParamCNCFailureChance] }
func (r *RateParams) PowerOutageChance() float64 { return r.value[ParamPowerOutageChance] }
func (r *RateParams) CNCProcessingTime() float64 { return r.value[ParamCNCProcessingTime] }
func (r *RateParams) AssemblyTime() float64      { return r.value[ParamAssemblyTime] }
func (r *RateParams) QCInspectionTime() float64  { return r.value[ParamQCInspectionTime] }
func (r *RateParams) DefectRate() float64        { return r.value[ParamDefectRate] }

// DailyChance returns the current daily probability for a disruption kind.
func (r *RateParams) DailyChance(kind DisruptionKind) float64 {
	return r.value[kind.chanceParam()]
}
