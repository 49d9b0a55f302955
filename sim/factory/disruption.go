package factory

import (
	"fmt"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/telemetry"
	"github.com/factory-sim/factory-sim/sim/trace"
)

// DisruptionKind names a class of random perturbation.
type DisruptionKind int

// Order matches the chance parameters in RateParams.
const (
	CNCFailure DisruptionKind = iota
	OrderSpike
	SupplyChain
	WorkerAbsence
	QualityIssue
	PowerOutage
	OrderCancellation
	numDisruptionKinds
)

var disruptionTitles = [numDisruptionKinds]string{
	"CNC Machine Failure",
	"Sudden Order Spike",
	"Supply Chain Disruption",
	"Worker Absence",
	"Quality Control Issue",
	"Power Outage",
	"Order Cancellation",
}

func (k DisruptionKind) String() string {
	if k < 0 || k >= numDisruptionKinds {
		return fmt.Sprintf("DisruptionKind(%d)", int(k))
	}
	return disruptionTitles[k]
}

func (k DisruptionKind) chanceParam() Param {
	return ParamCNCFailureChance + Param(k)
}

// AllDisruptionKinds returns every kind in check order.
func AllDisruptionKinds() []DisruptionKind {
	out := make([]DisruptionKind, numDisruptionKinds)
	for i := range out {
		out[i] = DisruptionKind(i)
	}
	return out
}

const (
	disruptionCheckInterval = 6 * sim.Hour
	checksPerDay            = float64(sim.Day / disruptionCheckInterval)
)

// Disruption is one running perturbation. It lives from its start until its
// effect is reverted.
type Disruption struct {
	ID              string
	Kind            DisruptionKind
	Start           int64
	PlannedDuration int64
	Description     string
	Severity        map[string]float64

	effect *sim.TimedEffect
}

// End returns the minute the effect is due to revert.
func (d *Disruption) End() int64 { return d.Start + d.PlannedDuration }

// Active reports whether the effect has not been reverted yet.
func (d *Disruption) Active() bool { return d.effect != nil && d.effect.Active() }

// disruptionPlan is what a kind handler decides at start time: how long the
// disruption holds and the two independent halves of its effect.
type disruptionPlan struct {
	description string
	duration    int64
	severity    map[string]float64
	apply       func()
	revert      func()
}

// DisruptionGenerator wakes every six hours and starts disruptions. At most
// one disruption of each kind runs at a time.
type DisruptionGenerator struct {
	f      *Factory
	active [numDisruptionKinds]*Disruption
	counts [numDisruptionKinds]int
}

func newDisruptionGenerator(f *Factory) *DisruptionGenerator {
	return &DisruptionGenerator{f: f}
}

func (g *DisruptionGenerator) start() {
	g.f.every(disruptionCheckInterval, disruptionCheckInterval, "disruption-check", g.check)
}

// check draws once per kind against the kind's per-check chance.
func (g *DisruptionGenerator) check() {
	f := g.f
	rng := f.disruptionRNG()
	for _, kind := range AllDisruptionKinds() {
		if rng.Float64() >= f.params.DailyChance(kind)/checksPerDay {
			continue
		}
		if g.suppressed(kind) {
			continue
		}
		g.Trigger(kind)
	}
}

// suppressed applies the strategies that can prevent a disruption outright.
func (g *DisruptionGenerator) suppressed(kind DisruptionKind) bool {
	f := g.f
	switch kind {
	case CNCFailure:
		if f.strategies.IsActive(PreventiveMaintenance) && f.disruptionRNG().Float64() < pmPreventChance {
			f.log(LevelInfo, "Maintenance", "Preventive maintenance prevented a CNC machine failure")
			return true
		}
	case SupplyChain:
		if f.strategies.IsActive(SupplierDiversification) && f.disruptionRNG().Float64() < sdPreventChance {
			f.log(LevelInfo, "Supply", "Supplier diversification avoided a supply chain disruption")
			return true
		}
	}
	return false
}

// Trigger starts a disruption of kind now, unless one is already running or
// the plant state makes it meaningless (no machine left to fail, empty
// backlog to cancel). Returns the started disruption.
func (g *DisruptionGenerator) Trigger(kind DisruptionKind) (*Disruption, bool) {
	if g.active[kind] != nil {
		return nil, false
	}
	plan, ok := g.plan(kind)
	if !ok {
		return nil, false
	}
	f := g.f
	d := &Disruption{
		ID:              f.newID(),
		Kind:            kind,
		Start:           f.clock.Now(),
		PlannedDuration: plan.duration,
		Description:     plan.description,
		Severity:        plan.severity,
	}
	g.active[kind] = d
	g.counts[kind]++

	f.audit.RecordDisruption(trace.DisruptionRecord{
		ID:              d.ID,
		Clock:           d.Start,
		Kind:            kind.String(),
		Description:     d.Description,
		PlannedDuration: d.PlannedDuration,
	})
	f.publishDisruption(d)

	d.effect = f.clock.ApplyFor(kind.String(), plan.duration, plan.apply, func() {
		plan.revert()
		g.active[kind] = nil
	})
	return d, true
}

// EndEarly reverts a running disruption of kind immediately.
func (g *DisruptionGenerator) EndEarly(kind DisruptionKind) bool {
	d := g.active[kind]
	if d == nil {
		return false
	}
	d.effect.RevertNow()
	return true
}

// Active returns the running disruption of kind, or nil.
func (g *DisruptionGenerator) Active(kind DisruptionKind) *Disruption {
	return g.active[kind]
}

// Running returns every running disruption in kind order.
func (g *DisruptionGenerator) Running() []*Disruption {
	var out []*Disruption
	for _, d := range g.active {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

// Count returns how many disruptions of kind have started.
func (g *DisruptionGenerator) Count(kind DisruptionKind) int { return g.counts[kind] }

func (g *DisruptionGenerator) plan(kind DisruptionKind) (disruptionPlan, bool) {
	switch kind {
	case CNCFailure:
		return g.planCNCFailure()
	case OrderSpike:
		return g.planOrderSpike()
	case SupplyChain:
		return g.planSupplyChain()
	case WorkerAbsence:
		return g.planWorkerAbsence()
	case QualityIssue:
		return g.planQualityIssue()
	case PowerOutage:
		return g.planPowerOutage()
	case OrderCancellation:
		return g.planOrderCancellation()
	}
	panic(fmt.Sprintf("DisruptionGenerator.plan: unknown kind %d", int(kind)))
}

func (f *Factory) publishDisruption(d *Disruption) {
	now := f.clock.Now()
	f.pub.PublishValue(now, telemetry.Topic(telemetry.DisruptionBase, "time"), now)
	f.pub.PublishValue(now, telemetry.Topic(telemetry.DisruptionBase, "formattedTime"), sim.FormatTime(now))
	f.pub.PublishValue(now, telemetry.Topic(telemetry.DisruptionBase, "type"), d.Kind.String())
	f.pub.PublishValue(now, telemetry.Topic(telemetry.DisruptionBase, "description"), d.Description)
	f.log(LevelDisruption, d.Kind.String(), "%s", d.Description)
}
