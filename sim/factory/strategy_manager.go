package factory

import (
	"fmt"
	"sort"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/telemetry"
	"github.com/factory-sim/factory-sim/sim/trace"
)

const (
	affordabilityCushion = 10000.0
	earlyDeactivation    = 24 * sim.Hour
)

// Outcome is the result of an Activate or Deactivate call.
type Outcome int

const (
	Activated Outcome = iota
	Executed          // one-shot ran
	AlreadyActive
	Deactivated
	NotActive
	NotDeactivatable // one-shot strategies have no active state
)

func (o Outcome) String() string {
	switch o {
	case Activated:
		return "activated"
	case Executed:
		return "executed"
	case AlreadyActive:
		return "already active"
	case Deactivated:
		return "deactivated"
	case NotActive:
		return "not active"
	case NotDeactivatable:
		return "not deactivatable"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// StrategyState is a persistent strategy's active record.
type StrategyState struct {
	Strategy    Strategy
	ActivatedAt int64
	ExpiresAt   int64
}

// StrategyManager owns the active set and is the only writer of RateParams,
// directly or through the timed effects it registers.
type StrategyManager struct {
	f      *Factory
	active map[Strategy]StrategyState

	liquidationGen int
	timedSeq       int
}

func newStrategyManager(f *Factory) *StrategyManager {
	return &StrategyManager{f: f, active: make(map[Strategy]StrategyState)}
}

// Activate applies s. A one-shot runs its action at once and is never added
// to the active set. A persistent strategy that is already active is left
// alone. customDuration is in minutes; zero or less selects the default.
func (m *StrategyManager) Activate(s Strategy, customDuration int64) Outcome {
	info := s.Info()
	f := m.f
	if !info.OneShot {
		if _, ok := m.active[s]; ok {
			f.log(LevelInfo, "Strategy", "%s is already active", info.Title)
			return AlreadyActive
		}
	}
	m.charge(info)

	if info.OneShot {
		m.execute(s)
		f.audit.RecordStrategy(trace.StrategyRecord{
			ID: f.newID(), Clock: f.clock.Now(), Strategy: s.String(),
			Action: trace.ActionExecuted, Cost: info.ImplementationCost,
		})
		f.log(LevelStrategy, "Strategy", "Executed one-time action: %s", info.Title)
		m.publishStatus(s, "executed")
		return Executed
	}

	duration := info.DefaultDuration
	if customDuration > 0 {
		duration = customDuration
	}
	now := f.clock.Now()
	m.active[s] = StrategyState{Strategy: s, ActivatedAt: now, ExpiresAt: now + duration}
	if info.Effect != nil {
		m.effect(s).Apply(f.params)
	}
	m.onActivate(s)

	f.audit.RecordStrategy(trace.StrategyRecord{
		ID: f.newID(), Clock: now, Strategy: s.String(),
		Action: trace.ActionActivated, Cost: info.ImplementationCost,
	})
	f.log(LevelStrategy, "Strategy", "Activated %s for %.1f days", info.Title, float64(duration)/float64(sim.Day))
	m.publishStatus(s, "activated")
	return Activated
}

// Deactivate ends a persistent strategy and reverts its effect. Deactivating
// an inactive strategy is a no-op.
func (m *StrategyManager) Deactivate(s Strategy) Outcome {
	info := s.Info()
	if info.OneShot {
		m.f.log(LevelWarning, "Strategy", "%s is a one-time action and cannot be deactivated", info.Title)
		return NotDeactivatable
	}
	st, ok := m.active[s]
	if !ok {
		return NotActive
	}
	if m.f.clock.Now()-st.ActivatedAt < earlyDeactivation {
		m.f.log(LevelWarning, "Strategy", "%s deactivated less than 24 hours after activation", info.Title)
	}
	m.end(s, trace.ActionDeactivated)
	return Deactivated
}

// end removes s from the active set through the single revert path shared by
// deactivation and expiration.
func (m *StrategyManager) end(s Strategy, action trace.StrategyAction) {
	f := m.f
	delete(m.active, s)
	info := s.Info()
	if info.Effect != nil {
		m.effect(s).Revert(f.params)
	}
	f.audit.RecordStrategy(trace.StrategyRecord{
		ID: f.newID(), Clock: f.clock.Now(), Strategy: s.String(), Action: action,
	})
	if action == trace.ActionExpired {
		f.log(LevelStrategy, "Strategy", "%s has expired", info.Title)
	} else {
		f.log(LevelStrategy, "Strategy", "Deactivated %s", info.Title)
	}
	m.publishStatus(s, "deactivated")
}

// IsActive reports whether persistent strategy s is in the active set.
func (m *StrategyManager) IsActive(s Strategy) bool {
	_, ok := m.active[s]
	return ok
}

// State returns the active record of s.
func (m *StrategyManager) State(s Strategy) (StrategyState, bool) {
	st, ok := m.active[s]
	return st, ok
}

// Active returns the active set in catalog order.
func (m *StrategyManager) Active() []StrategyState {
	out := make([]StrategyState, 0, len(m.active))
	for _, st := range m.active {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strategy < out[j].Strategy })
	return out
}

// Remaining returns the minutes until s expires, or 0 when inactive.
func (m *StrategyManager) Remaining(s Strategy) int64 {
	st, ok := m.active[s]
	if !ok {
		return 0
	}
	return max(0, st.ExpiresAt-m.f.clock.Now())
}

// WeeklyCost sums the recurring costs of the active set.
func (m *StrategyManager) WeeklyCost() float64 {
	var total float64
	for _, st := range m.Active() {
		total += st.Strategy.Info().WeeklyCost
	}
	return total
}

func (m *StrategyManager) chargeWeeklyCosts() {
	total := m.WeeklyCost()
	if total <= 0 {
		return
	}
	m.f.finance.AddCost(dollars(total))
	m.f.log(LevelInfo, "Finance", "Charged weekly strategy costs of $%.2f", total)
}

// checkExpirations ends every strategy whose expiry has been reached.
func (m *StrategyManager) checkExpirations() {
	now := m.f.clock.Now()
	for _, st := range m.Active() {
		if now >= st.ExpiresAt {
			m.end(st.Strategy, trace.ActionExpired)
		}
	}
}

// applyTimed registers a scaling that reverts itself after duration minutes.
func (m *StrategyManager) applyTimed(name string, scale Scaling, duration int64) *sim.TimedEffect {
	m.timedSeq++
	e := Effect{Key: fmt.Sprintf("timed:%s#%d", name, m.timedSeq), Scale: scale}
	params := m.f.params
	return m.f.clock.ApplyFor(name, duration,
		func() { e.Apply(params) },
		func() { e.Revert(params) },
	)
}

func (m *StrategyManager) effect(s Strategy) Effect {
	return Effect{Key: "strategy:" + s.String(), Scale: s.Info().Effect}
}

// charge books the implementation cost. A cost the plant cannot cover is
// only a warning.
func (m *StrategyManager) charge(info StrategyInfo) {
	f := m.f
	cost := dollars(info.ImplementationCost)
	if cost.GreaterThan(f.finance.Profit().Add(dollars(affordabilityCushion))) {
		f.log(LevelWarning, "Strategy", "Warning: Implementing %s with insufficient funds. Cost: $%.2f", info.Title, info.ImplementationCost)
	}
	f.finance.AddCost(cost)
}

// onActivate runs the side effects of persistent strategies that have no
// parameter scaling.
func (m *StrategyManager) onActivate(s Strategy) {
	f := m.f
	switch s {
	case JustInTimeReplenishment:
		raw := int(float64(f.cfg.InitialRawMaterials) * jitStockInjection)
		parts := int(float64(f.cfg.InitialParts) * jitStockInjection)
		f.ledger.Credit(RawMaterials, raw)
		f.ledger.Credit(Parts, parts)
		f.log(LevelInfo, "Inventory", "JIT system activated: added %d raw materials and %d parts", raw, parts)
	case InventoryLiquidation:
		m.liquidationGen++
		f.startLiquidationLoop(m.liquidationGen)
	}
}

func (m *StrategyManager) publishStatus(s Strategy, status string) {
	f := m.f
	now := f.clock.Now()
	f.pub.Publish(now, telemetry.Topic(telemetry.StrategiesBase, s.String()), map[string]any{
		"strategy":  s.String(),
		"title":     s.Info().Title,
		"status":    status,
		"remaining": m.Remaining(s),
	})
}
