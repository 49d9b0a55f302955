// Package trace provides the audit history of a plant run: every disruption
// that started and every strategy state change.
// This package has no dependencies on sim/ or sim/factory/; it stores plain data types.
package trace

// DisruptionRecord captures a single disruption start.
type DisruptionRecord struct {
	ID              string
	Clock           int64
	Kind            string
	Description     string
	PlannedDuration int64 // minutes; 0 for disruptions without a hold
}

// StrategyAction names a strategy state transition.
type StrategyAction string

const (
	ActionActivated   StrategyAction = "Activated"
	ActionDeactivated StrategyAction = "Deactivated"
	ActionExpired     StrategyAction = "Expired"
	ActionExecuted    StrategyAction = "Executed (one-time)"
)

// StrategyRecord captures a single strategy change.
type StrategyRecord struct {
	ID       string
	Clock    int64
	Strategy string
	Action   StrategyAction
	Cost     float64 // implementation cost charged by this change, 0 on deactivation
}
