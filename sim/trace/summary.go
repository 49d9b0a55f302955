package trace

// AuditSummary aggregates statistics from an AuditTrail.
type AuditSummary struct {
	TotalDisruptions     int
	DisruptionsByKind    map[string]int
	PlannedDowntime      int64 // sum of planned durations, minutes
	TotalStrategyChanges int
	ActionCounts         map[StrategyAction]int
	StrategySpend        float64 // implementation costs across all changes
	MostUsedStrategy     string  // ties broken by first occurrence
}

// Summarize computes aggregate statistics from an AuditTrail.
// Safe for nil or empty trails (returns zero-value fields).
func Summarize(a *AuditTrail) *AuditSummary {
	summary := &AuditSummary{
		DisruptionsByKind: make(map[string]int),
		ActionCounts:      make(map[StrategyAction]int),
	}
	if a == nil {
		return summary
	}

	summary.TotalDisruptions = len(a.Disruptions)
	for _, d := range a.Disruptions {
		summary.DisruptionsByKind[d.Kind]++
		summary.PlannedDowntime += d.PlannedDuration
	}

	summary.TotalStrategyChanges = len(a.Strategies)
	uses := make(map[string]int)
	best := 0
	for _, s := range a.Strategies {
		summary.ActionCounts[s.Action]++
		summary.StrategySpend += s.Cost
		if s.Action == ActionActivated || s.Action == ActionExecuted {
			uses[s.Strategy]++
			if uses[s.Strategy] > best {
				best = uses[s.Strategy]
				summary.MostUsedStrategy = s.Strategy
			}
		}
	}

	return summary
}
