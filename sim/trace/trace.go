package trace

// AuditTrail collects disruption and strategy records during a plant run.
type AuditTrail struct {
	Disruptions []DisruptionRecord
	Strategies  []StrategyRecord
}

// NewAuditTrail creates an AuditTrail ready for recording.
func NewAuditTrail() *AuditTrail {
	return &AuditTrail{
		Disruptions: make([]DisruptionRecord, 0),
		Strategies:  make([]StrategyRecord, 0),
	}
}

// RecordDisruption appends a disruption record.
func (a *AuditTrail) RecordDisruption(record DisruptionRecord) {
	a.Disruptions = append(a.Disruptions, record)
}

// RecordStrategy appends a strategy change record.
func (a *AuditTrail) RecordStrategy(record StrategyRecord) {
	a.Strategies = append(a.Strategies, record)
}
