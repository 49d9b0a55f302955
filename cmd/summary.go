package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/factory"
	"github.com/factory-sim/factory-sim/sim/trace"
)

// summarySeries are the hourly series reported with percentiles.
var summarySeries = []string{"oee", "cnc_utilization", "assembly_utilization", "qc_utilization", "backlog"}

// RunSummary is the end-of-run report printed to stdout.
type RunSummary struct {
	RunID         string  `json:"run_id"`
	Seed          int64   `json:"seed"`
	SimulatedTime string  `json:"simulated_time"`
	SimulatedDays float64 `json:"simulated_days"`
	EventsFired   uint64  `json:"events_fired"`

	TotalOrders     int     `json:"total_orders"`
	FulfilledOrders int     `json:"fulfilled_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
	Backlog         int     `json:"backlog"`
	FillRate        float64 `json:"fill_rate"`

	Revenue      decimal.Decimal `json:"revenue"`
	Costs        decimal.Decimal `json:"costs"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin float64         `json:"profit_margin"`

	OEE          float64 `json:"oee"`
	QualityScore float64 `json:"quality_score"`
	EnergyKWh    float64 `json:"energy_kwh"`
	Downtime     int64   `json:"downtime_minutes"`

	Series map[string]factory.SeriesStats `json:"series"`

	Disruptions       map[string]int `json:"disruptions"`
	StrategyChanges   int            `json:"strategy_changes"`
	StrategySpend     float64        `json:"strategy_spend"`
	MostUsedStrategy  string         `json:"most_used_strategy,omitempty"`
	ActiveStrategies  []string       `json:"active_strategies"`
	TelemetryMessages int64          `json:"telemetry_published"`
	TelemetryDropped  int64          `json:"telemetry_dropped"`
	TelemetryFailed   int64          `json:"telemetry_failed"`
}

// Summarize collects the report for a finished or stopped run.
func Summarize(f *factory.Factory) RunSummary {
	ledger := f.Ledger()
	fin := f.Finance()
	audit := trace.Summarize(f.Audit())
	published, dropped, failed := f.Publisher().Stats()

	series := make(map[string]factory.SeriesStats, len(summarySeries))
	for _, name := range summarySeries {
		series[name] = f.Metrics().Stats(name)
	}

	active := []string{}
	for _, st := range f.Strategies().Active() {
		active = append(active, st.Strategy.String())
	}

	return RunSummary{
		RunID:         f.Publisher().RunID().String(),
		Seed:          f.Config().Seed,
		SimulatedTime: sim.FormatTime(f.Now()),
		SimulatedDays: float64(f.Now()) / float64(sim.Day),
		EventsFired:   f.Clock().Fired(),

		TotalOrders:     ledger.TotalOrders(),
		FulfilledOrders: ledger.FulfilledOrders(),
		CancelledOrders: ledger.CancelledOrders(),
		Backlog:         ledger.Get(factory.Backlog),
		FillRate:        ledger.FillRate(),

		Revenue:      fin.Revenue,
		Costs:        fin.TotalCosts(),
		Profit:       fin.Profit(),
		ProfitMargin: fin.ProfitMargin(),

		OEE:          f.Metrics().OEE.Overall,
		QualityScore: f.Metrics().QualityScore,
		EnergyKWh:    f.Energy().Total,
		Downtime:     f.State().TotalDowntime,

		Series: series,

		Disruptions:       audit.DisruptionsByKind,
		StrategyChanges:   audit.TotalStrategyChanges,
		StrategySpend:     audit.StrategySpend,
		MostUsedStrategy:  audit.MostUsedStrategy,
		ActiveStrategies:  active,
		TelemetryMessages: published,
		TelemetryDropped:  dropped,
		TelemetryFailed:   failed,
	}
}

// printSummary writes the report as indented JSON under a header.
func printSummary(w io.Writer, s RunSummary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	_, err = fmt.Fprintf(w, "=== Simulation Metrics ===\n%s\n", data)
	return err
}
