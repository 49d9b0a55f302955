package factory

import (
	"sort"

	"github.com/factory-sim/factory-sim/sim"
)

const (
	lowRawMaterials      = 100
	highBacklogDays      = 5
	negativeProfitStreak = 24
)

// Utilization holds busy fractions in [0, 1], sampled hourly.
type Utilization struct {
	CNC      float64
	Assembly float64
	QC       float64
	Workers  float64
}

// OEE is overall equipment effectiveness and its factors, each in [0, 1].
type OEE struct {
	Availability float64
	Performance  float64
	Quality      float64
	Overall      float64
}

// Snapshot is one hourly sample. Never modified after it is appended.
type Snapshot struct {
	Time             int64
	RawMaterials     int
	Parts            int
	FinishedProducts int
	Backlog          int
	OperationalCNC   int
	AvailableWorkers int
	OrderRate        float64
	Revenue          float64
	Costs            float64
	HoldingCosts     float64
	EnergyCosts      float64
	Profit           float64
	OEE              float64 // percent
	Utilization      Utilization
}

// Metrics samples the plant every simulated hour into an append-only time
// series keyed by metric name.
type Metrics struct {
	f *Factory

	Utilization  Utilization
	OEE          OEE
	QualityScore float64 // 1 - rejections / inspected

	snapshots  []Snapshot
	series     map[string][]float64
	lossStreak int
}

func newMetrics(f *Factory) *Metrics {
	return &Metrics{
		f:            f,
		OEE:          OEE{Availability: 1, Performance: 1, Quality: 1, Overall: 1},
		QualityScore: 1,
		series:       make(map[string][]float64),
	}
}

// sample is the hourly monitor: utilization, OEE, the snapshot, weekly
// strategy costs, critical checks, and strategy expiration.
func (m *Metrics) sample() {
	f := m.f
	m.updateUtilization()
	if !f.state.PowerOutage {
		m.updateOEE()
	}
	m.updateQualityScore()
	m.record()

	now := f.clock.Now()
	if now > 0 && now%sim.Week < sim.Hour {
		f.strategies.chargeWeeklyCosts()
	}
	m.checkCriticalConditions()
	f.strategies.checkExpirations()
}

func (m *Metrics) updateUtilization() {
	f := m.f
	m.Utilization = Utilization{
		CNC:      ratio(f.cnc.InUse(), f.state.OperationalCNC),
		Assembly: ratio(f.assembly.InUse(), f.state.AssemblyStations),
		QC:       ratio(f.qc.InUse(), f.state.QCStations),
		Workers:  ratio(f.workers.InUse(), f.state.AvailableWorkers),
	}
}

func (m *Metrics) updateOEE() {
	f := m.f
	o := OEE{}
	if f.state.TotalCNC > 0 {
		o.Availability = float64(f.state.OperationalCNC) / float64(f.state.TotalCNC)
	}
	maxDaily := float64(sim.Day) / f.params.CNCProcessingTime() *
		float64(f.state.OperationalCNC) / float64(f.cfg.PartsPerProduct)
	if maxDaily > 0 {
		o.Performance = min(1, float64(f.state.DailyProduction)/maxDaily)
	}
	o.Quality = 1 - f.CurrentDefectRate()
	o.Overall = o.Availability * o.Performance * o.Quality
	m.OEE = o
}

func (m *Metrics) updateQualityScore() {
	s := m.f.state
	if s.TotalInspected == 0 {
		m.QualityScore = 1
		return
	}
	m.QualityScore = 1 - float64(s.DefectsFound+s.FalsePositives)/float64(s.TotalInspected)
}

func (m *Metrics) record() {
	f := m.f
	fin := f.finance
	snap := Snapshot{
		Time:             f.clock.Now(),
		RawMaterials:     f.ledger.Get(RawMaterials),
		Parts:            f.ledger.Get(Parts),
		FinishedProducts: f.ledger.Get(FinishedProducts),
		Backlog:          f.ledger.Get(Backlog),
		OperationalCNC:   f.state.OperationalCNC,
		AvailableWorkers: f.state.AvailableWorkers,
		OrderRate:        f.CurrentOrderRate(),
		Revenue:          fin.Revenue.InexactFloat64(),
		Costs:            fin.Costs.InexactFloat64(),
		HoldingCosts:     fin.HoldingCosts.InexactFloat64(),
		EnergyCosts:      fin.EnergyCosts.InexactFloat64(),
		Profit:           fin.Profit().InexactFloat64(),
		OEE:              m.OEE.Overall * 100,
		Utilization:      m.Utilization,
	}
	m.snapshots = append(m.snapshots, snap)

	m.append("time", float64(snap.Time))
	m.append("raw_materials", float64(snap.RawMaterials))
	m.append("parts_inventory", float64(snap.Parts))
	m.append("finished_products", float64(snap.FinishedProducts))
	m.append("backlog", float64(snap.Backlog))
	m.append("operational_cnc_machines", float64(snap.OperationalCNC))
	m.append("available_workers", float64(snap.AvailableWorkers))
	m.append("order_rate", snap.OrderRate)
	m.append("revenue", snap.Revenue)
	m.append("costs", snap.Costs)
	m.append("inventory_holding_costs", snap.HoldingCosts)
	m.append("energy_costs", snap.EnergyCosts)
	m.append("profit", snap.Profit)
	m.append("oee", snap.OEE)
	m.append("cnc_utilization", snap.Utilization.CNC*100)
	m.append("assembly_utilization", snap.Utilization.Assembly*100)
	m.append("qc_utilization", snap.Utilization.QC*100)

	if snap.Profit < 0 {
		m.lossStreak++
	} else {
		m.lossStreak = 0
	}
}

func (m *Metrics) append(name string, v float64) {
	m.series[name] = append(m.series[name], v)
}

func (m *Metrics) checkCriticalConditions() {
	f := m.f
	if raw := f.ledger.Get(RawMaterials); raw < lowRawMaterials {
		f.log(LevelWarning, "Inventory", "Low raw materials: %d units", raw)
	}
	if backlog := f.ledger.Get(Backlog); float64(backlog) > f.CurrentOrderRate()*highBacklogDays {
		f.log(LevelWarning, "Production", "High backlog: %d orders waiting", backlog)
	}
	if m.lossStreak >= negativeProfitStreak {
		f.log(LevelWarning, "Finance", "Negative profits for %d consecutive hours", m.lossStreak)
	}
	if s := f.state; float64(s.OperationalCNC) < float64(s.TotalCNC)/2 {
		f.log(LevelWarning, "Equipment", "Critical equipment shortage: only %d/%d CNC machines operational", s.OperationalCNC, s.TotalCNC)
	}
	if s := f.state; float64(s.AvailableWorkers) < float64(s.TotalWorkers)/2 {
		f.log(LevelWarning, "Workforce", "Critical worker shortage: only %d/%d workers available", s.AvailableWorkers, s.TotalWorkers)
	}
}

// Series returns a copy of the named metric's samples, oldest first.
func (m *Metrics) Series(name string) []float64 {
	src := m.series[name]
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// SeriesNames lists every recorded metric, sorted.
func (m *Metrics) SeriesNames() []string {
	names := make([]string, 0, len(m.series))
	for k := range m.series {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshots returns a copy of every hourly sample.
func (m *Metrics) Snapshots() []Snapshot {
	out := make([]Snapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// Latest returns the most recent sample.
func (m *Metrics) Latest() (Snapshot, bool) {
	if len(m.snapshots) == 0 {
		return Snapshot{}, false
	}
	return m.snapshots[len(m.snapshots)-1], true
}

func ratio(used, capacity int) float64 {
	return min(1, float64(used)/float64(max(1, capacity)))
}

// SeriesStats describes one metric series over the whole run.
type SeriesStats struct {
	Mean float64 `json:"mean"`
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
	Max  float64 `json:"max"`
}

// Stats summarizes the named series. Unknown names give zero stats.
func (m *Metrics) Stats(name string) SeriesStats {
	data := m.series[name]
	return SeriesStats{
		Mean: sim.Mean(data),
		P50:  sim.Percentile(data, 50),
		P95:  sim.Percentile(data, 95),
		Max:  sim.Percentile(data, 100),
	}
}
