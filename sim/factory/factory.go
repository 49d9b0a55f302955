package factory

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/telemetry"
	"github.com/factory-sim/factory-sim/sim/trace"
)

// LogLevel is the domain severity attached to plant log entries.
type LogLevel string

const (
	LevelInfo       LogLevel = "INFO"
	LevelWarning    LogLevel = "WARNING"
	LevelError      LogLevel = "ERROR"
	LevelStrategy   LogLevel = "STRATEGY"
	LevelDisruption LogLevel = "DISRUPTION"
)

// LogEntry is one plant log line, kept in memory and published.
type LogEntry struct {
	Timestamp string   `json:"timestamp"`
	SimTime   int64    `json:"simulationTime"`
	Level     LogLevel `json:"level"`
	Component string   `json:"component"`
	Message   string   `json:"message"`
}

// PlantState is the plant's status beyond the inventory ledger.
type PlantState struct {
	TotalCNC         int // machines owned
	OperationalCNC   int // machines owned and not under repair; CNC pool ceiling
	TotalWorkers     int // headcount
	AvailableWorkers int // headcount minus absentees; worker pool ceiling
	AssemblyStations int
	QCStations       int

	OrderSpikeMultiplier    float64
	SupplyChainDisrupted    bool
	QualityIssue            bool
	QualityIssueDefectRate  float64
	PowerOutage             bool
	OrderCancellationActive bool

	DailyProduction    int
	MaterialsInTransit int

	TotalInspected     int
	DefectsFound       int
	FalsePositives     int
	FalseNegatives     int
	ScrappedAtAssembly int

	MaintenanceEvents int
	TotalDowntime     int64 // minutes, repairs and outages
	MTBF              float64
	MTTR              float64
	LastFailureTime   int64
	repairTotal       int64
	repairCount       int
}

// Factory wires the plant: pools, ledger, processes, and the components that
// perturb them. It is driven by a single sim.Clock.
//
// Thread-safety: NOT thread-safe. Commands must be applied from the goroutine
// that drives the clock.
type Factory struct {
	cfg    Config
	clock  *sim.Clock
	rng    *sim.PartitionedRNG
	params *RateParams
	pub    *telemetry.Publisher
	audit  *trace.AuditTrail

	ledger  *Ledger
	finance *Financials
	energy  EnergyUsage
	state   PlantState

	cnc      *sim.Pool
	assembly *sim.Pool
	qc       *sim.Pool
	workers  *sim.Pool

	strategies  *StrategyManager
	disruptions *DisruptionGenerator
	sensors     *Sensors
	metrics     *Metrics

	producers  int
	assemblers int
	started    bool
	paused     bool
	stopped    bool
	logs       []LogEntry
}

// New builds a plant from cfg. The plant is idle until Start or RunUntil.
// A nil publisher discards telemetry.
func New(cfg Config, pub *telemetry.Publisher) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pub == nil {
		pub = telemetry.NewPublisher(telemetry.Discard, uuid.Nil, 0)
	}
	clock := sim.NewClock()
	f := &Factory{
		cfg:     cfg,
		clock:   clock,
		rng:     sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)),
		params:  NewRateParams(cfg),
		pub:     pub,
		audit:   trace.NewAuditTrail(),
		ledger:  NewLedger(cfg.InitialRawMaterials, cfg.InitialParts),
		finance: &Financials{},
		state: PlantState{
			TotalCNC:             cfg.CNCMachines,
			OperationalCNC:       cfg.CNCMachines,
			TotalWorkers:         cfg.Workers,
			AvailableWorkers:     cfg.Workers,
			AssemblyStations:     cfg.AssemblyStations,
			QCStations:           cfg.QCStations,
			OrderSpikeMultiplier: 1,
		},
		cnc:      sim.NewPool(clock, "cnc", cfg.CNCMachines),
		assembly: sim.NewPool(clock, "assembly", cfg.AssemblyStations),
		qc:       sim.NewPool(clock, "qc", cfg.QCStations),
		workers:  sim.NewPool(clock, "workers", cfg.Workers),
	}
	f.strategies = newStrategyManager(f)
	f.disruptions = newDisruptionGenerator(f)
	f.sensors = newSensors(f)
	f.metrics = newMetrics(f)
	return f, nil
}

// Start spawns every long-running process. Calling it twice is a no-op.
func (f *Factory) Start() {
	if f.started {
		return
	}
	f.started = true
	for i := 0; i < f.state.TotalCNC; i++ {
		f.spawnProducer()
	}
	for i := 0; i < f.state.AssemblyStations; i++ {
		f.spawnAssembler()
	}
	f.every(sim.Day, sim.Day, "orders", f.generateOrders)
	f.every(sim.Day, sim.Day, "worker-costs", f.chargeWorkerCosts)
	f.every(sim.Day, sim.Day, "holding-costs", f.chargeHoldingCosts)
	f.every(sim.Hour, sim.Hour, "energy", f.accrueEnergy)
	f.every(sensorInterval, sensorInterval, "sensors", f.sensors.update)
	f.every(0, sim.Hour, "monitor", f.metrics.sample)
	f.every(0, f.cfg.PublishEvery, "publish", f.publishSnapshot)
	f.disruptions.start()
	f.log(LevelInfo, "Simulation", "Factory simulation started with seed %d", f.cfg.Seed)
}

// RunUntil starts the plant if needed and dispatches events up to minute
// until, stopping early if a stop command arrives.
func (f *Factory) RunUntil(until int64) {
	f.Start()
	for !f.stopped {
		t, ok := f.clock.PeekTime()
		if !ok || t > until {
			break
		}
		f.clock.Step()
	}
	if !f.stopped {
		f.clock.RunUntil(until)
	}
}

// Run is RunUntil for a number of simulated days from minute 0.
func (f *Factory) Run(days int) {
	f.RunUntil(int64(days) * sim.Day)
}

// every runs fn after first minutes and then every period minutes.
func (f *Factory) every(first, period int64, name string, fn func()) {
	var tick func()
	tick = func() {
		fn()
		f.clock.Schedule(period, name, tick)
	}
	f.clock.Schedule(first, name, tick)
}

// log records a plant log entry, mirrors it to logrus, and publishes it.
func (f *Factory) log(level LogLevel, component, format string, args ...any) {
	now := f.clock.Now()
	entry := LogEntry{
		Timestamp: sim.FormatTime(now),
		SimTime:   now,
		Level:     level,
		Component: component,
		Message:   fmt.Sprintf(format, args...),
	}
	f.logs = append(f.logs, entry)

	le := logrus.WithFields(logrus.Fields{"component": component, "sim_time": now})
	switch level {
	case LevelWarning:
		le.Warnf("[%s] %s", level, entry.Message)
	case LevelError:
		le.Errorf("[%s] %s", level, entry.Message)
	default:
		le.Infof("[%s] %s", level, entry.Message)
	}
	f.pub.Publish(now, telemetry.Topic(telemetry.LogsBase, strings.ToLower(string(level))), entry)
}

// setOperationalCNC moves the CNC pool ceiling, clamped to [0, owned machines].
func (f *Factory) setOperationalCNC(n int) {
	n = max(0, min(n, f.state.TotalCNC))
	f.state.OperationalCNC = n
	f.cnc.Resize(n)
}

// setAvailableWorkers moves the worker pool ceiling, clamped to [0, headcount].
func (f *Factory) setAvailableWorkers(n int) {
	n = max(0, min(n, f.state.TotalWorkers))
	f.state.AvailableWorkers = n
	f.workers.Resize(n)
}

// CurrentOrderRate is the normal daily rate scaled by any running spike.
func (f *Factory) CurrentOrderRate() float64 {
	return f.cfg.NormalOrderRate * f.state.OrderSpikeMultiplier
}

// CurrentDefectRate is the quality-issue rate while one is active, otherwise
// the strategy-modulated base rate.
func (f *Factory) CurrentDefectRate() float64 {
	if f.state.QualityIssue {
		return f.state.QualityIssueDefectRate
	}
	return f.params.DefectRate()
}

// Pause, Resume, and Stop are honored by the driver loop; Stop also ends
// RunUntil.
func (f *Factory) Pause()  { f.paused = true }
func (f *Factory) Resume() { f.paused = false }
func (f *Factory) Stop()   { f.stopped = true }

func (f *Factory) Paused() bool  { return f.paused }
func (f *Factory) Stopped() bool { return f.stopped }

func (f *Factory) Config() Config                    { return f.cfg }
func (f *Factory) Clock() *sim.Clock                 { return f.clock }
func (f *Factory) Now() int64                        { return f.clock.Now() }
func (f *Factory) Params() *RateParams               { return f.params }
func (f *Factory) Ledger() *Ledger                   { return f.ledger }
func (f *Factory) Finance() *Financials              { return f.finance }
func (f *Factory) Energy() EnergyUsage               { return f.energy }
func (f *Factory) State() PlantState                 { return f.state }
func (f *Factory) Strategies() *StrategyManager      { return f.strategies }
func (f *Factory) Disruptions() *DisruptionGenerator { return f.disruptions }
func (f *Factory) Sensors() *Sensors                 { return f.sensors }
func (f *Factory) Metrics() *Metrics                 { return f.metrics }
func (f *Factory) Audit() *trace.AuditTrail          { return f.audit }
func (f *Factory) Publisher() *telemetry.Publisher   { return f.pub }

// Pools returns the four resource pools in acquisition order.
func (f *Factory) Pools() (cnc, assembly, qc, workers *sim.Pool) {
	return f.cnc, f.assembly, f.qc, f.workers
}

// Logs returns a copy of every log entry so far.
func (f *Factory) Logs() []LogEntry {
	out := make([]LogEntry, len(f.logs))
	copy(out, f.logs)
	return out
}

// newID draws an audit identifier from a dedicated stream so IDs replay
// with the seed without shifting any other random sequence.
func (f *Factory) newID() string {
	id, err := uuid.NewRandomFromReader(f.rng.ForSubsystem(subsystemAuditIDs))
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

const subsystemAuditIDs = "audit-ids"

func (f *Factory) ordersRNG() *rand.Rand     { return f.rng.ForSubsystem(sim.SubsystemOrders) }
func (f *Factory) disruptionRNG() *rand.Rand { return f.rng.ForSubsystem(sim.SubsystemDisruptions) }
func (f *Factory) qualityRNG() *rand.Rand    { return f.rng.ForSubsystem(sim.SubsystemQuality) }
func (f *Factory) sensorRNG() *rand.Rand     { return f.rng.ForSubsystem(sim.SubsystemSensors) }
