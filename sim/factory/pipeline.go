package factory

import (
	"github.com/factory-sim/factory-sim/sim"
)

const (
	pollInterval       int64 = 10 // outage, stock, and machine re-checks
	workerPollInterval int64 = 60 // assembler re-check when no worker is available

	leanSpeedup = 0.8 // processing-time factor under lean manufacturing

	assemblyScrapChance = 0.3 // per batch, while a quality issue is active
	assemblyScrapKeep   = 0.7 // fraction of a scrapped batch that survives

	detectionChance          = 0.9
	detectionChanceMonitored = 0.98
	falsePositive            = 0.05
	falsePositiveMonitored   = 0.02
)

// spawnProducer starts one CNC producer loop.
func (f *Factory) spawnProducer() {
	f.producers++
	f.clock.Schedule(0, "producer", f.produce)
}

// spawnAssembler starts one assembler loop.
func (f *Factory) spawnAssembler() {
	f.assemblers++
	f.clock.Schedule(0, "assembler", f.assemble)
}

// cycleTime is the hold time for a batch, with the lean speedup if active.
func (f *Factory) cycleTime(perUnit float64, batch int) int64 {
	d := perUnit * float64(batch)
	if f.strategies.IsActive(LeanManufacturing) {
		d *= leanSpeedup
	}
	return sim.Minutes(d)
}

// produce runs one producer cycle: CNC slot, then worker, then a batch of
// raw materials turned into parts.
func (f *Factory) produce() {
	if f.state.PowerOutage || f.ledger.Get(RawMaterials) <= 0 ||
		f.state.OperationalCNC <= 0 || f.state.AvailableWorkers <= 0 {
		f.clock.Schedule(pollInterval, "producer-poll", f.produce)
		return
	}
	f.cnc.Acquire(func(machine *sim.Hold) {
		f.workers.Acquire(func(worker *sim.Hold) {
			batch := f.ledger.TakeUpTo(RawMaterials, f.cfg.MaterialBatchCap)
			if batch == 0 {
				// another producer took the last materials while we waited
				worker.Release()
				machine.Release()
				f.clock.Schedule(pollInterval, "producer-poll", f.produce)
				return
			}
			f.clock.Schedule(f.cycleTime(f.params.CNCProcessingTime(), batch), "producer-done", func() {
				f.ledger.Credit(Parts, batch)
				f.finance.AddCost(units(batch).Mul(dollars(f.cfg.Costs.PartProcessingCost)))
				worker.Release()
				machine.Release()
				f.produce()
			})
		})
	})
}

// assemble runs one assembler cycle: station and worker as a pair, then up
// to a batch of products handed to QC one unit at a time.
func (f *Factory) assemble() {
	switch {
	case f.state.PowerOutage:
		f.clock.Schedule(pollInterval, "assembler-poll", f.assemble)
		return
	case f.ledger.Get(Parts) < f.cfg.PartsPerProduct:
		f.clock.Schedule(pollInterval, "assembler-poll", f.assemble)
		return
	case f.state.AvailableWorkers <= 0:
		f.clock.Schedule(workerPollInterval, "assembler-poll", f.assemble)
		return
	}
	sim.AcquireBoth(f.assembly, f.workers, func(pair *sim.JointHold) {
		products := f.ledger.TakeKits(f.cfg.PartsPerProduct, f.cfg.AssemblyBatchCap)
		if products == 0 {
			pair.Release()
			f.clock.Schedule(pollInterval, "assembler-poll", f.assemble)
			return
		}
		f.clock.Schedule(f.cycleTime(f.params.AssemblyTime(), products), "assembler-done", func() {
			good := products
			if f.state.QualityIssue && f.qualityRNG().Float64() < assemblyScrapChance {
				good = int(float64(products) * assemblyScrapKeep)
				f.state.ScrappedAtAssembly += products - good
			}
			f.finance.AddCost(units(products).Mul(dollars(f.cfg.Costs.AssemblyCost)))
			for i := 0; i < good; i++ {
				f.inspect()
			}
			pair.Release()
			f.assemble()
		})
	})
}

// inspect carries a single unit through QC. A unit that arrives during an
// outage waits for power instead of being lost.
func (f *Factory) inspect() {
	if f.state.PowerOutage {
		f.clock.Schedule(pollInterval, "qc-wait", f.inspect)
		return
	}
	sim.AcquireBoth(f.qc, f.workers, func(pair *sim.JointHold) {
		f.clock.Schedule(sim.Minutes(f.params.QCInspectionTime()), "qc-done", func() {
			f.classify()
			pair.Release()
			f.processBacklog()
		})
	})
}

// classify draws whether the unit is defective and whether inspection flags
// it, then credits finished goods if it passes.
func (f *Factory) classify() {
	rng := f.qualityRNG()
	monitored := f.strategies.IsActive(QualityMonitoring)
	f.state.TotalInspected++

	rejected := false
	if rng.Float64() < f.CurrentDefectRate() {
		detect := detectionChance
		if monitored {
			detect = detectionChanceMonitored
		}
		if rng.Float64() < detect {
			rejected = true
			f.state.DefectsFound++
		} else {
			f.state.FalseNegatives++
		}
	} else {
		fp := falsePositive
		if monitored {
			fp = falsePositiveMonitored
		}
		if rng.Float64() < fp {
			rejected = true
			f.state.FalsePositives++
		}
	}
	if !rejected {
		f.ledger.Credit(FinishedProducts, 1)
	}
}
