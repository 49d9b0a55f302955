package factory

import (
	"fmt"

	"github.com/factory-sim/factory-sim/sim"
)

const (
	pmPreventChance = 0.7 // preventive maintenance vs. CNC failure
	sdPreventChance = 0.8 // supplier diversification vs. supply chain

	repairBaseCost     = 5000.0
	repairHourlyRate   = 250.0
	modularRepairSpeed = 0.6
	kpiRepairSpeed     = 0.85
	kpiRepairDiscount  = 0.9

	outsourcedShare    = 0.6
	outsourcingCost    = 1200.0
	overtimeSpeedup    = 1.3
	overtimeRate       = 50.0
	overtimeShare      = 0.5
	absenceCoverShare  = 0.6
	absenceCoverRate   = 30.0
	supplyChainDivided = 0.5

	qualityIssueRate           = 0.4
	qualityIssueRateMonitored  = 0.15
	qualityIssueHours          = 12
	qualityIssueHoursMonitored = 4
	scrapCost                  = 300.0

	outageRestartCost   = 5000.0
	outageStressPerCNC  = 250.0
	peakLoadOutageScale = 0.6

	cancelFeeRate          = 0.1
	liquidationCancelScale = 0.6
)

func (g *DisruptionGenerator) planCNCFailure() (disruptionPlan, bool) {
	f := g.f
	if f.state.OperationalCNC <= 0 {
		return disruptionPlan{}, false
	}
	repair := float64(sim.IntBetween(f.disruptionRNG(), 8, 36) * 60)
	base := repairBaseCost
	if f.strategies.IsActive(ModularRepairKits) {
		repair *= modularRepairSpeed
		f.log(LevelInfo, "Maintenance", "Modular repair kits enabled faster repairs")
	}
	if f.strategies.IsActive(KPIMonitoring) {
		repair *= kpiRepairSpeed
		base *= kpiRepairDiscount
		f.log(LevelInfo, "Maintenance", "Real-time KPI monitoring enabled early issue detection")
	}
	duration := sim.Minutes(repair)
	cost := base + float64(duration)/60*repairHourlyRate

	return disruptionPlan{
		description: "A CNC machine has broken down",
		duration:    duration,
		severity:    map[string]float64{"repairMinutes": float64(duration), "repairCost": cost},
		apply: func() {
			f.recordFailure(duration)
			f.setOperationalCNC(f.state.OperationalCNC - 1)
			f.finance.AddCost(dollars(cost))
			f.log(LevelInfo, "Maintenance", "CNC repair will take %.1f hours and cost $%.2f", float64(duration)/60, cost)
		},
		revert: func() {
			f.setOperationalCNC(f.state.OperationalCNC + 1)
			f.log(LevelInfo, "Maintenance", "CNC machine repair completed and returned to service")
		},
	}, true
}

// recordFailure updates maintenance figures once per failure.
func (f *Factory) recordFailure(repair int64) {
	s := &f.state
	now := f.clock.Now()
	s.MaintenanceEvents++
	if s.MaintenanceEvents > 1 {
		intervals := float64(s.MaintenanceEvents - 1)
		s.MTBF = (s.MTBF*(intervals-1) + float64(now-s.LastFailureTime)) / intervals
	}
	s.LastFailureTime = now
	s.TotalDowntime += repair
	s.repairTotal += repair
	s.repairCount++
	s.MTTR = float64(s.repairTotal) / float64(s.repairCount)
}

func (g *DisruptionGenerator) planOrderSpike() (disruptionPlan, bool) {
	f := g.f
	rng := f.disruptionRNG()
	multiplier := sim.Uniform(rng, 2, 4)
	days := sim.IntBetween(rng, 1, 3)
	duration := int64(days) * sim.Day
	rate := f.CurrentOrderRate()
	extra := int((rate*multiplier - rate) * float64(days))

	return disruptionPlan{
		description: "Received a sudden surge in orders",
		duration:    duration,
		severity:    map[string]float64{"multiplier": multiplier, "additionalOrders": float64(extra)},
		apply: func() {
			f.state.OrderSpikeMultiplier = multiplier
			f.log(LevelInfo, "Orders", "Order spike: %d additional orders over %d days", extra, days)
			if f.strategies.IsActive(Outsourcing) {
				n := int(float64(extra) * outsourcedShare)
				f.ledger.BookOutsourced(n)
				revenue := units(n).Mul(dollars(f.cfg.Costs.ProductPrice))
				cost := units(n).Mul(dollars(outsourcingCost))
				f.finance.AddRevenue(revenue)
				f.finance.AddCost(cost)
				f.log(LevelInfo, "Production", "Outsourced %d orders for revenue of $%s and cost of $%s", n, revenue.StringFixed(0), cost.StringFixed(0))
			}
			if f.strategies.IsActive(OvertimePolicy) {
				f.strategies.applyTimed("overtime-for-spike", Scaling{
					ParamAssemblyTime:      1 / overtimeSpeedup,
					ParamCNCProcessingTime: 1 / overtimeSpeedup,
				}, duration)
				crew := min(f.state.TotalWorkers, f.state.TotalCNC+f.state.AssemblyStations)
				cost := float64(duration) / 60 * float64(crew) * overtimeRate * overtimeShare
				f.finance.AddCost(dollars(cost))
				f.log(LevelInfo, "Workforce", "Implemented overtime policy at cost of $%.2f", cost)
			}
		},
		revert: func() {
			f.state.OrderSpikeMultiplier = 1
			f.log(LevelInfo, "Orders", "Order rate returned to normal")
		},
	}, true
}

func (g *DisruptionGenerator) planSupplyChain() (disruptionPlan, bool) {
	f := g.f
	if f.state.SupplyChainDisrupted {
		return disruptionPlan{}, false
	}
	duration := float64(int64(sim.IntBetween(f.disruptionRNG(), 2, 7)) * sim.Day)
	if f.strategies.IsActive(SupplierDiversification) {
		duration *= supplyChainDivided
	}
	return disruptionPlan{
		description: "Supply chain disruption affecting raw material delivery",
		duration:    sim.Minutes(duration),
		apply:       func() { f.state.SupplyChainDisrupted = true },
		revert: func() {
			f.state.SupplyChainDisrupted = false
			f.log(LevelInfo, "Supply", "Supply chain restored")
		},
	}, true
}

func (g *DisruptionGenerator) planWorkerAbsence() (disruptionPlan, bool) {
	f := g.f
	rng := f.disruptionRNG()
	maxAbsent := 3
	if f.strategies.IsActive(FlexibleWorkforce) {
		maxAbsent = 1
	}
	absent := min(sim.IntBetween(rng, 1, maxAbsent), f.state.AvailableWorkers)
	if absent <= 0 {
		return disruptionPlan{}, false
	}
	duration := int64(sim.IntBetween(rng, 1, 3)) * sim.Day

	return disruptionPlan{
		description: fmt.Sprintf("%d workers absent", absent),
		duration:    duration,
		severity:    map[string]float64{"absent": float64(absent)},
		apply: func() {
			f.setAvailableWorkers(f.state.AvailableWorkers - absent)
			if f.strategies.IsActive(OvertimePolicy) {
				cover := float64(duration) / 60 * float64(absent) * absenceCoverShare * absenceCoverRate
				f.finance.AddCost(dollars(cover))
			}
		},
		revert: func() {
			f.setAvailableWorkers(f.state.AvailableWorkers + absent)
			f.log(LevelInfo, "Workforce", "%d absent workers returned to duty", absent)
		},
	}, true
}

func (g *DisruptionGenerator) planQualityIssue() (disruptionPlan, bool) {
	f := g.f
	if f.state.QualityIssue {
		return disruptionPlan{}, false
	}
	rate, hours := qualityIssueRate, int64(qualityIssueHours)
	if f.strategies.IsActive(QualityMonitoring) {
		rate, hours = qualityIssueRateMonitored, qualityIssueHoursMonitored
	}
	return disruptionPlan{
		description: "Quality control issue detected in production",
		duration:    hours * sim.Hour,
		severity:    map[string]float64{"defectRate": rate},
		apply: func() {
			f.state.QualityIssue = true
			f.state.QualityIssueDefectRate = rate
			scrapped := int(float64(f.ledger.Get(FinishedProducts)) * rate)
			if scrapped > 0 && f.ledger.Debit(FinishedProducts, scrapped) {
				f.state.DefectsFound += scrapped
				f.finance.AddCost(units(scrapped).Mul(dollars(scrapCost)))
				f.log(LevelWarning, "Quality", "Scrapped %d finished products", scrapped)
			}
		},
		revert: func() {
			f.state.QualityIssue = false
			f.log(LevelInfo, "Quality", "Quality issue resolved")
		},
	}, true
}

func (g *DisruptionGenerator) planPowerOutage() (disruptionPlan, bool) {
	f := g.f
	if f.state.PowerOutage {
		return disruptionPlan{}, false
	}
	minutes := float64(sim.IntBetween(f.disruptionRNG(), 45, 360))
	lostProduction := f.CurrentOrderRate() / 24 * minutes / 60
	if f.strategies.IsActive(PeakLoadOptimization) {
		original := minutes
		minutes *= peakLoadOutageScale
		f.log(LevelInfo, "Power", "Peak load optimization reduced outage from %.0f to %.0f minutes", original, minutes)
	}
	duration := sim.Minutes(minutes)
	cost := outageRestartCost + lostProduction*f.cfg.Costs.FinishedProductValue +
		outageStressPerCNC*float64(f.state.OperationalCNC)

	return disruptionPlan{
		description: "Power outage affecting entire factory",
		duration:    duration,
		severity:    map[string]float64{"minutes": float64(duration), "cost": cost},
		apply: func() {
			f.state.PowerOutage = true
			f.state.TotalDowntime += duration
			f.finance.AddCost(dollars(cost))
			f.log(LevelWarning, "Power", "Power outage will last %d minutes with estimated cost of $%.2f", duration, cost)
		},
		revert: func() {
			f.state.PowerOutage = false
			f.log(LevelInfo, "Power", "Power has been restored, restarting production")
		},
	}, true
}

func (g *DisruptionGenerator) planOrderCancellation() (disruptionPlan, bool) {
	f := g.f
	if f.ledger.Get(Backlog) <= 0 {
		return disruptionPlan{}, false
	}
	rng := f.disruptionRNG()
	share := sim.Uniform(rng, 0.2, 0.5)
	n := int(float64(f.ledger.Get(Backlog)) * share)
	liquidating := f.strategies.IsActive(InventoryLiquidation)
	if liquidating {
		n = int(float64(n) * liquidationCancelScale)
	}
	duration := int64(sim.IntBetween(rng, 4, 12)) * sim.Hour

	return disruptionPlan{
		description: "Customer cancelled significant portion of orders",
		duration:    duration,
		severity:    map[string]float64{"share": share, "orders": float64(n)},
		apply: func() {
			f.state.OrderCancellationActive = true
			if liquidating {
				f.log(LevelInfo, "Inventory", "Rapid Inventory Liquidation reduced order cancellation impact")
				f.liquidateExcess()
			}
			cancelled := f.ledger.Cancel(n)
			f.log(LevelWarning, "Orders", "Order Cancellation: %d orders cancelled (%.1f%% of backlog)", cancelled, share*100)
			fee := units(cancelled).Mul(dollars(f.cfg.Costs.ProductPrice * cancelFeeRate))
			if fee.IsPositive() {
				f.finance.AddRevenue(fee)
				f.log(LevelInfo, "Finance", "Received $%s in cancellation fees", fee.StringFixed(2))
			}
		},
		revert: func() {
			f.state.OrderCancellationActive = false
			f.log(LevelInfo, "Orders", "Order cancellation event ended")
		},
	}, true
}
