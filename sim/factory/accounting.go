package factory

import (
	"github.com/factory-sim/factory-sim/sim"
)

const (
	peakStart            = 8 * sim.Hour
	peakEnd              = 17 * sim.Hour
	peakEquipmentSaves   = 0.15
	offPeakFacilitySaves = 0.05
)

// EnergyUsage accumulates consumption in kWh.
type EnergyUsage struct {
	CNC      float64
	Assembly float64
	QC       float64
	Facility float64
	Total    float64
}

// chargeWorkerCosts books one day of wages for the workers on site.
func (f *Factory) chargeWorkerCosts() {
	c := f.cfg.Costs
	hours := float64(f.state.AvailableWorkers) * c.WorkerShiftHours * c.WorkerShiftsPerDay
	cost := dollars(hours * c.WorkerHourlyWage * c.WorkerBenefitsFactor)
	f.finance.AddCost(cost)
	f.finance.WorkerSalaryCosts = f.finance.WorkerSalaryCosts.Add(cost)
	f.log(LevelInfo, "Finance", "Applied daily worker costs: $%s for %d workers", cost.StringFixed(2), f.state.AvailableWorkers)
}

// chargeHoldingCosts books one day of inventory carrying cost.
func (f *Factory) chargeHoldingCosts() {
	c := f.cfg.Costs
	value := dollars(float64(f.ledger.Get(RawMaterials)) * c.RawMaterialCost).
		Add(dollars(float64(f.ledger.Get(Parts)) * c.PartsValue)).
		Add(dollars(float64(f.ledger.Get(FinishedProducts)) * c.FinishedProductValue))
	f.finance.HoldingCosts = f.finance.HoldingCosts.Add(value.Mul(dollars(c.HoldingCostRate)))
}

// accrueEnergy books one hour of consumption, scaled by the utilization the
// monitor last sampled. Nothing is drawn during an outage.
func (f *Factory) accrueEnergy() {
	if f.state.PowerOutage {
		return
	}
	e := f.cfg.Energy
	u := f.metrics.Utilization
	cnc := float64(f.state.OperationalCNC) * e.CNCUsage * u.CNC
	assembly := float64(f.state.AssemblyStations) * e.AssemblyUsage * u.Assembly
	qc := float64(f.state.QCStations) * e.QCUsage * u.QC
	facility := e.FacilityBase

	if f.strategies.IsActive(PeakLoadOptimization) {
		minute := f.clock.Now() % sim.Day
		if minute >= peakStart && minute <= peakEnd {
			cnc *= 1 - peakEquipmentSaves
			assembly *= 1 - peakEquipmentSaves
			qc *= 1 - peakEquipmentSaves
		} else {
			facility *= 1 - offPeakFacilitySaves
		}
	}

	total := cnc + assembly + qc + facility
	f.energy.CNC += cnc
	f.energy.Assembly += assembly
	f.energy.QC += qc
	f.energy.Facility += facility
	f.energy.Total += total
	f.finance.EnergyCosts = f.finance.EnergyCosts.Add(dollars(total * e.CostPerKWh))
}
