package factory

import (
	"github.com/factory-sim/factory-sim/sim"
)

const (
	cncResaleValue      = 75000.0
	workforceStep       = 3
	workforceFloor      = 3
	emergencyMaterials  = 1000
	assemblyUpgrade     = 0.7
	generatorProtection = 0.1
	generatorWindow     = 24 * sim.Hour
	expeditedFailure    = 0.3
	expeditedWindow     = 48 * sim.Hour
	cancelShare         = 0.4
	cancelMinBacklog    = 10
	cancelFeeShare      = 0.15
	reallocateSpeedup   = 0.8
	reallocateWindow    = 8 * sim.Hour
	overtimeShiftFactor = 0.67
	overtimeShiftWindow = 24 * sim.Hour
)

// bulkDeliveries splits a bulk order into arrivals by day offset.
var bulkDeliveries = []int{666, 666, 668}

// execute runs a one-shot action. The implementation cost has been charged.
func (m *StrategyManager) execute(s Strategy) {
	f := m.f
	switch s {
	case PurchaseCNCMachine:
		f.state.TotalCNC++
		f.setOperationalCNC(f.state.OperationalCNC + 1)
		f.sensors.addMachine()
		if f.started && f.producers < f.state.TotalCNC {
			f.spawnProducer()
		}
		f.log(LevelInfo, "Equipment", "New CNC machine installed, now %d machines", f.state.TotalCNC)

	case SellCNCMachine:
		if f.state.TotalCNC <= 1 {
			f.log(LevelWarning, "Equipment", "Cannot sell the last CNC machine")
			return
		}
		f.state.TotalCNC--
		f.setOperationalCNC(f.state.OperationalCNC)
		f.sensors.removeMachine()
		f.finance.AddRevenue(dollars(cncResaleValue))
		f.log(LevelInfo, "Equipment", "Sold CNC machine for $%.0f, now %d machines", cncResaleValue, f.state.TotalCNC)

	case HireWorkers:
		f.state.TotalWorkers += workforceStep
		f.setAvailableWorkers(f.state.AvailableWorkers + workforceStep)
		f.log(LevelInfo, "Workforce", "Hired %d workers, headcount now %d", workforceStep, f.state.TotalWorkers)

	case ReduceWorkforce:
		n := min(workforceStep, f.state.TotalWorkers-workforceFloor)
		if n <= 0 {
			f.log(LevelWarning, "Workforce", "Cannot reduce workforce below %d workers", workforceFloor)
			return
		}
		f.state.TotalWorkers -= n
		f.setAvailableWorkers(f.state.AvailableWorkers - n)
		f.log(LevelInfo, "Workforce", "Reduced workforce by %d, headcount now %d", n, f.state.TotalWorkers)

	case EmergencyMaterials:
		f.ledger.Credit(RawMaterials, emergencyMaterials)
		f.log(LevelInfo, "Inventory", "Emergency delivery of %d raw materials", emergencyMaterials)

	case UpgradeAssembly:
		f.params.Rebase(ParamAssemblyTime, assemblyUpgrade)
		f.state.AssemblyStations++
		f.assembly.Resize(f.state.AssemblyStations)
		if f.started && f.assemblers < f.state.AssemblyStations {
			f.spawnAssembler()
		}
		f.log(LevelInfo, "Equipment", "Assembly upgraded: %d stations, %.1f minutes per product",
			f.state.AssemblyStations, f.params.AssemblyTime())

	case InstallBackupGenerator:
		if f.disruptions.EndEarly(PowerOutage) {
			f.log(LevelInfo, "Power", "Backup generator restored power immediately")
		}
		m.applyTimed("backup-generator", Scaling{ParamPowerOutageChance: generatorProtection}, generatorWindow)

	case ExpediteMaintenance:
		if f.disruptions.EndEarly(CNCFailure) {
			f.log(LevelInfo, "Maintenance", "Expedited repair returned every CNC machine to service")
		} else {
			m.applyTimed("expedited-maintenance", Scaling{ParamCNCFailureChance: expeditedFailure}, expeditedWindow)
		}
		f.sensors.reset()

	case BulkOrderMaterials:
		for day, amount := range bulkDeliveries {
			f.deliverMaterials(amount, int64(day)*sim.Day, "bulk order")
		}

	case CancelPendingOrders:
		backlog := f.ledger.Get(Backlog)
		if backlog <= cancelMinBacklog {
			f.log(LevelWarning, "Orders", "Backlog of %d is too small to cancel orders", backlog)
			return
		}
		n := f.ledger.Cancel(int(float64(backlog) * cancelShare))
		fee := units(n).Mul(dollars(f.cfg.Costs.ProductPrice * cancelFeeShare))
		f.finance.AddRevenue(fee)
		f.log(LevelInfo, "Orders", "Cancelled %d low-priority orders, collected $%s in fees", n, fee.StringFixed(2))

	case ReallocateWorkers:
		m.applyTimed("reallocate-workers", Scaling{
			ParamCNCProcessingTime: reallocateSpeedup,
			ParamAssemblyTime:      reallocateSpeedup,
		}, reallocateWindow)

	case ScheduleOvertime:
		m.applyTimed("weekend-overtime", Scaling{
			ParamCNCProcessingTime: overtimeShiftFactor,
			ParamAssemblyTime:      overtimeShiftFactor,
		}, overtimeShiftWindow)
	}
}
