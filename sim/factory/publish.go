package factory

import (
	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/telemetry"
)

// publishSnapshot pushes the periodic status topics. The publisher drops
// any topic that was sent too recently.
func (f *Factory) publishSnapshot() {
	now := f.clock.Now()
	pv := func(base, leaf string, v any) {
		f.pub.PublishValue(now, telemetry.Topic(base, leaf), v)
	}
	l, s, fin, m := f.ledger, f.state, f.finance, f.metrics

	pv(telemetry.InventoryBase, "rawMaterials", l.Get(RawMaterials))
	pv(telemetry.InventoryBase, "parts", l.Get(Parts))
	pv(telemetry.InventoryBase, "finishedProducts", l.Get(FinishedProducts))
	pv(telemetry.InventoryBase, "materialsInTransit", s.MaterialsInTransit)

	pv(telemetry.OrdersBase, "backlog", l.Get(Backlog))
	pv(telemetry.OrdersBase, "total", l.TotalOrders())
	pv(telemetry.OrdersBase, "fulfilled", l.FulfilledOrders())
	pv(telemetry.OrdersBase, "cancelled", l.CancelledOrders())
	pv(telemetry.OrdersBase, "fillRate", l.FillRate())
	pv(telemetry.OrdersBase, "currentRate", f.CurrentOrderRate())

	pv(telemetry.ResourcesBase, "operationalCNC", s.OperationalCNC)
	pv(telemetry.ResourcesBase, "totalCNC", s.TotalCNC)
	pv(telemetry.ResourcesBase, "availableWorkers", s.AvailableWorkers)
	pv(telemetry.ResourcesBase, "totalWorkers", s.TotalWorkers)
	pv(telemetry.ResourcesBase, "assemblyStations", s.AssemblyStations)
	pv(telemetry.ResourcesBase, "utilization", m.Utilization)

	pv(telemetry.FinancialBase, "revenue", fin.Revenue.InexactFloat64())
	pv(telemetry.FinancialBase, "liquidationRevenue", fin.LiquidationRevenue.InexactFloat64())
	pv(telemetry.FinancialBase, "costs", fin.Costs.InexactFloat64())
	pv(telemetry.FinancialBase, "holdingCosts", fin.HoldingCosts.InexactFloat64())
	pv(telemetry.FinancialBase, "energyCosts", fin.EnergyCosts.InexactFloat64())
	pv(telemetry.FinancialBase, "profit", fin.Profit().InexactFloat64())

	pv(telemetry.ProductionBase, "daily", s.DailyProduction)
	pv(telemetry.ProductionBase, "cncProcessingTime", f.params.CNCProcessingTime())
	pv(telemetry.ProductionBase, "assemblyTime", f.params.AssemblyTime())

	pv(telemetry.QualityBase, "score", m.QualityScore)
	pv(telemetry.QualityBase, "defectRate", f.CurrentDefectRate())
	pv(telemetry.QualityBase, "inspected", s.TotalInspected)
	pv(telemetry.QualityBase, "defectsFound", s.DefectsFound)
	pv(telemetry.QualityBase, "falsePositives", s.FalsePositives)
	pv(telemetry.QualityBase, "falseNegatives", s.FalseNegatives)

	pv(telemetry.EnergyBase, "usage", f.energy)

	pv(telemetry.OEEBase, "overall", m.OEE.Overall*100)
	pv(telemetry.OEEBase, "availability", m.OEE.Availability*100)
	pv(telemetry.OEEBase, "performance", m.OEE.Performance*100)
	pv(telemetry.OEEBase, "quality", m.OEE.Quality*100)

	pv(telemetry.MaintenanceBase, "events", s.MaintenanceEvents)
	pv(telemetry.MaintenanceBase, "mtbf", s.MTBF)
	pv(telemetry.MaintenanceBase, "mttr", s.MTTR)
	pv(telemetry.MaintenanceBase, "downtime", s.TotalDowntime)

	pv(telemetry.SensorsBase, "temperatures", f.sensors.Temperatures)
	pv(telemetry.SensorsBase, "vibrations", f.sensors.Vibrations)
	pv(telemetry.SensorsBase, "ambientTemperature", f.sensors.AmbientTemperature)
	pv(telemetry.SensorsBase, "ambientHumidity", f.sensors.AmbientHumidity)

	pv(telemetry.EquipmentBase, "temperatureAlert", f.sensors.TemperatureAlert())
	pv(telemetry.EquipmentBase, "vibrationAlert", f.sensors.VibrationAlert())
	pv(telemetry.EquipmentBase, "powerOutage", s.PowerOutage)

	active := make([]string, 0)
	for _, st := range f.strategies.Active() {
		active = append(active, st.Strategy.String())
	}
	pv(telemetry.StrategiesBase, "active", active)
	pv(telemetry.StrategiesBase, "weeklyCost", f.strategies.WeeklyCost())

	pv(telemetry.TimeBase, "minutes", now)
	pv(telemetry.TimeBase, "formatted", sim.FormatTime(now))
	pv(telemetry.TimeBase, "day", now/sim.Day+1)
}
