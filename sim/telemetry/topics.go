package telemetry

// Topic roots published by the plant. Per-metric topics append a camelCase
// leaf, e.g. factory/inventory/rawMaterials.
const (
	InventoryBase   = "factory/inventory"
	OrdersBase      = "factory/orders"
	ProductionBase  = "factory/production"
	ResourcesBase   = "factory/resources"
	FinancialBase   = "factory/financial"
	DisruptionBase  = "factory/disruption"
	StrategiesBase  = "factory/strategies"
	TimeBase        = "factory/time"
	EnergyBase      = "factory/energy"
	QualityBase     = "factory/quality"
	EquipmentBase   = "factory/equipment"
	SensorsBase     = "factory/sensors"
	OEEBase         = "factory/oee"
	MaintenanceBase = "factory/maintenance"
	LogsBase        = "factory/logs"
)

// Command topics the plant accepts.
const (
	CommandPrefix     = "factory/command/"
	StrategyCommand   = CommandPrefix + "strategy"
	SimulationCommand = CommandPrefix + "simulation"
)

// Topic joins a base and a leaf.
func Topic(base, leaf string) string {
	return base + "/" + leaf
}
