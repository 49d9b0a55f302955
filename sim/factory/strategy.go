package factory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/factory-sim/factory-sim/sim"
)

// Strategy is an operator-selectable intervention. The numeric value is the
// catalog index accepted by the command ingress.
type Strategy int

// Persistent strategies come first, one-shot actions after them.
const (
	PreventiveMaintenance Strategy = iota
	FlexibleWorkforce
	JustInTimeReplenishment
	SupplierDiversification
	OvertimePolicy
	QualityMonitoring
	KPIMonitoring
	ModularRepairKits
	Outsourcing
	LeanManufacturing
	PeakLoadOptimization
	InventoryLiquidation

	PurchaseCNCMachine
	SellCNCMachine
	HireWorkers
	ReduceWorkforce
	EmergencyMaterials
	UpgradeAssembly
	InstallBackupGenerator
	ExpediteMaintenance
	BulkOrderMaterials
	CancelPendingOrders
	ReallocateWorkers
	ScheduleOvertime

	numStrategies
)

// StrategyInfo is the static catalog entry for a strategy.
type StrategyInfo struct {
	Name               string // enum name, e.g. PREVENTIVE_MAINTENANCE
	Title              string
	ImplementationCost float64 // dollars, charged on activation or execution
	WeeklyCost         float64 // dollars per week while active
	DefaultDuration    int64   // minutes; 0 for one-shot actions
	OneShot            bool
	Effect             Scaling // multiplicative effect while active; nil if none
}

var catalog = [numStrategies]StrategyInfo{
	PreventiveMaintenance: {
		Name: "PREVENTIVE_MAINTENANCE", Title: "Implement Preventive Maintenance Schedule",
		ImplementationCost: 25000, WeeklyCost: 625, DefaultDuration: 14 * sim.Day,
		Effect: Scaling{ParamCNCFailureChance: 0.2},
	},
	FlexibleWorkforce: {
		Name: "FLEXIBLE_WORKFORCE", Title: "Maintain Flexible Workforce Training",
		ImplementationCost: 18000, WeeklyCost: 300, DefaultDuration: 21 * sim.Day,
		Effect: Scaling{ParamAssemblyTime: 0.7, ParamCNCProcessingTime: 0.7},
	},
	JustInTimeReplenishment: {
		Name: "JUST_IN_TIME_REPLENISHMENT", Title: "Just-In-Time Replenishment System",
		ImplementationCost: 20000, WeeklyCost: 300, DefaultDuration: 30 * sim.Day,
	},
	SupplierDiversification: {
		Name: "SUPPLIER_DIVERSIFICATION", Title: "Diversify Supplier Network",
		ImplementationCost: 35000, WeeklyCost: 450, DefaultDuration: 45 * sim.Day,
		Effect: Scaling{ParamSupplyChainChance: 0.25},
	},
	OvertimePolicy: {
		Name: "OVERTIME_POLICY", Title: "Strategic Overtime Policy",
		ImplementationCost: 5000, WeeklyCost: 0, DefaultDuration: 5 * sim.Day,
	},
	QualityMonitoring: {
		Name: "QUALITY_MONITORING", Title: "Enhanced Quality Monitoring System",
		ImplementationCost: 42000, WeeklyCost: 550, DefaultDuration: 30 * sim.Day,
		Effect: Scaling{ParamQualityIssueChance: 0.2, ParamDefectRate: 0.4},
	},
	KPIMonitoring: {
		Name: "KPI_MONITORING", Title: "Real-time KPI Monitoring System",
		ImplementationCost: 25000, WeeklyCost: 400, DefaultDuration: 30 * sim.Day,
		Effect: Scaling{ParamCNCFailureChance: 0.85, ParamQualityIssueChance: 0.85},
	},
	ModularRepairKits: {
		Name: "MODULAR_REPAIR_KITS", Title: "Modular Repair Kits System",
		ImplementationCost: 18000, WeeklyCost: 250, DefaultDuration: 60 * sim.Day,
	},
	Outsourcing: {
		Name: "OUTSOURCING", Title: "Temporary Production Outsourcing",
		ImplementationCost: 30000, WeeklyCost: 250, DefaultDuration: 10 * sim.Day,
	},
	LeanManufacturing: {
		Name: "LEAN_MANUFACTURING", Title: "Implement Lean Manufacturing Principles",
		ImplementationCost: 38000, WeeklyCost: 450, DefaultDuration: 60 * sim.Day,
	},
	PeakLoadOptimization: {
		Name: "PEAK_LOAD_OPTIMIZATION", Title: "Peak Load Optimization System",
		ImplementationCost: 15000, WeeklyCost: 350, DefaultDuration: 14 * sim.Day,
		Effect: Scaling{ParamPowerOutageChance: 0.6},
	},
	InventoryLiquidation: {
		Name: "INVENTORY_LIQUIDATION", Title: "Rapid Inventory Liquidation System",
		ImplementationCost: 8000, WeeklyCost: 200, DefaultDuration: 7 * sim.Day,
	},

	PurchaseCNCMachine:     {Name: "PURCHASE_CNC_MACHINE", Title: "Purchase Additional CNC Machine", ImplementationCost: 150000, OneShot: true},
	SellCNCMachine:         {Name: "SELL_CNC_MACHINE", Title: "Sell Underutilized CNC Machine", ImplementationCost: 5000, OneShot: true},
	HireWorkers:            {Name: "HIRE_WORKERS", Title: "Hire Additional Workers", ImplementationCost: 15000, OneShot: true},
	ReduceWorkforce:        {Name: "REDUCE_WORKFORCE", Title: "Reduce Workforce Size", ImplementationCost: 30000, OneShot: true},
	EmergencyMaterials:     {Name: "EMERGENCY_MATERIALS", Title: "Order Emergency Raw Materials", ImplementationCost: 40000, OneShot: true},
	UpgradeAssembly:        {Name: "UPGRADE_ASSEMBLY", Title: "Upgrade Assembly Stations", ImplementationCost: 75000, OneShot: true},
	InstallBackupGenerator: {Name: "INSTALL_BACKUP_GENERATOR", Title: "Install Emergency Backup Generator", ImplementationCost: 55000, OneShot: true},
	ExpediteMaintenance:    {Name: "EXPEDITE_MAINTENANCE", Title: "Expedite Machine Maintenance", ImplementationCost: 25000, OneShot: true},
	BulkOrderMaterials:     {Name: "BULK_ORDER_MATERIALS", Title: "Place Bulk Materials Order", ImplementationCost: 80000, OneShot: true},
	CancelPendingOrders:    {Name: "CANCEL_PENDING_ORDERS", Title: "Cancel Low-Priority Orders", ImplementationCost: 20000, OneShot: true},
	ReallocateWorkers:      {Name: "REALLOCATE_WORKERS", Title: "Reallocate Workers Between Departments", ImplementationCost: 5000, OneShot: true},
	ScheduleOvertime:       {Name: "SCHEDULE_OVERTIME", Title: "Schedule Weekend Overtime Shift", ImplementationCost: 18000, OneShot: true},
}

// Info returns the catalog entry. Panics on an out-of-range value.
func (s Strategy) Info() StrategyInfo {
	if !s.Valid() {
		panic(fmt.Sprintf("Strategy.Info: unknown strategy %d", int(s)))
	}
	return catalog[s]
}

// Valid reports whether s is a catalog index.
func (s Strategy) Valid() bool { return s >= 0 && s < numStrategies }

// OneShot reports whether s is an immediate action with no active state.
func (s Strategy) OneShot() bool { return s.Info().OneShot }

func (s Strategy) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return catalog[s].Name
}

// AllStrategies returns the catalog in index order.
func AllStrategies() []Strategy {
	out := make([]Strategy, numStrategies)
	for i := range out {
		out[i] = Strategy(i)
	}
	return out
}

// ParseStrategy resolves a catalog index ("3") or an enum name
// ("preventive_maintenance", case-insensitive).
func ParseStrategy(ref string) (Strategy, error) {
	ref = strings.TrimSpace(ref)
	if idx, err := strconv.Atoi(ref); err == nil {
		s := Strategy(idx)
		if !s.Valid() {
			return 0, fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidStrategy, idx, numStrategies)
		}
		return s, nil
	}
	for i, info := range catalog {
		if strings.EqualFold(info.Name, ref) {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, ref)
}
