package factory

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds the plant parameters. Every section must be listed with a yaml
// tag so strict decoding (KnownFields) rejects typos in plant files.
type Config struct {
	Seed int64 `yaml:"seed"`

	CNCMachines      int `yaml:"cnc_machines" validate:"min=1"`
	AssemblyStations int `yaml:"assembly_stations" validate:"min=1"`
	QCStations       int `yaml:"qc_stations" validate:"min=1"`
	Workers          int `yaml:"workers" validate:"min=1"`

	InitialParts        int `yaml:"initial_parts" validate:"min=0"`
	InitialRawMaterials int `yaml:"initial_raw_materials" validate:"min=0"`

	CNCProcessingTime float64 `yaml:"cnc_processing_time" validate:"gt=0"` // minutes per part
	AssemblyTime      float64 `yaml:"assembly_time" validate:"gt=0"`       // minutes per product
	QCInspectionTime  float64 `yaml:"qc_inspection_time" validate:"gt=0"`  // minutes per product
	PartsPerProduct   int     `yaml:"parts_per_product" validate:"min=1"`
	MaterialBatchCap  int     `yaml:"material_batch_cap" validate:"min=1"`
	AssemblyBatchCap  int     `yaml:"assembly_batch_cap" validate:"min=1"`
	NormalOrderRate   float64 `yaml:"normal_order_rate" validate:"gte=0"` // products per day
	DeliveryTime      int64   `yaml:"delivery_time" validate:"gte=0"`     // minutes
	ReorderPoint      int     `yaml:"reorder_point" validate:"gte=0"`
	ReorderQuantity   int     `yaml:"reorder_quantity" validate:"min=1"`
	BaseDefectRate    float64 `yaml:"base_defect_rate" validate:"gte=0,lte=1"`

	PublishEvery int64 `yaml:"publish_every" validate:"min=1"` // simulated minutes between snapshots

	Costs       CostConfig       `yaml:"costs"`
	Energy      EnergyConfig     `yaml:"energy"`
	Disruptions DisruptionConfig `yaml:"disruptions"`
}

// CostConfig groups wages, material values, and prices (dollars).
type CostConfig struct {
	WorkerHourlyWage     float64 `yaml:"worker_hourly_wage" validate:"gte=0"`
	WorkerShiftHours     float64 `yaml:"worker_shift_hours" validate:"gte=0"`
	WorkerShiftsPerDay   float64 `yaml:"worker_shifts_per_day" validate:"gte=0"`
	WorkerBenefitsFactor float64 `yaml:"worker_benefits_factor" validate:"gte=1"`
	RawMaterialCost      float64 `yaml:"raw_material_cost" validate:"gte=0"`
	HoldingCostRate      float64 `yaml:"holding_cost_rate" validate:"gte=0,lte=1"` // per day
	PartsValue           float64 `yaml:"parts_value" validate:"gte=0"`
	FinishedProductValue float64 `yaml:"finished_product_value" validate:"gte=0"`
	ProductPrice         float64 `yaml:"product_price" validate:"gte=0"`
	PartProcessingCost   float64 `yaml:"part_processing_cost" validate:"gte=0"`
	AssemblyCost         float64 `yaml:"assembly_cost" validate:"gte=0"`
}

// EnergyConfig groups hourly consumption (kWh) and price.
type EnergyConfig struct {
	CostPerKWh    float64 `yaml:"cost_per_kwh" validate:"gte=0"`
	CNCUsage      float64 `yaml:"cnc_usage" validate:"gte=0"`
	AssemblyUsage float64 `yaml:"assembly_usage" validate:"gte=0"`
	QCUsage       float64 `yaml:"qc_usage" validate:"gte=0"`
	FacilityBase  float64 `yaml:"facility_base" validate:"gte=0"`
}

// DisruptionConfig holds the daily chance of each disruption kind.
type DisruptionConfig struct {
	CNCFailure        float64 `yaml:"cnc_failure" validate:"gte=0,lte=4"`
	OrderSpike        float64 `yaml:"order_spike" validate:"gte=0,lte=4"`
	SupplyChain       float64 `yaml:"supply_chain" validate:"gte=0,lte=4"`
	WorkerAbsence     float64 `yaml:"worker_absence" validate:"gte=0,lte=4"`
	QualityIssue      float64 `yaml:"quality_issue" validate:"gte=0,lte=4"`
	PowerOutage       float64 `yaml:"power_outage" validate:"gte=0,lte=4"`
	OrderCancellation float64 `yaml:"order_cancellation" validate:"gte=0,lte=4"`
}

// DefaultConfig returns the reference valve plant.
func DefaultConfig() Config {
	return Config{
		Seed:                42,
		CNCMachines:         5,
		AssemblyStations:    4,
		QCStations:          3,
		Workers:             12,
		InitialParts:        80,
		InitialRawMaterials: 500,
		CNCProcessingTime:   45,
		AssemblyTime:        30,
		QCInspectionTime:    15,
		PartsPerProduct:     3,
		MaterialBatchCap:    15,
		AssemblyBatchCap:    5,
		NormalOrderRate:     25,
		DeliveryTime:        2 * 24 * 60,
		ReorderPoint:        200,
		ReorderQuantity:     500,
		BaseDefectRate:      0.02,
		PublishEvery:        10,
		Costs: CostConfig{
			WorkerHourlyWage:     25,
			WorkerShiftHours:     8,
			WorkerShiftsPerDay:   3,
			WorkerBenefitsFactor: 1.3,
			RawMaterialCost:      70,
			HoldingCostRate:      0.002,
			PartsValue:           120,
			FinishedProductValue: 590,
			ProductPrice:         1500,
			PartProcessingCost:   30,
			AssemblyCost:         50,
		},
		Energy: EnergyConfig{
			CostPerKWh:    0.6,
			CNCUsage:      35.5,
			AssemblyUsage: 10.0,
			QCUsage:       10.5,
			FacilityBase:  35.0,
		},
		Disruptions: DisruptionConfig{
			CNCFailure:        0.15,
			OrderSpike:        0.05,
			SupplyChain:       0.08,
			WorkerAbsence:     0.08,
			QualityIssue:      0.07,
			PowerOutage:       0.1,
			OrderCancellation: 0.1,
		},
	}
}

// Validate checks struct tags and returns an ErrConfiguration-wrapped error
// listing every failing field.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			var messages []string
			for _, e := range verrs {
				messages = append(messages, fmt.Sprintf(
					"field '%s' failed validation: %s (value: '%v')",
					e.Namespace(), e.Tag(), e.Value()))
			}
			return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(messages, "; "))
		}
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}
