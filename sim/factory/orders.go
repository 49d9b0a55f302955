package factory

import (
	"github.com/factory-sim/factory-sim/sim"
)

const (
	orderVariationLow  = 0.6
	orderVariationHigh = 1.4

	jitSafetyFactor   = 1.15
	jitDemandDays     = 5
	jitMinOrder       = 500
	jitMaxOrder       = 1000
	jitDeliveryFactor = 0.7
	jitStockInjection = 0.5 // share of opening stock added on activation

	disruptedDeliveryFactor = 2.0

	liquidationPriceFactor = 0.65
	liquidationSafetyStock = 10
	liquidationInterval    = 12 * sim.Hour

	largeShipment = 10 // shipments at least this size are logged
)

// generateOrders books one day of customer demand and ships what it can.
func (f *Factory) generateOrders() {
	f.state.DailyProduction = 0

	daily := int(float64(int(f.CurrentOrderRate())) * sim.Uniform(f.ordersRNG(), orderVariationLow, orderVariationHigh))
	f.ledger.AddOrders(daily)
	f.processBacklog()

	if f.ledger.Get(RawMaterials) < f.cfg.ReorderPoint && !f.state.SupplyChainDisrupted {
		f.orderRawMaterials()
	}
}

// processBacklog ships min(finished, backlog) units at list price.
func (f *Factory) processBacklog() {
	shipped := f.ledger.Fulfill()
	if shipped == 0 {
		return
	}
	f.state.DailyProduction += shipped
	revenue := units(shipped).Mul(dollars(f.cfg.Costs.ProductPrice))
	f.finance.AddRevenue(revenue)
	if shipped >= largeShipment {
		f.log(LevelInfo, "Sales", "Shipped %d products for revenue of $%s", shipped, revenue.StringFixed(0))
	}
}

// orderRawMaterials pays for a replenishment now and credits it on arrival.
func (f *Factory) orderRawMaterials() {
	amount := f.cfg.ReorderQuantity
	jit := f.strategies.IsActive(JustInTimeReplenishment)
	if jit {
		perProduct := float64(f.cfg.PartsPerProduct)
		backlogDemand := float64(f.ledger.Get(Backlog)) * perProduct
		dailyDemand := f.CurrentOrderRate() * perProduct
		needed := max(0, backlogDemand-float64(f.ledger.Get(Parts))) + dailyDemand*jitDemandDays
		amount = max(jitMinOrder, min(jitMaxOrder, int(needed*jitSafetyFactor)))
		f.log(LevelInfo, "Inventory", "JIT system optimized order: %d raw materials based on demand analysis", amount)
	}
	f.finance.AddCost(units(amount).Mul(dollars(f.cfg.Costs.RawMaterialCost)))

	delivery := float64(f.cfg.DeliveryTime)
	if jit {
		delivery *= jitDeliveryFactor
	}
	if f.state.SupplyChainDisrupted {
		delivery *= disruptedDeliveryFactor
	}
	f.deliverMaterials(amount, sim.Minutes(delivery), "replenishment")
}

// deliverMaterials credits amount raw materials after delay minutes.
func (f *Factory) deliverMaterials(amount int, delay int64, what string) {
	if delay <= 0 {
		f.ledger.Credit(RawMaterials, amount)
		return
	}
	f.state.MaterialsInTransit += amount
	f.clock.Schedule(delay, "delivery:"+what, func() {
		f.state.MaterialsInTransit -= amount
		f.ledger.Credit(RawMaterials, amount)
		f.log(LevelInfo, "Inventory", "Raw materials delivered (%s): +%d units", what, amount)
	})
}

// liquidateExcess sells finished goods above backlog plus a safety stock at
// a discount. Does nothing unless inventory liquidation is active.
func (f *Factory) liquidateExcess() {
	if !f.strategies.IsActive(InventoryLiquidation) {
		return
	}
	excess := f.ledger.Get(FinishedProducts) - f.ledger.Get(Backlog) - liquidationSafetyStock
	if excess <= 0 || !f.ledger.Debit(FinishedProducts, excess) {
		return
	}
	revenue := units(excess).Mul(dollars(f.cfg.Costs.ProductPrice * liquidationPriceFactor))
	f.finance.LiquidationRevenue = f.finance.LiquidationRevenue.Add(revenue)
	f.log(LevelInfo, "Inventory", "Liquidated %d finished products at discount, generating $%s", excess, revenue.StringFixed(2))
}

// startLiquidationLoop runs liquidateExcess now and every 12 hours while the
// activation that started it is still current.
func (f *Factory) startLiquidationLoop(generation int) {
	var pass func()
	pass = func() {
		if !f.strategies.IsActive(InventoryLiquidation) || f.strategies.liquidationGen != generation {
			return
		}
		f.liquidateExcess()
		f.clock.Schedule(liquidationInterval, "liquidation", pass)
	}
	pass()
}
