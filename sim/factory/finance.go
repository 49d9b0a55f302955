package factory

import "github.com/shopspring/decimal"

// Financials accumulates money in exact decimal dollars.
type Financials struct {
	Revenue            decimal.Decimal
	LiquidationRevenue decimal.Decimal
	Costs              decimal.Decimal // operating costs incl. wages and strategy spend
	HoldingCosts       decimal.Decimal
	EnergyCosts        decimal.Decimal
	WorkerSalaryCosts  decimal.Decimal // subset of Costs, tracked for reporting
}

func dollars(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func units(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// AddRevenue books sales, fees, and asset sales.
func (f *Financials) AddRevenue(amount decimal.Decimal) {
	f.Revenue = f.Revenue.Add(amount)
}

// AddCost books an operating cost.
func (f *Financials) AddCost(amount decimal.Decimal) {
	f.Costs = f.Costs.Add(amount)
}

// Profit is revenue + liquidation revenue - costs - holding - energy.
func (f *Financials) Profit() decimal.Decimal {
	return f.Revenue.Add(f.LiquidationRevenue).
		Sub(f.Costs).
		Sub(f.HoldingCosts).
		Sub(f.EnergyCosts)
}

// TotalCosts is every cost bucket combined.
func (f *Financials) TotalCosts() decimal.Decimal {
	return f.Costs.Add(f.HoldingCosts).Add(f.EnergyCosts)
}

// ProfitMargin returns profit as a fraction of all revenue, or 0 without revenue.
func (f *Financials) ProfitMargin() float64 {
	total := f.Revenue.Add(f.LiquidationRevenue)
	if total.IsZero() {
		return 0
	}
	return f.Profit().Div(total).InexactFloat64()
}
