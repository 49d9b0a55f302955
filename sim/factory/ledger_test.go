package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedger_DebitIsCheckAndSubtract(t *testing.T) {
	l := NewLedger(10, 0)

	assert.True(t, l.Debit(RawMaterials, 10))
	assert.False(t, l.Debit(RawMaterials, 1), "a debit past zero must be rejected")
	assert.Equal(t, 0, l.Get(RawMaterials))
}

func TestLedger_TakeUpTo(t *testing.T) {
	tests := []struct {
		name    string
		onHand  int
		max     int
		want    int
		wantRem int
	}{
		{"capped by batch", 500, 15, 15, 485},
		{"capped by stock", 7, 15, 7, 0},
		{"empty", 0, 15, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(tt.onHand, 0)
			assert.Equal(t, tt.want, l.TakeUpTo(RawMaterials, tt.max))
			assert.Equal(t, tt.wantRem, l.Get(RawMaterials))
		})
	}
}

func TestLedger_TakeKits(t *testing.T) {
	l := NewLedger(0, 80)

	assert.Equal(t, 5, l.TakeKits(3, 5))
	assert.Equal(t, 65, l.Get(Parts))

	l2 := NewLedger(0, 8)
	assert.Equal(t, 2, l2.TakeKits(3, 5))
	assert.Equal(t, 2, l2.Get(Parts))
	assert.Equal(t, 0, l2.TakeKits(3, 5))
	assert.Equal(t, 2, l2.Get(Parts))
}

func TestLedger_FulfillShipsMinOfStockAndBacklog(t *testing.T) {
	// GIVEN 25 orders and 10 finished units
	l := NewLedger(0, 0)
	l.AddOrders(25)
	l.Credit(FinishedProducts, 10)

	// WHEN the backlog is processed
	shipped := l.Fulfill()

	// THEN everything in stock ships
	assert.Equal(t, 10, shipped)
	assert.Equal(t, 15, l.Get(Backlog))
	assert.Equal(t, 0, l.Get(FinishedProducts))
	assert.Equal(t, 10, l.FulfilledOrders())
	assert.Equal(t, 25, l.TotalOrders())
	assert.InDelta(t, 0.4, l.FillRate(), 1e-12)

	// AND a second pass with nothing in stock ships nothing
	assert.Equal(t, 0, l.Fulfill())
}

func TestLedger_CancelNeverGoesNegative(t *testing.T) {
	l := NewLedger(0, 0)
	l.AddOrders(5)

	assert.Equal(t, 5, l.Cancel(40))
	assert.Equal(t, 0, l.Get(Backlog))
	assert.Equal(t, 5, l.CancelledOrders())
}

func TestLedger_NegativeAmountsPanic(t *testing.T) {
	l := NewLedger(1, 1)
	assert.Panics(t, func() { l.Credit(Parts, -1) })
	assert.Panics(t, func() { l.Debit(Parts, -1) })
}
