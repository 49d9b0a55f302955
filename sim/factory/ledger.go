package factory

import "fmt"

// Item names a stock counter in the Ledger.
type Item int

const (
	RawMaterials Item = iota
	Parts
	FinishedProducts
	Backlog
	numItems
)

var itemNames = [numItems]string{"rawMaterials", "partsInventory", "finishedProducts", "backlog"}

func (i Item) String() string {
	if i < 0 || i >= numItems {
		return fmt.Sprintf("Item(%d)", int(i))
	}
	return itemNames[i]
}

// Ledger holds the plant's shared counters. Every method is a single step
// with no yield in between, so a debit that succeeds cannot be undone by a
// process that runs at the same simulated minute. All counters stay >= 0.
type Ledger struct {
	stock [numItems]int

	totalOrders     int
	fulfilledOrders int
	cancelledOrders int
}

// NewLedger creates a ledger holding the configured opening stock.
func NewLedger(rawMaterials, parts int) *Ledger {
	l := &Ledger{}
	l.Credit(RawMaterials, rawMaterials)
	l.Credit(Parts, parts)
	return l
}

// Get returns the current count of item.
func (l *Ledger) Get(item Item) int { return l.stock[item] }

// Credit adds n units. Panics on negative n.
func (l *Ledger) Credit(item Item, n int) {
	if n < 0 {
		panic(fmt.Sprintf("Ledger.Credit(%s): negative amount %d", item, n))
	}
	l.stock[item] += n
}

// Debit subtracts n units if at least n are on hand. It returns false and
// changes nothing otherwise; the caller re-checks on its next turn.
func (l *Ledger) Debit(item Item, n int) bool {
	if n < 0 {
		panic(fmt.Sprintf("Ledger.Debit(%s): negative amount %d", item, n))
	}
	if l.stock[item] < n {
		return false
	}
	l.stock[item] -= n
	return true
}

// TakeUpTo debits min(limit, on hand) units and returns how many were taken.
func (l *Ledger) TakeUpTo(item Item, limit int) int {
	n := min(limit, l.stock[item])
	if n <= 0 {
		return 0
	}
	l.stock[item] -= n
	return n
}

// TakeKits debits parts for up to maxProducts products of perProduct parts
// each and returns the number of products the taken parts cover.
func (l *Ledger) TakeKits(perProduct, maxProducts int) int {
	products := min(maxProducts, l.stock[Parts]/perProduct)
	if products <= 0 {
		return 0
	}
	l.stock[Parts] -= products * perProduct
	return products
}

// AddOrders books n new customer orders into the backlog.
func (l *Ledger) AddOrders(n int) {
	if n <= 0 {
		return
	}
	l.totalOrders += n
	l.stock[Backlog] += n
}

// Fulfill ships min(finished, backlog) units and returns how many shipped.
func (l *Ledger) Fulfill() int {
	n := min(l.stock[FinishedProducts], l.stock[Backlog])
	if n <= 0 {
		return 0
	}
	l.stock[FinishedProducts] -= n
	l.stock[Backlog] -= n
	l.fulfilledOrders += n
	return n
}

// BookOutsourced records n orders that were received and shipped by an
// outside producer. Stock and backlog are untouched.
func (l *Ledger) BookOutsourced(n int) {
	if n > 0 {
		l.totalOrders += n
		l.fulfilledOrders += n
	}
}

// Cancel removes up to n orders from the backlog and returns how many were
// cancelled.
func (l *Ledger) Cancel(n int) int {
	n = l.TakeUpTo(Backlog, n)
	l.cancelledOrders += n
	return n
}

// TotalOrders returns every order ever booked.
func (l *Ledger) TotalOrders() int { return l.totalOrders }

// FulfilledOrders returns every order shipped, in-house or outsourced.
func (l *Ledger) FulfilledOrders() int { return l.fulfilledOrders }

// CancelledOrders returns every order cancelled.
func (l *Ledger) CancelledOrders() int { return l.cancelledOrders }

// FillRate returns fulfilled / total orders, or 0 before the first order.
func (l *Ledger) FillRate() float64 {
	if l.totalOrders == 0 {
		return 0
	}
	return float64(l.fulfilledOrders) / float64(l.totalOrders)
}
