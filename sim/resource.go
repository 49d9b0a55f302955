// Implements Pool, a resizable counting resource with a FIFO wait list.
// Processes acquire slots and resume through the Clock when a slot frees up.

package sim

import (
	"fmt"
)

// Hold is a granted slot. Release returns it to the pool; releasing twice is a no-op.
type Hold struct {
	pool     *Pool
	released bool
}

// Release frees the slot and wakes waiters in arrival order.
func (h *Hold) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	h.pool.release()
}

// JointHold is the pair of slots granted by AcquireBoth.
type JointHold struct {
	First  *Hold
	Second *Hold
}

// Release frees both slots.
func (j *JointHold) Release() {
	j.First.Release()
	j.Second.Release()
}

// waiter is a queued acquisition. A joint waiter sits in the queues of both
// of its pools and is granted only when both have room.
type waiter struct {
	seq     uint64
	first   *Pool
	second  *Pool // nil for single acquisitions
	single  func(*Hold)
	joint   func(*JointHold)
	granted bool
}

func (w *waiter) satisfiable() bool {
	if !w.first.hasRoom() {
		return false
	}
	return w.second == nil || w.second.hasRoom()
}

// Pool models a bounded resource such as CNC machines or workers.
// Invariant: 0 <= InUse() <= Capacity() except transiently after a shrink,
// where InUse may exceed the new ceiling until holders release.
type Pool struct {
	name     string
	clock    *Clock
	capacity int
	inUse    int
	waitQ    []*waiter
	seq      uint64

	// statistics
	grants     int64
	waitGrants int64
}

// NewPool creates a pool with the given capacity. Panics on negative capacity.
func NewPool(clock *Clock, name string, capacity int) *Pool {
	if capacity < 0 {
		panic(fmt.Sprintf("NewPool(%s): capacity must be >= 0, got %d", name, capacity))
	}
	return &Pool{name: name, clock: clock, capacity: capacity}
}

// Name returns the pool label.
func (p *Pool) Name() string { return p.name }

// Capacity returns the current ceiling.
func (p *Pool) Capacity() int { return p.capacity }

// InUse returns the number of held slots.
func (p *Pool) InUse() int { return p.inUse }

// Waiting returns the number of queued acquisitions.
func (p *Pool) Waiting() int { return len(p.waitQ) }

// Available returns the number of slots that a new acquisition could take now.
func (p *Pool) Available() int { return max(0, p.capacity-p.inUse) }

// Grants returns the total number of slots handed out, and how many of them
// had to wait in the queue first.
func (p *Pool) Grants() (total, waited int64) { return p.grants, p.waitGrants }

func (p *Pool) hasRoom() bool { return p.inUse < p.capacity }

func (p *Pool) take() *Hold {
	p.inUse++
	p.grants++
	return &Hold{pool: p}
}

// Acquire grants a slot to fn. When a slot is free, fn runs immediately
// without yielding; anything still queued at that point is a joint waiter
// blocked on its other pool. Otherwise the caller is queued and fn is resumed
// through the Clock once the slot is granted.
func (p *Pool) Acquire(fn func(*Hold)) {
	if fn == nil {
		panic(fmt.Sprintf("Pool(%s).Acquire: nil continuation", p.name))
	}
	if p.hasRoom() {
		fn(p.take())
		return
	}
	p.seq++
	p.waitQ = append(p.waitQ, &waiter{seq: p.seq, first: p, single: fn})
}

// AcquireBoth grants one slot from each of a and b as a unit. Neither slot is
// held until both are available. Callers must always pass pools in the same
// global order (station first, worker second).
func AcquireBoth(a, b *Pool, fn func(*JointHold)) {
	if fn == nil {
		panic("AcquireBoth: nil continuation")
	}
	if a == b {
		panic(fmt.Sprintf("AcquireBoth: pools must differ, got %s twice", a.name))
	}
	if a.hasRoom() && b.hasRoom() {
		fn(&JointHold{First: a.take(), Second: b.take()})
		return
	}
	a.seq++
	w := &waiter{seq: a.seq, first: a, second: b, joint: fn}
	a.waitQ = append(a.waitQ, w)
	b.waitQ = append(b.waitQ, w)
}

// Resize changes the ceiling. Shrinking never evicts current holders; it only
// blocks new grants until enough releases bring InUse under the ceiling.
func (p *Pool) Resize(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	p.capacity = capacity
	p.dispatch()
}

func (p *Pool) release() {
	if p.inUse <= 0 {
		panic(fmt.Sprintf("Pool(%s): release without a matching acquire", p.name))
	}
	p.inUse--
	p.dispatch()
}

// dispatch walks the wait list in arrival order and grants every waiter it
// can. A single waiter without room ends the walk. A joint waiter whose other
// pool is full is passed over but keeps its place.
func (p *Pool) dispatch() {
	i := 0
	for i < len(p.waitQ) && p.hasRoom() {
		w := p.waitQ[i]
		if w.granted {
			p.waitQ = append(p.waitQ[:i], p.waitQ[i+1:]...)
			continue
		}
		if !w.satisfiable() {
			if w.second == nil {
				break
			}
			i++
			continue
		}
		p.grant(w)
		p.waitQ = append(p.waitQ[:i], p.waitQ[i+1:]...)
	}
}

func (p *Pool) grant(w *waiter) {
	w.granted = true
	if w.second == nil {
		h := w.first.take()
		w.first.waitGrants++
		p.clock.Schedule(0, "acquire:"+w.first.name, func() { w.single(h) })
		return
	}
	jh := &JointHold{First: w.first.take(), Second: w.second.take()}
	w.first.waitGrants++
	w.second.waitGrants++
	other := w.second
	if other == p {
		other = w.first
	}
	other.remove(w)
	p.clock.Schedule(0, "acquire:"+w.first.name+"+"+w.second.name, func() { w.joint(jh) })
}

func (p *Pool) remove(w *waiter) {
	for i, q := range p.waitQ {
		if q == w {
			p.waitQ = append(p.waitQ[:i], p.waitQ[i+1:]...)
			return
		}
	}
}
