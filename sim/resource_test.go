package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ImmediateAcquireDoesNotYield(t *testing.T) {
	c := NewClock()
	p := NewPool(c, "cnc", 2)

	var got *Hold
	p.Acquire(func(h *Hold) { got = h })

	require.NotNil(t, got, "continuation must run synchronously when a slot is free")
	assert.Equal(t, 1, p.InUse())
	assert.Equal(t, 0, c.Pending())

	got.Release()
	got.Release() // second release is a no-op
	assert.Equal(t, 0, p.InUse())
}

func TestPool_FIFOWaiters(t *testing.T) {
	// GIVEN a pool of one slot held by a first caller
	c := NewClock()
	p := NewPool(c, "worker", 1)
	var first *Hold
	p.Acquire(func(h *Hold) { first = h })

	// AND three callers queued behind it
	var order []string
	holds := map[string]*Hold{}
	for _, name := range []string{"a", "b", "c"} {
		n := name
		p.Acquire(func(h *Hold) {
			order = append(order, n)
			holds[n] = h
		})
	}
	assert.Equal(t, 3, p.Waiting())

	// WHEN slots free one at a time
	first.Release()
	c.Run()
	holds["a"].Release()
	c.Run()
	holds["b"].Release()
	c.Run()

	// THEN waiters were served in arrival order
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 1, p.InUse())
	total, waited := p.Grants()
	assert.Equal(t, int64(4), total)
	assert.Equal(t, int64(3), waited)
}

func TestPool_ShrinkDoesNotEvictHolders(t *testing.T) {
	c := NewClock()
	p := NewPool(c, "cnc", 3)
	var holds []*Hold
	for i := 0; i < 3; i++ {
		p.Acquire(func(h *Hold) { holds = append(holds, h) })
	}

	// WHEN capacity drops below in-use
	p.Resize(1)

	// THEN holders keep their slots but nobody new gets one
	assert.Equal(t, 3, p.InUse())
	assert.Equal(t, 0, p.Available())
	granted := false
	p.Acquire(func(h *Hold) { granted = true })
	holds[0].Release()
	holds[1].Release()
	c.Run()
	assert.False(t, granted, "in-use is back at the ceiling, still no room")

	holds[2].Release()
	c.Run()
	assert.True(t, granted)
	assert.Equal(t, 1, p.InUse())
	assert.LessOrEqual(t, p.InUse(), p.Capacity())
}

func TestPool_GrowWakesWaiters(t *testing.T) {
	c := NewClock()
	p := NewPool(c, "worker", 0)
	woken := 0
	for i := 0; i < 4; i++ {
		p.Acquire(func(h *Hold) { woken++ })
	}

	p.Resize(3)
	c.Run()

	assert.Equal(t, 3, woken)
	assert.Equal(t, 1, p.Waiting())
	assert.Equal(t, 3, p.InUse())
}

func TestPool_ReleaseWithoutAcquirePanics(t *testing.T) {
	p := NewPool(NewClock(), "qc", 1)
	assert.Panics(t, func() { p.release() })
}

func TestAcquireBoth_AllOrNothing(t *testing.T) {
	// GIVEN a free station and a fully used worker pool
	c := NewClock()
	station := NewPool(c, "assembly", 1)
	workers := NewPool(c, "worker", 1)
	var busy *Hold
	workers.Acquire(func(h *Hold) { busy = h })

	// WHEN an assembler asks for both
	var joint *JointHold
	AcquireBoth(station, workers, func(j *JointHold) { joint = j })

	// THEN it holds neither while it waits
	assert.Nil(t, joint)
	assert.Equal(t, 0, station.InUse(), "station must not be held while waiting for a worker")
	assert.Equal(t, 1, station.Waiting())
	assert.Equal(t, 1, workers.Waiting())

	// WHEN the worker frees
	busy.Release()
	c.Run()

	// THEN both are granted together and the waiter left both queues
	require.NotNil(t, joint)
	assert.Equal(t, 1, station.InUse())
	assert.Equal(t, 1, workers.InUse())
	assert.Equal(t, 0, station.Waiting())
	assert.Equal(t, 0, workers.Waiting())

	joint.Release()
	assert.Equal(t, 0, station.InUse())
	assert.Equal(t, 0, workers.InUse())
}

func TestAcquireBoth_BlockedJointDoesNotStallSingles(t *testing.T) {
	// GIVEN a QC station pool that is full and a worker pool with room
	c := NewClock()
	qc := NewPool(c, "qc", 1)
	workers := NewPool(c, "worker", 2)
	var qcBusy, workerBusy *Hold
	qc.Acquire(func(h *Hold) { qcBusy = h })
	workers.Acquire(func(h *Hold) { workerBusy = h })
	workers.Acquire(func(h *Hold) {}) // worker pool now full

	var jointGranted bool
	AcquireBoth(qc, workers, func(j *JointHold) { jointGranted = true })
	var singleGranted bool
	workers.Acquire(func(h *Hold) { singleGranted = true })

	// WHEN a worker frees while the QC station is still taken
	workerBusy.Release()
	c.Run()

	// THEN the single waiter gets the worker and the joint keeps waiting
	assert.True(t, singleGranted)
	assert.False(t, jointGranted)
	assert.Equal(t, 1, qc.Waiting())

	// WHEN the QC station frees but workers are still full
	qcBusy.Release()
	c.Run()
	assert.False(t, jointGranted)
	assert.Equal(t, 0, qc.InUse())
}

func TestAcquireBoth_SamePoolPanics(t *testing.T) {
	p := NewPool(NewClock(), "x", 2)
	assert.Panics(t, func() { AcquireBoth(p, p, func(*JointHold) {}) })
}

func TestPool_InvariantUnderChurn(t *testing.T) {
	// GIVEN many processes cycling through a small pool with timed holds
	c := NewClock()
	p := NewPool(c, "cnc", 3)
	violations := 0
	check := func() {
		if p.InUse() < 0 || p.InUse() > max(p.Capacity(), 3) {
			violations++
		}
	}
	var cycle func(id int, left int)
	cycle = func(id int, left int) {
		if left == 0 {
			return
		}
		p.Acquire(func(h *Hold) {
			check()
			c.Schedule(int64(id%4+1), "work", func() {
				h.Release()
				check()
				c.Schedule(1, "idle", func() { cycle(id, left-1) })
			})
		})
	}
	for id := 0; id < 10; id++ {
		cycle(id, 20)
	}
	c.Schedule(15, "shrink", func() { p.Resize(1) })
	c.Schedule(40, "grow", func() { p.Resize(5) })

	c.Run()

	assert.Equal(t, 0, violations)
	assert.Equal(t, 0, p.InUse())
	assert.Equal(t, 0, p.Waiting())
}
