// sim/clock.go
package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Minutes per simulated hour, day, and week.
const (
	Hour int64 = 60
	Day  int64 = 24 * Hour
	Week int64 = 7 * Day
)

// Event is a continuation scheduled for a point in simulated time.
type Event struct {
	At   int64  // simulated minute at which Run fires
	Seq  uint64 // scheduling order, breaks ties between equal At
	Name string // label for trace logging
	Run  func()
}

// eventQueue implements heap.Interface and orders events by (At, Seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventQueue []*Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].At != q[j].At {
		return q[i].At < q[j].At
	}
	return q[i].Seq < q[j].Seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*Event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// Clock owns simulated time and the queue of pending continuations.
// Events at equal times fire in the order they were scheduled, so a run is
// fully determined by its seed and its external command timeline.
//
// Thread-safety: NOT thread-safe. All processes run on the goroutine that
// drives Run/RunUntil.
type Clock struct {
	now   int64
	seq   uint64
	queue eventQueue
	fired uint64
}

// NewClock creates a Clock at minute 0 with an empty queue.
func NewClock() *Clock {
	c := &Clock{queue: make(eventQueue, 0)}
	heap.Init(&c.queue)
	return c
}

// Now returns the current simulated minute.
func (c *Clock) Now() int64 { return c.now }

// Fired returns how many events have been dispatched so far.
func (c *Clock) Fired() uint64 { return c.fired }

// Pending returns the number of scheduled but not yet fired events.
func (c *Clock) Pending() int { return c.queue.Len() }

// Schedule enqueues fn to resume at now+delay. Negative delays are clamped to 0.
func (c *Clock) Schedule(delay int64, name string, fn func()) {
	if delay < 0 {
		delay = 0
	}
	c.ScheduleAt(c.now+delay, name, fn)
}

// ScheduleAt enqueues fn at an absolute simulated minute. Times in the past
// are moved to now; the clock never runs backwards.
func (c *Clock) ScheduleAt(at int64, name string, fn func()) {
	if fn == nil {
		panic(fmt.Sprintf("Clock.ScheduleAt: nil continuation for %q", name))
	}
	if at < c.now {
		at = c.now
	}
	c.seq++
	heap.Push(&c.queue, &Event{At: at, Seq: c.seq, Name: name, Run: fn})
}

// PeekTime returns the time of the earliest pending event, and false if the
// queue is empty.
func (c *Clock) PeekTime() (int64, bool) {
	if c.queue.Len() == 0 {
		return 0, false
	}
	return c.queue[0].At, true
}

// Step pops and runs the earliest event. Returns false when the queue is empty.
func (c *Clock) Step() bool {
	if c.queue.Len() == 0 {
		return false
	}
	ev := heap.Pop(&c.queue).(*Event)
	c.now = ev.At
	c.fired++
	logrus.Tracef("[tick %07d] Executing %s", c.now, ev.Name)
	ev.Run()
	return true
}

// RunUntil dispatches every event whose time is <= until, then leaves the
// clock at until. Events scheduled past until stay queued, so a later call
// continues exactly where this one stopped.
func (c *Clock) RunUntil(until int64) {
	for {
		t, ok := c.PeekTime()
		if !ok || t > until {
			break
		}
		c.Step()
	}
	if until > c.now {
		c.now = until
	}
}

// Run dispatches events until the queue drains.
func (c *Clock) Run() {
	for c.Step() {
	}
}

// Minutes converts a fractional duration to whole simulated minutes.
func Minutes(d float64) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Round(d))
}

// FormatTime renders a simulated minute as "Day D, HH:MM" (day 1-based).
func FormatTime(t int64) string {
	return fmt.Sprintf("Day %d, %02d:%02d", t/Day+1, (t%Day)/Hour, t%Hour)
}
