package sim

import "github.com/sirupsen/logrus"

// TimedEffect is a mutation that has been applied and is due to be reverted
// at RevertAt. The revert action runs exactly once: either when the Clock
// reaches RevertAt or earlier through RevertNow, whichever comes first.
type TimedEffect struct {
	Name      string
	AppliedAt int64
	RevertAt  int64

	revert   func()
	reverted bool
}

// Active reports whether the revert action is still outstanding.
func (e *TimedEffect) Active() bool { return !e.reverted }

// RevertNow runs the revert action immediately if it has not run yet.
func (e *TimedEffect) RevertNow() {
	if e.reverted {
		return
	}
	e.reverted = true
	e.revert()
}

// ApplyFor runs apply now and registers revert to fire after duration minutes.
// The two actions are independent: callers pass plain functions, and neither
// captures state from the other.
func (c *Clock) ApplyFor(name string, duration int64, apply, revert func()) *TimedEffect {
	if apply == nil || revert == nil {
		panic("Clock.ApplyFor: apply and revert must not be nil")
	}
	if duration < 0 {
		duration = 0
	}
	e := &TimedEffect{
		Name:      name,
		AppliedAt: c.now,
		RevertAt:  c.now + duration,
		revert:    revert,
	}
	apply()
	logrus.Debugf("[tick %07d] effect %s applied until %d", c.now, name, e.RevertAt)
	c.ScheduleAt(e.RevertAt, "revert:"+name, e.RevertNow)
	return e
}
