package call

import (
	"sync"
	"time"
)

// CheckIn arms a one-shot reminder timer. A later Schedule while armed
// replaces the earlier arm time (last request wins); there is no queue of
// pending check-ins. While armed, the countdown is recomputed once per
// second and reported through onCountdown.
type CheckIn struct {
	clock       Clock
	onFire      func()
	onCountdown func(secondsLeft int)

	mu     sync.Mutex
	armed  bool
	fireAt time.Time
	timer  Timer
	tick   Timer
}

// NewCheckIn constructs an unarmed scheduler. onFire runs exactly once per
// arm, off the scheduler lock; onCountdown may be nil.
func NewCheckIn(clock Clock, onFire func(), onCountdown func(int)) *CheckIn {
	return &CheckIn{clock: clock, onFire: onFire, onCountdown: onCountdown}
}

// Schedule arms the timer to fire after delay, replacing any earlier arm.
func (c *CheckIn) Schedule(delay time.Duration) {
	c.mu.Lock()
	c.stopTimersLocked()
	c.armed = true
	c.fireAt = c.clock.Now().Add(delay)
	c.timer = c.clock.AfterFunc(delay, c.fire)
	c.tick = c.clock.AfterFunc(time.Second, c.countdownTick)
	c.mu.Unlock()
	c.reportCountdown()
}

// Cancel disarms a pending check-in; it is a no-op when unarmed. Call on
// call end so a dead session is never spoken into.
func (c *CheckIn) Cancel() {
	c.mu.Lock()
	wasArmed := c.armed
	c.armed = false
	c.stopTimersLocked()
	c.mu.Unlock()
	if wasArmed && c.onCountdown != nil {
		c.onCountdown(0)
	}
}

// Armed reports whether a check-in is pending.
func (c *CheckIn) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// Remaining returns the countdown in whole seconds, rounded up; 0 when unarmed.
func (c *CheckIn) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

func (c *CheckIn) remainingLocked() int {
	if !c.armed {
		return 0
	}
	left := c.fireAt.Sub(c.clock.Now())
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

func (c *CheckIn) stopTimersLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.tick != nil {
		c.tick.Stop()
		c.tick = nil
	}
}

func (c *CheckIn) fire() {
	c.mu.Lock()
	if !c.armed {
		c.mu.Unlock()
		return
	}
	c.armed = false
	c.stopTimersLocked()
	c.mu.Unlock()

	if c.onCountdown != nil {
		c.onCountdown(0)
	}
	c.onFire()
}

func (c *CheckIn) countdownTick() {
	c.mu.Lock()
	if !c.armed {
		c.mu.Unlock()
		return
	}
	c.tick = c.clock.AfterFunc(time.Second, c.countdownTick)
	c.mu.Unlock()
	c.reportCountdown()
}

func (c *CheckIn) reportCountdown() {
	if c.onCountdown == nil {
		return
	}
	c.mu.Lock()
	left := c.remainingLocked()
	armed := c.armed
	c.mu.Unlock()
	if armed {
		c.onCountdown(left)
	}
}
