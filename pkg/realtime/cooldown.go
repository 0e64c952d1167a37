package realtime

import (
	"sort"
	"time"
)

// DefaultCooldown is the penalty applied to choice controls after a wrong answer.
const DefaultCooldown = 2500 * time.Millisecond

// Cooldown disables a set of controls for Delay after each Trigger. Every trigger
// schedules its own re-enable deadline; deadlines fire independently in time order
// and are never coalesced.
type Cooldown struct {
	Delay time.Duration

	deadlines []time.Time
	disabled  bool
	fired     int
}

func (c *Cooldown) delay() time.Duration {
	if c.Delay <= 0 {
		return DefaultCooldown
	}
	return c.Delay
}

// Trigger disables the controls at now and returns when this trigger re-enables them.
func (c *Cooldown) Trigger(now time.Time) time.Time {
	c.Expire(now)
	at := now.Add(c.delay())
	i := sort.Search(len(c.deadlines), func(i int) bool { return c.deadlines[i].After(at) })
	c.deadlines = append(c.deadlines, time.Time{})
	copy(c.deadlines[i+1:], c.deadlines[i:])
	c.deadlines[i] = at
	c.disabled = true
	return at
}

// Expire fires every deadline at or before now and returns how many fired.
func (c *Cooldown) Expire(now time.Time) int {
	n := 0
	for n < len(c.deadlines) && !c.deadlines[n].After(now) {
		n++
	}
	if n == 0 {
		return 0
	}
	c.deadlines = append(c.deadlines[:0], c.deadlines[n:]...)
	c.disabled = false
	c.fired += n
	return n
}

// Enabled reports whether the controls accept input at now.
func (c *Cooldown) Enabled(now time.Time) bool {
	c.Expire(now)
	return !c.disabled
}

// NextWake returns the earliest pending re-enable deadline.
func (c *Cooldown) NextWake() (time.Time, bool) {
	if len(c.deadlines) == 0 {
		return time.Time{}, false
	}
	return c.deadlines[0], true
}

// Pending reports the number of scheduled re-enables.
func (c *Cooldown) Pending() int {
	return len(c.deadlines)
}

// Fired is the running total of re-enables since the last Reset.
func (c *Cooldown) Fired() int {
	return c.fired
}

// Reset clears all pending deadlines and enables the controls.
func (c *Cooldown) Reset() {
	c.deadlines = c.deadlines[:0]
	c.disabled = false
	c.fired = 0
}
