package raffle

import "time"

// countdown is a one-shot timer. Once armed it is never reset.
type countdown struct {
	startedAt time.Time
	armed     bool
}

// arm records now as the start time. It reports false if already armed.
func (c *countdown) arm(now time.Time) bool {
	if c.armed {
		return false
	}
	c.startedAt = now
	c.armed = true
	return true
}

// isElapsed reports whether minimumWait has passed since arming.
// An unarmed countdown does not block. A host clock that runs behind the
// start time counts as not elapsed.
func (c countdown) isElapsed(now time.Time, minimumWait time.Duration) bool {
	if !c.armed {
		return true
	}
	if now.Before(c.startedAt) {
		return false
	}
	return now.Sub(c.startedAt) >= minimumWait
}
