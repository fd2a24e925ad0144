package presence

import "time"

// Window is how long after the last heartbeat a subject still counts as online.
const Window = 5 * time.Minute

// Tracker decides whether a subject is online based on its last-seen
// timestamp. The clock is injectable so boundary behaviour stays testable.
type Tracker struct {
	now func() time.Time
}

// NewTracker constructs a tracker using the wall clock.
func NewTracker() *Tracker {
	return NewTrackerWithClock(time.Now)
}

// NewTrackerWithClock constructs a tracker with a custom clock source.
func NewTrackerWithClock(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

// IsOnline reports whether the subject was seen within the presence window.
// A nil lastSeen means the subject has never been seen and is offline.
func (t *Tracker) IsOnline(lastSeen *time.Time) bool {
	if lastSeen == nil {
		return false
	}
	return lastSeen.After(t.now().Add(-Window))
}
