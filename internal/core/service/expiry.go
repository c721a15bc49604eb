package service

import "time"

const (
	// defaultRoomTTL is the window written onto a room at first-touch claim.
	defaultRoomTTL = 2 * time.Hour
	// sessionCeiling is the hard cap applied to every computed expiry
	// before credentials are minted, regardless of the room's TTL.
	sessionCeiling = time.Hour
)

// ExpiryClock centralises expiry arithmetic. The now function is
// injectable so tests can pin wall-clock time.
type ExpiryClock struct {
	nowFn func() time.Time
}

// NewExpiryClock returns a clock backed by the system time.
func NewExpiryClock() ExpiryClock {
	return ExpiryClock{nowFn: time.Now}
}

// NewExpiryClockAt returns a clock backed by the given now function.
func NewExpiryClockAt(now func() time.Time) ExpiryClock {
	return ExpiryClock{nowFn: now}
}

// Now returns the current time in UTC.
func (c ExpiryClock) Now() time.Time {
	return c.nowFn().UTC()
}

// DefaultRoomTTL returns the TTL written at first-touch room claim.
func (c ExpiryClock) DefaultRoomTTL() time.Duration {
	return defaultRoomTTL
}

// SessionCeiling returns the absolute upper bound for any expiry computed
// relative to now.
func (c ExpiryClock) SessionCeiling(now time.Time) time.Time {
	return now.Add(sessionCeiling)
}

// Clamp returns the earlier of candidate and ceiling.
func (c ExpiryClock) Clamp(candidate, ceiling time.Time) time.Time {
	if candidate.After(ceiling) {
		return ceiling
	}
	return candidate
}
