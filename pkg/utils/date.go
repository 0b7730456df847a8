package utils

import (
	"time"
)

// TimeNowUTC returns the current time in UTC. Every timestamp crossing the pipeline uses this.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// EnsureUTC converts t to UTC so aware and scanned timestamps compare consistently.
func EnsureUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// EnsureUTCPtr is EnsureUTC for nullable timestamps.
func EnsureUTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := EnsureUTC(*t)
	return &v
}
