package domain

import "time"

// TimeInterval is a single tracked work period for one user on one task.
// It is the read-only fact the report aggregation works on; soft-deleted
// rows (DeletedAt set) are excluded from every aggregation.
type TimeInterval struct {
	ID        int64
	UserID    int64
	TaskID    int64
	StartAt   time.Time
	EndAt     time.Time
	DeletedAt *time.Time

	// Activity percentages recorded by the tracker client, passed through
	// to the dashboard unchanged. Nil when the client did not report them.
	ActivityFill *int
	MouseFill    *int
	KeyboardFill *int
}

// DurationSec returns the interval length in whole seconds.
// An interval with EndAt before StartAt is invalid input; it is clamped
// to 0 so downstream sums can never go negative.
func (iv TimeInterval) DurationSec() int64 {
	d := int64(iv.EndAt.Sub(iv.StartAt) / time.Second)
	if d < 0 {
		return 0
	}
	return d
}

// Deleted reports whether the interval is soft-deleted.
func (iv TimeInterval) Deleted() bool { return iv.DeletedAt != nil }
