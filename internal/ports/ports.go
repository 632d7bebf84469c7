package ports

import (
	"context"

	"tracker-reports/internal/domain"
)

// Dimension names a grouping column of the interval fact table. The set is
// closed so adapters can map each value to a fixed query shape instead of
// interpolating caller-supplied strings.
type Dimension uint8

const (
	DimNone Dimension = iota
	DimUser
	DimTask
	DimProject
)

func (d Dimension) String() string {
	switch d {
	case DimUser:
		return "user"
	case DimTask:
		return "task"
	case DimProject:
		return "project"
	default:
		return "none"
	}
}

// GroupQuery describes one grouped aggregation over the fact table:
// sum interval durations for the Base entities in IDs, optionally split by
// a Sub dimension and/or by calendar day.
type GroupQuery struct {
	Base  Dimension
	IDs   []int64
	Sub   Dimension
	ByDay bool
}

// IntervalStore is the read-only view over the time_intervals fact table.
// Both methods exclude soft-deleted rows and apply the inclusive range rule
// [rng.LowerBound(), rng.UpperBound()). An empty result is valid, not an error.
type IntervalStore interface {
	// FetchIntervals returns the raw non-deleted intervals for the filtered
	// users (empty ids means all users) inside the range.
	FetchIntervals(ctx context.Context, userIDs []int64, rng domain.DateRange) ([]domain.TimeInterval, error)

	// FetchGrouped returns pre-summed rows for one grouping combination.
	FetchGrouped(ctx context.Context, q GroupQuery, rng domain.DateRange) ([]domain.AggregatedRow, error)
}

// EntityLookup resolves display names for report labels. IDs with no match
// are simply absent from the returned map; that is not an error.
type EntityLookup interface {
	UserNames(ctx context.Context, ids []int64) (map[int64]string, error)
	TaskNames(ctx context.Context, ids []int64) (map[int64]string, error)
	ProjectNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Directory supplies the entity records the detail reports need beyond
// bare names: task attributes, task assignments, and user records.
type Directory interface {
	TasksByID(ctx context.Context, ids []int64) ([]domain.Task, error)
	TaskAssignees(ctx context.Context, taskIDs []int64) (map[int64][]domain.User, error)
	UsersByID(ctx context.Context, ids []int64) ([]domain.User, error)
}
