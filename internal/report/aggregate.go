package report

import (
	"sort"

	"tracker-reports/internal/domain"
)

// Dimensions selects the grouping-key fields for an in-memory aggregation.
// Entity is required; Sub is nil when the metric has no sub-entity split;
// ByDay adds the calendar day (report timezone) to the key.
type Dimensions struct {
	Entity func(domain.TimeInterval) int64
	Sub    func(domain.TimeInterval) int64
	ByDay  bool
}

// ByUser and ByTask are the usual entity extractors.
func ByUser(iv domain.TimeInterval) int64 { return iv.UserID }
func ByTask(iv domain.TimeInterval) int64 { return iv.TaskID }

// ByProject builds an extractor that resolves an interval's project through
// the task-to-project mapping. Intervals whose task is not in the mapping
// resolve to project 0 and are skipped by Aggregate.
func ByProject(taskProject map[int64]int64) func(domain.TimeInterval) int64 {
	return func(iv domain.TimeInterval) int64 { return taskProject[iv.TaskID] }
}

type groupKey struct {
	entity int64
	sub    int64
	date   string
}

// Aggregate sums interval durations grouped by the requested dimensions.
// Soft-deleted intervals and intervals resolving to entity 0 are skipped.
// Rows come back sorted by (entity, sub, date) so repeated runs over the
// same facts produce identical output.
func Aggregate(intervals []domain.TimeInterval, dim Dimensions, rng domain.DateRange) []domain.AggregatedRow {
	sums := make(map[groupKey]int64)
	for _, iv := range intervals {
		if iv.Deleted() {
			continue
		}
		key := groupKey{entity: dim.Entity(iv)}
		if key.entity == 0 {
			continue
		}
		if dim.Sub != nil {
			key.sub = dim.Sub(iv)
		}
		if dim.ByDay {
			key.date = rng.Day(iv.StartAt)
		}
		sums[key] += iv.DurationSec()
	}

	rows := make([]domain.AggregatedRow, 0, len(sums))
	for k, secs := range sums {
		rows = append(rows, domain.AggregatedRow{
			EntityID:    k.entity,
			SubEntityID: k.sub,
			Date:        k.date,
			Seconds:     secs,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		if a.SubEntityID != b.SubEntityID {
			return a.SubEntityID < b.SubEntityID
		}
		return a.Date < b.Date
	})
	return rows
}

// TotalPerEntity folds grouped rows down to one total per entity.
// Entities absent from rows are simply absent; callers treat that as 0.
func TotalPerEntity(rows []domain.AggregatedRow) map[int64]int64 {
	totals := make(map[int64]int64, len(rows))
	for _, r := range rows {
		totals[r.EntityID] += r.Seconds
	}
	return totals
}
