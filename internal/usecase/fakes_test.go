package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"tracker-reports/internal/domain"
	"tracker-reports/internal/ports"
	"tracker-reports/internal/report"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedColor(c string) report.ColorFunc {
	return func() string { return c }
}

// fakeBackend implements IntervalStore, EntityLookup, and Directory over
// in-memory fixtures, aggregating with the same core the sqlite adapter
// delegates to. It records every grouped query it is asked to run.
type fakeBackend struct {
	mu        sync.Mutex
	intervals []domain.TimeInterval
	users     []domain.User
	tasks     []domain.Task
	projects  map[int64]string
	assignees map[int64][]domain.User

	groupedQueries []ports.GroupQuery
	err            error
}

func (f *fakeBackend) taskProjects() map[int64]int64 {
	tp := make(map[int64]int64, len(f.tasks))
	for _, t := range f.tasks {
		tp[t.ID] = t.ProjectID
	}
	return tp
}

func (f *fakeBackend) FetchIntervals(_ context.Context, userIDs []int64, rng domain.DateRange) ([]domain.TimeInterval, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[int64]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	var out []domain.TimeInterval
	for _, iv := range f.intervals {
		if iv.Deleted() || (len(userIDs) > 0 && !wanted[iv.UserID]) {
			continue
		}
		if iv.StartAt.Before(rng.LowerBound()) || !iv.EndAt.Before(rng.UpperBound()) {
			continue
		}
		out = append(out, iv)
	}
	return out, nil
}

func (f *fakeBackend) FetchGrouped(ctx context.Context, q ports.GroupQuery, rng domain.DateRange) ([]domain.AggregatedRow, error) {
	f.mu.Lock()
	f.groupedQueries = append(f.groupedQueries, q)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	tp := f.taskProjects()
	extractor := func(d ports.Dimension) func(domain.TimeInterval) int64 {
		switch d {
		case ports.DimUser:
			return report.ByUser
		case ports.DimTask:
			return report.ByTask
		case ports.DimProject:
			return report.ByProject(tp)
		default:
			return nil
		}
	}

	base := extractor(q.Base)
	wanted := make(map[int64]bool, len(q.IDs))
	for _, id := range q.IDs {
		wanted[id] = true
	}
	all, err := f.FetchIntervals(ctx, nil, rng)
	if err != nil {
		return nil, err
	}
	var filtered []domain.TimeInterval
	for _, iv := range all {
		if len(q.IDs) == 0 || wanted[base(iv)] {
			filtered = append(filtered, iv)
		}
	}
	dim := report.Dimensions{Entity: base, Sub: extractor(q.Sub), ByDay: q.ByDay}
	return report.Aggregate(filtered, dim, rng), nil
}

func (f *fakeBackend) grouped() []ports.GroupQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.GroupQuery(nil), f.groupedQueries...)
}

func (f *fakeBackend) UserNames(_ context.Context, ids []int64) (map[int64]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	names := make(map[int64]string)
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id {
				names[id] = u.FullName
			}
		}
	}
	return names, nil
}

func (f *fakeBackend) TaskNames(_ context.Context, ids []int64) (map[int64]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	names := make(map[int64]string)
	for _, t := range f.tasks {
		for _, id := range ids {
			if t.ID == id {
				names[id] = t.Name
			}
		}
	}
	return names, nil
}

func (f *fakeBackend) ProjectNames(_ context.Context, ids []int64) (map[int64]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	names := make(map[int64]string)
	for _, id := range ids {
		if name, ok := f.projects[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

func (f *fakeBackend) TasksByID(_ context.Context, ids []int64) ([]domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Task
	for _, t := range f.tasks {
		for _, id := range ids {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeBackend) TaskAssignees(_ context.Context, taskIDs []int64) (map[int64][]domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64][]domain.User)
	for _, id := range taskIDs {
		if users, ok := f.assignees[id]; ok {
			out[id] = users
		}
	}
	return out, nil
}

func (f *fakeBackend) UsersByID(_ context.Context, ids []int64) ([]domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.User
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func fakeInterval(id, user, task int64, start string, dur time.Duration) domain.TimeInterval {
	s, _ := time.Parse(time.RFC3339, start)
	return domain.TimeInterval{ID: id, UserID: user, TaskID: task, StartAt: s, EndAt: s.Add(dur)}
}

func mustRange(t *testing.T, start, end string, loc *time.Location) domain.DateRange {
	t.Helper()
	s, err := time.ParseInLocation(domain.DateFormat, start, loc)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	e, err := time.ParseInLocation(domain.DateFormat, end, loc)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	rng, err := domain.NewDateRange(s, e, loc)
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	return rng
}
