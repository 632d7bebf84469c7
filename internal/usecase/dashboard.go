package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"tracker-reports/internal/domain"
	"tracker-reports/internal/ports"
	"tracker-reports/internal/report"
)

// SortBy names a dashboard export sort column.
type SortBy string

const (
	SortByUser     SortBy = "user"
	SortByProject  SortBy = "project"
	SortByTask     SortBy = "task"
	SortByDuration SortBy = "duration"
	SortByStart    SortBy = "start"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Dashboard assembles the interactive dashboard view: every interval in
// range per user, enriched with entity names and per-user day totals, plus
// the flat sortable row list the export writes out.
type Dashboard struct {
	Log       *slog.Logger
	Store     ports.IntervalStore
	Directory ports.Directory
	Lookup    ports.EntityLookup
}

// DashboardRequest carries the filters for one dashboard call. UserIDs is
// required; ProjectIDs empty means all projects. Range is in the company
// timezone; ViewerLoc drives the durationByDay grouping.
type DashboardRequest struct {
	UserIDs    []int64
	ProjectIDs []int64
	Range      domain.DateRange
	ViewerLoc  *time.Location
}

// DashboardRecord is one enriched interval row. DurationByDay and
// DurationAtSelectedPeriod repeat the owning user's totals on every record,
// matching the shape the dashboard client consumes.
type DashboardRecord struct {
	ID                       int64            `json:"id"`
	UserID                   int64            `json:"user_id"`
	FullName                 string           `json:"full_name"`
	UserEmail                string           `json:"user_email"`
	TaskID                   int64            `json:"task_id"`
	TaskName                 string           `json:"task_name"`
	ProjectID                int64            `json:"project_id"`
	ProjectName              string           `json:"project_name"`
	StartAt                  string           `json:"start_at"`
	EndAt                    string           `json:"end_at"`
	Duration                 int64            `json:"duration"`
	FromMidnight             int64            `json:"from_midnight"`
	ActivityFill             *int             `json:"activity_fill"`
	MouseFill                *int             `json:"mouse_fill"`
	KeyboardFill             *int             `json:"keyboard_fill"`
	DurationByDay            map[string]int64 `json:"durationByDay"`
	DurationAtSelectedPeriod int64            `json:"durationAtSelectedPeriod"`
}

// DashboardResult groups the records by user ID.
type DashboardResult map[int64][]DashboardRecord

const dashboardTimeLayout = "2006-01-02 15:04:05"

// Run fetches the intervals once and derives everything else in memory.
func (uc *Dashboard) Run(ctx context.Context, req DashboardRequest) (DashboardResult, error) {
	if len(req.UserIDs) == 0 {
		return nil, fmt.Errorf("%w: no users selected", domain.ErrInvalidRange)
	}
	viewerLoc := req.ViewerLoc
	if viewerLoc == nil {
		viewerLoc = req.Range.Loc
	}

	intervals, err := uc.Store.FetchIntervals(ctx, req.UserIDs, req.Range)
	if err != nil {
		return nil, fmt.Errorf("fetch intervals: %w", err)
	}

	taskIDs := distinct(intervals, func(iv domain.TimeInterval) int64 { return iv.TaskID })
	tasks, err := uc.Directory.TasksByID(ctx, taskIDs)
	if err != nil {
		return nil, err
	}
	taskByID := make(map[int64]domain.Task, len(tasks))
	projectIDs := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
		projectIDs = append(projectIDs, t.ProjectID)
	}
	projectNames, err := uc.Lookup.ProjectNames(ctx, projectIDs)
	if err != nil {
		return nil, err
	}
	users, err := uc.Directory.UsersByID(ctx, req.UserIDs)
	if err != nil {
		return nil, err
	}
	userByID := make(map[int64]domain.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	if len(req.ProjectIDs) > 0 {
		wanted := make(map[int64]bool, len(req.ProjectIDs))
		for _, id := range req.ProjectIDs {
			wanted[id] = true
		}
		filtered := intervals[:0]
		for _, iv := range intervals {
			if wanted[taskByID[iv.TaskID].ProjectID] {
				filtered = append(filtered, iv)
			}
		}
		intervals = filtered
	}

	// Day totals are grouped in the viewer's timezone, not the report's.
	viewerRange := domain.DateRange{Start: req.Range.Start, End: req.Range.End, Loc: viewerLoc}
	byDay := report.Aggregate(intervals, report.Dimensions{Entity: report.ByUser, ByDay: true}, viewerRange)
	dayTotals := make(map[int64]map[string]int64)
	for _, r := range byDay {
		if dayTotals[r.EntityID] == nil {
			dayTotals[r.EntityID] = make(map[string]int64)
		}
		dayTotals[r.EntityID][r.Date] = r.Seconds
	}
	periodTotals := report.TotalPerEntity(byDay)

	result := make(DashboardResult, len(req.UserIDs))
	for _, iv := range intervals {
		task := taskByID[iv.TaskID]
		user := userByID[iv.UserID]
		startLocal := iv.StartAt.In(viewerLoc)
		midnight := time.Date(startLocal.Year(), startLocal.Month(), startLocal.Day(), 0, 0, 0, 0, viewerLoc)

		result[iv.UserID] = append(result[iv.UserID], DashboardRecord{
			ID:                       iv.ID,
			UserID:                   iv.UserID,
			FullName:                 user.FullName,
			UserEmail:                user.Email,
			TaskID:                   iv.TaskID,
			TaskName:                 task.Name,
			ProjectID:                task.ProjectID,
			ProjectName:              projectNames[task.ProjectID],
			StartAt:                  startLocal.Format(dashboardTimeLayout),
			EndAt:                    iv.EndAt.In(viewerLoc).Format(dashboardTimeLayout),
			Duration:                 iv.DurationSec(),
			FromMidnight:             int64(startLocal.Sub(midnight) / time.Second),
			ActivityFill:             iv.ActivityFill,
			MouseFill:                iv.MouseFill,
			KeyboardFill:             iv.KeyboardFill,
			DurationByDay:            dayTotals[iv.UserID],
			DurationAtSelectedPeriod: periodTotals[iv.UserID],
		})
	}

	uc.Log.Info("dashboard built",
		slog.Int("users", len(req.UserIDs)),
		slog.Int("intervals", len(intervals)),
	)
	return result, nil
}

// Flatten returns all records as a single slice sorted by the requested
// column and direction, ready for the flat export.
func (r DashboardResult) Flatten(column SortBy, dir SortDirection) []DashboardRecord {
	var rows []DashboardRecord
	for _, recs := range r {
		rows = append(rows, recs...)
	}
	less := func(a, b DashboardRecord) bool {
		switch column {
		case SortByProject:
			return a.ProjectName < b.ProjectName
		case SortByTask:
			return a.TaskName < b.TaskName
		case SortByDuration:
			return a.Duration < b.Duration
		case SortByStart:
			return a.StartAt < b.StartAt
		default:
			return a.FullName < b.FullName
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if dir == SortDesc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
	return rows
}

func distinct(intervals []domain.TimeInterval, key func(domain.TimeInterval) int64) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, iv := range intervals {
		id := key(iv)
		if id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
