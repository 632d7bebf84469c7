package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tracker-reports/internal/domain"
	"tracker-reports/internal/ports"
	"tracker-reports/internal/report"
)

// TaskReport builds the per-task detail rows: task attributes, total spent
// time, a gap-filled day-by-day breakdown, and nested per-assignee
// breakdowns.
type TaskReport struct {
	Log       *slog.Logger
	Store     ports.IntervalStore
	Directory ports.Directory
	Lookup    ports.EntityLookup
}

// TaskReportUser is one assignee's slice of a task's detail row.
type TaskReportUser struct {
	ID                   int64            `json:"id"`
	FullName             string           `json:"full_name"`
	Email                string           `json:"email"`
	TotalSpentTimeByUser int64            `json:"total_spent_time_by_user"`
	WorkersDay           map[string]int64 `json:"workers_day"`
}

// TaskReportRow is one task's detail row.
type TaskReportRow struct {
	ID             int64            `json:"id"`
	Name           string           `json:"task_name"`
	ProjectID      int64            `json:"project_id"`
	ProjectName    string           `json:"project_name"`
	Priority       string           `json:"priority"`
	Status         string           `json:"status"`
	TotalSpentTime int64            `json:"total_spent_time"`
	WorkedTimeDay  map[string]int64 `json:"worked_time_day"`
	Users          []TaskReportUser `json:"users"`
}

// Run produces one row per requested task that exists. Task IDs with no
// matching task are skipped, not errors. All four grouped aggregations run
// concurrently against the same filtered base set; each is independent.
func (uc *TaskReport) Run(ctx context.Context, taskIDs []int64, rng domain.DateRange) ([]TaskReportRow, error) {
	if len(taskIDs) == 0 {
		return nil, fmt.Errorf("%w: no tasks selected", domain.ErrInvalidRange)
	}

	var (
		tasks     []domain.Task
		assignees map[int64][]domain.User

		totals       []domain.AggregatedRow
		byDay        []domain.AggregatedRow
		byUser       []domain.AggregatedRow
		byUserAndDay []domain.AggregatedRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = uc.Directory.TasksByID(gctx, taskIDs)
		return err
	})
	g.Go(func() error {
		var err error
		assignees, err = uc.Directory.TaskAssignees(gctx, taskIDs)
		return err
	})
	fetch := func(q ports.GroupQuery, dst *[]domain.AggregatedRow) func() error {
		return func() error {
			rows, err := uc.Store.FetchGrouped(gctx, q, rng)
			if err != nil {
				return err
			}
			*dst = rows
			return nil
		}
	}
	g.Go(fetch(ports.GroupQuery{Base: ports.DimTask, IDs: taskIDs}, &totals))
	g.Go(fetch(ports.GroupQuery{Base: ports.DimTask, IDs: taskIDs, ByDay: true}, &byDay))
	g.Go(fetch(ports.GroupQuery{Base: ports.DimTask, IDs: taskIDs, Sub: ports.DimUser}, &byUser))
	g.Go(fetch(ports.GroupQuery{Base: ports.DimTask, IDs: taskIDs, Sub: ports.DimUser, ByDay: true}, &byUserAndDay))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	projectIDs := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		projectIDs = append(projectIDs, t.ProjectID)
	}
	projectNames, err := uc.Lookup.ProjectNames(ctx, projectIDs)
	if err != nil {
		return nil, err
	}

	periodDates := rng.Dates()
	taskTotals := report.TotalPerEntity(totals)

	rows := make([]TaskReportRow, 0, len(tasks))
	for _, t := range tasks {
		row := TaskReportRow{
			ID:             t.ID,
			Name:           t.Name,
			ProjectID:      t.ProjectID,
			ProjectName:    projectNames[t.ProjectID],
			Priority:       t.PriorityLabel(),
			Status:         t.StatusLabel(),
			TotalSpentTime: taskTotals[t.ID],
			WorkedTimeDay:  make(map[string]int64, len(periodDates)),
		}
		for _, r := range byDay {
			if r.EntityID == t.ID {
				row.WorkedTimeDay[r.Date] = r.Seconds
			}
		}
		report.FillDayMap(row.WorkedTimeDay, periodDates)

		for _, u := range assignees[t.ID] {
			ru := TaskReportUser{
				ID:         u.ID,
				FullName:   u.FullName,
				Email:      u.Email,
				WorkersDay: make(map[string]int64, len(periodDates)),
			}
			for _, r := range byUser {
				if r.EntityID == t.ID && r.SubEntityID == u.ID {
					ru.TotalSpentTimeByUser = r.Seconds
					break
				}
			}
			for _, r := range byUserAndDay {
				if r.EntityID == t.ID && r.SubEntityID == u.ID {
					ru.WorkersDay[r.Date] = r.Seconds
				}
			}
			report.FillDayMap(ru.WorkersDay, periodDates)
			row.Users = append(row.Users, ru)
		}
		rows = append(rows, row)
	}

	uc.Log.Info("task report built", slog.Int("tasks", len(rows)))
	return rows, nil
}
