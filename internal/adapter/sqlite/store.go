// Package sqlite is the embedded fact store used for local deployments and
// tests. Grouped aggregation delegates to the in-memory aggregator in
// internal/report, which keeps the day-grouping timezone semantics
// identical to the reference implementation without SQL timezone support.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tracker-reports/internal/domain"
	"tracker-reports/internal/ports"
	"tracker-reports/internal/report"
)

const currentVersion = 1

// Store implements ports.IntervalStore, ports.EntityLookup and
// ports.Directory over an embedded SQLite database.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string, log *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(log *slog.Logger) (*Store, error) {
	return New(":memory:", log)
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}
	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name  TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS projects (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id  INTEGER NOT NULL REFERENCES projects(id),
		task_name   TEXT NOT NULL,
		priority_id INTEGER NOT NULL DEFAULT 2,
		status_id   INTEGER NOT NULL DEFAULT 1,
		deleted_at  TEXT
	);

	CREATE TABLE IF NOT EXISTS tasks_users (
		task_id INTEGER NOT NULL REFERENCES tasks(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		PRIMARY KEY (task_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS time_intervals (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id       INTEGER NOT NULL REFERENCES users(id),
		task_id       INTEGER NOT NULL REFERENCES tasks(id),
		start_at      TEXT NOT NULL,
		end_at        TEXT NOT NULL,
		activity_fill INTEGER,
		mouse_fill    INTEGER,
		keyboard_fill INTEGER,
		deleted_at    TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_intervals_range ON time_intervals(start_at, end_at);
	CREATE INDEX IF NOT EXISTS idx_intervals_user  ON time_intervals(user_id);
	CREATE INDEX IF NOT EXISTS idx_intervals_task  ON time_intervals(task_id);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// FetchIntervals returns the raw non-deleted intervals in range, oldest first.
func (s *Store) FetchIntervals(ctx context.Context, userIDs []int64, rng domain.DateRange) ([]domain.TimeInterval, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, user_id, task_id, start_at, end_at, activity_fill, mouse_fill, keyboard_fill
FROM time_intervals
WHERE deleted_at IS NULL AND start_at >= ? AND end_at < ?`)
	args := []any{
		rng.LowerBound().UTC().Format(time.RFC3339),
		rng.UpperBound().UTC().Format(time.RFC3339),
	}
	if len(userIDs) > 0 {
		sb.WriteString(" AND user_id IN (" + placeholders(len(userIDs)) + ")")
		args = append(args, int64Args(userIDs)...)
	}
	sb.WriteString(" ORDER BY start_at")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch intervals: %w", err)
	}
	defer rows.Close()

	var out []domain.TimeInterval
	for rows.Next() {
		var (
			iv                        domain.TimeInterval
			startAt, endAt            string
			activity, mouse, keyboard sql.NullInt64
		)
		if err := rows.Scan(&iv.ID, &iv.UserID, &iv.TaskID, &startAt, &endAt, &activity, &mouse, &keyboard); err != nil {
			return nil, err
		}
		if iv.StartAt, err = time.Parse(time.RFC3339, startAt); err != nil {
			return nil, fmt.Errorf("sqlite: bad start_at %q: %w", startAt, err)
		}
		if iv.EndAt, err = time.Parse(time.RFC3339, endAt); err != nil {
			return nil, fmt.Errorf("sqlite: bad end_at %q: %w", endAt, err)
		}
		iv.ActivityFill = nullableInt(activity)
		iv.MouseFill = nullableInt(mouse)
		iv.KeyboardFill = nullableInt(keyboard)
		out = append(out, iv)
	}
	return out, rows.Err()
}

// FetchGrouped loads the matching intervals and sums them with the
// in-memory aggregator, so grouping keys (including report-timezone days)
// match the reference semantics exactly.
func (s *Store) FetchGrouped(ctx context.Context, q ports.GroupQuery, rng domain.DateRange) ([]domain.AggregatedRow, error) {
	intervals, err := s.intervalsForBase(ctx, q.Base, q.IDs, rng)
	if err != nil {
		return nil, err
	}

	dim := report.Dimensions{ByDay: q.ByDay}
	var taskProject map[int64]int64
	if q.Base == ports.DimProject || q.Sub == ports.DimProject {
		if taskProject, err = s.taskProjects(ctx, intervals); err != nil {
			return nil, err
		}
	}
	extractor := func(d ports.Dimension) func(domain.TimeInterval) int64 {
		switch d {
		case ports.DimUser:
			return report.ByUser
		case ports.DimTask:
			return report.ByTask
		case ports.DimProject:
			return report.ByProject(taskProject)
		default:
			return nil
		}
	}
	dim.Entity = extractor(q.Base)
	if dim.Entity == nil {
		return nil, fmt.Errorf("sqlite: grouped fetch needs a base dimension")
	}
	dim.Sub = extractor(q.Sub)
	return report.Aggregate(intervals, dim, rng), nil
}

// intervalsForBase fetches the range's intervals filtered by the base
// dimension's IDs.
func (s *Store) intervalsForBase(ctx context.Context, base ports.Dimension, ids []int64, rng domain.DateRange) ([]domain.TimeInterval, error) {
	switch base {
	case ports.DimUser:
		return s.FetchIntervals(ctx, ids, rng)
	case ports.DimTask, ports.DimProject:
		all, err := s.FetchIntervals(ctx, nil, rng)
		if err != nil || len(ids) == 0 {
			return all, err
		}
		wanted := make(map[int64]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
		if base == ports.DimProject {
			taskProject, err := s.taskProjects(ctx, all)
			if err != nil {
				return nil, err
			}
			filtered := all[:0]
			for _, iv := range all {
				if wanted[taskProject[iv.TaskID]] {
					filtered = append(filtered, iv)
				}
			}
			return filtered, nil
		}
		filtered := all[:0]
		for _, iv := range all {
			if wanted[iv.TaskID] {
				filtered = append(filtered, iv)
			}
		}
		return filtered, nil
	default:
		return nil, fmt.Errorf("sqlite: unsupported base dimension")
	}
}

func (s *Store) taskProjects(ctx context.Context, intervals []domain.TimeInterval) (map[int64]int64, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, iv := range intervals {
		if !seen[iv.TaskID] {
			seen[iv.TaskID] = true
			ids = append(ids, iv.TaskID)
		}
	}
	mapping := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return mapping, nil
	}
	q := "SELECT id, project_id FROM tasks WHERE id IN (" + placeholders(len(ids)) + ")"
	rows, err := s.db.QueryContext(ctx, q, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: task projects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var taskID, projectID int64
		if err := rows.Scan(&taskID, &projectID); err != nil {
			return nil, err
		}
		mapping[taskID] = projectID
	}
	return mapping, rows.Err()
}

// UserNames resolves user display names.
func (s *Store) UserNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return s.namesQuery(ctx, "SELECT id, full_name FROM users WHERE deleted_at IS NULL AND id IN", ids)
}

// TaskNames resolves task display names.
func (s *Store) TaskNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return s.namesQuery(ctx, "SELECT id, task_name FROM tasks WHERE deleted_at IS NULL AND id IN", ids)
}

// ProjectNames resolves project display names.
func (s *Store) ProjectNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return s.namesQuery(ctx, "SELECT id, name FROM projects WHERE deleted_at IS NULL AND id IN", ids)
}

func (s *Store) namesQuery(ctx context.Context, prefix string, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	q := prefix + " (" + placeholders(len(ids)) + ")"
	rows, err := s.db.QueryContext(ctx, q, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: name lookup: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// TasksByID returns the task records for the given IDs.
func (s *Store) TasksByID(ctx context.Context, ids []int64) ([]domain.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT id, project_id, task_name, priority_id, status_id FROM tasks
WHERE deleted_at IS NULL AND id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, q, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: tasks by id: %w", err)
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.PriorityID, &t.StatusID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TaskAssignees returns the users assigned to each task.
func (s *Store) TaskAssignees(ctx context.Context, taskIDs []int64) (map[int64][]domain.User, error) {
	assignees := make(map[int64][]domain.User, len(taskIDs))
	if len(taskIDs) == 0 {
		return assignees, nil
	}
	q := `SELECT tu.task_id, u.id, u.full_name, u.email
FROM tasks_users tu
JOIN users u ON u.id = tu.user_id AND u.deleted_at IS NULL
WHERE tu.task_id IN (` + placeholders(len(taskIDs)) + `)
ORDER BY tu.task_id, u.id`
	rows, err := s.db.QueryContext(ctx, q, int64Args(taskIDs)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: task assignees: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			taskID int64
			u      domain.User
		)
		if err := rows.Scan(&taskID, &u.ID, &u.FullName, &u.Email); err != nil {
			return nil, err
		}
		assignees[taskID] = append(assignees[taskID], u)
	}
	return assignees, rows.Err()
}

// UsersByID returns the user records for the given IDs.
func (s *Store) UsersByID(ctx context.Context, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT id, full_name, email FROM users
WHERE deleted_at IS NULL AND id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, q, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: users by id: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
