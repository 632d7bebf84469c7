package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"tracker-reports/internal/domain"
	"tracker-reports/internal/ports"
)

// Store implements ports.IntervalStore, ports.EntityLookup and
// ports.Directory over the MySQL fact database. All reads are parameterized;
// grouping columns come from the closed Dimension set, never from caller
// strings.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewStore(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

// dimExpr maps a dimension to its SQL expression. Project grouping goes
// through the tasks join; needsTasks reports whether the query must join it.
func dimExpr(d ports.Dimension) (expr string, needsTasks bool) {
	switch d {
	case ports.DimUser:
		return "ti.user_id", false
	case ports.DimTask:
		return "ti.task_id", false
	case ports.DimProject:
		return "t.project_id", true
	default:
		return "", false
	}
}

// FetchGrouped runs one grouped SUM over time_intervals. Day grouping for
// non-UTC report timezones goes through CONVERT_TZ, so the MySQL server
// needs its timezone tables loaded for those requests.
func (s *Store) FetchGrouped(ctx context.Context, q ports.GroupQuery, rng domain.DateRange) ([]domain.AggregatedRow, error) {
	baseExpr, joinTasks := dimExpr(q.Base)
	if baseExpr == "" {
		return nil, fmt.Errorf("mysql: grouped fetch needs a base dimension")
	}

	cols := []string{baseExpr + " AS entity_id"}
	group := []string{baseExpr}
	var args []any

	if q.Sub != ports.DimNone {
		subExpr, subTasks := dimExpr(q.Sub)
		joinTasks = joinTasks || subTasks
		cols = append(cols, subExpr+" AS sub_entity_id")
		group = append(group, subExpr)
	}
	if q.ByDay {
		// Timestamps are stored in UTC; only non-UTC report timezones need
		// CONVERT_TZ, which requires the server's timezone tables.
		dayExpr := "ti.start_at"
		if rng.Loc.String() != "UTC" {
			dayExpr = "CONVERT_TZ(ti.start_at, 'UTC', ?)"
			args = append(args, rng.Loc.String())
		}
		cols = append(cols, "DATE_FORMAT("+dayExpr+", '%Y-%m-%d') AS date_at")
		group = append(group, "date_at")
	}
	cols = append(cols, "SUM(GREATEST(TIMESTAMPDIFF(SECOND, ti.start_at, ti.end_at), 0)) AS seconds")

	var sb strings.Builder
	sb.WriteString("SELECT " + strings.Join(cols, ", ") + " FROM time_intervals ti")
	if joinTasks {
		sb.WriteString(" JOIN tasks t ON t.id = ti.task_id")
	}
	sb.WriteString(" WHERE ti.deleted_at IS NULL AND ti.start_at >= ? AND ti.end_at < ?")
	args = append(args, rng.LowerBound().UTC(), rng.UpperBound().UTC())
	if len(q.IDs) > 0 {
		sb.WriteString(" AND " + baseExpr + " IN (" + placeholders(len(q.IDs)) + ")")
		args = append(args, int64Args(q.IDs)...)
	}
	sb.WriteString(" GROUP BY " + strings.Join(group, ", "))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: grouped fetch: %w", err)
	}
	defer rows.Close()

	var out []domain.AggregatedRow
	for rows.Next() {
		var r domain.AggregatedRow
		dest := []any{&r.EntityID}
		if q.Sub != ports.DimNone {
			dest = append(dest, &r.SubEntityID)
		}
		if q.ByDay {
			dest = append(dest, &r.Date)
		}
		dest = append(dest, &r.Seconds)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FetchIntervals returns the raw non-deleted intervals in range, oldest first.
func (s *Store) FetchIntervals(ctx context.Context, userIDs []int64, rng domain.DateRange) ([]domain.TimeInterval, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, user_id, task_id, start_at, end_at, activity_fill, mouse_fill, keyboard_fill
FROM time_intervals
WHERE deleted_at IS NULL AND start_at >= ? AND end_at < ?`)
	args := []any{rng.LowerBound().UTC(), rng.UpperBound().UTC()}
	if len(userIDs) > 0 {
		sb.WriteString(" AND user_id IN (" + placeholders(len(userIDs)) + ")")
		args = append(args, int64Args(userIDs)...)
	}
	sb.WriteString(" ORDER BY start_at")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: fetch intervals: %w", err)
	}
	defer rows.Close()

	var out []domain.TimeInterval
	for rows.Next() {
		var (
			iv                        domain.TimeInterval
			activity, mouse, keyboard sql.NullInt64
		)
		if err := rows.Scan(&iv.ID, &iv.UserID, &iv.TaskID, &iv.StartAt, &iv.EndAt, &activity, &mouse, &keyboard); err != nil {
			return nil, err
		}
		iv.ActivityFill = nullableInt(activity)
		iv.MouseFill = nullableInt(mouse)
		iv.KeyboardFill = nullableInt(keyboard)
		out = append(out, iv)
	}
	return out, rows.Err()
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
		return nil, fmt.Errorf("mysql: name lookup: %w", err)
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

// TasksByID returns the task records for the given IDs; unknown IDs are
// simply absent.
func (s *Store) TasksByID(ctx context.Context, ids []int64) ([]domain.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT id, project_id, task_name, priority_id, status_id FROM tasks
WHERE deleted_at IS NULL AND id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, q, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("mysql: tasks by id: %w", err)
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
		return nil, fmt.Errorf("mysql: task assignees: %w", err)
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
		return nil, fmt.Errorf("mysql: users by id: %w", err)
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

// Close closes the underlying DB. Not wired via interface to keep ports minimal.
func (s *Store) Close() error { return s.db.Close() }

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
