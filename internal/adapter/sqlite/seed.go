package sqlite

import (
	"context"
	"fmt"
	"time"

	"tracker-reports/internal/domain"
)

// Write helpers for the embedded deployment: the report engine itself never
// writes, but local databases need a way to get facts in. Also used by tests.

func (s *Store) InsertUser(ctx context.Context, fullName, email string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (full_name, email) VALUES (?, ?)`, fullName, email)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert user: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertProject(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert project: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertTask(ctx context.Context, projectID int64, name string, priorityID, statusID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (project_id, task_name, priority_id, status_id) VALUES (?, ?, ?, ?)`,
		projectID, name, priorityID, statusID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert task: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) AssignTask(ctx context.Context, taskID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tasks_users (task_id, user_id) VALUES (?, ?)`, taskID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: assign task: %w", err)
	}
	return nil
}

func (s *Store) InsertInterval(ctx context.Context, iv domain.TimeInterval) (int64, error) {
	var deletedAt any
	if iv.DeletedAt != nil {
		deletedAt = iv.DeletedAt.UTC().Format(time.RFC3339)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO time_intervals (user_id, task_id, start_at, end_at, activity_fill, mouse_fill, keyboard_fill, deleted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		iv.UserID, iv.TaskID,
		iv.StartAt.UTC().Format(time.RFC3339), iv.EndAt.UTC().Format(time.RFC3339),
		nullArg(iv.ActivityFill), nullArg(iv.MouseFill), nullArg(iv.KeyboardFill),
		deletedAt)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert interval: %w", err)
	}
	return res.LastInsertId()
}

func nullArg(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
