// Package export writes the dashboard's flat report files. Generating the
// rows is the dashboard orchestrator's job; delivery (storage upload,
// email) belongs to the caller.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"tracker-reports/internal/usecase"
)

var csvHeader = []string{
	"User", "Email", "Project", "Task",
	"Start", "End", "Duration (s)", "Duration",
	"Activity %", "Mouse %", "Keyboard %",
}

// ToCSV writes the sorted dashboard rows to path.
func ToCSV(rows []usecase.DashboardRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.FullName,
			r.UserEmail,
			r.ProjectName,
			r.TaskName,
			r.StartAt,
			r.EndAt,
			strconv.FormatInt(r.Duration, 10),
			formatDuration(r.Duration),
			fillString(r.ActivityFill),
			fillString(r.MouseFill),
			fillString(r.KeyboardFill),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func fillString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
