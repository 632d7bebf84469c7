package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tracker-reports/internal/usecase"
)

type jsonExport struct {
	ExportedAt string                    `json:"exported_at"`
	Count      int                       `json:"count"`
	Rows       []usecase.DashboardRecord `json:"rows"`
}

// ToJSON writes the sorted dashboard rows to path as indented JSON.
func ToJSON(rows []usecase.DashboardRecord, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(rows),
		Rows:       rows,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
