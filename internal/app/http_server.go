package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tracker-reports/internal/domain"
	"tracker-reports/internal/export"
	"tracker-reports/internal/report"
	"tracker-reports/internal/usecase"
)

// HTTPServer returns a configured http.Server exposing the report
// endpoints. Call ListenAndServe on the returned server in a goroutine and
// Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /report/universal/generate", a.handleUniversal)
	mux.HandleFunc("POST /report/task", a.handleTaskReport)
	mux.HandleFunc("POST /report/dashboard", a.handleDashboard)
	mux.HandleFunc("POST /report/dashboard/download", a.handleDashboardDownload)

	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(a.log, mux)}
	a.log.Info("report http server configured", slog.String("addr", addr))
	return srv
}

type universalRequest struct {
	Base         string   `json:"base"`
	IDs          []int64  `json:"ids"`
	StartAt      string   `json:"start_at"`
	EndAt        string   `json:"end_at"`
	Calculations []string `json:"calculations"`
	Charts       []string `json:"charts"`
}

func (a *App) handleUniversal(w http.ResponseWriter, r *http.Request) {
	var body universalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	base, err := report.ParseBase(body.Base)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rng, err := a.parseRange(body.StartAt, body.EndAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	metrics := make([]report.Metric, 0, len(body.Calculations))
	for _, name := range body.Calculations {
		m, err := report.ParseMetric(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		metrics = append(metrics, m)
	}
	charts := make([]report.Chart, 0, len(body.Charts))
	for _, name := range body.Charts {
		c, err := report.ParseChart(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		charts = append(charts, c)
	}

	res, err := a.universal.Run(r.Context(), usecase.UniversalRequest{
		Base:         base,
		EntityIDs:    body.IDs,
		Range:        rng,
		Calculations: metrics,
		Charts:       charts,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type taskReportRequest struct {
	Tasks   []int64 `json:"tasks"`
	StartAt string  `json:"start_at"`
	EndAt   string  `json:"end_at"`
}

func (a *App) handleTaskReport(w http.ResponseWriter, r *http.Request) {
	var body taskReportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	rng, err := a.parseRange(body.StartAt, body.EndAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rows, err := a.tasks.Run(r.Context(), body.Tasks, rng)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": rows})
}

type dashboardRequest struct {
	Users         []int64 `json:"users"`
	Projects      []int64 `json:"projects"`
	StartAt       string  `json:"start_at"`
	EndAt         string  `json:"end_at"`
	UserTimezone  string  `json:"user_timezone"`
	SortColumn    string  `json:"sort_column"`
	SortDirection string  `json:"sort_direction"`
	Format        string  `json:"format"`
}

func (a *App) dashboardFromRequest(r *http.Request) (usecase.DashboardResult, *dashboardRequest, error) {
	var body dashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, nil, fmt.Errorf("decode request: %w", err)
	}
	rng, err := a.parseRange(body.StartAt, body.EndAt)
	if err != nil {
		return nil, nil, err
	}
	viewerLoc := a.loc
	if body.UserTimezone != "" {
		if viewerLoc, err = time.LoadLocation(body.UserTimezone); err != nil {
			return nil, nil, fmt.Errorf("%w: bad user_timezone", domain.ErrInvalidRange)
		}
	}
	res, err := a.dashboard.Run(r.Context(), usecase.DashboardRequest{
		UserIDs:    body.Users,
		ProjectIDs: body.Projects,
		Range:      rng,
		ViewerLoc:  viewerLoc,
	})
	return res, &body, err
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	res, _, err := a.dashboardFromRequest(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": res})
}

func (a *App) handleDashboardDownload(w http.ResponseWriter, r *http.Request) {
	res, body, err := a.dashboardFromRequest(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	rows := res.Flatten(usecase.SortBy(body.SortColumn), usecase.SortDirection(body.SortDirection))

	dir := filepath.Join(a.reportsDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	var path string
	switch body.Format {
	case "", "csv":
		path = filepath.Join(dir, "Dashboard_Report.csv")
		err = export.ToCSV(rows, path)
	case "json":
		path = filepath.Join(dir, "Dashboard_Report.json")
		err = export.ToJSON(rows, path)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q", body.Format))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.log.Info("dashboard report written", slog.String("path", path), slog.Int("rows", len(rows)))
	writeJSON(w, http.StatusOK, map[string]any{"url": path})
}

// parseRange accepts RFC3339 or YYYY-MM-DD boundaries and interprets them
// in the report timezone.
func (a *App) parseRange(startStr, endStr string) (domain.DateRange, error) {
	start, err := parseBoundary(startStr, a.loc)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("%w: bad start_at %q", domain.ErrInvalidRange, startStr)
	}
	end, err := parseBoundary(endStr, a.loc)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("%w: bad end_at %q", domain.ErrInvalidRange, endStr)
	}
	return domain.NewDateRange(start, end, a.loc)
}

func parseBoundary(val string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation("2006-01-02", val, loc); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD")
}

func statusFor(err error) int {
	if errors.Is(err, domain.ErrInvalidRange) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"status": "error", "error": err.Error()})
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
