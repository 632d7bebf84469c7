package config

import (
	"errors"
	"os"
	"time"
)

// Config holds environment-driven configuration.
type Config struct {
	MySQL struct {
		DSN string // e.g., user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
	}
	SQLite struct {
		Path string // embedded fallback when no MySQL DSN is set
	}
	Report struct {
		Timezone string // company timezone for report ranges, e.g. UTC (default), Europe/Berlin
		Dir      string // directory the download endpoints write report files to
	}
	HTTP struct {
		Addr string
	}
}

// Load reads configuration from environment variables. Exactly one of
// MYSQL_DSN or SQLITE_PATH must name the fact store.
func Load() (Config, error) {
	var cfg Config

	cfg.MySQL.DSN = os.Getenv("MYSQL_DSN")
	cfg.SQLite.Path = os.Getenv("SQLITE_PATH")
	if cfg.MySQL.DSN == "" && cfg.SQLite.Path == "" {
		return cfg, errors.New("one of MYSQL_DSN or SQLITE_PATH is required")
	}

	cfg.Report.Timezone = os.Getenv("REPORT_TZ")
	if cfg.Report.Timezone == "" {
		cfg.Report.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
		return cfg, errors.New("REPORT_TZ must be a valid IANA timezone")
	}

	cfg.Report.Dir = os.Getenv("REPORTS_DIR")
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "reports"
	}

	cfg.HTTP.Addr = os.Getenv("HTTP_ADDR")
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}

	return cfg, nil
}
