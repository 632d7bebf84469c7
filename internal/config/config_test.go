package config

import "testing"

func TestLoadRequiresStore(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("SQLITE_PATH", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without a fact store")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("SQLITE_PATH", "facts.db")
	t.Setenv("REPORT_TZ", "")
	t.Setenv("REPORTS_DIR", "")
	t.Setenv("HTTP_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SQLite.Path != "facts.db" {
		t.Errorf("unexpected sqlite path %q", cfg.SQLite.Path)
	}
	if cfg.Report.Timezone != "UTC" {
		t.Errorf("expected UTC default, got %q", cfg.Report.Timezone)
	}
	if cfg.Report.Dir != "reports" {
		t.Errorf("expected reports default, got %q", cfg.Report.Dir)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected :8080 default, got %q", cfg.HTTP.Addr)
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("SQLITE_PATH", "facts.db")
	t.Setenv("REPORT_TZ", "Mars/Phobos")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/tracker?parseTime=true")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("REPORT_TZ", "Europe/Berlin")
	t.Setenv("REPORTS_DIR", "/var/reports")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MySQL.DSN == "" || cfg.Report.Timezone != "Europe/Berlin" ||
		cfg.Report.Dir != "/var/reports" || cfg.HTTP.Addr != ":9090" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}
