// Package report implements the in-memory report aggregation core:
// duration summing over interval facts, series building, and date-range
// gap filling. It performs no I/O; orchestrators in internal/usecase feed
// it rows fetched through the ports interfaces.
package report

import "fmt"

// Base selects which entity type a universal report is built around.
type Base uint8

const (
	BaseUsers Base = iota
	BaseProjects
	BaseTasks
)

func (b Base) String() string {
	switch b {
	case BaseUsers:
		return "users"
	case BaseProjects:
		return "projects"
	case BaseTasks:
		return "tasks"
	default:
		return "unknown"
	}
}

// ParseBase maps the request value to a Base.
func ParseBase(s string) (Base, error) {
	switch s {
	case "users":
		return BaseUsers, nil
	case "projects":
		return BaseProjects, nil
	case "tasks":
		return BaseTasks, nil
	default:
		return 0, fmt.Errorf("unknown report base %q", s)
	}
}

// Metric is one calculation over the fact table. The set is closed; each
// variant maps to exactly one grouped aggregation, so a request can never
// smuggle arbitrary grouping clauses into a query.
type Metric uint8

const (
	MetricTotal Metric = iota
	MetricTotalByDay
	MetricTotalByUser
	MetricTotalByUserAndDay
)

var metricNames = map[Metric]string{
	MetricTotal:             "total_spent_time",
	MetricTotalByDay:        "total_spent_time_by_day",
	MetricTotalByUser:       "total_spent_time_by_user",
	MetricTotalByUserAndDay: "total_spent_time_by_day_and_user",
}

func (m Metric) String() string { return metricNames[m] }

// ParseMetric maps a requested calculation name to its Metric.
func ParseMetric(s string) (Metric, error) {
	for m, name := range metricNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown calculation %q", s)
}

// Chart is one chart shape a universal report can produce.
type Chart uint8

const (
	// ChartTotalByDay is a one-level chart: one series per base entity,
	// HH.MM values per day.
	ChartTotalByDay Chart = iota
	// ChartDayAndTasks nests per-task series under each user, HH.MM values.
	ChartDayAndTasks
	// ChartDayAndProjects nests per-project series under each user,
	// values in fractional hours.
	ChartDayAndProjects
	// ChartDayAndUsersSeparately nests per-user series under each project,
	// values in raw seconds.
	ChartDayAndUsersSeparately
	// ChartDayUsersSeparately nests per-user series under each task,
	// values in raw seconds.
	ChartDayUsersSeparately
)

var chartNames = map[Chart]string{
	ChartTotalByDay:            "total_spent_time_day",
	ChartDayAndTasks:           "total_spent_time_day_and_tasks",
	ChartDayAndProjects:        "total_spent_time_day_and_projects",
	ChartDayAndUsersSeparately: "total_spent_time_day_and_users_separately",
	ChartDayUsersSeparately:    "total_spent_time_day_users_separately",
}

func (c Chart) String() string { return chartNames[c] }

// ParseChart maps a requested chart name to its Chart.
func ParseChart(s string) (Chart, error) {
	for c, name := range chartNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown chart %q", s)
}

// MetricsFor returns the calculations a base type supports, in a fixed order.
func MetricsFor(b Base) []Metric {
	switch b {
	case BaseUsers:
		return []Metric{MetricTotal, MetricTotalByDay}
	case BaseProjects:
		return []Metric{MetricTotalByUser, MetricTotalByDay, MetricTotalByUserAndDay}
	case BaseTasks:
		return []Metric{MetricTotal, MetricTotalByUser, MetricTotalByDay, MetricTotalByUserAndDay}
	default:
		return nil
	}
}

// ChartsFor returns the charts a base type supports, in a fixed order.
func ChartsFor(b Base) []Chart {
	switch b {
	case BaseUsers:
		return []Chart{ChartTotalByDay, ChartDayAndTasks, ChartDayAndProjects}
	case BaseProjects:
		return []Chart{ChartTotalByDay, ChartDayAndUsersSeparately}
	case BaseTasks:
		return []Chart{ChartTotalByDay, ChartDayUsersSeparately}
	default:
		return nil
	}
}
