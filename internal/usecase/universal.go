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

// UniversalReport builds the caller-configured report: the caller picks a
// base entity type, the entities, and the calculations and charts to
// compute. Unrequested combinations are never fetched.
type UniversalReport struct {
	Log    *slog.Logger
	Store  ports.IntervalStore
	Lookup ports.EntityLookup
	Color  report.ColorFunc
}

// UniversalRequest is built per call and discarded with the response.
type UniversalRequest struct {
	Base         report.Base
	EntityIDs    []int64
	Range        domain.DateRange
	Calculations []report.Metric
	Charts       []report.Chart
}

// UniversalResult is the assembled response: calculations keyed by their
// name, charts keyed by chart name with gap-filled datasets.
type UniversalResult struct {
	Calculations map[string][]domain.AggregatedRow `json:"calculations"`
	Charts       map[string]any                    `json:"charts"`
}

func baseDim(b report.Base) ports.Dimension {
	switch b {
	case report.BaseUsers:
		return ports.DimUser
	case report.BaseProjects:
		return ports.DimProject
	default:
		return ports.DimTask
	}
}

func metricQuery(base ports.Dimension, m report.Metric) ports.GroupQuery {
	q := ports.GroupQuery{Base: base}
	switch m {
	case report.MetricTotalByDay:
		q.ByDay = true
	case report.MetricTotalByUser:
		q.Sub = ports.DimUser
	case report.MetricTotalByUserAndDay:
		q.Sub = ports.DimUser
		q.ByDay = true
	}
	return q
}

// chartQuery returns the grouped fetch behind a chart and the sub dimension
// its nested series are keyed by (DimNone for one-level charts).
func chartQuery(base ports.Dimension, c report.Chart) (ports.GroupQuery, ports.Dimension) {
	q := ports.GroupQuery{Base: base, ByDay: true}
	switch c {
	case report.ChartDayAndTasks:
		q.Sub = ports.DimTask
	case report.ChartDayAndProjects:
		q.Sub = ports.DimProject
	case report.ChartDayAndUsersSeparately, report.ChartDayUsersSeparately:
		q.Sub = ports.DimUser
	}
	return q, q.Sub
}

// chartValue converts summed seconds to the value format the chart uses.
func chartValue(c report.Chart, seconds int64) any {
	switch c {
	case report.ChartDayAndProjects:
		return report.Hours(seconds)
	case report.ChartDayAndUsersSeparately, report.ChartDayUsersSeparately:
		return seconds
	default:
		return report.FormatHours(seconds)
	}
}

// Run validates the request, fetches every requested grouped aggregation
// (concurrently; the fetches are independent), then builds, labels, and
// gap-fills the series. Any fetch error aborts the pipeline; partial
// results are discarded.
func (uc *UniversalReport) Run(ctx context.Context, req UniversalRequest) (*UniversalResult, error) {
	if len(req.EntityIDs) == 0 {
		return nil, fmt.Errorf("%w: no entities selected", domain.ErrInvalidRange)
	}

	base := baseDim(req.Base)
	metrics := intersectMetrics(req.Calculations, report.MetricsFor(req.Base))
	charts := intersectCharts(req.Charts, report.ChartsFor(req.Base))

	var (
		baseNames  map[int64]string
		metricRows = make([][]domain.AggregatedRow, len(metrics))
		chartRows  = make([][]domain.AggregatedRow, len(charts))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		baseNames, err = uc.names(gctx, base, req.EntityIDs)
		return err
	})
	for i, m := range metrics {
		q := metricQuery(base, m)
		q.IDs = req.EntityIDs
		g.Go(func() error {
			rows, err := uc.Store.FetchGrouped(gctx, q, req.Range)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", m, err)
			}
			metricRows[i] = rows
			return nil
		})
	}
	for i, c := range charts {
		q, _ := chartQuery(base, c)
		q.IDs = req.EntityIDs
		g.Go(func() error {
			rows, err := uc.Store.FetchGrouped(gctx, q, req.Range)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", c, err)
			}
			chartRows[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	periodDates := req.Range.Dates()
	res := &UniversalResult{
		Calculations: make(map[string][]domain.AggregatedRow, len(metrics)),
		Charts:       make(map[string]any, len(charts)),
	}
	for i, m := range metrics {
		res.Calculations[m.String()] = metricRows[i]
	}
	for i, c := range charts {
		_, sub := chartQuery(base, c)
		payload, err := uc.buildChart(ctx, c, sub, chartRows[i], req.EntityIDs, baseNames, periodDates)
		if err != nil {
			return nil, err
		}
		res.Charts[c.String()] = payload
	}

	uc.Log.Info("universal report built",
		slog.String("base", req.Base.String()),
		slog.Int("entities", len(req.EntityIDs)),
		slog.Int("calculations", len(metrics)),
		slog.Int("charts", len(charts)),
	)
	return res, nil
}

// buildChart assembles one chart payload. Every requested entity gets a
// dataset entry even with no tracked time: a quiet entity shows up as an
// all-zero line, not a hole.
func (uc *UniversalReport) buildChart(ctx context.Context, c report.Chart, sub ports.Dimension, rows []domain.AggregatedRow, entityIDs []int64, baseNames map[int64]string, periodDates []string) (any, error) {
	if sub == ports.DimNone {
		b := report.NewSeriesBuilder(baseNames, uc.Color)
		for _, id := range entityIDs {
			b.Seed(id)
		}
		for _, r := range rows {
			b.Add(r.EntityID, r.Date, chartValue(c, r.Seconds))
		}
		ds := b.Dataset()
		report.FillDataset(ds, periodDates)
		return report.ChartData{Datasets: ds}, nil
	}

	subIDs := make([]int64, 0, len(rows))
	seen := make(map[int64]bool)
	for _, r := range rows {
		if r.SubEntityID != 0 && !seen[r.SubEntityID] {
			seen[r.SubEntityID] = true
			subIDs = append(subIDs, r.SubEntityID)
		}
	}
	subNames, err := uc.names(ctx, sub, subIDs)
	if err != nil {
		return nil, err
	}

	b := report.NewNestedSeriesBuilder(subNames, uc.Color)
	for _, id := range entityIDs {
		b.Seed(id)
	}
	for _, r := range rows {
		b.Add(r.EntityID, r.SubEntityID, r.Date, chartValue(c, r.Seconds))
	}
	nd := b.Dataset()
	report.FillNested(nd, periodDates)
	return report.NestedChartData{Datasets: nd}, nil
}

func (uc *UniversalReport) names(ctx context.Context, dim ports.Dimension, ids []int64) (map[int64]string, error) {
	switch dim {
	case ports.DimUser:
		return uc.Lookup.UserNames(ctx, ids)
	case ports.DimTask:
		return uc.Lookup.TaskNames(ctx, ids)
	case ports.DimProject:
		return uc.Lookup.ProjectNames(ctx, ids)
	default:
		return nil, nil
	}
}

// intersectMetrics keeps the requested metrics the base type supports,
// preserving request order and dropping duplicates.
func intersectMetrics(requested, allowed []report.Metric) []report.Metric {
	ok := make(map[report.Metric]bool, len(allowed))
	for _, m := range allowed {
		ok[m] = true
	}
	var out []report.Metric
	for _, m := range requested {
		if ok[m] {
			ok[m] = false
			out = append(out, m)
		}
	}
	return out
}

func intersectCharts(requested, allowed []report.Chart) []report.Chart {
	ok := make(map[report.Chart]bool, len(allowed))
	for _, c := range allowed {
		ok[c] = true
	}
	var out []report.Chart
	for _, c := range requested {
		if ok[c] {
			ok[c] = false
			out = append(out, c)
		}
	}
	return out
}
