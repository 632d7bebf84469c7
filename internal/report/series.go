package report

import "math/rand"

// Series is one labeled chart line: a date-keyed mapping of values plus the
// display color shared by its border and background. Values are either
// HH.MM strings, fractional hours, or raw seconds depending on the chart;
// the builder stores whatever it is given. Data keys are ISO dates, which
// encoding/json emits in ascending (chronological) order.
type Series struct {
	Label           string         `json:"label"`
	BorderColor     string         `json:"borderColor"`
	BackgroundColor string         `json:"backgroundColor"`
	Data            map[string]any `json:"data"`
}

// Dataset maps a primary entity ID to its series.
type Dataset map[int64]*Series

// NestedDataset maps a primary entity ID to per-sub-entity series.
type NestedDataset map[int64]Dataset

// ChartData is the payload stored under a chart name in a report response.
type ChartData struct {
	Datasets Dataset `json:"datasets"`
}

// NestedChartData is the two-level variant of ChartData.
type NestedChartData struct {
	Datasets NestedDataset `json:"datasets"`
}

// ColorFunc supplies a display color for a newly created series. Colors
// exist purely for visual distinction between lines in one chart; they are
// not identity and tests inject a fixed stub.
type ColorFunc func() string

// RandomColor is the default ColorFunc: a pseudo-random #RRGGBB string.
func RandomColor() string {
	const hex = "0123456789ABCDEF"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i := 1; i < 7; i++ {
		b[i] = hex[rand.Intn(16)]
	}
	return string(b)
}

// SeriesBuilder accumulates one-level datasets from grouped rows. Labels
// come from the provided name map; a missing name leaves the label empty
// but still creates the series (a missing entity is non-fatal).
type SeriesBuilder struct {
	names map[int64]string
	color ColorFunc
	sets  Dataset
}

// NewSeriesBuilder returns a builder over the given names. A nil color
// falls back to RandomColor.
func NewSeriesBuilder(names map[int64]string, color ColorFunc) *SeriesBuilder {
	if color == nil {
		color = RandomColor
	}
	return &SeriesBuilder{names: names, color: color, sets: make(Dataset)}
}

// Add records value for (id, date). First sight of an id creates its series;
// a repeated (id, date) pair overwrites the earlier value, since summation
// already happened in the aggregator.
func (b *SeriesBuilder) Add(id int64, date string, value any) {
	b.series(id).Data[date] = value
}

// Seed ensures a series exists for id even when no rows reference it, so an
// entity with no tracked time still comes out as an all-zero line after
// gap filling rather than going missing.
func (b *SeriesBuilder) Seed(id int64) {
	b.series(id)
}

func (b *SeriesBuilder) series(id int64) *Series {
	s, ok := b.sets[id]
	if !ok {
		c := b.color()
		s = &Series{
			Label:           b.names[id],
			BorderColor:     c,
			BackgroundColor: c,
			Data:            make(map[string]any),
		}
		b.sets[id] = s
	}
	return s
}

// Dataset returns the accumulated dataset.
func (b *SeriesBuilder) Dataset() Dataset { return b.sets }

// NestedSeriesBuilder accumulates two-level datasets; series labels come
// from the sub-entity names.
type NestedSeriesBuilder struct {
	subNames map[int64]string
	color    ColorFunc
	sets     NestedDataset
}

// NewNestedSeriesBuilder returns a nested builder labeled by sub-entity name.
func NewNestedSeriesBuilder(subNames map[int64]string, color ColorFunc) *NestedSeriesBuilder {
	if color == nil {
		color = RandomColor
	}
	return &NestedSeriesBuilder{subNames: subNames, color: color, sets: make(NestedDataset)}
}

// Add records value for (primary, sub, date) with the same getOrCreate and
// last-write-wins semantics as SeriesBuilder.Add.
func (b *NestedSeriesBuilder) Add(primary, sub int64, date string, value any) {
	inner := b.primary(primary)
	s, ok := inner[sub]
	if !ok {
		c := b.color()
		s = &Series{
			Label:           b.subNames[sub],
			BorderColor:     c,
			BackgroundColor: c,
			Data:            make(map[string]any),
		}
		inner[sub] = s
	}
	s.Data[date] = value
}

// Seed ensures the primary entity appears in the dataset even when no rows
// reference it; with no sub-entities its entry stays an empty map.
func (b *NestedSeriesBuilder) Seed(primary int64) {
	b.primary(primary)
}

func (b *NestedSeriesBuilder) primary(id int64) Dataset {
	inner, ok := b.sets[id]
	if !ok {
		inner = make(Dataset)
		b.sets[id] = inner
	}
	return inner
}

// Dataset returns the accumulated nested dataset.
func (b *NestedSeriesBuilder) Dataset() NestedDataset { return b.sets }
