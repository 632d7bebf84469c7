package report

// FillSeries makes one series span the full period: any empty-string date
// key left by a faulty grouping step is discarded, and every period date
// missing from Data gets a 0.0 entry.
func FillSeries(s *Series, periodDates []string) {
	delete(s.Data, "")
	for _, date := range periodDates {
		if _, ok := s.Data[date]; !ok {
			s.Data[date] = 0.0
		}
	}
}

// FillDataset gap-fills every series of a one-level dataset.
func FillDataset(ds Dataset, periodDates []string) {
	for _, s := range ds {
		FillSeries(s, periodDates)
	}
}

// FillNested gap-fills every series of a two-level dataset, visiting each
// nested series exactly once.
func FillNested(nd NestedDataset, periodDates []string) {
	for _, inner := range nd {
		FillDataset(inner, periodDates)
	}
}

// FillDayMap gap-fills a plain date-to-seconds map, as used by the detail
// rows' worked_time_day breakdowns.
func FillDayMap(data map[string]int64, periodDates []string) {
	delete(data, "")
	for _, date := range periodDates {
		if _, ok := data[date]; !ok {
			data[date] = 0
		}
	}
}
