package report

import (
	"regexp"
	"testing"
)

func fixedColor(c string) ColorFunc {
	return func() string { return c }
}

func TestSeriesBuilderGetOrCreate(t *testing.T) {
	names := map[int64]string{1: "Alice", 2: "Bob"}
	b := NewSeriesBuilder(names, fixedColor("#00FF00"))

	b.Add(1, "2024-01-01", "00.05")
	b.Add(1, "2024-01-02", "00.01")
	b.Add(2, "2024-01-01", "01.30")

	ds := b.Dataset()
	if len(ds) != 2 {
		t.Fatalf("expected 2 series, got %d", len(ds))
	}

	alice := ds[1]
	if alice.Label != "Alice" {
		t.Errorf("expected label Alice, got %q", alice.Label)
	}
	if alice.BorderColor != "#00FF00" || alice.BackgroundColor != "#00FF00" {
		t.Errorf("border and background must share the assigned color, got %q / %q",
			alice.BorderColor, alice.BackgroundColor)
	}
	if alice.Data["2024-01-01"] != "00.05" || alice.Data["2024-01-02"] != "00.01" {
		t.Errorf("unexpected data: %+v", alice.Data)
	}
}

func TestSeriesBuilderAssignsColorOncePerSeries(t *testing.T) {
	n := 0
	counting := func() string {
		n++
		return "#000000"
	}
	b := NewSeriesBuilder(nil, counting)

	b.Add(1, "2024-01-01", 1)
	b.Add(1, "2024-01-02", 2)
	b.Add(1, "2024-01-03", 3)
	b.Add(2, "2024-01-01", 4)

	if n != 2 {
		t.Fatalf("color func must run once per series, ran %d times", n)
	}
}

func TestSeriesBuilderLastWriteWins(t *testing.T) {
	b := NewSeriesBuilder(nil, fixedColor("#111111"))
	b.Add(1, "2024-01-01", "00.10")
	b.Add(1, "2024-01-01", "00.20")

	if got := b.Dataset()[1].Data["2024-01-01"]; got != "00.20" {
		t.Fatalf("expected the later value to win, got %v", got)
	}
}

func TestSeriesBuilderMissingNameIsNonFatal(t *testing.T) {
	b := NewSeriesBuilder(map[int64]string{}, fixedColor("#222222"))
	b.Add(42, "2024-01-01", "00.01")

	s, ok := b.Dataset()[42]
	if !ok {
		t.Fatal("series must exist even without a name")
	}
	if s.Label != "" {
		t.Fatalf("expected empty label, got %q", s.Label)
	}
}

func TestNestedSeriesBuilder(t *testing.T) {
	subNames := map[int64]string{10: "Backend", 11: "Frontend"}
	b := NewNestedSeriesBuilder(subNames, fixedColor("#333333"))

	b.Add(1, 10, "2024-01-01", "00.30")
	b.Add(1, 11, "2024-01-01", "00.15")
	b.Add(2, 10, "2024-01-02", "00.45")

	nd := b.Dataset()
	if len(nd) != 2 {
		t.Fatalf("expected 2 primary entries, got %d", len(nd))
	}
	if len(nd[1]) != 2 {
		t.Fatalf("expected 2 sub-series under primary 1, got %d", len(nd[1]))
	}
	if nd[1][10].Label != "Backend" || nd[1][11].Label != "Frontend" {
		t.Errorf("sub-series must be labeled by sub-entity name: %q, %q",
			nd[1][10].Label, nd[1][11].Label)
	}
	if nd[2][10].Data["2024-01-02"] != "00.45" {
		t.Errorf("unexpected data for primary 2: %+v", nd[2][10].Data)
	}
}

func TestRandomColorFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^#[0-9A-F]{6}$`)
	for i := 0; i < 20; i++ {
		if c := RandomColor(); !pattern.MatchString(c) {
			t.Fatalf("malformed color %q", c)
		}
	}
}
