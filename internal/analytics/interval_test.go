package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(value string) time.Time {
	t, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlapNightsBoundaries(t *testing.T) {
	cases := []struct {
		name             string
		resStart, resEnd string
		winStart, winEnd string
		want             int
	}{
		{"fully inside", "2024-01-10", "2024-01-14", "2024-01-01", "2024-01-31", 4},
		{"clipped at window start", "2024-01-10", "2024-01-14", "2024-01-12", "2024-01-31", 2},
		{"clipped at window end", "2024-01-29", "2024-02-03", "2024-01-01", "2024-01-31", 3},
		{"ends on window start", "2024-01-09", "2024-01-10", "2024-01-10", "2024-01-20", 0},
		{"starts on exclusive end", "2024-01-21", "2024-01-22", "2024-01-10", "2024-01-20", 0},
		{"single night on window end", "2024-01-20", "2024-01-21", "2024-01-10", "2024-01-20", 1},
		{"disjoint before", "2023-12-01", "2023-12-05", "2024-01-01", "2024-01-31", 0},
		{"covers window", "2023-12-20", "2024-02-10", "2024-01-01", "2024-01-07", 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := OverlapNights(day(tc.resStart), day(tc.resEnd), day(tc.winStart), day(tc.winEnd))
			if got != tc.want {
				t.Fatalf("expected %d nights got %d", tc.want, got)
			}
		})
	}
}

func TestOverlapNightsNeverExceedsStayOrWindow(t *testing.T) {
	base := day("2024-03-01")
	for startOffset := 0; startOffset < 20; startOffset++ {
		for length := 1; length < 12; length++ {
			resStart := base.AddDate(0, 0, startOffset)
			resEnd := resStart.AddDate(0, 0, length)
			win := DateWindow{Start: base.AddDate(0, 0, 5), End: base.AddDate(0, 0, 12)}
			got := OverlapNights(resStart, resEnd, win.Start, win.End)
			if got < 0 || got > length || got > win.Days() {
				t.Fatalf("overlap %d out of bounds for stay %d nights window %d days", got, length, win.Days())
			}
		}
	}
}

func TestOverlapNightsConservation(t *testing.T) {
	resStart, resEnd := day("2024-01-28"), day("2024-02-04")
	january := DateWindow{Start: day("2024-01-01"), End: day("2024-01-31")}
	february := DateWindow{Start: day("2024-02-01"), End: day("2024-02-29")}

	total := OverlapNights(resStart, resEnd, january.Start, january.End) +
		OverlapNights(resStart, resEnd, february.Start, february.End)
	if total != 7 {
		t.Fatalf("expected 7 nights across adjacent windows, got %d", total)
	}
}

func TestResolveNamedRange(t *testing.T) {
	today := day("2024-03-15")
	cases := map[string]DateWindow{
		"week":    {Start: day("2024-03-09"), End: today},
		"month":   {Start: day("2024-02-15"), End: today},
		"year":    {Start: day("2024-01-01"), End: today},
		"quarter": {Start: day("2024-02-15"), End: today},
		"":        {Start: day("2024-02-15"), End: today},
	}
	for name, want := range cases {
		got := ResolveNamedRange(name, today)
		if !got.Start.Equal(want.Start) || !got.End.Equal(want.End) {
			t.Fatalf("range %q: expected %s..%s got %s..%s", name, FormatDate(want.Start), FormatDate(want.End), FormatDate(got.Start), FormatDate(got.End))
		}
	}
	if NormalizeRange("decade") != RangeMonth {
		t.Fatalf("expected unknown range to normalise to month")
	}
}

func TestPreviousPeriodIsAdjacentAndEqualLength(t *testing.T) {
	for _, name := range []string{"week", "month", "year"} {
		window := ResolveNamedRange(name, day("2024-03-15"))
		prev := PreviousPeriod(window)
		if prev.Days() != window.Days() {
			t.Fatalf("%s: expected %d days got %d", name, window.Days(), prev.Days())
		}
		if !prev.End.AddDate(0, 0, 1).Equal(window.Start) {
			t.Fatalf("%s: previous window must end the day before %s, ends %s", name, FormatDate(window.Start), FormatDate(prev.End))
		}
	}
}

func TestPctChange(t *testing.T) {
	cases := []struct {
		current, previous string
		want              string
	}{
		{"0", "0", "0"},
		{"5", "0", "100"},
		{"150", "100", "50"},
		{"50", "100", "-50"},
		{"0", "80", "-100"},
	}
	for _, tc := range cases {
		got := PctChange(decimal.RequireFromString(tc.current), decimal.RequireFromString(tc.previous))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("pctChange(%s, %s): expected %s got %s", tc.current, tc.previous, tc.want, got)
		}
	}
}

func TestNewDateWindowRejectsInvertedBounds(t *testing.T) {
	if _, err := NewDateWindow(day("2024-02-02"), day("2024-02-01")); err != ErrInvalidWindow {
		t.Fatalf("expected ErrInvalidWindow got %v", err)
	}
	w, err := NewDateWindow(day("2024-02-01"), day("2024-02-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Days() != 1 || len(w.EachDay()) != 1 {
		t.Fatalf("expected single-day window, got %d days", w.Days())
	}
}
