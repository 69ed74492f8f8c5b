package analytics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RangeName identifies a named dashboard window.
type RangeName string

const (
	RangeWeek  RangeName = "week"
	RangeMonth RangeName = "month"
	RangeYear  RangeName = "year"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// ErrInvalidWindow is returned when a window ends before it starts.
var ErrInvalidWindow = errors.New("analytics: window end before start")

// DateWindow is a range of calendar days, inclusive at both ends.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// NewDateWindow normalises both bounds to calendar days and checks ordering.
func NewDateWindow(start, end time.Time) (DateWindow, error) {
	w := DateWindow{Start: DateOf(start), End: DateOf(end)}
	if w.End.Before(w.Start) {
		return DateWindow{}, ErrInvalidWindow
	}
	return w, nil
}

// Days returns the number of calendar days covered by the window.
func (w DateWindow) Days() int {
	return daysBetween(w.Start, w.End) + 1
}

// ExclusiveEnd returns the half-open boundary of the window.
func (w DateWindow) ExclusiveEnd() time.Time {
	return WindowExclusiveEnd(w.End)
}

// Contains reports whether day falls inside the window.
func (w DateWindow) Contains(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(w.Start) && !d.After(w.End)
}

// EachDay returns every day of the window in ascending order.
func (w DateWindow) EachDay() []time.Time {
	days := make([]time.Time, 0, w.Days())
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DateOf truncates t to its calendar day, expressed at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)) / (24 * time.Hour))
}

// WindowExclusiveEnd turns an inclusive end day into a half-open boundary.
func WindowExclusiveEnd(endInclusive time.Time) time.Time {
	return DateOf(endInclusive).AddDate(0, 0, 1)
}

// OverlapNights counts the nights of the stay [resStart, resEnd) that fall in
// the window [winStart, winEndInclusive]. Never negative.
func OverlapNights(resStart, resEnd, winStart, winEndInclusive time.Time) int {
	windowEnd := WindowExclusiveEnd(winEndInclusive)
	from := maxTime(DateOf(resStart), DateOf(winStart))
	to := minTime(DateOf(resEnd), windowEnd)
	nights := daysBetween(from, to)
	if nights < 0 {
		return 0
	}
	return nights
}

// NormalizeRange maps any unrecognised name to RangeMonth.
func NormalizeRange(name string) RangeName {
	switch RangeName(name) {
	case RangeWeek, RangeMonth, RangeYear:
		return RangeName(name)
	}
	return RangeMonth
}

// ResolveNamedRange resolves a named range relative to today.
func ResolveNamedRange(name string, today time.Time) DateWindow {
	end := DateOf(today)
	switch NormalizeRange(name) {
	case RangeWeek:
		return DateWindow{Start: end.AddDate(0, 0, -6), End: end}
	case RangeYear:
		return DateWindow{Start: time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), End: end}
	case RangeMonth:
		return DateWindow{Start: end.AddDate(0, 0, -29), End: end}
	}
	return DateWindow{Start: end.AddDate(0, 0, -29), End: end}
}

// PreviousPeriod returns the window of equal length immediately before w.
func PreviousPeriod(w DateWindow) DateWindow {
	length := w.Days()
	prevEnd := w.Start.AddDate(0, 0, -1)
	return DateWindow{Start: prevEnd.AddDate(0, 0, -(length - 1)), End: prevEnd}
}

// PctChange returns the percentage change from previous to current. A zero
// baseline yields 0 when current is also zero and 100 otherwise.
func PctChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return current.Sub(previous).Mul(hundred).DivRound(previous, divisionPrecision)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
