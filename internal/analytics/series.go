package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tempest-stays/tempest/internal/booking"
)

func sortedCounts(points []booking.DailyCount) []booking.DailyCount {
	out := append([]booking.DailyCount(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func sortedAmounts(points []booking.DailyAmount) []booking.DailyAmount {
	out := append([]booking.DailyAmount(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// DenseCounts expands a sparse series into one point per day of window.
// Missing days carry a zero count; points outside the window are dropped.
func DenseCounts(points []booking.DailyCount, window DateWindow) []booking.DailyCount {
	byDay := make(map[time.Time]int, len(points))
	for _, p := range points {
		byDay[DateOf(p.Date)] += p.Count
	}
	days := window.EachDay()
	out := make([]booking.DailyCount, 0, len(days))
	for _, day := range days {
		out = append(out, booking.DailyCount{Date: day, Count: byDay[day]})
	}
	return out
}

// DenseAmounts is DenseCounts for monetary series.
func DenseAmounts(points []booking.DailyAmount, window DateWindow) []booking.DailyAmount {
	byDay := make(map[time.Time]decimal.Decimal, len(points))
	for _, p := range points {
		day := DateOf(p.Date)
		byDay[day] = byDay[day].Add(p.Amount)
	}
	days := window.EachDay()
	out := make([]booking.DailyAmount, 0, len(days))
	for _, day := range days {
		amount, ok := byDay[day]
		if !ok {
			amount = decimal.Zero
		}
		out = append(out, booking.DailyAmount{Date: day, Amount: amount})
	}
	return out
}
