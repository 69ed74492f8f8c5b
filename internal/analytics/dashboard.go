package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tempest-stays/tempest/internal/booking"
)

// displayPlaces is the precision of every decimal in a Report.
const displayPlaces = 2

// Report is the host dashboard payload.
type Report struct {
	Meta   ReportMeta
	Today  TodayCards
	Stats  ReportStats
	Charts ReportCharts
}

// ReportMeta describes the resolved windows.
type ReportMeta struct {
	Range    RangeName
	Window   DateWindow
	Previous DateWindow
}

// TodayCards summarise arrivals, departures and stays on the current day.
type TodayCards struct {
	Date          time.Time
	CheckIns      int
	CheckOuts     int
	OngoingStays  int
	OccupancyRate decimal.Decimal
}

// Metric pairs a current value with its change against the previous window.
type Metric struct {
	Value     decimal.Decimal
	ChangePct decimal.Decimal
}

// ReportStats holds the headline figures of the current window.
type ReportStats struct {
	TotalIncome         Metric
	OccupancyRate       Metric
	ADR                 Metric
	RevPAR              Metric
	Views               int
	Likes               int
	ReservationsCreated int
	ActiveProperties    int
	OccupiedNights      int
}

// ReportCharts carries the two daily series. Revenue is recognised on the
// checkout day of completed stays and is not the pro-rated TotalIncome.
type ReportCharts struct {
	Bookings []booking.DailyCount
	Revenue  []booking.DailyAmount
}

var (
	checkInStatuses  = []booking.ReservationStatus{booking.ReservationApproved, booking.ReservationOngoing}
	checkOutStatuses = []booking.ReservationStatus{booking.ReservationOngoing, booking.ReservationCompleted}
	stayingStatuses  = []booking.ReservationStatus{booking.ReservationOngoing}
	revenueStatuses  = []booking.ReservationStatus{booking.ReservationCompleted}
)

// GetHostDashboard builds the dashboard for rangeName relative to today.
// Unknown range names resolve to the month window. Store failures are
// returned unchanged.
func (s *Service) GetHostDashboard(ctx context.Context, hostID uuid.UUID, rangeName string) (Report, error) {
	today := s.Today()
	name := NormalizeRange(rangeName)
	window := ResolveNamedRange(string(name), today)
	prevWindow := PreviousPeriod(window)

	var (
		activeCount          int
		current, previous    []booking.Reservation
		views, likes         int
		created              int
		checkIns, checkOuts  int
		ongoing              int
		bookingsByDay        []booking.DailyCount
		revenueByCheckoutDay []booking.DailyAmount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		activeCount, err = s.store.CountActiveProperties(gctx, hostID)
		return err
	})
	g.Go(func() (err error) {
		current, err = s.loadOccupying(gctx, hostID, window)
		return err
	})
	g.Go(func() (err error) {
		previous, err = s.loadOccupying(gctx, hostID, prevWindow)
		return err
	})
	g.Go(func() (err error) {
		views, err = s.store.CountPropertyViews(gctx, hostID, window.Start, window.End)
		return err
	})
	g.Go(func() (err error) {
		likes, err = s.store.CountPropertyLikes(gctx, hostID, window.Start, window.End)
		return err
	})
	g.Go(func() (err error) {
		created, err = s.store.CountReservationsCreated(gctx, hostID, window.Start, window.End)
		return err
	})
	g.Go(func() (err error) {
		checkIns, err = s.store.CountCheckIns(gctx, hostID, today, checkInStatuses)
		return err
	})
	g.Go(func() (err error) {
		checkOuts, err = s.store.CountCheckOuts(gctx, hostID, today, checkOutStatuses)
		return err
	})
	g.Go(func() (err error) {
		ongoing, err = s.store.CountStaying(gctx, hostID, today, stayingStatuses)
		return err
	})
	g.Go(func() (err error) {
		bookingsByDay, err = s.store.BookingsByDay(gctx, hostID, window.Start, window.End)
		return err
	})
	g.Go(func() (err error) {
		revenueByCheckoutDay, err = s.store.RevenueByCheckoutDay(gctx, hostID, revenueStatuses, window.Start, window.ExclusiveEnd())
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	cur := ComputePeriodStats(current, window, activeCount)
	prev := ComputePeriodStats(previous, prevWindow, activeCount)

	occupancyToday := decimal.Zero
	if activeCount > 0 {
		occupancyToday = decimal.NewFromInt(int64(ongoing)).Mul(hundred).DivRound(decimal.NewFromInt(int64(activeCount)), divisionPrecision)
	}

	return Report{
		Meta: ReportMeta{Range: name, Window: window, Previous: prevWindow},
		Today: TodayCards{
			Date:          today,
			CheckIns:      checkIns,
			CheckOuts:     checkOuts,
			OngoingStays:  ongoing,
			OccupancyRate: roundDisplay(occupancyToday),
		},
		Stats: ReportStats{
			TotalIncome:         metric(cur.TotalIncome, prev.TotalIncome),
			OccupancyRate:       metric(cur.OccupancyRate, prev.OccupancyRate),
			ADR:                 metric(cur.ADR, prev.ADR),
			RevPAR:              metric(cur.RevPAR, prev.RevPAR),
			Views:               views,
			Likes:               likes,
			ReservationsCreated: created,
			ActiveProperties:    activeCount,
			OccupiedNights:      cur.OccupiedNights,
		},
		Charts: ReportCharts{
			Bookings: sortedCounts(bookingsByDay),
			Revenue:  roundAmounts(sortedAmounts(revenueByCheckoutDay)),
		},
	}, nil
}

func (s *Service) loadOccupying(ctx context.Context, hostID uuid.UUID, window DateWindow) ([]booking.Reservation, error) {
	return s.store.FindOverlapping(ctx, hostID, booking.OccupancyStatuses(), window.Start, window.ExclusiveEnd())
}

func metric(current, previous decimal.Decimal) Metric {
	return Metric{
		Value:     roundDisplay(current),
		ChangePct: roundDisplay(PctChange(current, previous)),
	}
}

// roundDisplay rounds half to even, matching decimal quantisation defaults.
func roundDisplay(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(displayPlaces)
}

func roundAmounts(points []booking.DailyAmount) []booking.DailyAmount {
	for i := range points {
		points[i].Amount = roundDisplay(points[i].Amount)
	}
	return points
}
