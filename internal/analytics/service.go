package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tempest-stays/tempest/internal/booking"
)

// divisionPrecision is the number of decimal places kept by intermediate
// divisions. Rounding for display happens once, when the report is assembled.
const divisionPrecision = 28

// Store exposes the read-only reservation and property queries analytics relies on.
type Store interface {
	// FindOverlapping returns the host's reservations in one of statuses whose
	// stay [start_date, end_date) intersects [from, toExclusive).
	FindOverlapping(ctx context.Context, hostID uuid.UUID, statuses []booking.ReservationStatus, from, toExclusive time.Time) ([]booking.Reservation, error)
	CountActiveProperties(ctx context.Context, hostID uuid.UUID) (int, error)
	// The created-at counters match records whose creation day lies in [from, to].
	CountPropertyViews(ctx context.Context, hostID uuid.UUID, from, to time.Time) (int, error)
	CountPropertyLikes(ctx context.Context, hostID uuid.UUID, from, to time.Time) (int, error)
	CountReservationsCreated(ctx context.Context, hostID uuid.UUID, from, to time.Time) (int, error)
	CountCheckIns(ctx context.Context, hostID uuid.UUID, day time.Time, statuses []booking.ReservationStatus) (int, error)
	CountCheckOuts(ctx context.Context, hostID uuid.UUID, day time.Time, statuses []booking.ReservationStatus) (int, error)
	// CountStaying counts reservations with start_date <= day < end_date.
	CountStaying(ctx context.Context, hostID uuid.UUID, day time.Time, statuses []booking.ReservationStatus) (int, error)
	BookingsByDay(ctx context.Context, hostID uuid.UUID, from, to time.Time) ([]booking.DailyCount, error)
	// RevenueByCheckoutDay sums host_pay grouped by end_date for end_date in [from, toExclusive).
	RevenueByCheckoutDay(ctx context.Context, hostID uuid.UUID, statuses []booking.ReservationStatus, from, toExclusive time.Time) ([]booking.DailyAmount, error)
	// CalendarEntries returns reservations with start_date <= to and end_date >= from.
	CalendarEntries(ctx context.Context, hostID uuid.UUID, from, to time.Time) ([]booking.CalendarEntry, error)
}

// Service computes host analytics from a Store. It holds no mutable state.
type Service struct {
	store    Store
	location *time.Location
	now      func() time.Time
}

// NewService wires a Store. Calendar days are evaluated in loc.
func NewService(store Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, location: loc, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Today returns the current calendar day in the configured location.
func (s *Service) Today() time.Time {
	return DateOf(s.now().In(s.location))
}
