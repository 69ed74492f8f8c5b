package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tempest-stays/tempest/internal/booking"
)

// memoryStore answers Store queries from in-memory records of a single host.
type memoryStore struct {
	mu           sync.Mutex
	active       int
	reservations []booking.Reservation
	views        []time.Time
	likes        []time.Time
	calendar     []booking.CalendarEntry
	err          error
	calls        int
}

func (m *memoryStore) record() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func statusIn(status booking.ReservationStatus, statuses []booking.ReservationStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func countCreated(values []time.Time, from, to time.Time) int {
	w := DateWindow{Start: from, End: to}
	n := 0
	for _, v := range values {
		if w.Contains(v) {
			n++
		}
	}
	return n
}

func (m *memoryStore) FindOverlapping(_ context.Context, _ uuid.UUID, statuses []booking.ReservationStatus, from, toExclusive time.Time) ([]booking.Reservation, error) {
	if err := m.record(); err != nil {
		return nil, err
	}
	var out []booking.Reservation
	for _, r := range m.reservations {
		if statusIn(r.Status, statuses) && r.StartDate.Before(toExclusive) && r.EndDate.After(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) CountActiveProperties(context.Context, uuid.UUID) (int, error) {
	if err := m.record(); err != nil {
		return 0, err
	}
	return m.active, nil
}

func (m *memoryStore) CountPropertyViews(_ context.Context, _ uuid.UUID, from, to time.Time) (int, error) {
	if err := m.record(); err != nil {
		return 0, err
	}
	return countCreated(m.views, from, to), nil
}

func (m *memoryStore) CountPropertyLikes(_ context.Context, _ uuid.UUID, from, to time.Time) (int, error) {
	if err := m.record(); err != nil {
		return 0, err
	}
	return countCreated(m.likes, from, to), nil
}

func (m *memoryStore) CountReservationsCreated(_ context.Context, _ uuid.UUID, from, to time.Time) (int, error) {
	if err := m.record(); err != nil {
		return 0, err
	}
	created := make([]time.Time, 0, len(m.reservations))
	for _, r := range m.reservations {
		created = append(created, r.CreatedAt)
	}
	return countCreated(created, from, to), nil
}

func (m *memoryStore) countOn(day time.Time, statuses []booking.ReservationStatus, match func(booking.Reservation) bool) (int, error) {
	if err := m.record(); err != nil {
		return 0, err
	}
	n := 0
	for _, r := range m.reservations {
		if statusIn(r.Status, statuses) && match(r) {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) CountCheckIns(_ context.Context, _ uuid.UUID, day time.Time, statuses []booking.ReservationStatus) (int, error) {
	return m.countOn(day, statuses, func(r booking.Reservation) bool { return r.StartDate.Equal(day) })
}

func (m *memoryStore) CountCheckOuts(_ context.Context, _ uuid.UUID, day time.Time, statuses []booking.ReservationStatus) (int, error) {
	return m.countOn(day, statuses, func(r booking.Reservation) bool { return r.EndDate.Equal(day) })
}

func (m *memoryStore) CountStaying(_ context.Context, _ uuid.UUID, day time.Time, statuses []booking.ReservationStatus) (int, error) {
	return m.countOn(day, statuses, func(r booking.Reservation) bool {
		return !r.StartDate.After(day) && r.EndDate.After(day)
	})
}

func (m *memoryStore) BookingsByDay(_ context.Context, _ uuid.UUID, from, to time.Time) ([]booking.DailyCount, error) {
	if err := m.record(); err != nil {
		return nil, err
	}
	w := DateWindow{Start: from, End: to}
	byDay := map[time.Time]int{}
	for _, r := range m.reservations {
		if w.Contains(r.CreatedAt) {
			byDay[DateOf(r.CreatedAt)]++
		}
	}
	out := make([]booking.DailyCount, 0, len(byDay))
	for d, n := range byDay {
		out = append(out, booking.DailyCount{Date: d, Count: n})
	}
	// map order is random; the service must sort
	return out, nil
}

func (m *memoryStore) RevenueByCheckoutDay(_ context.Context, _ uuid.UUID, statuses []booking.ReservationStatus, from, toExclusive time.Time) ([]booking.DailyAmount, error) {
	if err := m.record(); err != nil {
		return nil, err
	}
	byDay := map[time.Time]decimal.Decimal{}
	for _, r := range m.reservations {
		if statusIn(r.Status, statuses) && !r.EndDate.Before(from) && r.EndDate.Before(toExclusive) {
			byDay[r.EndDate] = byDay[r.EndDate].Add(r.HostPay)
		}
	}
	out := make([]booking.DailyAmount, 0, len(byDay))
	for d, amount := range byDay {
		out = append(out, booking.DailyAmount{Date: d, Amount: amount})
	}
	return out, nil
}

func (m *memoryStore) CalendarEntries(_ context.Context, _ uuid.UUID, from, to time.Time) ([]booking.CalendarEntry, error) {
	if err := m.record(); err != nil {
		return nil, err
	}
	var out []booking.CalendarEntry
	for _, e := range m.calendar {
		if !e.StartDate.After(to) && !e.EndDate.Before(from) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}
