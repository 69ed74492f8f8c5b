package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tempest-stays/tempest/internal/booking"
)

// GetHostCalendar lists reservations touching [start, end], both inclusive,
// ordered by start date. Unlike the night counters, a stay whose end_date
// equals start is included so checkout days show up on the calendar.
func (s *Service) GetHostCalendar(ctx context.Context, hostID uuid.UUID, start, end time.Time) ([]booking.CalendarEntry, error) {
	window, err := NewDateWindow(start, end)
	if err != nil {
		return nil, err
	}
	return s.store.CalendarEntries(ctx, hostID, window.Start, window.End)
}
