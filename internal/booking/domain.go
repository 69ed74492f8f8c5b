package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationStatus enumerates the lifecycle states of a reservation.
type ReservationStatus uint8

const (
	ReservationPending ReservationStatus = iota + 1
	ReservationApproved
	ReservationDeclined
	ReservationOngoing
	ReservationCompleted
	ReservationCancelled
)

// ReservationStatuses lists every known reservation status.
var ReservationStatuses = []ReservationStatus{
	ReservationPending,
	ReservationApproved,
	ReservationDeclined,
	ReservationOngoing,
	ReservationCompleted,
	ReservationCancelled,
}

// String returns the persisted representation of the status.
func (s ReservationStatus) String() string {
	switch s {
	case ReservationPending:
		return "pending"
	case ReservationApproved:
		return "approved"
	case ReservationDeclined:
		return "declined"
	case ReservationOngoing:
		return "ongoing"
	case ReservationCompleted:
		return "completed"
	case ReservationCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("ReservationStatus(%d)", uint8(s))
}

// ParseReservationStatus maps a persisted value back to the enumeration.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, status := range ReservationStatuses {
		if status.String() == value {
			return status, nil
		}
	}
	return 0, fmt.Errorf("booking: unknown reservation status %q", value)
}

// OccupiesNights reports whether a reservation in this status holds its nights.
func (s ReservationStatus) OccupiesNights() bool {
	switch s {
	case ReservationApproved, ReservationOngoing, ReservationCompleted:
		return true
	case ReservationPending, ReservationDeclined, ReservationCancelled:
		return false
	}
	return false
}

// EarnsIncome reports whether the host payout of a reservation in this status is
// recognised as income. The set matches OccupiesNights today but is kept apart.
func (s ReservationStatus) EarnsIncome() bool {
	switch s {
	case ReservationApproved, ReservationOngoing, ReservationCompleted:
		return true
	case ReservationPending, ReservationDeclined, ReservationCancelled:
		return false
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (s ReservationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// OccupancyStatuses returns the statuses that occupy nights.
func OccupancyStatuses() []ReservationStatus {
	return filterStatuses(ReservationStatus.OccupiesNights)
}

// IncomeStatuses returns the statuses whose payout counts as income.
func IncomeStatuses() []ReservationStatus {
	return filterStatuses(ReservationStatus.EarnsIncome)
}

func filterStatuses(keep func(ReservationStatus) bool) []ReservationStatus {
	out := make([]ReservationStatus, 0, len(ReservationStatuses))
	for _, status := range ReservationStatuses {
		if keep(status) {
			out = append(out, status)
		}
	}
	return out
}

// StatusStrings converts statuses into their persisted values.
func StatusStrings(statuses []ReservationStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, status.String())
	}
	return out
}

// PropertyStatus enumerates listing states.
type PropertyStatus uint8

const (
	PropertyActive PropertyStatus = iota + 1
	PropertyInactive
	PropertyPending
	PropertySuspended
)

// String returns the persisted representation of the status.
func (s PropertyStatus) String() string {
	switch s {
	case PropertyActive:
		return "active"
	case PropertyInactive:
		return "inactive"
	case PropertyPending:
		return "pending"
	case PropertySuspended:
		return "suspended"
	}
	return fmt.Sprintf("PropertyStatus(%d)", uint8(s))
}

// CountsTowardCapacity reports whether the property contributes available nights.
func (s PropertyStatus) CountsTowardCapacity() bool {
	switch s {
	case PropertyActive:
		return true
	case PropertyInactive, PropertyPending, PropertySuspended:
		return false
	}
	return false
}

// Reservation is the read model consumed by analytics.
type Reservation struct {
	ID               uuid.UUID
	PropertyID       uuid.UUID
	GuestID          uuid.UUID
	Status           ReservationStatus
	StartDate        time.Time
	EndDate          time.Time
	NumberOfNights   int
	HostPay          decimal.Decimal
	ConfirmationCode string
	CreatedAt        time.Time
}

// CalendarEntry is a reservation decorated for the host calendar.
type CalendarEntry struct {
	Reservation
	PropertyTitle string
	GuestName     string
}

// DailyCount is a per-day counter.
type DailyCount struct {
	Date  time.Time
	Count int
}

// DailyAmount is a per-day monetary sum.
type DailyAmount struct {
	Date   time.Time
	Amount decimal.Decimal
}
