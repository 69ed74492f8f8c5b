package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tempest-stays/tempest/internal/booking"
)

// PeriodStats holds the occupancy and revenue figures for one window.
// Values are unrounded.
type PeriodStats struct {
	TotalIncome     decimal.Decimal
	OccupiedNights  int
	AvailableNights int
	ADR             decimal.Decimal
	OccupancyRate   decimal.Decimal
	RevPAR          decimal.Decimal
}

// AggregatePeriod loads the host's occupying reservations for window and reduces them.
func (s *Service) AggregatePeriod(ctx context.Context, hostID uuid.UUID, window DateWindow, activeProperties int) (PeriodStats, error) {
	reservations, err := s.loadOccupying(ctx, hostID, window)
	if err != nil {
		return PeriodStats{}, err
	}
	return ComputePeriodStats(reservations, window, activeProperties), nil
}

// ComputePeriodStats clips every reservation to window and pro-rates its host
// payout per night. All divisions are guarded, so it never fails.
func ComputePeriodStats(reservations []booking.Reservation, window DateWindow, activeProperties int) PeriodStats {
	var stats PeriodStats
	income := decimal.Zero

	for _, r := range reservations {
		if !r.Status.OccupiesNights() {
			continue
		}
		on := OverlapNights(r.StartDate, r.EndDate, window.Start, window.End)
		if on <= 0 {
			continue
		}
		stats.OccupiedNights += on

		if r.Status.EarnsIncome() {
			income = income.Add(allocateIncome(r, on))
		}
	}

	days := window.Days()
	if activeProperties > 0 && days > 0 {
		stats.AvailableNights = activeProperties * days
	}

	stats.TotalIncome = income
	stats.OccupancyRate = decimal.Zero
	stats.ADR = decimal.Zero
	stats.RevPAR = decimal.Zero

	if stats.AvailableNights > 0 {
		available := decimal.NewFromInt(int64(stats.AvailableNights))
		stats.OccupancyRate = decimal.NewFromInt(int64(stats.OccupiedNights)).Mul(hundred).DivRound(available, divisionPrecision)
		stats.RevPAR = income.DivRound(available, divisionPrecision)
	}
	if stats.OccupiedNights > 0 {
		stats.ADR = income.DivRound(decimal.NewFromInt(int64(stats.OccupiedNights)), divisionPrecision)
	}
	return stats
}

// allocateIncome returns host_pay * nights / number_of_nights. Reservations
// without a positive night count contribute nothing, and the share never
// exceeds the full payout.
func allocateIncome(r booking.Reservation, nights int) decimal.Decimal {
	if r.NumberOfNights <= 0 {
		return decimal.Zero
	}
	if nights >= r.NumberOfNights {
		return r.HostPay
	}
	return r.HostPay.Mul(decimal.NewFromInt(int64(nights))).DivRound(decimal.NewFromInt(int64(r.NumberOfNights)), divisionPrecision)
}
