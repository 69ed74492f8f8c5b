package ui

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tempest-stays/tempest/internal/analytics"
	"github.com/tempest-stays/tempest/internal/analytics/svg"
	"github.com/tempest-stays/tempest/internal/booking"
)

// Fixed renders a decimal as a JSON number with exactly two fractional digits.
type Fixed struct {
	decimal.Decimal
}

// MarshalJSON implements json.Marshaler.
func (f Fixed) MarshalJSON() ([]byte, error) {
	return []byte(f.StringFixed(2)), nil
}

// String formats the value for CSV and text output.
func (f Fixed) String() string {
	return f.StringFixed(2)
}

// DashboardMeta describes the resolved windows.
type DashboardMeta struct {
	Range     analytics.RangeName `json:"range"`
	Start     string              `json:"start"`
	End       string              `json:"end"`
	PrevStart string              `json:"prev_start"`
	PrevEnd   string              `json:"prev_end"`
}

// DashboardToday holds the cards computed for the current day.
type DashboardToday struct {
	Date               string `json:"date"`
	CheckIns           int    `json:"checkins"`
	CheckOuts          int    `json:"checkouts"`
	OngoingStays       int    `json:"ongoing_stays"`
	OccupancyRateToday Fixed  `json:"occupancy_rate_today"`
}

// DashboardStats flattens each headline metric into value and change fields.
type DashboardStats struct {
	TotalIncome          Fixed `json:"total_income"`
	TotalIncomeChangePct Fixed `json:"total_income_change_pct"`
	OccupancyRate        Fixed `json:"occupancy_rate"`
	OccupancyChangePct   Fixed `json:"occupancy_rate_change_pct"`
	ADR                  Fixed `json:"adr"`
	ADRChangePct         Fixed `json:"adr_change_pct"`
	RevPAR               Fixed `json:"revpar"`
	RevPARChangePct      Fixed `json:"revpar_change_pct"`
	Views                int   `json:"views"`
	Likes                int   `json:"likes"`
	Reservations         int   `json:"reservations"`
	ActiveProperties     int   `json:"active_properties"`
	OccupancyNights      int   `json:"occupancy_nights"`
}

// BookingPoint is one day of the bookings chart.
type BookingPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RevenuePoint is one day of the revenue chart.
type RevenuePoint struct {
	Date    string `json:"date"`
	Revenue Fixed  `json:"revenue"`
}

// DashboardCharts carries both series, sparse and ascending.
type DashboardCharts struct {
	Bookings []BookingPoint `json:"bookings"`
	Revenue  []RevenuePoint `json:"revenue"`
}

// DashboardResponse is the JSON body of the host dashboard endpoint.
type DashboardResponse struct {
	Meta   DashboardMeta   `json:"meta"`
	Today  DashboardToday  `json:"today"`
	Stats  DashboardStats  `json:"stats"`
	Charts DashboardCharts `json:"charts"`
}

// CalendarEvent is one reservation on the host calendar.
type CalendarEvent struct {
	ID               uuid.UUID                 `json:"id"`
	Title            string                    `json:"title"`
	Start            string                    `json:"start"`
	End              string                    `json:"end"`
	Status           booking.ReservationStatus `json:"status"`
	PropertyID       uuid.UUID                 `json:"property_id"`
	Guest            string                    `json:"guest"`
	ConfirmationCode string                    `json:"confirmation_code"`
}

// ToDashboardResponse converts a report into its wire form.
func ToDashboardResponse(report analytics.Report) DashboardResponse {
	stats := report.Stats
	resp := DashboardResponse{
		Meta: DashboardMeta{
			Range:     report.Meta.Range,
			Start:     analytics.FormatDate(report.Meta.Window.Start),
			End:       analytics.FormatDate(report.Meta.Window.End),
			PrevStart: analytics.FormatDate(report.Meta.Previous.Start),
			PrevEnd:   analytics.FormatDate(report.Meta.Previous.End),
		},
		Today: DashboardToday{
			Date:               analytics.FormatDate(report.Today.Date),
			CheckIns:           report.Today.CheckIns,
			CheckOuts:          report.Today.CheckOuts,
			OngoingStays:       report.Today.OngoingStays,
			OccupancyRateToday: Fixed{report.Today.OccupancyRate},
		},
		Stats: DashboardStats{
			TotalIncome:          Fixed{stats.TotalIncome.Value},
			TotalIncomeChangePct: Fixed{stats.TotalIncome.ChangePct},
			OccupancyRate:        Fixed{stats.OccupancyRate.Value},
			OccupancyChangePct:   Fixed{stats.OccupancyRate.ChangePct},
			ADR:                  Fixed{stats.ADR.Value},
			ADRChangePct:         Fixed{stats.ADR.ChangePct},
			RevPAR:               Fixed{stats.RevPAR.Value},
			RevPARChangePct:      Fixed{stats.RevPAR.ChangePct},
			Views:                stats.Views,
			Likes:                stats.Likes,
			Reservations:         stats.ReservationsCreated,
			ActiveProperties:     stats.ActiveProperties,
			OccupancyNights:      stats.OccupiedNights,
		},
		Charts: DashboardCharts{
			Bookings: ToBookingPoints(report.Charts.Bookings),
			Revenue:  ToRevenuePoints(report.Charts.Revenue),
		},
	}
	return resp
}

// ToBookingPoints converts a daily count series.
func ToBookingPoints(points []booking.DailyCount) []BookingPoint {
	out := make([]BookingPoint, 0, len(points))
	for _, p := range points {
		out = append(out, BookingPoint{Date: analytics.FormatDate(p.Date), Count: p.Count})
	}
	return out
}

// ToRevenuePoints converts a daily amount series.
func ToRevenuePoints(points []booking.DailyAmount) []RevenuePoint {
	out := make([]RevenuePoint, 0, len(points))
	for _, p := range points {
		out = append(out, RevenuePoint{Date: analytics.FormatDate(p.Date), Revenue: Fixed{p.Amount}})
	}
	return out
}

// ToCalendarEvents converts calendar entries, preserving order.
func ToCalendarEvents(entries []booking.CalendarEntry) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(entries))
	for _, e := range entries {
		out = append(out, CalendarEvent{
			ID:               e.ID,
			Title:            e.PropertyTitle,
			Start:            analytics.FormatDate(e.StartDate),
			End:              analytics.FormatDate(e.EndDate),
			Status:           e.Status,
			PropertyID:       e.PropertyID,
			Guest:            e.GuestName,
			ConfirmationCode: e.ConfirmationCode,
		})
	}
	return out
}

// BookingChartPoints densifies the bookings series over window for rendering.
func BookingChartPoints(points []booking.DailyCount, window analytics.DateWindow) []svg.Point {
	dense := analytics.DenseCounts(points, window)
	out := make([]svg.Point, 0, len(dense))
	for _, p := range dense {
		out = append(out, svg.Point{Label: p.Date.Format("Jan 2"), Value: float64(p.Count)})
	}
	return out
}

// RevenueChartPoints densifies the revenue series over window for rendering.
// Floats are only used for drawing.
func RevenueChartPoints(points []booking.DailyAmount, window analytics.DateWindow) []svg.Point {
	dense := analytics.DenseAmounts(points, window)
	out := make([]svg.Point, 0, len(dense))
	for _, p := range dense {
		out = append(out, svg.Point{Label: p.Date.Format("Jan 2"), Value: p.Amount.InexactFloat64()})
	}
	return out
}
