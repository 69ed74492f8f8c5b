package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tempest-stays/tempest/internal/analytics"
	"github.com/tempest-stays/tempest/internal/analytics/ui"
)

var header = []string{"section", "metric", "value", "change_pct"}

// FileName is dashboard-<range>-<window end>.csv.
func FileName(report analytics.Report) string {
	return fmt.Sprintf("dashboard-%s-%s.csv", report.Meta.Range, analytics.FormatDate(report.Meta.Window.End))
}

// WriteDashboardCSV serialises a dashboard report as section/metric rows.
// Chart rows use the day as metric name.
func WriteDashboardCSV(w io.Writer, report analytics.Report) error {
	resp := ui.ToDashboardResponse(report)
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return err
	}

	records := [][]string{
		{"meta", "range", string(resp.Meta.Range), ""},
		{"meta", "start", resp.Meta.Start, ""},
		{"meta", "end", resp.Meta.End, ""},
		{"meta", "prev_start", resp.Meta.PrevStart, ""},
		{"meta", "prev_end", resp.Meta.PrevEnd, ""},

		{"today", "date", resp.Today.Date, ""},
		{"today", "checkins", itoa(resp.Today.CheckIns), ""},
		{"today", "checkouts", itoa(resp.Today.CheckOuts), ""},
		{"today", "ongoing_stays", itoa(resp.Today.OngoingStays), ""},
		{"today", "occupancy_rate_today", resp.Today.OccupancyRateToday.String(), ""},

		{"stats", "total_income", resp.Stats.TotalIncome.String(), resp.Stats.TotalIncomeChangePct.String()},
		{"stats", "occupancy_rate", resp.Stats.OccupancyRate.String(), resp.Stats.OccupancyChangePct.String()},
		{"stats", "adr", resp.Stats.ADR.String(), resp.Stats.ADRChangePct.String()},
		{"stats", "revpar", resp.Stats.RevPAR.String(), resp.Stats.RevPARChangePct.String()},
		{"stats", "views", itoa(resp.Stats.Views), ""},
		{"stats", "likes", itoa(resp.Stats.Likes), ""},
		{"stats", "reservations", itoa(resp.Stats.Reservations), ""},
		{"stats", "active_properties", itoa(resp.Stats.ActiveProperties), ""},
		{"stats", "occupancy_nights", itoa(resp.Stats.OccupancyNights), ""},
	}
	for _, p := range resp.Charts.Bookings {
		records = append(records, []string{"bookings", p.Date, itoa(p.Count), ""})
	}
	for _, p := range resp.Charts.Revenue {
		records = append(records, []string{"revenue", p.Date, p.Revenue.String(), ""})
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
