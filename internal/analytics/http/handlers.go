package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tempest-stays/tempest/internal/analytics"
	"github.com/tempest-stays/tempest/internal/analytics/export"
	"github.com/tempest-stays/tempest/internal/analytics/svg"
	"github.com/tempest-stays/tempest/internal/analytics/ui"
	"github.com/tempest-stays/tempest/internal/booking"
	"github.com/tempest-stays/tempest/internal/platform/httpx"
	"github.com/tempest-stays/tempest/internal/shared"
)

const requestTimeout = 5 * time.Second

// AnalyticsService defines the host analytics contract used by the handler.
type AnalyticsService interface {
	GetHostDashboard(ctx context.Context, hostID uuid.UUID, rangeName string) (analytics.Report, error)
	GetHostCalendar(ctx context.Context, hostID uuid.UUID, start, end time.Time) ([]booking.CalendarEntry, error)
}

// ExportQueue schedules asynchronous dashboard exports.
type ExportQueue interface {
	EnqueueDashboardExport(ctx context.Context, hostID uuid.UUID, rangeName string) (string, error)
}

// Handler serves the host dashboard, its exports and the host calendar.
type Handler struct {
	logger    *slog.Logger
	service   AnalyticsService
	queue     ExportQueue
	validator *validator.Validate
	csvPool   sync.Pool
}

// NewHandler constructs the analytics HTTP handler. queue may be nil, in
// which case export requests are rejected with 503.
func NewHandler(logger *slog.Logger, service AnalyticsService, queue ExportQueue) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:    logger,
		service:   service,
		queue:     queue,
		validator: validator.New(),
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

type calendarQuery struct {
	Start string `validate:"required,datetime=2006-01-02"`
	End   string `validate:"required,datetime=2006-01-02"`
}

type exportRequest struct {
	Range string `json:"range" validate:"omitempty,oneof=week month year"`
}

type exportResponse struct {
	TaskID string              `json:"task_id"`
	Range  analytics.RangeName `json:"range"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, ui.ToDashboardResponse(report))
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadReport(w, r)
	if !ok {
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteDashboardCSV(buf, report); err != nil {
		h.handleServerError(w, "write dashboard csv", err)
		return
	}

	filename := export.FileName(report)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleBookingsChart(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	points := ui.BookingChartPoints(report.Charts.Bookings, report.Meta.Window)
	chart, err := svg.Bars(0, 0, points, svg.Opts{
		Title:       "Bookings",
		Description: fmt.Sprintf("Reservations created per day, %s", rangeLabel(report)),
	})
	h.writeSVG(w, chart, err)
}

func (h *Handler) handleRevenueChart(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	points := ui.RevenueChartPoints(report.Charts.Revenue, report.Meta.Window)
	chart, err := svg.Line(0, 0, points, svg.Opts{
		Title:       "Revenue",
		Description: fmt.Sprintf("Completed stay payouts by checkout day, %s", rangeLabel(report)),
		ShowDots:    report.Meta.Range != analytics.RangeYear,
	})
	h.writeSVG(w, chart, err)
}

func (h *Handler) handleEnqueueExport(w http.ResponseWriter, r *http.Request) {
	hostID, ok := h.requireHost(w, r)
	if !ok {
		return
	}
	if h.queue == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Exports Unavailable", "export queue not configured")
		return
	}

	var req exportRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, validationFailure(err))
		return
	}
	rangeName := analytics.NormalizeRange(req.Range)

	taskID, err := h.queue.EnqueueDashboardExport(r.Context(), hostID, string(rangeName))
	if err != nil {
		h.handleServerError(w, "enqueue export", err)
		return
	}
	h.logger.Info("dashboard export queued", slog.String("host_id", hostID.String()), slog.String("range", string(rangeName)), slog.String("task_id", taskID))
	httpx.JSON(w, http.StatusAccepted, exportResponse{TaskID: taskID, Range: rangeName})
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	hostID, ok := h.requireHost(w, r)
	if !ok {
		return
	}

	query := calendarQuery{
		Start: strings.TrimSpace(r.URL.Query().Get("start")),
		End:   strings.TrimSpace(r.URL.Query().Get("end")),
	}
	if err := h.validator.Struct(query); err != nil {
		httpx.RespondError(w, validationFailure(err))
		return
	}
	start, _ := analytics.ParseDate(query.Start)
	end, _ := analytics.ParseDate(query.End)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	entries, err := h.service.GetHostCalendar(ctx, hostID, start, end)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidWindow) {
			httpx.RespondError(w, fmt.Errorf("%w: end must not be before start", httpx.ErrValidation))
			return
		}
		h.handleServerError(w, "load calendar", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ui.ToCalendarEvents(entries))
}

// loadReport resolves the host and range and computes the report, writing
// the error response itself when it returns false.
func (h *Handler) loadReport(w http.ResponseWriter, r *http.Request) (analytics.Report, bool) {
	hostID, ok := h.requireHost(w, r)
	if !ok {
		return analytics.Report{}, false
	}
	rangeName := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("range")))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.GetHostDashboard(ctx, hostID, rangeName)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return analytics.Report{}, false
	}
	return report, true
}

func (h *Handler) requireHost(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	hostID, ok := shared.HostFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return uuid.Nil, false
	}
	return hostID, true
}

func (h *Handler) writeSVG(w http.ResponseWriter, chart template.HTML, err error) {
	if err != nil {
		h.handleServerError(w, "render chart", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write([]byte(chart)); err != nil {
		h.logError("stream svg", err)
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, op string, err error) {
	h.logError(op, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
}

func validationFailure(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: invalid %s", httpx.ErrValidation, strings.Join(fields, ", "))
}

func rangeLabel(report analytics.Report) string {
	return fmt.Sprintf("%s to %s", analytics.FormatDate(report.Meta.Window.Start), analytics.FormatDate(report.Meta.Window.End))
}
