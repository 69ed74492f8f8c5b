package analytichttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/tempest-stays/tempest/internal/platform/httpx"
	"github.com/tempest-stays/tempest/internal/shared"
)

// MountRoutes registers host analytics endpoints. The router is expected to
// have resolved the session already.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	exportLimiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "export rate limit exceeded")
		}),
	)

	r.Get("/dashboard", h.handleDashboard)
	r.Get("/dashboard/charts/bookings.svg", h.handleBookingsChart)
	r.Get("/dashboard/charts/revenue.svg", h.handleRevenueChart)
	r.Get("/calendar", h.handleCalendar)
	r.Group(func(gr chi.Router) {
		gr.Use(exportLimiter)
		gr.Get("/dashboard/export.csv", h.handleCSV)
		gr.Post("/dashboard/exports", h.handleEnqueueExport)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if host, ok := shared.HostFromContext(r.Context()); ok {
		return "host:" + host.String(), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
