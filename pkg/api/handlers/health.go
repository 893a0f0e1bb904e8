package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/jobs"
	"github.com/labstack/echo/v4"
)

// Version is reported by GET /
const Version = "0.1.0"

// Pinger checks a backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// Refresher runs and reports the background working set refresh
type Refresher interface {
	RunRefresh() *jobs.Snapshot
	Last() *jobs.Snapshot
}

// HealthHandler serves the public status endpoints and the refresh job
type HealthHandler struct {
	store       Pinger
	jobs        Refresher
	environment string
	now         func() time.Time
}

// NewHealthHandler creates a health handler. jobs may be nil when the
// refresh job is disabled.
func NewHealthHandler(store Pinger, jobs Refresher, environment string) *HealthHandler {
	return &HealthHandler{store: store, jobs: jobs, environment: environment, now: time.Now}
}

// Root handles GET /
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"name":        "Lead to Order API",
		"version":     Version,
		"status":      "running",
		"environment": h.environment,
		"timestamp":   h.now().Unix(),
	})
}

// Ping handles GET /api/v1/ping
func (h *HealthHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "pong"})
}

// Health handles GET /health. Only the echo store decides the status; the
// sheet being down is reported through the last refresh.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	body := map[string]any{"status": "healthy", "store": "up"}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		body["status"] = "unhealthy"
		body["store"] = "down"
		status = http.StatusServiceUnavailable
	}
	if h.jobs != nil {
		if snap := h.jobs.Last(); snap != nil {
			body["sheet"] = sheetState(snap)
			body["last_refresh"] = snap.RefreshedAt
		}
	}
	return c.JSON(status, body)
}

// WorkingSet handles GET /jobs/working-set
func (h *HealthHandler) WorkingSet(c echo.Context) error {
	if h.jobs == nil {
		return c.JSON(http.StatusOK, map[string]any{"enabled": false})
	}
	// snapshot is null until the first refresh finished
	return c.JSON(http.StatusOK, map[string]any{"enabled": true, "snapshot": h.jobs.Last()})
}

// Refresh handles POST /jobs/refresh and runs the refresh right away
func (h *HealthHandler) Refresh(c echo.Context) error {
	if h.jobs == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"enabled": false})
	}
	snap := h.jobs.RunRefresh()
	if snap == nil {
		return c.JSON(http.StatusBadGateway, map[string]any{"enabled": true, "error": "refresh_failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{"enabled": true, "snapshot": snap})
}

func sheetState(snap *jobs.Snapshot) string {
	if snap.Degraded {
		return "degraded"
	}
	return "up"
}
