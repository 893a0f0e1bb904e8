package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/sheets"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Sheet endpoint metrics
	SheetRequestsTotal   *prometheus.CounterVec
	SheetRequestDuration *prometheus.HistogramVec

	// Business metrics
	RecordsWritten *prometheus.CounterVec
	LoginAttempts  *prometheus.CounterVec
	ExportsCreated *prometheus.CounterVec

	// Working set gauges, refreshed by the cron job
	ActiveLeads       prometheus.Gauge
	PendingFollowUps  prometheus.Gauge
	TodayActivity     prometheus.Gauge
	TotalInteractions prometheus.Gauge
	ExcludedRows      *prometheus.GaugeVec
}

// New creates a new Metrics instance registered on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new Metrics instance registered on reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		SheetRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheet_requests_total",
				Help: "Total number of calls to the sheet script endpoint",
			},
			[]string{"action", "result"}, // ok, timeout, unavailable, malformed, rejected
		),
		SheetRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sheet_request_duration_seconds",
				Help:    "Sheet script endpoint latency in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
			},
			[]string{"action"},
		),

		RecordsWritten: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "records_written_total",
				Help: "Total number of leads, follow-ups and enquiries saved",
			},
			[]string{"kind", "synced"},
		),
		LoginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),
		ExportsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exports_created_total",
				Help: "Total number of call tracker exports created",
			},
			[]string{"format"},
		),

		ActiveLeads: f.NewGauge(prometheus.GaugeOpts{
			Name: "leads_active",
			Help: "Leads with a planned and no actual action",
		}),
		PendingFollowUps: f.NewGauge(prometheus.GaugeOpts{
			Name: "follow_ups_pending",
			Help: "Active leads whose latest status is follow-up",
		}),
		TodayActivity: f.NewGauge(prometheus.GaugeOpts{
			Name: "follow_ups_today",
			Help: "Follow-ups recorded today",
		}),
		TotalInteractions: f.NewGauge(prometheus.GaugeOpts{
			Name: "follow_ups_total",
			Help: "Valid follow-up rows in the sheet",
		}),
		ExcludedRows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rows_excluded",
				Help: "Sheet rows left out of reconciliation",
			},
			[]string{"reason"},
		),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, e.g. /api/v1/leads/:id

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, status).Observe(time.Since(start).Seconds())
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// ObserveSheet records one sheet endpoint call; it matches sheets.Observer
func (m *Metrics) ObserveSheet(action string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.SheetRequestsTotal.WithLabelValues(action, sheetResult(err)).Inc()
	m.SheetRequestDuration.WithLabelValues(action).Observe(duration.Seconds())
}

func sheetResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sheets.ErrTimeout):
		return "timeout"
	case errors.Is(err, sheets.ErrUnavailable), errors.Is(err, sheets.ErrNotConfigured):
		return "unavailable"
	case errors.Is(err, sheets.ErrMalformedResponse):
		return "malformed"
	default:
		return "rejected"
	}
}

// RecordWrite counts a saved record of kind
func (m *Metrics) RecordWrite(kind string, synced bool) {
	if m == nil {
		return
	}
	m.RecordsWritten.WithLabelValues(kind, strconv.FormatBool(synced)).Inc()
}

// RecordLoginAttempt increments login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// RecordExportCreated increments exports created counter
func (m *Metrics) RecordExportCreated(format string) {
	if m == nil {
		return
	}
	m.ExportsCreated.WithLabelValues(format).Inc()
}

// WorkingSet is the snapshot published by SetWorkingSet
type WorkingSet struct {
	Active            int
	Pending           int
	Today             int
	TotalInteractions int
	Excluded          map[string]int
}

// SetWorkingSet publishes the reconciled working set sizes
func (m *Metrics) SetWorkingSet(ws WorkingSet) {
	if m == nil {
		return
	}
	m.ActiveLeads.Set(float64(ws.Active))
	m.PendingFollowUps.Set(float64(ws.Pending))
	m.TodayActivity.Set(float64(ws.Today))
	m.TotalInteractions.Set(float64(ws.TotalInteractions))
	m.ExcludedRows.Reset()
	for reason, n := range ws.Excluded {
		m.ExcludedRows.WithLabelValues(reason).Set(float64(n))
	}
}
