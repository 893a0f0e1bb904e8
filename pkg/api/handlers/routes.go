package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router holds every handler and the middleware the routes need
type Router struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Leads    *LeadHandler
	Enquiry  *EnquiryHandler
	Reports  *ReportsHandler
	Export   *ExportHandler
	Settings *SettingsHandler

	// Gate guards the /api/v1 routes; DownloadGate guards links that
	// carry the token in the query string
	Gate         echo.MiddlewareFunc
	DownloadGate echo.MiddlewareFunc
	// LoginLimit throttles sign-in attempts; nil disables it
	LoginLimit echo.MiddlewareFunc
	// Metrics serves /metrics; nil uses the default registry
	Metrics http.Handler
}

// Register mounts the public and gated routes on e
func (r *Router) Register(e *echo.Echo) {
	metricsHandler := r.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	// Public
	e.GET("/", r.Health.Root)
	e.GET("/health", r.Health.Health)
	e.GET("/metrics", echo.WrapHandler(metricsHandler))

	v1 := e.Group("/api/v1")
	v1.GET("/ping", r.Health.Ping)

	var loginMW []echo.MiddlewareFunc
	if r.LoginLimit != nil {
		loginMW = append(loginMW, r.LoginLimit)
	}
	v1.POST("/auth/login", r.Auth.Login, loginMW...)

	// Downloads accept ?token= since a browser link cannot set headers
	v1.GET("/exports/call-tracker", r.Export.CallTracker, r.DownloadGate)

	gated := v1.Group("", r.Gate)
	gated.POST("/auth/logout", r.Auth.Logout)
	gated.GET("/auth/me", r.Auth.Me)

	gated.GET("/dashboard", r.Reports.Dashboard)
	gated.GET("/received-patients", r.Reports.ReceivedPatients)
	gated.GET("/calendar", r.Reports.Calendar)

	gated.GET("/leads", r.Leads.List)
	gated.POST("/leads", r.Leads.Create)
	gated.DELETE("/leads/:id", r.Leads.Delete)
	gated.GET("/call-tracker", r.Leads.CallTracker)
	gated.POST("/follow-ups", r.Leads.AddFollowUp)

	gated.GET("/enquiries", r.Enquiry.List)
	gated.POST("/enquiries", r.Enquiry.Create)
	gated.PUT("/enquiries/:id", r.Enquiry.Update)
	gated.DELETE("/enquiries/:id", r.Enquiry.Delete)

	gated.PUT("/settings/profile", r.Auth.UpdateProfile)
	gated.DELETE("/settings/data", r.Settings.ClearData)

	gated.GET("/jobs/working-set", r.Health.WorkingSet)
	gated.POST("/jobs/refresh", r.Health.Refresh)
}
