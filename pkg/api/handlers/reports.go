package handlers

import (
	"context"
	"net/http"

	"github.com/jordanlanch/leadtoorder/pkg/api/errors"
	"github.com/jordanlanch/leadtoorder/pkg/calendar"
	"github.com/jordanlanch/leadtoorder/pkg/reports"
	"github.com/labstack/echo/v4"
)

// ReportsHandler serves the read-only views: dashboard, received patients
// and the calendar
type ReportsHandler struct {
	reports  *reports.Service
	calendar *calendar.Service
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(rs *reports.Service, cs *calendar.Service) *ReportsHandler {
	return &ReportsHandler{reports: rs, calendar: cs}
}

// Dashboard handles GET /dashboard
func (h *ReportsHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	d, err := h.reports.Dashboard(ctx)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// ReceivedPatients handles GET /received-patients?q=
func (h *ReportsHandler) ReceivedPatients(c echo.Context) error {
	var req reports.ReceivedPatientsRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "Invalid query parameters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	resp, err := h.reports.ReceivedPatients(ctx, req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Calendar handles GET /calendar?date=YYYY-MM-DD; no date means today
func (h *ReportsHandler) Calendar(c echo.Context) error {
	var req calendar.DayRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "Invalid query parameters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	view, err := h.calendar.Day(ctx, req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
