package handlers

import (
	"context"
	"net/http"

	"github.com/jordanlanch/leadtoorder/pkg/api/errors"
	apimw "github.com/jordanlanch/leadtoorder/pkg/api/middleware"
	"github.com/jordanlanch/leadtoorder/pkg/leads"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/labstack/echo/v4"
)

// LeadHandler handles lead details, the lead form and the call tracker
type LeadHandler struct {
	leads  *leads.Service
	guards *leads.Guards
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(ls *leads.Service, guards *leads.Guards) *LeadHandler {
	if guards == nil {
		guards = leads.NewGuards()
	}
	return &LeadHandler{leads: ls, guards: guards}
}

// List handles GET /leads?q=&status=
func (h *LeadHandler) List(c echo.Context) error {
	var req models.LeadListRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "Invalid query parameters")
	}
	if err := c.Validate(&req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	resp, err := h.leads.ListLeads(ctx, req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /leads. A lead that only reached the echo store is
// still 201; the response says it was not synced.
func (h *LeadHandler) Create(c echo.Context) error {
	var req models.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	resp, err := h.leads.AddLead(ctx, req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Delete handles DELETE /leads/:id
func (h *LeadHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return errors.BadRequestError(c, "Lead id is required")
	}

	n, err := h.leads.DeleteLead(c.Request().Context(), id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	if n == 0 {
		return errors.NotFoundError(c, "lead")
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Lead removed from local data",
	})
}

// CallTracker handles GET /call-tracker?q=&lead_no=
func (h *LeadHandler) CallTracker(c echo.Context) error {
	var req models.CallTrackerRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "Invalid query parameters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	view, err := h.leads.CallTracker(ctx, req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// AddFollowUp handles POST /follow-ups. A second submission from the same
// user while one is running gets 409.
func (h *LeadHandler) AddFollowUp(c echo.Context) error {
	var req models.CreateFollowUpRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.leads.AddFollowUp(ctx, h.guards.For(apimw.Username(c)), req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}
