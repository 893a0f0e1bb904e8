package handlers

import (
	"context"
	"net/http"

	"github.com/jordanlanch/leadtoorder/pkg/api/errors"
	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/enquiries"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/labstack/echo/v4"
)

// EnquiryHandler handles the enquiry pages
type EnquiryHandler struct {
	enquiries *enquiries.Service
}

// NewEnquiryHandler creates a new enquiry handler
func NewEnquiryHandler(es *enquiries.Service) *EnquiryHandler {
	return &EnquiryHandler{enquiries: es}
}

// List handles GET /enquiries?q=
func (h *EnquiryHandler) List(c echo.Context) error {
	var req models.EnquiryListRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "Invalid query parameters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	resp, err := h.enquiries.List(ctx, req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /enquiries
func (h *EnquiryHandler) Create(c echo.Context) error {
	req, err := h.bindForm(c)
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	resp, err := h.enquiries.Create(ctx, req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Update handles PUT /enquiries/:id. Only the echo store is changed.
func (h *EnquiryHandler) Update(c echo.Context) error {
	req, err := h.bindForm(c)
	if err != nil {
		return errors.FromDomain(c, err)
	}

	updated, err := h.enquiries.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /enquiries/:id
func (h *EnquiryHandler) Delete(c echo.Context) error {
	n, err := h.enquiries.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	if n == 0 {
		return errors.NotFoundError(c, "enquiry")
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Enquiry removed from local data",
	})
}

// bindForm binds and validates the enquiry form
func (h *EnquiryHandler) bindForm(c echo.Context) (models.EnquiryRequest, error) {
	var req models.EnquiryRequest
	if err := c.Bind(&req); err != nil {
		return req, domain.NewBadRequestError("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}
