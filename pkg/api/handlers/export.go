package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jordanlanch/leadtoorder/pkg/api/errors"
	"github.com/jordanlanch/leadtoorder/pkg/export"
	"github.com/labstack/echo/v4"
)

// ExportHandler serves downloadable exports
type ExportHandler struct {
	exports *export.Service
}

// NewExportHandler creates a new export handler
func NewExportHandler(es *export.Service) *ExportHandler {
	return &ExportHandler{exports: es}
}

// CallTracker handles GET /exports/call-tracker?format=excel|csv and sends
// the file as an attachment
func (h *ExportHandler) CallTracker(c echo.Context) error {
	var req export.Request
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "Invalid query parameters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	file, err := h.exports.CallTracker(ctx, req)
	if err != nil {
		return errors.FromDomain(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}
