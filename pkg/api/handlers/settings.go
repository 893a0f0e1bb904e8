package handlers

import (
	"net/http"

	"github.com/jordanlanch/leadtoorder/pkg/api/errors"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/store"
	"github.com/labstack/echo/v4"
)

// SettingsHandler handles the settings page actions that touch local data
type SettingsHandler struct {
	store *store.Store
	log   logger.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(st *store.Store, log logger.Logger) *SettingsHandler {
	if log == nil {
		log = logger.Default()
	}
	return &SettingsHandler{store: st, log: log.With("component", "settings")}
}

// ClearData handles DELETE /settings/data. Every locally saved lead,
// follow-up and enquiry is removed together with the user, so the client
// has to sign in again. The sheets are not touched.
func (h *SettingsHandler) ClearData(c echo.Context) error {
	if err := h.store.ClearAll(c.Request().Context()); err != nil {
		return errors.InternalError(c, err)
	}
	h.log.Warn("local data cleared")
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "All local data has been cleared",
	})
}
