package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/api/errors"
	apimw "github.com/jordanlanch/leadtoorder/pkg/api/middleware"
	"github.com/jordanlanch/leadtoorder/pkg/metrics"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/session"
	"github.com/labstack/echo/v4"
)

// requestTimeout bounds a request that reads the sheet, which may take a
// full client timeout per sheet
const requestTimeout = 30 * time.Second

// AuthHandler handles sign-in, sign-out and the profile
type AuthHandler struct {
	sessions *session.Service
	metrics  *metrics.Metrics
}

// NewAuthHandler creates a new auth handler. m may be nil.
func NewAuthHandler(sessions *session.Service, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{sessions: sessions, metrics: m}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	resp, err := h.sessions.Login(ctx, req)
	h.metrics.RecordLoginAttempt(err == nil)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout handles POST /auth/logout. The token is revoked until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.sessions.Logout(ctx, apimw.Token(c)); err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Successfully logged out",
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.sessions.Me(c.Request().Context())
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /settings/profile
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errors.FromDomain(c, err)
	}

	user, err := h.sessions.UpdateProfile(c.Request().Context(), req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
