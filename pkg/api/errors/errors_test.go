package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newContext creates an echo.Context backed by a recorder
func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// captureLog redirects the standard logger to a buffer for the duration of fn
func captureLog(fn func()) string {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)
	fn()
	return buf.String()
}

// ---------- ValidationError ----------

func TestValidationError_WithFields(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/leads")
	err := domain.NewValidationError("Please correct the highlighted fields", map[string]string{
		"email": "Valid email is required",
	})

	require.NoError(t, ValidationError(c, err))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := parseBody(t, rec)
	assert.Equal(t, "validation_error", resp.Error)
	assert.Equal(t, "Please correct the highlighted fields", resp.Message)
	assert.Equal(t, "Valid email is required", resp.Fields["email"])
}

func TestValidationError_HidesOtherErrors(t *testing.T) {
	internalMsg := "json: cannot unmarshal number into Go struct field"
	c, rec := newContext(http.MethodPost, "/api/v1/leads")

	logged := captureLog(func() {
		_ = ValidationError(c, errors.New(internalMsg))
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), internalMsg)
	assert.Contains(t, logged, "[VALIDATION ERROR]")
	assert.Contains(t, logged, "/api/v1/leads")
	assert.Contains(t, logged, internalMsg)
}

// ---------- UpstreamError / InternalError ----------

func TestUpstreamError_NoInternalDetails(t *testing.T) {
	internalMsg := "Get \"https://script.google.com/macros/s/abc/exec\": dial tcp: i/o timeout"
	c, rec := newContext(http.MethodPost, "/api/v1/auth/login")

	logged := captureLog(func() {
		_ = UpstreamError(c, errors.New(internalMsg))
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "script.google.com")
	assert.Contains(t, logged, "[UPSTREAM ERROR]")
	assert.Contains(t, logged, internalMsg)
}

func TestInternalError_LogsCause(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/v1/dashboard")

	logged := captureLog(func() {
		_ = InternalError(c, errors.New("redis: connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis")
	assert.Contains(t, logged, "[INTERNAL ERROR] Path: /api/v1/dashboard")
}

// ---------- UnauthorizedError ----------

func TestUnauthorizedError_Redirect(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/v1/leads")
	require.NoError(t, UnauthorizedError(c, ""))

	resp := parseBody(t, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", resp.Error)
	assert.Equal(t, LoginPath, resp.Redirect)
	assert.NotEmpty(t, resp.Message)
}

func TestUnauthorizedError_KeepsMessage(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/auth/login")
	require.NoError(t, UnauthorizedError(c, "Invalid password"))

	assert.Equal(t, "Invalid password", parseBody(t, rec).Message)
}

// ---------- FromDomain ----------

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation → 400", domain.NewValidationError("bad", map[string]string{"x": "y"}), http.StatusBadRequest, "validation_error"},
		{"bad request → 400", domain.NewBadRequestError("Invalid request body"), http.StatusBadRequest, "bad_request"},
		{"unauthorized → 401", domain.NewUnauthorizedError("Invalid username"), http.StatusUnauthorized, "unauthorized"},
		{"not found → 404", domain.NewNotFoundError("enquiry"), http.StatusNotFound, "not_found"},
		{"conflict → 409", domain.NewConflictError("Please wait", nil), http.StatusConflict, "conflict"},
		{"unavailable → 502", domain.NewUnavailableError(errors.New("timeout")), http.StatusBadGateway, "sheet_unavailable"},
		{"wrapped → unwraps", fmt.Errorf("add lead: %w", domain.NewConflictError("busy", nil)), http.StatusConflict, "conflict"},
		{"plain error → 500", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/test")
			captureLog(func() {
				assert.NoError(t, FromDomain(c, tt.err))
			})
			assert.Equal(t, tt.wantStatus, rec.Code)

			resp := parseBody(t, rec)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.NotEmpty(t, resp.Message)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}
