package errors

import (
	"log"
	"net/http"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/labstack/echo/v4"
)

// LoginPath is where unauthenticated clients are sent
const LoginPath = "/login"

// ValidationError returns 400. Field messages of a domain validation error
// are safe to show; anything else is logged and replaced by a generic message.
func ValidationError(c echo.Context, err error) error {
	if fields := domain.ValidationFields(err); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: domain.ErrorMessage(err),
			Fields:  fields,
		})
	}

	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// BadRequestError returns 400 with a message that is safe to expose
func BadRequestError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// UpstreamError returns 502 when the spreadsheet endpoint failed on a path
// with no local fallback
func UpstreamError(c echo.Context, err error) error {
	log.Printf("[UPSTREAM ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Error:   "sheet_unavailable",
		Message: "The spreadsheet could not be reached. Please try again later.",
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// UnauthorizedError returns 401 and points the client at the login page
func UnauthorizedError(c echo.Context, message string) error {
	if message == "" {
		message = "You are not authorized to access this resource."
	}
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:    "unauthorized",
		Message:  message,
		Redirect: LoginPath,
	})
}

// NotFoundError returns a generic not found error
func NotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "The requested resource was not found.",
	})
}

// ConflictError returns 409
func ConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, models.ErrorResponse{
		Error:   "conflict",
		Message: message, // safe to expose, e.g. "A submission is already in progress"
	})
}

// FromDomain writes the response matching a service error
func FromDomain(c echo.Context, err error) error {
	switch {
	case domain.IsValidation(err):
		return ValidationError(c, err)
	case domain.IsBadRequest(err):
		return BadRequestError(c, domain.ErrorMessage(err))
	case domain.IsUnauthorized(err):
		return UnauthorizedError(c, domain.ErrorMessage(err))
	case domain.IsNotFound(err):
		return NotFoundError(c, domain.ErrorMessage(err))
	case domain.IsConflict(err):
		return ConflictError(c, domain.ErrorMessage(err))
	case domain.IsUnavailable(err):
		return UpstreamError(c, err)
	default:
		return InternalError(c, err)
	}
}
