package middleware

import (
	"context"
	"strings"
	"time"

	apierrors "github.com/jordanlanch/leadtoorder/pkg/api/errors"
	"github.com/jordanlanch/leadtoorder/pkg/auth"
	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/labstack/echo/v4"
)

// Context keys set by the session gate
const (
	ContextToken    = "token"
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// Authenticator checks a bearer token against the current session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, *models.User, error)
}

// SessionGate rejects requests without a valid, unrevoked token and a
// signed-in user. Rejections are 401 with a redirect to the login page.
func SessionGate(a Authenticator) echo.MiddlewareFunc {
	return gate(a, false)
}

// SessionGateFromQueryOrHeader also accepts the token as a "token" query
// parameter, for download links that cannot carry headers
func SessionGateFromQueryOrHeader(a Authenticator) echo.MiddlewareFunc {
	return gate(a, true)
}

func gate(a Authenticator, allowQuery bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok && allowQuery {
				token = c.QueryParam("token")
			}
			if token == "" {
				return apierrors.UnauthorizedError(c, "Authorization header must be 'Bearer {token}'")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			claims, user, err := a.Authenticate(ctx, token)
			if err != nil {
				if domain.IsUnauthorized(err) {
					return apierrors.UnauthorizedError(c, domain.ErrorMessage(err))
				}
				return apierrors.InternalError(c, err)
			}

			// keep the raw token for logout
			c.Set(ContextToken, token)
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUsername, user.Username)
			return next(c)
		}
	}
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Token returns the bearer token of a gated request
func Token(c echo.Context) string {
	s, _ := c.Get(ContextToken).(string)
	return s
}

// Username returns the signed-in username of a gated request
func Username(c echo.Context) string {
	s, _ := c.Get(ContextUsername).(string)
	return s
}
