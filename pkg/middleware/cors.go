package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// DefaultAllowedOrigins are used when CORS_ALLOWED_ORIGINS is not set
var DefaultAllowedOrigins = []string{
	"http://localhost:3000", // Dashboard dev server
	"http://127.0.0.1:3000",
}

// AllowedMethods are the methods the dashboard uses
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
}

// AllowedHeaders are the request headers the dashboard sends
var AllowedHeaders = []string{
	"Origin",
	"Content-Type",
	"Accept",
	"Authorization",
}

// CORSConfig returns the CORS configuration for the given origins, or for
// DefaultAllowedOrigins when none are given.
func CORSConfig(origins ...string) middleware.CORSConfig {
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}
	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     AllowedMethods,
		AllowCredentials: true,
		AllowHeaders:     AllowedHeaders,
		ExposeHeaders:    []string{"Content-Disposition"},
	}
}
