package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/casdu/portal-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to the two-tier rejection classes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, gate rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors. The internal taxonomy collapses into short,
	// non-revealing messages here.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, domain.ErrAccountInactive):
		return http.StatusUnauthorized, "not authorized"
	case errors.Is(err, domain.ErrEmployeeNotFound), errors.Is(err, domain.ErrEmployeeInactive):
		return http.StatusUnauthorized, "not authorized"
	case errors.Is(err, domain.ErrTokenExpired), errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrStalePrincipal):
		return http.StatusForbidden, "invalid authorization token"
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden, "admin privileges required"
	case errors.Is(err, domain.ErrPrincipalNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUsernameConflict):
		return http.StatusConflict, "username already exists"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
