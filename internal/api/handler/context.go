package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casdu/portal-api/internal/api/middleware"
	"github.com/casdu/portal-api/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the authorization gate.
// Its presence proves the gate ran; a handler behind Required that finds
// nothing is a wiring bug, surfaced as 401 rather than a panic.
func ctxPrincipal(c echo.Context) (domain.SafePrincipal, error) {
	p, ok := c.Get(middleware.PrincipalKey).(domain.SafePrincipal)
	if !ok {
		return domain.SafePrincipal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}
