package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casdu/portal-api/internal/core/ports"
)

// EmployeeHandler serves the external auth-orchestration layer, which calls
// in with the shared system secret during the ThaID flow.
type EmployeeHandler struct {
	identityService ports.IdentityService
}

func NewEmployeeHandler(identityService ports.IdentityService) *EmployeeHandler {
	return &EmployeeHandler{identityService: identityService}
}

type verifyRequest struct {
	PID string `json:"pid" validate:"required"`
}

type verifyResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// Verify reconciles a PID (used as CID) and returns the principal with a
// session token.
//
// @Summary      Verify a PID against the roster and local store
// @Tags         employee
// @Accept       json
// @Produce      json
// @Param        body  body      verifyRequest  true  "PID to verify"
// @Success      200   {object}  verifyResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /employee/verify [post]
func (h *EmployeeHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.identityService.Reconcile(c.Request().Context(), req.PID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, verifyResponse{User: user, Token: token})
}
