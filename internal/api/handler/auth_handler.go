package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casdu/portal-api/internal/api/metrics"
	"github.com/casdu/portal-api/internal/api/middleware"
	"github.com/casdu/portal-api/internal/core/domain"
	"github.com/casdu/portal-api/internal/core/ports"
)

type AuthHandler struct {
	authService     ports.AuthService
	identityService ports.IdentityService
	codec           ports.TokenCodec
}

func NewAuthHandler(authService ports.AuthService, identityService ports.IdentityService, codec ports.TokenCodec) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		identityService: identityService,
		codec:           codec,
	}
}

// Login authenticates a local account with username and password.
//
// @Summary      Login with password credentials
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("password", "rejected").Inc()
		// Credential mismatch and inactive account look identical on
		// purpose: the response never reveals which check failed.
		return err
	}

	metrics.LoginsTotal.WithLabelValues("password", "ok").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: &user})
}

// ThaIDLogin runs the identity-verification reconciliation and mints a
// session token.
//
// @Summary      Login via ThaID identity verification
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      thaidLoginRequest  true  "Verification code or CID"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/thaid-login [post]
func (h *AuthHandler) ThaIDLogin(c echo.Context) error {
	var req thaidLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Code == "" && req.CID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code or cid is required")
	}

	cid := req.CID
	if cid == "" {
		resolved, err := h.identityService.ResolveCode(req.Code)
		if err != nil {
			metrics.LoginsTotal.WithLabelValues("thaid", "rejected").Inc()
			return err
		}
		cid = resolved
	}

	token, user, err := h.identityService.Reconcile(c.Request().Context(), cid)
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrEmployeeNotFound) ||
			errors.Is(err, domain.ErrEmployeeInactive) ||
			errors.Is(err, domain.ErrAccountInactive) {
			result = "rejected"
		}
		metrics.LoginsTotal.WithLabelValues("thaid", result).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("thaid", "ok").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: &user})
}

// Session reports whether the caller is authenticated. It sits behind the
// Optional policy: a bad or absent credential is not an error here.
//
// @Summary      Session probe
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	p, ok := c.Get(middleware.PrincipalKey).(domain.SafePrincipal)
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"authenticated": false})
	}
	return c.JSON(http.StatusOK, map[string]any{"authenticated": true, "user": p})
}

// Me returns the authenticated principal.
//
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.SafePrincipal
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Refresh mints a fresh token for the authenticated principal.
//
// @Summary      Refresh session token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	token, err := h.codec.Issue(p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: &p})
}

// ChangePassword updates the authenticated principal's password after
// verifying the current one.
//
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/password [patch]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), p.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}
