package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/casdu/portal-api/internal/api/middleware"
	"github.com/casdu/portal-api/internal/core/domain"
	"github.com/casdu/portal-api/internal/core/ports"
)

type stubAuthService struct {
	token string
	user  domain.SafePrincipal
	err   error

	changeErr  error
	changedFor int64
}

func (s *stubAuthService) Login(_ context.Context, username, password string) (string, domain.SafePrincipal, error) {
	if s.err != nil {
		return "", domain.SafePrincipal{}, s.err
	}
	return s.token, s.user, nil
}

func (s *stubAuthService) ChangePassword(_ context.Context, principalID int64, current, next string) error {
	if s.changeErr != nil {
		return s.changeErr
	}
	s.changedFor = principalID
	return nil
}

type stubIdentityService struct {
	resolved   string
	resolveErr error

	token        string
	user         domain.SafePrincipal
	reconcileErr error
	reconciled   []string
}

func (s *stubIdentityService) ResolveCode(code string) (string, error) {
	if s.resolveErr != nil {
		return "", s.resolveErr
	}
	return s.resolved, nil
}

func (s *stubIdentityService) Reconcile(_ context.Context, cid string) (string, domain.SafePrincipal, error) {
	s.reconciled = append(s.reconciled, cid)
	if s.reconcileErr != nil {
		return "", domain.SafePrincipal{}, s.reconcileErr
	}
	return s.token, s.user, nil
}

type stubCodec struct {
	token string
	err   error
}

func (s *stubCodec) Issue(p domain.SafePrincipal) (string, error) {
	return s.token, s.err
}

func (s *stubCodec) Verify(_ context.Context, token string) (domain.SafePrincipal, error) {
	return domain.SafePrincipal{}, domain.ErrInvalidToken
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

var _ ports.AuthService = (*stubAuthService)(nil)
var _ ports.IdentityService = (*stubIdentityService)(nil)
var _ ports.TokenCodec = (*stubCodec)(nil)

func TestLogin_Success(t *testing.T) {
	auth := &stubAuthService{
		token: "signed-token",
		user:  domain.SafePrincipal{ID: 9, Username: "carol", Role: domain.RoleUser},
	}
	h := NewAuthHandler(auth, &stubIdentityService{}, &stubCodec{})

	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"username":"carol","password":"s3cret"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("login handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "signed-token" || resp.User == nil || resp.User.Username != "carol" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubIdentityService{}, &stubCodec{})

	e := newEcho()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"username":"carol"}`), httptest.NewRecorder())

	err := h.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	auth := &stubAuthService{err: domain.ErrInvalidCredentials}
	h := NewAuthHandler(auth, &stubIdentityService{}, &stubCodec{})

	e := newEcho()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"username":"carol","password":"wrong"}`), httptest.NewRecorder())

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestThaIDLogin_WithCID(t *testing.T) {
	identity := &stubIdentityService{
		token: "thaid-token",
		user:  domain.SafePrincipal{ID: 4, Username: "1-XXXX-XXXXX-44-9"},
	}
	h := NewAuthHandler(&stubAuthService{}, identity, &stubCodec{})

	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/thaid-login", `{"cid":"1101000093449"}`), rec)

	if err := h.ThaIDLogin(c); err != nil {
		t.Fatalf("thaid login error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(identity.reconciled) != 1 || identity.reconciled[0] != "1101000093449" {
		t.Fatalf("expected reconcile with raw cid, got %v", identity.reconciled)
	}
}

func TestThaIDLogin_WithCode(t *testing.T) {
	identity := &stubIdentityService{
		resolved: "1101000093449",
		token:    "thaid-token",
		user:     domain.SafePrincipal{ID: 4},
	}
	h := NewAuthHandler(&stubAuthService{}, identity, &stubCodec{})

	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/thaid-login", `{"code":"TEST-1101000093449"}`), rec)

	if err := h.ThaIDLogin(c); err != nil {
		t.Fatalf("thaid login error: %v", err)
	}
	if len(identity.reconciled) != 1 || identity.reconciled[0] != "1101000093449" {
		t.Fatalf("expected reconcile with resolved cid, got %v", identity.reconciled)
	}
}

func TestThaIDLogin_EmptyPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubIdentityService{}, &stubCodec{})

	e := newEcho()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/thaid-login", `{}`), httptest.NewRecorder())

	err := h.ThaIDLogin(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestThaIDLogin_UnknownEmployee(t *testing.T) {
	identity := &stubIdentityService{reconcileErr: domain.ErrEmployeeNotFound}
	h := NewAuthHandler(&stubAuthService{}, identity, &stubCodec{})

	e := newEcho()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/thaid-login", `{"cid":"1101000093449"}`), httptest.NewRecorder())

	if err := h.ThaIDLogin(c); !errors.Is(err, domain.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound to propagate, got %v", err)
	}
}

func TestSession(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubIdentityService{}, &stubCodec{})
	e := newEcho()

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/session", nil), rec)

		if err := h.Session(c); err != nil {
			t.Fatalf("session error: %v", err)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["authenticated"] != false {
			t.Fatalf("expected authenticated=false, got %v", body)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/session", nil), rec)
		c.Set(middleware.PrincipalKey, domain.SafePrincipal{ID: 3, Username: "carol"})

		if err := h.Session(c); err != nil {
			t.Fatalf("session error: %v", err)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["authenticated"] != true {
			t.Fatalf("expected authenticated=true, got %v", body)
		}
	})
}

func TestMe(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubIdentityService{}, &stubCodec{})
	e := newEcho()

	t.Run("without principal", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), httptest.NewRecorder())
		err := h.Me(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("with principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), rec)
		c.Set(middleware.PrincipalKey, domain.SafePrincipal{ID: 3, Username: "carol"})

		if err := h.Me(c); err != nil {
			t.Fatalf("me error: %v", err)
		}
		var p domain.SafePrincipal
		if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if p.ID != 3 || p.Username != "carol" {
			t.Fatalf("unexpected principal: %+v", p)
		}
	})
}

func TestRefresh(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubIdentityService{}, &stubCodec{token: "fresh-token"})

	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/refresh", nil), rec)
	c.Set(middleware.PrincipalKey, domain.SafePrincipal{ID: 3, Username: "carol"})

	if err := h.Refresh(c); err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "fresh-token" {
		t.Fatalf("unexpected token: %q", resp.Token)
	}
}

func TestChangePassword(t *testing.T) {
	auth := &stubAuthService{}
	h := NewAuthHandler(auth, &stubIdentityService{}, &stubCodec{})
	e := newEcho()

	t.Run("success", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPatch, "/auth/password", `{"currentPassword":"oldpass","newPassword":"newpass99"}`), rec)
		c.Set(middleware.PrincipalKey, domain.SafePrincipal{ID: 7})

		if err := h.ChangePassword(c); err != nil {
			t.Fatalf("change password error: %v", err)
		}
		if auth.changedFor != 7 {
			t.Fatalf("expected change for principal 7, got %d", auth.changedFor)
		}
	})

	t.Run("short new password", func(t *testing.T) {
		c := e.NewContext(jsonRequest(http.MethodPatch, "/auth/password", `{"currentPassword":"oldpass","newPassword":"short"}`), httptest.NewRecorder())
		c.Set(middleware.PrincipalKey, domain.SafePrincipal{ID: 7})

		err := h.ChangePassword(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %v", err)
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		failing := &stubAuthService{changeErr: domain.ErrInvalidCredentials}
		hf := NewAuthHandler(failing, &stubIdentityService{}, &stubCodec{})
		c := e.NewContext(jsonRequest(http.MethodPatch, "/auth/password", `{"currentPassword":"wrong","newPassword":"newpass99"}`), httptest.NewRecorder())
		c.Set(middleware.PrincipalKey, domain.SafePrincipal{ID: 7})

		if err := hf.ChangePassword(c); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
