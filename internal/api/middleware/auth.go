package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/casdu/portal-api/internal/api/metrics"
	"github.com/casdu/portal-api/internal/core/domain"
	"github.com/casdu/portal-api/internal/core/ports"
)

// Context keys under which the gate stores the classification result.
const (
	PrincipalKey = "principal"
	AuthKindKey  = "auth_kind"
)

// Classifier turns an Authorization header into a Credential. The shared
// system secret is checked before JWT verification: a well-formed but wrong
// secret must be rejected as a bad credential, not as a malformed token.
type Classifier struct {
	secret ports.SecretVerifier
	codec  ports.TokenCodec
}

func NewClassifier(secret ports.SecretVerifier, codec ports.TokenCodec) *Classifier {
	return &Classifier{secret: secret, codec: codec}
}

// Classify parses and verifies the Authorization header.
// Returns ErrMissingAuthHeader / ErrMalformedAuthHeader when authentication
// was never attempted (401 class), or the verification error when a
// well-formed credential failed (403 class).
func (cl *Classifier) Classify(c echo.Context) (domain.Credential, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return domain.Anonymous, domain.ErrMissingAuthHeader
	}

	parts := strings.SplitN(header, " ", 3)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return domain.Anonymous, domain.ErrMalformedAuthHeader
	}
	token := parts[1]

	if sys, ok := cl.secret.Classify(token); ok {
		metrics.TokenVerificationsTotal.WithLabelValues("system", "ok").Inc()
		return domain.Credential{Kind: domain.CredentialSystem, Principal: &sys}, nil
	}

	p, err := cl.codec.Verify(c.Request().Context(), token)
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues("session", "rejected").Inc()
		return domain.Anonymous, err
	}

	metrics.TokenVerificationsTotal.WithLabelValues("session", "ok").Inc()
	return domain.Credential{Kind: domain.CredentialSession, Principal: &p}, nil
}

// Optional authenticates when possible but never blocks: classification
// errors are swallowed and the request proceeds anonymously.
func Optional(cl *Classifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cred, err := cl.Classify(c); err == nil {
				inject(c, cred)
			}
			return next(c)
		}
	}
}

// PermissiveByMethod lets read-only verbs through unauthenticated and
// requires a valid credential for everything else.
func PermissiveByMethod(cl *Classifier) echo.MiddlewareFunc {
	required := Required(cl)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := required(next)
		return func(c echo.Context) error {
			if isSafeMethod(c.Request().Method) {
				return next(c)
			}
			return guarded(c)
		}
	}
}

// Required accepts either the system secret or a valid session token.
func Required(cl *Classifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cred, err := cl.Classify(c)
			if err != nil {
				return rejection(err)
			}
			inject(c, cred)
			return next(c)
		}
	}
}

// AdminRequired accepts the system secret, or a session token whose
// principal holds the admin role.
func AdminRequired(cl *Classifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cred, err := cl.Classify(c)
			if err != nil {
				return rejection(err)
			}
			if !cred.Admin() {
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrInsufficientRole.Error())
			}
			inject(c, cred)
			return next(c)
		}
	}
}

// rejection maps classification failures onto the two-tier taxonomy:
// authentication not attempted (missing or malformed header) is 401,
// attempted and failed is 403. Internal detail stays out of the message.
func rejection(err error) *echo.HTTPError {
	switch err {
	case domain.ErrMissingAuthHeader:
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	case domain.ErrMalformedAuthHeader:
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format, expected: Bearer <token>")
	default:
		return echo.NewHTTPError(http.StatusForbidden, "invalid authorization token")
	}
}

func inject(c echo.Context, cred domain.Credential) {
	if cred.Principal != nil {
		c.Set(PrincipalKey, *cred.Principal)
	}
	c.Set(AuthKindKey, string(cred.Kind))
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
