package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/casdu/portal-api/internal/core/domain"
	"github.com/casdu/portal-api/internal/core/ports"
)

// SessionTokenCodec issues and verifies HS256 session tokens carrying a
// minimal identity claim. Verification always re-reads the live principal,
// so suspending an account invalidates its outstanding tokens immediately
// at the cost of one datastore read per authenticated request.
type SessionTokenCodec struct {
	repo       ports.PrincipalRepository
	signingKey string
	tokenTTL   time.Duration
}

func NewSessionTokenCodec(repo ports.PrincipalRepository, signingKey string, tokenTTL time.Duration) *SessionTokenCodec {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &SessionTokenCodec{repo: repo, signingKey: signingKey, tokenTTL: tokenTTL}
}

// Issue signs a token for p with the configured expiry.
func (c *SessionTokenCodec) Issue(p domain.SafePrincipal) (string, error) {
	if c.signingKey == "" {
		return "", domain.ErrSigningKeyMissing
	}

	claims := jwt.MapClaims{
		"user_id":  p.ID,
		"username": p.Username,
		"role":     p.Role,
		"isadmin":  p.IsAdmin,
		"exp":      time.Now().Add(c.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(c.signingKey))
}

// Verify checks signature and expiry, then confirms the principal still
// exists and is active. Datastore failures fail closed.
func (c *SessionTokenCodec) Verify(ctx context.Context, token string) (domain.SafePrincipal, error) {
	if c.signingKey == "" {
		return domain.SafePrincipal{}, domain.ErrSigningKeyMissing
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(c.signingKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.SafePrincipal{}, domain.ErrTokenExpired
		}
		return domain.SafePrincipal{}, domain.ErrInvalidToken
	}
	if !tkn.Valid {
		return domain.SafePrincipal{}, domain.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return domain.SafePrincipal{}, domain.ErrInvalidToken
	}

	p, err := c.repo.FindByID(ctx, int64(userID))
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return domain.SafePrincipal{}, domain.ErrStalePrincipal
		}
		return domain.SafePrincipal{}, fmt.Errorf("verify token: %w", err)
	}
	if !p.Active() {
		return domain.SafePrincipal{}, domain.ErrStalePrincipal
	}

	return p.Safe(), nil
}
