package ports

import (
	"context"

	"github.com/casdu/portal-api/internal/core/domain"
)

// TokenCodec signs and verifies session tokens.
type TokenCodec interface {
	Issue(p domain.SafePrincipal) (string, error)
	// Verify checks signature and expiry, then re-reads the live principal:
	// a valid token for an inactive account fails with ErrStalePrincipal.
	Verify(ctx context.Context, token string) (domain.SafePrincipal, error)
}

// SecretVerifier classifies the shared system secret.
type SecretVerifier interface {
	// Classify returns the synthetic system principal when token matches
	// the configured secret. It never returns an error: a mismatch is
	// simply not a system credential.
	Classify(token string) (domain.SafePrincipal, bool)
}

// AuthService handles password-credential authentication.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, domain.SafePrincipal, error)
	ChangePassword(ctx context.Context, principalID int64, current, next string) error
}
