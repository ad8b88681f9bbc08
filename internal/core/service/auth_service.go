package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/casdu/portal-api/internal/core/domain"
	"github.com/casdu/portal-api/internal/core/ports"
)

// AuthService implements password-credential login for local accounts.
// Identity-verified (ThaID) accounts never authenticate here; their stored
// hash is a random placeholder.
type AuthService struct {
	repo  ports.PrincipalRepository
	codec ports.TokenCodec
}

func NewAuthService(repo ports.PrincipalRepository, codec ports.TokenCodec) *AuthService {
	return &AuthService{repo: repo, codec: codec}
}

// Login verifies username/password and mints a session token. Unknown
// username, wrong password, and inactive account all collapse into
// ErrInvalidCredentials so the response does not reveal which check failed.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.SafePrincipal, error) {
	if username == "" || password == "" {
		return "", domain.SafePrincipal{}, domain.ErrInvalidCredentials
	}

	p, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return "", domain.SafePrincipal{}, domain.ErrInvalidCredentials
		}
		return "", domain.SafePrincipal{}, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return "", domain.SafePrincipal{}, domain.ErrInvalidCredentials
	}
	if !p.Active() {
		return "", domain.SafePrincipal{}, domain.ErrInvalidCredentials
	}

	safe := p.Safe()
	token, err := s.codec.Issue(safe)
	if err != nil {
		return "", domain.SafePrincipal{}, fmt.Errorf("login: %w", err)
	}
	return token, safe, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, principalID int64, current, next string) error {
	if current == "" || next == "" {
		return domain.ErrInvalidCredentials
	}

	p, err := s.repo.FindByID(ctx, principalID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	hashStr := string(hash)
	if _, err := s.repo.Update(ctx, principalID, ports.PrincipalPatch{PasswordHash: &hashStr}); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}
