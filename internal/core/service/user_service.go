package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/casdu/portal-api/internal/core/domain"
	"github.com/casdu/portal-api/internal/core/ports"
)

// UserService is the administrative surface over the principal store.
// Role and status changes come through here; the repository's update path
// keeps isadmin in lockstep with role.
type UserService struct {
	repo ports.PrincipalRepository
}

func NewUserService(repo ports.PrincipalRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) List(ctx context.Context) ([]domain.SafePrincipal, error) {
	principals, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.SafePrincipal, 0, len(principals))
	for _, p := range principals {
		out = append(out, p.Safe())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.SafePrincipal, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.SafePrincipal{}, err
	}
	return p.Safe(), nil
}

// Update applies an administrative patch. A plaintext password in the patch
// is hashed here so the repository only ever sees hashes.
func (s *UserService) Update(ctx context.Context, id int64, patch ports.PrincipalPatch) (domain.SafePrincipal, error) {
	if patch.PasswordHash != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.PasswordHash), bcrypt.DefaultCost)
		if err != nil {
			return domain.SafePrincipal{}, fmt.Errorf("update user: %w", err)
		}
		hashStr := string(hash)
		patch.PasswordHash = &hashStr
	}

	p, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.SafePrincipal{}, err
	}
	return p.Safe(), nil
}

// UpdateProfile is the self-service variant: only personal-data fields are
// forwarded, never role, status or the admin flag.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, patch ports.PrincipalPatch) (domain.SafePrincipal, error) {
	limited := ports.PrincipalPatch{
		DisplayName: patch.DisplayName,
		FirstName:   patch.FirstName,
		LastName:    patch.LastName,
		Email:       patch.Email,
		JobTitle:    patch.JobTitle,
	}
	p, err := s.repo.Update(ctx, id, limited)
	if err != nil {
		return domain.SafePrincipal{}, err
	}
	return p.Safe(), nil
}

// Delete removes a principal unconditionally.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
