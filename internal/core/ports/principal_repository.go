package ports

import (
	"context"

	"github.com/casdu/portal-api/internal/core/domain"
)

// PrincipalPatch is a partial update. Nil fields are left untouched.
// When Role is set, the repository derives and writes isadmin in the same
// operation; IsAdmin alone is honored only when Role is nil (legacy escape
// hatch for callers that still write the flag directly).
type PrincipalPatch struct {
	DisplayName  *string
	FirstName    *string
	LastName     *string
	Email        *string
	JobTitle     *string
	Role         *string
	Status       *string
	IsAdmin      *bool
	PasswordHash *string
}

// Empty reports whether the patch would change nothing.
func (p PrincipalPatch) Empty() bool {
	return p.DisplayName == nil && p.FirstName == nil && p.LastName == nil &&
		p.Email == nil && p.JobTitle == nil && p.Role == nil &&
		p.Status == nil && p.IsAdmin == nil && p.PasswordHash == nil
}

// PrincipalRepository is the single source of truth for local identities.
type PrincipalRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Principal, error)
	FindByID(ctx context.Context, id int64) (*domain.Principal, error)
	// Create inserts a new principal. A username collision returns
	// domain.ErrUsernameConflict; callers racing on first login must treat
	// that as "someone else created it" and re-read.
	Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error)
	Update(ctx context.Context, id int64, patch PrincipalPatch) (*domain.Principal, error)
	List(ctx context.Context) ([]*domain.Principal, error)
	Delete(ctx context.Context, id int64) error
}
