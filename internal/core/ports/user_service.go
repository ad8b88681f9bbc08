package ports

import (
	"context"

	"github.com/casdu/portal-api/internal/core/domain"
)

// UserService is the administrative surface over the principal store.
type UserService interface {
	List(ctx context.Context) ([]domain.SafePrincipal, error)
	Get(ctx context.Context, id int64) (domain.SafePrincipal, error)
	Update(ctx context.Context, id int64, patch PrincipalPatch) (domain.SafePrincipal, error)
	UpdateProfile(ctx context.Context, id int64, patch PrincipalPatch) (domain.SafePrincipal, error)
	Delete(ctx context.Context, id int64) error
}
