package ports

import (
	"context"

	"github.com/casdu/portal-api/internal/core/domain"
)

// EmployeeDirectory is a read-only view of the authoritative HR roster.
type EmployeeDirectory interface {
	// FindByCID returns domain.ErrEmployeeNotFound when the CID is absent.
	FindByCID(ctx context.Context, cid string) (*domain.EmployeeRecord, error)
}
