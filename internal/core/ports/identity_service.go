package ports

import (
	"context"

	"github.com/casdu/portal-api/internal/core/domain"
)

// HRSyncInput identifies one background reconciliation job: refresh the
// principal's personal-data fields from the HR roster.
type HRSyncInput struct {
	CID         string
	PrincipalID int64
}

// SyncService performs a single reconciliation against the HR roster.
// It is invoked from the dispatcher workers, never from the request path.
type SyncService interface {
	Sync(ctx context.Context, in HRSyncInput) error
}

// SyncScheduler accepts reconciliation jobs for asynchronous execution.
type SyncScheduler interface {
	Schedule(in HRSyncInput)
}

// IdentityService is the ThaID reconciliation entry point.
type IdentityService interface {
	// ResolveCode turns an external verification code into a CID.
	ResolveCode(code string) (string, error)
	// Reconcile maps a CID to a local principal, creating one from the HR
	// roster on first contact, and returns it together with a freshly
	// minted session token.
	Reconcile(ctx context.Context, cid string) (string, domain.SafePrincipal, error)
}
