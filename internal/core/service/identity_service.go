package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/casdu/portal-api/internal/core/domain"
	"github.com/casdu/portal-api/internal/core/ports"
)

// Departure policies applied when a known CID disappears from the HR roster.
// Whether departed employees should lose access automatically is a business
// decision, so it is configurable rather than hardcoded.
const (
	DepartureWarn       = "warn"
	DepartureDeactivate = "deactivate"
)

const defaultSyncTimeout = 10 * time.Second

// SyncThrottle bounds how often a principal is reconciled against the HR
// roster (Redis-backed in production).
type SyncThrottle interface {
	RecentlySynced(ctx context.Context, cid string) (bool, error)
	MarkSynced(ctx context.Context, cid string) error
}

// IdentityOptions tunes the reconciler.
type IdentityOptions struct {
	// TestPrefix, when non-empty, lets sandbox verification codes carry a
	// literal CID behind a recognizable prefix.
	TestPrefix string
	// SandboxCID is the fixed fallback subject for unrecognized codes.
	// Leave empty in production: resolution then fails instead.
	SandboxCID string
	// SyncTimeout bounds each background directory call.
	SyncTimeout time.Duration
	// DeparturePolicy is DepartureWarn or DepartureDeactivate.
	DeparturePolicy string
}

// IdentityService implements the ThaID upsert protocol: first contact is
// gated by the HR roster, later logins trust the local principal and
// refresh it lazily via fire-and-forget sync.
type IdentityService struct {
	repo      ports.PrincipalRepository
	directory ports.EmployeeDirectory
	codec     ports.TokenCodec
	scheduler ports.SyncScheduler
	throttle  SyncThrottle
	opts      IdentityOptions
	log       zerolog.Logger
}

func NewIdentityService(
	repo ports.PrincipalRepository,
	directory ports.EmployeeDirectory,
	codec ports.TokenCodec,
	scheduler ports.SyncScheduler,
	throttle SyncThrottle,
	opts IdentityOptions,
	log zerolog.Logger,
) *IdentityService {
	if opts.SyncTimeout <= 0 {
		opts.SyncTimeout = defaultSyncTimeout
	}
	if opts.DeparturePolicy == "" {
		opts.DeparturePolicy = DepartureWarn
	}
	return &IdentityService{
		repo:      repo,
		directory: directory,
		codec:     codec,
		scheduler: scheduler,
		throttle:  throttle,
		opts:      opts,
		log:       log,
	}
}

// ResolveCode turns an external verification code into a CID: a literal
// 13-digit code is used as-is, a recognized test prefix is stripped, and
// anything else falls back to the configured sandbox subject when one is
// set.
func (s *IdentityService) ResolveCode(code string) (string, error) {
	if domain.IsCID(code) {
		return code, nil
	}
	if s.opts.TestPrefix != "" && strings.HasPrefix(code, s.opts.TestPrefix) {
		rest := strings.TrimPrefix(code, s.opts.TestPrefix)
		if domain.IsCID(rest) {
			return rest, nil
		}
	}
	if s.opts.SandboxCID != "" {
		s.log.Warn().Str("code", code).Msg("unrecognized verification code, using sandbox subject")
		return s.opts.SandboxCID, nil
	}
	return "", domain.ErrEmployeeNotFound
}

// Reconcile maps a CID to a local principal and mints a session token.
// Existing active principals are returned immediately; the roster refresh
// runs in the background and is never awaited.
func (s *IdentityService) Reconcile(ctx context.Context, cid string) (string, domain.SafePrincipal, error) {
	p, err := s.repo.FindByUsername(ctx, cid)
	switch {
	case err == nil:
		return s.existing(p)
	case errors.Is(err, domain.ErrPrincipalNotFound):
		// first contact, fall through to provisioning
	default:
		return "", domain.SafePrincipal{}, fmt.Errorf("reconcile: %w", err)
	}

	created, err := s.provision(ctx, cid)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameConflict) {
			// A concurrent first login won the create; the unique index on
			// username is the arbiter. Re-read and continue as existing.
			p, rerr := s.repo.FindByUsername(ctx, cid)
			if rerr != nil {
				return "", domain.SafePrincipal{}, fmt.Errorf("reconcile: conflict recovery: %w", rerr)
			}
			return s.existing(p)
		}
		return "", domain.SafePrincipal{}, err
	}

	return s.issue(created.Safe())
}

// existing handles a principal already on record: inactive accounts are
// rejected outright, active ones get a token now and a roster sync later.
func (s *IdentityService) existing(p *domain.Principal) (string, domain.SafePrincipal, error) {
	if !p.Active() {
		return "", domain.SafePrincipal{}, domain.ErrAccountInactive
	}
	s.scheduler.Schedule(ports.HRSyncInput{CID: p.Username, PrincipalID: p.ID})
	return s.issue(p.Safe())
}

// provision creates a principal for a CID never seen before. The HR roster
// is the sole gate that lets an unknown person in.
func (s *IdentityService) provision(ctx context.Context, cid string) (*domain.Principal, error) {
	emp, err := s.directory.FindByCID(ctx, cid)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("reconcile: directory lookup: %w", err)
	}
	if !emp.IsActive {
		return nil, domain.ErrEmployeeInactive
	}

	hash, err := placeholderPasswordHash()
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	now := time.Now().UTC()
	p := &domain.Principal{
		Username:     cid,
		PasswordHash: hash,
		DisplayName:  emp.DisplayName(),
		FirstName:    emp.FirstName,
		LastName:     emp.LastName,
		Email:        emp.Email,
		JobTitle:     emp.Position,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("cid", domain.MaskCID(cid)).Int64("principal_id", created.ID).Msg("principal provisioned from hr roster")
	return created, nil
}

func (s *IdentityService) issue(safe domain.SafePrincipal) (string, domain.SafePrincipal, error) {
	token, err := s.codec.Issue(safe)
	if err != nil {
		return "", domain.SafePrincipal{}, fmt.Errorf("reconcile: %w", err)
	}
	return token, safe, nil
}

// Sync performs one background reconciliation. It runs on dispatcher
// workers with its own timeout; errors are for the worker's log only and
// never reach the request that scheduled the job. Role, status and isadmin
// are never written here — only personal-data fields follow the roster.
func (s *IdentityService) Sync(ctx context.Context, in ports.HRSyncInput) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SyncTimeout)
	defer cancel()

	if s.throttle != nil {
		recent, err := s.throttle.RecentlySynced(ctx, in.CID)
		if err != nil {
			s.log.Warn().Err(err).Str("cid", domain.MaskCID(in.CID)).Msg("sync throttle check failed, syncing anyway")
		} else if recent {
			s.log.Debug().Str("cid", domain.MaskCID(in.CID)).Msg("hr sync skipped, done recently")
			return nil
		}
	}

	emp, err := s.directory.FindByCID(ctx, in.CID)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return s.handleDeparture(ctx, in)
		}
		return fmt.Errorf("hr sync: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.MarkSynced(ctx, in.CID); err != nil {
			s.log.Warn().Err(err).Str("cid", domain.MaskCID(in.CID)).Msg("failed to mark sync")
		}
	}

	display := emp.DisplayName()
	patch := ports.PrincipalPatch{
		DisplayName: &display,
		FirstName:   &emp.FirstName,
		LastName:    &emp.LastName,
		Email:       &emp.Email,
		JobTitle:    &emp.Position,
	}
	if _, err := s.repo.Update(ctx, in.PrincipalID, patch); err != nil {
		return fmt.Errorf("hr sync: update principal: %w", err)
	}

	s.log.Info().Str("cid", domain.MaskCID(in.CID)).Int64("principal_id", in.PrincipalID).Msg("principal refreshed from hr roster")
	return nil
}

// handleDeparture reacts to a CID that vanished from the roster.
func (s *IdentityService) handleDeparture(ctx context.Context, in ports.HRSyncInput) error {
	if s.opts.DeparturePolicy == DepartureDeactivate {
		status := domain.StatusInactive
		if _, err := s.repo.Update(ctx, in.PrincipalID, ports.PrincipalPatch{Status: &status}); err != nil {
			return fmt.Errorf("hr sync: deactivate departed principal: %w", err)
		}
		s.log.Warn().Str("cid", domain.MaskCID(in.CID)).Int64("principal_id", in.PrincipalID).Msg("cid missing from hr roster, principal deactivated")
		return nil
	}
	s.log.Warn().Str("cid", domain.MaskCID(in.CID)).Int64("principal_id", in.PrincipalID).Msg("cid missing from hr roster, possible departure")
	return nil
}

// placeholderPasswordHash produces a bcrypt hash of random bytes for
// identity-verified accounts. The schema requires a hash, but nothing ever
// authenticates against it.
func placeholderPasswordHash() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate placeholder password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash placeholder password: %w", err)
	}
	return string(hash), nil
}
