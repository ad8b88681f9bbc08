package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/casdu/portal-api/internal/core/domain"
)

func seedLocalAccount(t *testing.T, repo *stubPrincipalRepo, username, password, status string) *domain.Principal {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.insert(&domain.Principal{
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       status,
	})
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubPrincipalRepo()
	seedLocalAccount(t, repo, "carol", "s3cret", domain.StatusActive)
	svc := NewAuthService(repo, NewSessionTokenCodec(repo, signingKey, time.Hour))

	token, user, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubPrincipalRepo()
	seedLocalAccount(t, repo, "dave", "goodpass", domain.StatusActive)
	svc := NewAuthService(repo, NewSessionTokenCodec(repo, signingKey, time.Hour))

	if _, _, err := svc.Login(context.Background(), "dave", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	repo := newStubPrincipalRepo()
	svc := NewAuthService(repo, NewSessionTokenCodec(repo, signingKey, time.Hour))

	// Unknown username must be indistinguishable from a bad password.
	if _, _, err := svc.Login(context.Background(), "ghost", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := newStubPrincipalRepo()
	seedLocalAccount(t, repo, "erin", "pass1234", domain.StatusInactive)
	svc := NewAuthService(repo, NewSessionTokenCodec(repo, signingKey, time.Hour))

	if _, _, err := svc.Login(context.Background(), "erin", "pass1234"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("inactive account must look like bad credentials, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := newStubPrincipalRepo()
	p := seedLocalAccount(t, repo, "frank", "oldpass", domain.StatusActive)
	svc := NewAuthService(repo, NewSessionTokenCodec(repo, signingKey, time.Hour))

	if err := svc.ChangePassword(context.Background(), p.ID, "wrong", "newpass99"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong current password, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), p.ID, "oldpass", "newpass99"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "frank", "newpass99"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "frank", "oldpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
}
