package domain

import "errors"

// Authentication and reconciliation failures. The API layer collapses these
// into two HTTP-visible classes (401 when authentication was never
// attempted, 403 when it was attempted and failed) plus a distinct
// admin-privilege class; the full taxonomy exists for logs and tests.
var (
	ErrMissingAuthHeader   = errors.New("missing authorization header")
	ErrMalformedAuthHeader = errors.New("invalid authorization header format")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token expired")
	ErrStalePrincipal      = errors.New("account no longer active")
	ErrInsufficientRole    = errors.New("admin privileges required")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("account is inactive or suspended")

	ErrPrincipalNotFound = errors.New("principal not found")
	ErrUsernameConflict  = errors.New("username already exists")

	ErrEmployeeNotFound = errors.New("cid not found in employee roster")
	ErrEmployeeInactive = errors.New("employee is not active")

	ErrSigningKeyMissing = errors.New("token signing key is not configured")
)
