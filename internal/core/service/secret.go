package service

import (
	"crypto/subtle"

	"github.com/casdu/portal-api/internal/core/domain"
)

// SystemSecretVerifier grants the synthetic system principal to callers
// presenting the shared deployment secret. There is no expiry and no
// revocation; the secret is valid for the configuration's lifetime.
type SystemSecretVerifier struct {
	secret string
}

func NewSystemSecretVerifier(secret string) *SystemSecretVerifier {
	return &SystemSecretVerifier{secret: secret}
}

// Classify compares token to the configured secret in constant time.
// An empty configured secret matches nothing: a deployment without the
// secret set must not accidentally accept empty bearer tokens.
func (v *SystemSecretVerifier) Classify(token string) (domain.SafePrincipal, bool) {
	if v.secret == "" || len(token) != len(v.secret) {
		return domain.SafePrincipal{}, false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(v.secret)) != 1 {
		return domain.SafePrincipal{}, false
	}
	return domain.SystemPrincipal(), true
}
