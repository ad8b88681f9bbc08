package domain

// CredentialKind tags the outcome of classifying an Authorization header.
type CredentialKind string

const (
	// CredentialAnonymous means no usable credential was presented.
	CredentialAnonymous CredentialKind = "anonymous"
	// CredentialSystem means the shared system secret matched.
	CredentialSystem CredentialKind = "system"
	// CredentialSession means a signed session token verified against a
	// live, active principal.
	CredentialSession CredentialKind = "session"
)

// Credential is the classified form of an inbound Authorization header.
// Policy evaluation is a pure function over this value plus the route's
// declared requirement, so the parsing logic lives in exactly one place.
type Credential struct {
	Kind      CredentialKind
	Principal *SafePrincipal // set for System and Session
}

// Anonymous is the zero credential.
var Anonymous = Credential{Kind: CredentialAnonymous}

// SystemPrincipal is the synthetic identity granted by the shared secret.
// It is never persisted; id 0 is reserved for it.
func SystemPrincipal() SafePrincipal {
	return SafePrincipal{
		ID:          0,
		Username:    "system",
		DisplayName: "System Administrator",
		FirstName:   "System",
		LastName:    "Admin",
		JobTitle:    "System",
		Role:        RoleAdmin,
		Status:      StatusActive,
		IsAdmin:     true,
	}
}

// Admin reports whether the credential carries admin rights.
func (c Credential) Admin() bool {
	if c.Kind == CredentialSystem {
		return true
	}
	return c.Kind == CredentialSession && c.Principal != nil && c.Principal.Role == RoleAdmin
}

// Authenticated reports whether any identity was established.
func (c Credential) Authenticated() bool {
	return c.Kind != CredentialAnonymous
}
