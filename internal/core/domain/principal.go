package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Principal is the portal-local representation of an identity, including
// the password hash. It never leaves the core layer; handlers see only
// SafePrincipal.
type Principal struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"displayname,omitempty"`
	FirstName    string    `json:"firstname,omitempty"`
	LastName     string    `json:"lastname,omitempty"`
	Email        string    `json:"email,omitempty"`
	JobTitle     string    `json:"jobtitle,omitempty"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	IsAdmin      bool      `json:"isadmin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SafePrincipal is the exported view of a Principal: no password hash, and
// a 13-digit username (a national identity number) is masked.
type SafePrincipal struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayname,omitempty"`
	FirstName   string    `json:"firstname,omitempty"`
	LastName    string    `json:"lastname,omitempty"`
	Email       string    `json:"email,omitempty"`
	JobTitle    string    `json:"jobtitle,omitempty"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	IsAdmin     bool      `json:"isadmin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Safe converts a Principal to its exported view, applying CID masking.
// The stored username is never modified; masking happens only here, at the
// boundary.
func (p *Principal) Safe() SafePrincipal {
	return SafePrincipal{
		ID:          p.ID,
		Username:    MaskCID(p.Username),
		DisplayName: p.DisplayName,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		JobTitle:    p.JobTitle,
		Role:        p.Role,
		Status:      p.Status,
		IsAdmin:     p.IsAdmin,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Active reports whether the principal may hold a session.
func (p *Principal) Active() bool {
	return p.Status == StatusActive
}

// IsCID reports whether s is a 13-digit national identity number.
func IsCID(s string) bool {
	if len(s) != 13 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MaskCID renders a 13-digit CID as "1-XXXX-XXXXX-12-3": first digit and
// last three digits visible, the middle nine masked. Any other value is
// returned unchanged.
func MaskCID(username string) string {
	if !IsCID(username) {
		return username
	}
	last3 := username[10:]
	return username[:1] + "-XXXX-XXXXX-" + last3[:2] + "-" + last3[2:]
}
