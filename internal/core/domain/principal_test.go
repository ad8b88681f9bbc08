package domain

import "testing"

func TestMaskCID(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"thirteen digits", "1234567890123", "1-XXXX-XXXXX-12-3"},
		{"simulated subject", "9999999999999", "9-XXXX-XXXXX-99-9"},
		{"local login name", "admin", "admin"},
		{"twelve digits", "123456789012", "123456789012"},
		{"fourteen digits", "12345678901234", "12345678901234"},
		{"thirteen chars non-numeric", "12345678901ab", "12345678901ab"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaskCID(tc.in); got != tc.want {
				t.Fatalf("MaskCID(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSafeStripsHashAndMasks(t *testing.T) {
	p := &Principal{
		ID:           7,
		Username:     "1101000093449",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FirstName:    "Somchai",
		Role:         RoleUser,
		Status:       StatusActive,
	}

	safe := p.Safe()
	if safe.Username != "1-XXXX-XXXXX-44-9" {
		t.Fatalf("unexpected masked username: %s", safe.Username)
	}
	if p.Username != "1101000093449" {
		t.Fatalf("stored username must not be masked, got %s", p.Username)
	}
	if safe.FirstName != "Somchai" || safe.ID != 7 {
		t.Fatalf("unexpected safe principal: %+v", safe)
	}
}

func TestActive(t *testing.T) {
	if !(&Principal{Status: StatusActive}).Active() {
		t.Fatalf("active principal reported inactive")
	}
	if (&Principal{Status: StatusInactive}).Active() {
		t.Fatalf("inactive principal reported active")
	}
}

func TestCredentialAdmin(t *testing.T) {
	sys := SystemPrincipal()
	if !(Credential{Kind: CredentialSystem, Principal: &sys}).Admin() {
		t.Fatalf("system credential must carry admin rights")
	}

	user := SafePrincipal{Role: RoleUser}
	if (Credential{Kind: CredentialSession, Principal: &user}).Admin() {
		t.Fatalf("user session must not carry admin rights")
	}

	admin := SafePrincipal{Role: RoleAdmin}
	if !(Credential{Kind: CredentialSession, Principal: &admin}).Admin() {
		t.Fatalf("admin session must carry admin rights")
	}

	if Anonymous.Admin() || Anonymous.Authenticated() {
		t.Fatalf("anonymous credential must be unprivileged")
	}
}
