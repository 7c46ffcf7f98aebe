package auth

import "time"

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider       string // e.g. "google", "keycloak"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string // verified email returned by provider
	EmailVerified  bool   // whether provider asserts email ownership
}

// Caller is the trusted identity extracted from a fully verified bearer
// credential. Role is the raw claim value; compare it through the role
// package only.
type Caller struct {
	ID        string
	Role      string
	ExpiresAt time.Time
	RawClaims map[string]any
}
