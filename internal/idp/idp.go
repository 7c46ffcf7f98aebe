package idp

import (
	"context"
	"errors"
	"time"
)

// ClaimsMap is the small attribute map a provider keeps per identity and
// embeds into issued credentials. The synchronizer only ever touches the
// "role" entry; everything else belongs to the provider or other flows.
type ClaimsMap map[string]any

// RoleClaim is the claims-map key holding the mirrored profile role.
const RoleClaim = "role"

// Role returns the role entry as a string, or "" when absent.
func (m ClaimsMap) Role() string {
	if m == nil {
		return ""
	}
	s, _ := m[RoleClaim].(string)
	return s
}

// DecodedIdentity is the trusted result of full credential verification.
type DecodedIdentity struct {
	SubjectID string
	Role      string
	ExpiresAt time.Time
	RawClaims map[string]any
}

var (
	// ErrIdentityNotFound: no identity registered under the given id.
	ErrIdentityNotFound = errors.New("idp: identity not found")

	// ErrTokenMalformed: the credential is not a parseable token.
	ErrTokenMalformed = errors.New("idp: token malformed")

	// ErrTokenExpired: the credential is past its expiry.
	ErrTokenExpired = errors.New("idp: token expired")

	// ErrTokenInvalid: signature or registered-claim validation failed.
	ErrTokenInvalid = errors.New("idp: token invalid")

	// ErrTokenRevoked: the credential was issued before the identity's
	// credentials were last revoked. Only surfaced on freshness checks.
	ErrTokenRevoked = errors.New("idp: token revoked")
)

// Provider is the identity-provider surface this service consumes: a
// per-identity claims map plus bearer-credential issuance, verification
// and revocation. Implementations must be safe for concurrent use.
type Provider interface {
	// Register makes id a known identity. Registering an existing
	// identity is a no-op.
	Register(ctx context.Context, id string) error

	// GetClaims returns the claims map for id, or ErrIdentityNotFound.
	// A registered identity with no claims yet yields an empty map.
	GetClaims(ctx context.Context, id string) (ClaimsMap, error)

	// SetClaims replaces the claims map for id. The map is created on
	// first write. Callers that must preserve existing entries read,
	// merge and then write.
	SetClaims(ctx context.Context, id string, claims ClaimsMap) error

	// IssueCredential signs a bearer credential for id, mirroring the
	// current role claim into it. Returns the token and its expiry.
	IssueCredential(ctx context.Context, id string) (string, time.Time, error)

	// VerifyCredential verifies signature and expiry. With forceFresh it
	// additionally rejects credentials issued before the identity's last
	// revocation (ErrTokenRevoked).
	VerifyCredential(ctx context.Context, token string, forceFresh bool) (*DecodedIdentity, error)

	// RevokeCredentials invalidates every credential issued to id so far,
	// as observed by freshness-forcing verification.
	RevokeCredentials(ctx context.Context, id string) error
}
