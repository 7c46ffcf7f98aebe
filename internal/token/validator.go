package token

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/idp"
)

// MinCredentialLength is the shortest string the structural check will
// consider. Real signed tokens are far longer; anything under this is
// noise.
const MinCredentialLength = 20

// Structural is the cheap validation tier: shape only, no cryptography.
// It exists for lightweight pre-filtering such as redirect-if-absent on
// web pages. It never asserts identity and MUST NOT gate access to
// protected resources.
func Structural(raw string) bool {
	if raw == "" || len(raw) < MinCredentialLength {
		return false
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}

	// When the payload segment decodes, its unverified expiry must at
	// least be self-consistent. Undecodable payloads still pass: this
	// tier checks shape, not content.
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return true
	}
	var body struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return true
	}
	if body.Exp > 0 && time.Unix(body.Exp, 0).Before(time.Now()) {
		return false
	}

	return true
}

// Validator is the trust tier: full cryptographic verification through
// the identity provider. Every protected resource boundary authenticates
// through Verify; the structural tier never substitutes for it.
type Validator struct {
	provider idp.Provider
}

func NewValidator(provider idp.Provider) *Validator {
	return &Validator{provider: provider}
}

// Verify authenticates a raw bearer credential and returns the trusted
// caller identity. forceFresh additionally rejects credentials issued
// before the subject's last revocation. Verify fails closed: every
// provider failure yields an error and no identity, never a default.
func (v *Validator) Verify(ctx context.Context, raw string, forceFresh bool) (*auth.Caller, error) {
	if raw == "" {
		return nil, auth.ErrUnauthenticated
	}

	decoded, err := v.provider.VerifyCredential(ctx, raw, forceFresh)
	switch {
	case errors.Is(err, idp.ErrTokenMalformed):
		return nil, auth.ErrMalformed
	case errors.Is(err, idp.ErrTokenExpired):
		return nil, auth.ErrExpired
	case errors.Is(err, idp.ErrTokenInvalid),
		errors.Is(err, idp.ErrTokenRevoked):
		return nil, auth.ErrUnauthenticated
	case err != nil:
		return nil, fmt.Errorf("%w: verify credential: %v", auth.ErrUpstream, err)
	}

	if decoded.SubjectID == "" {
		return nil, auth.ErrUnauthenticated
	}

	return &auth.Caller{
		ID:        decoded.SubjectID,
		Role:      decoded.Role,
		ExpiresAt: decoded.ExpiresAt,
		RawClaims: decoded.RawClaims,
	}, nil
}
