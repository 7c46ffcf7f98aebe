package local

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/idp"
)

const testSecret = "local-idp-test-secret-at-least-32-chars!"

func newTestProvider(t *testing.T) (*Provider, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	p, err := New(client, Config{
		Secret:   testSecret,
		Issuer:   "pivotai-auth",
		Audience: "pivotai",
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	return p, client
}

func TestGetClaims_UnknownIdentity(t *testing.T) {
	p, _ := newTestProvider(t)

	_, err := p.GetClaims(context.Background(), "nobody")
	assert.ErrorIs(t, err, idp.ErrIdentityNotFound)
}

func TestRegisterAndClaimsRoundTrip(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Register(ctx, "u1"))

	claims, err := p.GetClaims(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, claims)

	require.NoError(t, p.SetClaims(ctx, "u1", idp.ClaimsMap{
		"role": "recruiter",
		"plan": "pro",
	}))

	claims, err = p.GetClaims(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "recruiter", claims.Role())
	assert.Equal(t, "pro", claims["plan"])
}

func TestIssueAndVerifyCredential(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Register(ctx, "u1"))
	require.NoError(t, p.SetClaims(ctx, "u1", idp.ClaimsMap{"role": "candidate"}))

	token, expiresAt, err := p.IssueCredential(ctx, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	decoded, err := p.VerifyCredential(ctx, token, false)
	require.NoError(t, err)
	assert.Equal(t, "u1", decoded.SubjectID)
	assert.Equal(t, "candidate", decoded.Role)
	assert.WithinDuration(t, expiresAt, decoded.ExpiresAt, time.Second)

	// Issuance records provider bookkeeping in the claims map.
	claims, err := p.GetClaims(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, claims, "last_issued_at")
}

func TestVerifyCredential_Failures(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	t.Run("malformed", func(t *testing.T) {
		_, err := p.VerifyCredential(ctx, "not-a-token", false)
		assert.ErrorIs(t, err, idp.ErrTokenMalformed)
	})

	t.Run("wrong signature", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    "pivotai-auth",
			Audience:  jwt.ClaimStrings{"pivotai"},
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte("a-completely-different-signing-secret!!"))
		require.NoError(t, err)

		_, err = p.VerifyCredential(ctx, forged, false)
		assert.ErrorIs(t, err, idp.ErrTokenInvalid)
	})

	t.Run("expired with valid signature", func(t *testing.T) {
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    "pivotai-auth",
			Audience:  jwt.ClaimStrings{"pivotai"},
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = p.VerifyCredential(ctx, expired, false)
		assert.ErrorIs(t, err, idp.ErrTokenExpired)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    "pivotai-auth",
			Audience:  jwt.ClaimStrings{"someone-else"},
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = p.VerifyCredential(ctx, other, false)
		assert.ErrorIs(t, err, idp.ErrTokenInvalid)
	})
}

func TestVerifyCredential_Revocation(t *testing.T) {
	p, client := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Register(ctx, "u1"))
	token, _, err := p.IssueCredential(ctx, "u1")
	require.NoError(t, err)

	// Mark credentials revoked after the token's issuance.
	revokedAt := time.Now().Add(5 * time.Second).Unix()
	require.NoError(t, client.HSet(
		ctx,
		identityKey("u1"),
		fieldRevokedAfter,
		strconv.FormatInt(revokedAt, 10),
	).Err())

	// Without the freshness check the token still verifies.
	decoded, err := p.VerifyCredential(ctx, token, false)
	require.NoError(t, err)
	assert.Equal(t, "u1", decoded.SubjectID)

	// Forcing freshness rejects it.
	_, err = p.VerifyCredential(ctx, token, true)
	assert.ErrorIs(t, err, idp.ErrTokenRevoked)
}

func TestRevokeCredentials_WritesMark(t *testing.T) {
	p, client := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Register(ctx, "u1"))
	require.NoError(t, p.RevokeCredentials(ctx, "u1"))

	raw, err := client.HGet(ctx, identityKey("u1"), fieldRevokedAfter).Result()
	require.NoError(t, err)
	sec, err := strconv.ParseInt(raw, 10, 64)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), time.Unix(sec, 0), 5*time.Second)
}
