// Package local implements idp.Provider on redis and HS256 JWTs. Claims
// maps and revocation marks live in a redis hash per identity; signing
// material is a shared secret from configuration.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/idp"
)

const (
	keyPrefix         = "idp:identity:"
	fieldClaims       = "claims"
	fieldRevokedAfter = "revoked_after"
	fieldCreatedAt    = "created_at"
)

type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

type Provider struct {
	client *redis.Client
	cfg    Config
}

func New(client *redis.Client, cfg Config) (*Provider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("local idp: signing secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("local idp: credential ttl must be positive")
	}
	return &Provider{client: client, cfg: cfg}, nil
}

func identityKey(id string) string {
	return keyPrefix + id
}

func (p *Provider) Register(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("local idp: empty identity id")
	}
	// HSetNX keeps the original created_at on repeat registration.
	err := p.client.HSetNX(
		ctx,
		identityKey(id),
		fieldCreatedAt,
		strconv.FormatInt(time.Now().Unix(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("local idp: register %s: %w", id, err)
	}
	return nil
}

func (p *Provider) GetClaims(ctx context.Context, id string) (idp.ClaimsMap, error) {
	vals, err := p.client.HGetAll(ctx, identityKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("local idp: get claims %s: %w", id, err)
	}
	if len(vals) == 0 {
		return nil, idp.ErrIdentityNotFound
	}

	raw, ok := vals[fieldClaims]
	if !ok || raw == "" {
		return idp.ClaimsMap{}, nil
	}

	var claims idp.ClaimsMap
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		return nil, fmt.Errorf("local idp: decode claims %s: %w", id, err)
	}
	return claims, nil
}

func (p *Provider) SetClaims(ctx context.Context, id string, claims idp.ClaimsMap) error {
	if claims == nil {
		claims = idp.ClaimsMap{}
	}
	data, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("local idp: encode claims %s: %w", id, err)
	}
	if err := p.client.HSet(ctx, identityKey(id), fieldClaims, string(data)).Err(); err != nil {
		return fmt.Errorf("local idp: set claims %s: %w", id, err)
	}
	return nil
}

// credentialClaims is the JWT payload: the mirrored role claim on top of
// the registered claim set.
type credentialClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (p *Provider) IssueCredential(ctx context.Context, id string) (string, time.Time, error) {
	claims, err := p.GetClaims(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(p.cfg.TTL)

	payload := credentialClaims{
		Role: claims.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.cfg.Issuer,
			Audience:  jwt.ClaimStrings{p.cfg.Audience},
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        strconv.FormatInt(now.UnixNano(), 10),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).
		SignedString([]byte(p.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("local idp: sign credential %s: %w", id, err)
	}

	// Provider-managed bookkeeping entry; the synchronizer must carry it
	// through untouched on role updates.
	claims["last_issued_at"] = now.Unix()
	if err := p.SetClaims(ctx, id, claims); err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

func (p *Provider) VerifyCredential(ctx context.Context, token string, forceFresh bool) (*idp.DecodedIdentity, error) {
	var payload credentialClaims
	parsed, err := jwt.ParseWithClaims(
		token,
		&payload,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(p.cfg.Secret), nil
		},
		jwt.WithIssuer(p.cfg.Issuer),
		jwt.WithAudience(p.cfg.Audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, idp.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, idp.ErrTokenExpired
	case err != nil, !parsed.Valid:
		return nil, idp.ErrTokenInvalid
	}

	if payload.Subject == "" {
		return nil, idp.ErrTokenInvalid
	}

	if forceFresh {
		revoked, err := p.revokedAfter(ctx, payload.Subject)
		if err != nil {
			return nil, err
		}
		if payload.IssuedAt != nil && !revoked.IsZero() &&
			payload.IssuedAt.Time.Before(revoked) {
			return nil, idp.ErrTokenRevoked
		}
	}

	decoded := &idp.DecodedIdentity{
		SubjectID: payload.Subject,
		Role:      payload.Role,
		RawClaims: map[string]any{
			"sub":  payload.Subject,
			"role": payload.Role,
			"iss":  payload.Issuer,
		},
	}
	if payload.ExpiresAt != nil {
		decoded.ExpiresAt = payload.ExpiresAt.Time
	}
	if payload.IssuedAt != nil {
		decoded.RawClaims["iat"] = payload.IssuedAt.Unix()
	}
	if payload.ExpiresAt != nil {
		decoded.RawClaims["exp"] = payload.ExpiresAt.Unix()
	}

	return decoded, nil
}

func (p *Provider) RevokeCredentials(ctx context.Context, id string) error {
	err := p.client.HSet(
		ctx,
		identityKey(id),
		fieldRevokedAfter,
		strconv.FormatInt(time.Now().Unix(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("local idp: revoke credentials %s: %w", id, err)
	}
	return nil
}

func (p *Provider) revokedAfter(ctx context.Context, id string) (time.Time, error) {
	raw, err := p.client.HGet(ctx, identityKey(id), fieldRevokedAfter).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("local idp: read revocation mark %s: %w", id, err)
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("local idp: parse revocation mark %s: %w", id, err)
	}
	return time.Unix(sec, 0), nil
}
