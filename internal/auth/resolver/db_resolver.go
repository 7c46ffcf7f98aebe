package resolver

import (
	"context"
	"database/sql"
	"errors"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/db"

	"github.com/google/uuid"
)

// DBResolver resolves identities using the profile database. Users are
// created without a role; picking one is an account-management concern
// and the claims synchronizer treats its absence as valid.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (string, error) {

	if identity == nil {
		return "", errors.New("identity is nil")
	}

	// 1. Try identity lookup (provider + provider_user_id)
	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM public.identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`,
		identity.Provider,
		identity.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		return userID.String(), nil
	}

	if err != sql.ErrNoRows {
		return "", err
	}

	// 2. Try email-based linking (existing user, new provider)
	err = r.db.QueryRowContext(ctx, `
		SELECT id
		FROM public.users
		WHERE LOWER(email) = LOWER($1)
	`,
		identity.Email,
	).Scan(&userID)

	if err == nil {
		// Link new identity to existing user
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO public.identities (user_id, provider, provider_user_id)
			VALUES ($1, $2, $3)
		`,
			userID,
			identity.Provider,
			identity.ProviderUserID,
		)
		if err != nil {
			return "", err
		}

		return userID.String(), nil
	}

	if err != sql.ErrNoRows {
		return "", err
	}

	// 3. Create new user (no role yet)
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO public.users (email, email_verified)
		VALUES ($1, $2)
		RETURNING id
	`,
		identity.Email,
		identity.EmailVerified,
	).Scan(&userID)

	if err != nil {
		return "", err
	}

	// 4. Create identity mapping
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO public.identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`,
		userID,
		identity.Provider,
		identity.ProviderUserID,
	)

	if err != nil {
		return "", err
	}

	return userID.String(), nil
}
