package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/db"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/role"
)

const defaultPageSize = 100

// PostgresStore backs ProfileStore and PlanStore with the users and
// career_plans tables.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `
	id, email, email_verified, display_name,
	COALESCE(role, ''), status, created_at, updated_at
`

func scanUser(row interface{ Scan(...any) error }) (*UserRecord, error) {
	var u UserRecord
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.EmailVerified,
		&u.DisplayName,
		&u.Role,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) ListAll(ctx context.Context, pageSize int) ([]UserRecord, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var (
		out   []UserRecord
		after string
	)

	// Keyset pagination on id keeps every round trip bounded even when
	// the table grows past one page.
	for {
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+userColumns+`
			FROM users
			WHERE id::text > $1
			ORDER BY id::text
			LIMIT $2
		`, after, pageSize)
		if err != nil {
			return nil, fmt.Errorf("store: list users: %w", err)
		}

		n := 0
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("store: scan user: %w", err)
			}
			out = append(out, *u)
			after = u.ID
			n++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: list users: %w", err)
		}
		rows.Close()

		if n < pageSize {
			return out, nil
		}
	}
}

// queryableFields whitelists the fields Query accepts. Role queries go
// through ListCandidates so spelling normalization is not bypassed.
var queryableFields = map[string]string{
	"email":  "LOWER(email) = LOWER($1)",
	"status": "status = $1",
}

func (s *PostgresStore) Query(ctx context.Context, field, value string, pageSize int) ([]UserRecord, error) {
	cond, ok := queryableFields[field]
	if !ok {
		return nil, fmt.Errorf("store: field %q: %w", field, ErrNotQueryable)
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+cond+`
		ORDER BY created_at
		LIMIT $2
	`, value, pageSize)
	if err != nil {
		return nil, fmt.Errorf("store: query users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (s *PostgresStore) ListCandidates(ctx context.Context, pageSize int) ([]UserRecord, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role IS NOT NULL
		  AND LOWER(role) = ANY($1)
		ORDER BY created_at
		LIMIT $2
	`, pq.Array(role.CandidateSpellings()), pageSize)
	if err != nil {
		return nil, fmt.Errorf("store: list candidates: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]UserRecord, error) {
	var out []UserRecord
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan user: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, userID string) (*CareerPlan, error) {
	var p CareerPlan
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, content, updated_at
		FROM career_plans
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Content, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get career plan: %w", err)
	}
	return &p, nil
}
