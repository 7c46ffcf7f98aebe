package store

import (
	"context"
	"errors"
	"time"
)

// UserRecord is the authoritative profile record. Role is free-form and
// may be empty; an empty role is valid and means the user has not picked
// one yet.
type UserRecord struct {
	ID            string
	Email         string
	EmailVerified bool
	DisplayName   string
	Role          string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CareerPlan is the stored roadmap document for one user. Content is an
// opaque JSON document; this service never generates or interprets it.
type CareerPlan struct {
	UserID    string
	Content   []byte
	UpdatedAt time.Time
}

var (
	// ErrNotFound: no record with the given id.
	ErrNotFound = errors.New("store: record not found")

	// ErrNotQueryable: Query was asked to filter on a field outside the
	// whitelist. Always returned before any storage access.
	ErrNotQueryable = errors.New("store: field not queryable")
)

// ProfileStore is the read surface over the authoritative user records.
// Every listing method is bounded: implementations must never return an
// unbounded result set regardless of the underlying table size.
type ProfileStore interface {
	// Get returns the record for id or ErrNotFound.
	Get(ctx context.Context, id string) (*UserRecord, error)

	// ListAll returns every user record, fetched in pages of pageSize.
	ListAll(ctx context.Context, pageSize int) ([]UserRecord, error)

	// Query returns up to pageSize records whose field equals value.
	// Only whitelisted fields are queryable.
	Query(ctx context.Context, field, value string, pageSize int) ([]UserRecord, error)

	// ListCandidates returns up to pageSize candidate records, using the
	// same spelling set the role normalizer recognizes.
	ListCandidates(ctx context.Context, pageSize int) ([]UserRecord, error)
}

// PlanStore is the read surface over stored career plans.
type PlanStore interface {
	// GetPlan returns the plan for userID or ErrNotFound.
	GetPlan(ctx context.Context, userID string) (*CareerPlan, error)
}
