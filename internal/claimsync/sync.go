// Package claimsync keeps the identity provider's claims cache aligned
// with the authoritative profile store, one record at a time or in bulk.
// Bulk runs fan out one read-modify-write per record with a bounded
// worker pool; a record's failure never aborts its siblings.
package claimsync

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/idp"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/logger"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/role"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/store"
)

const defaultWorkers = 16

type Config struct {
	// SecretHash is the bcrypt hash of the shared secret that authorizes
	// bulk sync outside development mode.
	SecretHash string

	// DevMode skips the secret gate.
	DevMode bool

	// Workers caps concurrent per-record syncs in bulk runs.
	Workers int

	// PageSize bounds the profile-store listing queries.
	PageSize int
}

type Synchronizer struct {
	profiles store.ProfileStore
	provider idp.Provider
	cfg      Config
}

func New(profiles store.ProfileStore, provider idp.Provider, cfg Config) *Synchronizer {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Synchronizer{
		profiles: profiles,
		provider: provider,
		cfg:      cfg,
	}
}

// SyncOne propagates one user's authoritative role into the claims
// cache. override, when non-empty, is used as the desired role instead
// of reading the profile. Failures come back as a StatusError result,
// never a panic or a silent skip.
func (s *Synchronizer) SyncOne(ctx context.Context, id string, override string) Result {
	desired := override

	if desired == "" {
		record, err := s.profiles.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return Result{ID: id, Status: StatusError, Detail: "profile not found"}
		}
		if err != nil {
			return Result{ID: id, Status: StatusError, Detail: err.Error()}
		}
		if record.Role == "" {
			// Absence of a role is valid; never invent a default one.
			return Result{ID: id, Status: StatusSkipped, Reason: "no role on profile"}
		}
		desired = record.Role
	}

	claims, err := s.provider.GetClaims(ctx, id)
	if errors.Is(err, idp.ErrIdentityNotFound) {
		return Result{ID: id, Status: StatusError, Detail: "identity not found"}
	}
	if err != nil {
		return Result{ID: id, Status: StatusError, Detail: err.Error()}
	}

	current := claims.Role()
	if role.Equal(current, desired) {
		return Result{ID: id, Status: StatusUnchanged, OldRole: current, NewRole: current}
	}

	// Read-merge-write: only the role entry changes, provider-managed
	// entries ride along untouched.
	claims[idp.RoleClaim] = desired
	if err := s.provider.SetClaims(ctx, id, claims); err != nil {
		return Result{ID: id, Status: StatusError, Detail: err.Error()}
	}

	logger.Info("role claim updated", map[string]any{
		"user_id":  id,
		"old_role": current,
		"new_role": desired,
	})

	return Result{ID: id, Status: StatusUpdated, OldRole: current, NewRole: desired}
}

// SyncAll syncs every profile record concurrently and returns the full
// report once all records have settled. Outside development mode the
// caller-supplied secret must match the configured hash before any
// record is touched.
func (s *Synchronizer) SyncAll(ctx context.Context, secret string) (*Report, error) {
	if err := s.Authorize(secret); err != nil {
		return nil, err
	}

	records, err := s.profiles.ListAll(ctx, s.cfg.PageSize)
	if err != nil {
		return nil, errors.Join(auth.ErrUpstream, err)
	}

	results := make([]Result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, record := range records {
		i, record := i, record
		g.Go(func() error {
			// A canceled batch leaves the remaining records untouched;
			// completed writes are final and are not rolled back.
			if gctx.Err() != nil {
				results[i] = Result{
					ID:     record.ID,
					Status: StatusError,
					Detail: gctx.Err().Error(),
				}
				return nil
			}
			results[i] = s.SyncOne(gctx, record.ID, "")
			return nil
		})
	}

	// Tasks never return errors (isolation is per-record), so Wait only
	// ever blocks until everything has settled.
	_ = g.Wait()

	report := buildReport(results)

	logger.Info("bulk claims sync finished", map[string]any{
		"total":     report.Total,
		"updated":   report.Updated,
		"unchanged": report.Unchanged,
		"skipped":   report.Skipped,
		"errors":    len(report.Errors),
	})

	return report, nil
}

// Authorize checks the shared sync secret. Every sync trigger, single
// and bulk, must pass it before any record is touched; only development
// mode relaxes it.
func (s *Synchronizer) Authorize(secret string) error {
	if s.cfg.DevMode {
		return nil
	}
	if s.cfg.SecretHash == "" || secret == "" {
		return auth.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(s.cfg.SecretHash), []byte(secret)) != nil {
		return auth.ErrUnauthorized
	}
	return nil
}
