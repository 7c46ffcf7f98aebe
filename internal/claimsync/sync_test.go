package claimsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/idp"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/store"
)

// fakeProfiles is an in-memory ProfileStore.
type fakeProfiles struct {
	records []store.UserRecord
	getErr  map[string]error
	listErr error
}

func (f *fakeProfiles) Get(_ context.Context, id string) (*store.UserRecord, error) {
	if err, ok := f.getErr[id]; ok {
		return nil, err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeProfiles) ListAll(_ context.Context, _ int) ([]store.UserRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeProfiles) Query(_ context.Context, _, _ string, _ int) ([]store.UserRecord, error) {
	return nil, nil
}

func (f *fakeProfiles) ListCandidates(_ context.Context, _ int) ([]store.UserRecord, error) {
	return nil, nil
}

// fakeIDP is an in-memory claims cache, safe for concurrent use.
type fakeIDP struct {
	mu     sync.Mutex
	claims map[string]idp.ClaimsMap
	getErr map[string]error
	setErr map[string]error
}

func newFakeIDP() *fakeIDP {
	return &fakeIDP{claims: map[string]idp.ClaimsMap{}}
}

func (f *fakeIDP) Register(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.claims[id]; !ok {
		f.claims[id] = idp.ClaimsMap{}
	}
	return nil
}

func (f *fakeIDP) GetClaims(_ context.Context, id string) (idp.ClaimsMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.getErr[id]; ok {
		return nil, err
	}
	m, ok := f.claims[id]
	if !ok {
		return nil, idp.ErrIdentityNotFound
	}
	out := idp.ClaimsMap{}
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

func (f *fakeIDP) SetClaims(_ context.Context, id string, claims idp.ClaimsMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.setErr[id]; ok {
		return err
	}
	f.claims[id] = claims
	return nil
}

func (f *fakeIDP) IssueCredential(context.Context, string) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func (f *fakeIDP) VerifyCredential(context.Context, string, bool) (*idp.DecodedIdentity, error) {
	return nil, idp.ErrTokenInvalid
}

func (f *fakeIDP) RevokeCredentials(context.Context, string) error { return nil }

func newSync(profiles *fakeProfiles, provider *fakeIDP, cfg Config) *Synchronizer {
	return New(profiles, provider, cfg)
}

func TestSyncOne_UpdateThenUnchanged(t *testing.T) {
	ctx := context.Background()
	profiles := &fakeProfiles{records: []store.UserRecord{
		{ID: "u1", Role: "Recruiter"},
	}}
	provider := newFakeIDP()
	provider.claims["u1"] = idp.ClaimsMap{"role": "candidate", "last_issued_at": 123}

	s := newSync(profiles, provider, Config{DevMode: true})

	res := s.SyncOne(ctx, "u1", "")
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, "candidate", res.OldRole)
	assert.Equal(t, "Recruiter", res.NewRole)

	// The cache now holds the new role and kept the unrelated entry.
	claims, err := provider.GetClaims(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Recruiter", claims.Role())
	assert.Equal(t, 123, claims["last_issued_at"])

	// A second run with no intervening change is a no-op.
	res = s.SyncOne(ctx, "u1", "")
	assert.Equal(t, StatusUnchanged, res.Status)
}

func TestSyncOne_SpellingVariantIsUnchanged(t *testing.T) {
	profiles := &fakeProfiles{records: []store.UserRecord{
		{ID: "u1", Role: "RECRUITER"},
	}}
	provider := newFakeIDP()
	provider.claims["u1"] = idp.ClaimsMap{"role": "recruiter"}

	s := newSync(profiles, provider, Config{DevMode: true})

	res := s.SyncOne(context.Background(), "u1", "")
	assert.Equal(t, StatusUnchanged, res.Status)
}

func TestSyncOne_SkippedWithoutRole(t *testing.T) {
	profiles := &fakeProfiles{records: []store.UserRecord{{ID: "u1"}}}
	provider := newFakeIDP()
	provider.claims["u1"] = idp.ClaimsMap{}

	s := newSync(profiles, provider, Config{DevMode: true})

	res := s.SyncOne(context.Background(), "u1", "")
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, "no role on profile", res.Reason)
}

func TestSyncOne_Override(t *testing.T) {
	// No profile record at all: the override bypasses the profile read.
	profiles := &fakeProfiles{}
	provider := newFakeIDP()
	provider.claims["u1"] = idp.ClaimsMap{}

	s := newSync(profiles, provider, Config{DevMode: true})

	res := s.SyncOne(context.Background(), "u1", "recruiter")
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, "recruiter", res.NewRole)
}

func TestSyncOne_ErrorResults(t *testing.T) {
	t.Run("profile missing", func(t *testing.T) {
		s := newSync(&fakeProfiles{}, newFakeIDP(), Config{DevMode: true})
		res := s.SyncOne(context.Background(), "ghost", "")
		assert.Equal(t, StatusError, res.Status)
		assert.Equal(t, "profile not found", res.Detail)
	})

	t.Run("identity missing", func(t *testing.T) {
		profiles := &fakeProfiles{records: []store.UserRecord{
			{ID: "u1", Role: "candidate"},
		}}
		s := newSync(profiles, newFakeIDP(), Config{DevMode: true})
		res := s.SyncOne(context.Background(), "u1", "")
		assert.Equal(t, StatusError, res.Status)
		assert.Equal(t, "identity not found", res.Detail)
	})

	t.Run("claims write fails", func(t *testing.T) {
		profiles := &fakeProfiles{records: []store.UserRecord{
			{ID: "u1", Role: "candidate"},
		}}
		provider := newFakeIDP()
		provider.claims["u1"] = idp.ClaimsMap{"role": "recruiter"}
		provider.setErr = map[string]error{"u1": errors.New("redis down")}

		s := newSync(profiles, provider, Config{DevMode: true})
		res := s.SyncOne(context.Background(), "u1", "")
		assert.Equal(t, StatusError, res.Status)
	})
}

func TestSyncAll_IsolatesFailures(t *testing.T) {
	profiles := &fakeProfiles{records: []store.UserRecord{
		{ID: "u1", Role: "candidate"},
		{ID: "u2", Role: "recruiter"},
		{ID: "u3"},
		{ID: "u4", Role: "candidate"},
		{ID: "u5", Role: "candidate"},
	}}
	provider := newFakeIDP()
	provider.claims["u1"] = idp.ClaimsMap{"role": "candidate"}
	provider.claims["u2"] = idp.ClaimsMap{"role": "candidate"}
	provider.claims["u4"] = idp.ClaimsMap{}
	provider.claims["u5"] = idp.ClaimsMap{}
	// u5's claims read blows up; nothing else must be affected.
	provider.getErr = map[string]error{"u5": errors.New("upstream timeout")}

	s := newSync(profiles, provider, Config{DevMode: true, Workers: 3})

	report, err := s.SyncAll(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.Len(t, report.Details, 5)
	assert.Equal(t, 1, report.Unchanged) // u1
	assert.Equal(t, 2, report.Updated)   // u2, u4
	assert.Equal(t, 1, report.Skipped)   // u3
	assert.Len(t, report.Errors, 1)      // u5
	assert.Contains(t, report.Errors[0], "u5")

	// Count invariant over the whole report.
	assert.Equal(t, report.Total,
		report.Updated+report.Unchanged+report.Skipped+len(report.Errors))
}

func TestSyncAll_SecretGate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)

	profiles := &fakeProfiles{records: []store.UserRecord{{ID: "u1", Role: "candidate"}}}
	provider := newFakeIDP()
	provider.claims["u1"] = idp.ClaimsMap{}

	s := newSync(profiles, provider, Config{SecretHash: string(hash)})

	t.Run("missing secret", func(t *testing.T) {
		_, err := s.SyncAll(context.Background(), "")
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := s.SyncAll(context.Background(), "guess")
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("correct secret", func(t *testing.T) {
		report, err := s.SyncAll(context.Background(), "letmein")
		require.NoError(t, err)
		assert.Equal(t, 1, report.Total)
	})

	t.Run("no hash configured fails closed", func(t *testing.T) {
		s := newSync(profiles, provider, Config{})
		_, err := s.SyncAll(context.Background(), "anything")
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})
}

func TestSyncAll_ListFailure(t *testing.T) {
	profiles := &fakeProfiles{listErr: errors.New("db gone")}
	s := newSync(profiles, newFakeIDP(), Config{DevMode: true})

	_, err := s.SyncAll(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrUpstream)
}
