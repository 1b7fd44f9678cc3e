package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/postcraft/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/postcraft/internal/domain"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "postcraft.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	s := domain.NewSession("sess-1", now)
	require.NoError(t, store.CreateSession(ctx, s))

	s.AppendVersion("Remote work tips", "first", "", now)
	s.AppendVersion("Remote work tips", "second", "make it shorter", now.Add(time.Minute))
	s.AppendVersion("Remote work tips", "third", "add hashtags", now.Add(2*time.Minute))
	require.NoError(t, s.RevertTo(1))
	require.NoError(t, store.SaveSession(ctx, s))

	got, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestResetPersistsEmptyHistory(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	now := time.Now().UTC()

	s := domain.NewSession("sess-1", now)
	require.NoError(t, store.CreateSession(ctx, s))
	s.AppendVersion("t", "first", "", now)
	require.NoError(t, store.SaveSession(ctx, s))

	s.Reset(now)
	require.NoError(t, store.SaveSession(ctx, s))

	got, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, got.Versions)
	assert.Empty(t, got.FeedbackHistory)
	assert.Zero(t, got.CurrentVersionIndex)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	_, err := store.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = store.SaveSession(ctx, domain.NewSession("missing", time.Now()))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestDuplicateCreateFails(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	s := domain.NewSession("dup", time.Now())
	require.NoError(t, store.CreateSession(ctx, s))
	assert.Error(t, store.CreateSession(ctx, s))
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []domain.SessionID{"a", "b", "c"} {
		require.NoError(t, store.CreateSession(ctx, domain.NewSession(id, base.Add(time.Duration(i)*time.Hour))))
	}

	got, err := store.ListSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.SessionID("c"), got[0].ID)
	assert.Equal(t, domain.SessionID("b"), got[1].ID)
}
