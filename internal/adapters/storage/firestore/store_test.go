package firestore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/postcraft/internal/domain"
)

func sampleSession() *domain.Session {
	now := time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC)
	s := domain.NewSession("sess-1", now)
	s.AppendVersion("Remote work tips", "first draft", "", now)
	s.AppendVersion("Remote work tips", "shorter draft", "make it shorter", now.Add(time.Minute))
	_ = s.RevertTo(1)
	return s
}

func TestDocConversionRoundTrip(t *testing.T) {
	s := sampleSession()

	got := fromDoc(s.ID, toDoc(s))

	assert.Equal(t, s, got)
}

func TestToDocNeverStoresNilFeedback(t *testing.T) {
	s := &domain.Session{ID: "x"}

	doc := toDoc(s)

	assert.NotNil(t, doc.FeedbackHistory)
	assert.NotNil(t, doc.Versions)
}

// Runs against the Firestore emulator when FIRESTORE_EMULATOR_HOST is set.
func TestStoreAgainstEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()

	store, err := NewStore(ctx, "postcraft-test")
	require.NoError(t, err)
	defer store.Close()

	s := sampleSession()
	s.ID = domain.SessionID(uuid.NewString())
	require.NoError(t, store.CreateSession(ctx, s))

	s.AppendVersion("Remote work tips", "third", "add hashtags", time.Now().UTC())
	require.NoError(t, store.SaveSession(ctx, s))

	got, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Versions, 3)
	assert.Equal(t, []string{"make it shorter", "add hashtags"}, got.FeedbackHistory)

	_, err = store.GetSession(ctx, "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = store.SaveSession(ctx, domain.NewSession("does-not-exist", time.Now()))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
