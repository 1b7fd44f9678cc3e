package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/postcraft/internal/domain"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestNewSessionIsEmpty(t *testing.T) {
	s := domain.NewSession("s-1", t0)

	assert.Equal(t, domain.SessionID("s-1"), s.ID)
	assert.Empty(t, s.Versions)
	assert.Empty(t, s.FeedbackHistory)
	assert.Zero(t, s.CurrentVersionIndex)
	assert.Zero(t, s.IterationCount())

	_, ok := s.CurrentVersion()
	assert.False(t, ok)
}

func TestAppendVersionKeepsIndexesMonotonic(t *testing.T) {
	s := domain.NewSession("s-1", t0)
	feedback := []string{"", "make it shorter", "", "add hashtags", "more emotional"}

	for i, fb := range feedback {
		v := s.AppendVersion("topic", "text", fb, t0.Add(time.Duration(i)*time.Minute))

		assert.Equal(t, i+1, v.Index)
		assert.Equal(t, len(s.Versions), s.IterationCount())
		assert.Equal(t, v.Index, s.CurrentVersionIndex)
		for j, got := range s.Versions {
			assert.Equal(t, j+1, got.Index)
		}
	}

	withFeedback := 0
	for _, v := range s.Versions {
		if v.HasFeedback() {
			withFeedback++
		}
	}
	assert.Equal(t, withFeedback, len(s.FeedbackHistory))
	assert.Equal(t, []string{"make it shorter", "add hashtags", "more emotional"}, s.FeedbackHistory)
}

func TestRevertOnlyMovesCurrent(t *testing.T) {
	s := domain.NewSession("s-1", t0)
	s.AppendVersion("Remote work tips", "first", "", t0)
	s.AppendVersion("Remote work tips", "second", "make it shorter", t0)

	require.NoError(t, s.RevertTo(1))

	assert.Equal(t, 1, s.CurrentVersionIndex)
	assert.Len(t, s.Versions, 2)
	assert.Equal(t, []string{"make it shorter"}, s.FeedbackHistory)

	cur, ok := s.CurrentVersion()
	require.True(t, ok)
	assert.Equal(t, "first", cur.Text)

	latest, ok := s.LatestVersion()
	require.True(t, ok)
	assert.Equal(t, "second", latest.Text)
}

func TestRevertOutOfRange(t *testing.T) {
	s := domain.NewSession("s-1", t0)
	s.AppendVersion("topic", "first", "", t0)

	for _, idx := range []int{0, -1, 2} {
		err := s.RevertTo(idx)

		var ive *domain.InvalidVersionError
		require.True(t, errors.As(err, &ive), "index %d", idx)
		assert.Equal(t, idx, ive.Requested)
		assert.Equal(t, 1, ive.Available)
		assert.Equal(t, 1, s.CurrentVersionIndex)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	s := domain.NewSession("s-1", t0)
	s.AppendVersion("topic", "first", "", t0)
	s.AppendVersion("topic", "second", "shorter", t0)

	s.Reset(t0)
	once := s.Clone()
	s.Reset(t0)

	assert.Equal(t, once, s)
	assert.Equal(t, domain.SessionID("s-1"), s.ID)
	assert.Empty(t, s.Versions)
	assert.Empty(t, s.FeedbackHistory)
	assert.Zero(t, s.CurrentVersionIndex)
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	s := domain.NewSession("s-1", t0)
	s.AppendVersion("topic", "first", "", t0)

	c := s.Clone()
	c.AppendVersion("topic", "second", "shorter", t0)

	assert.Len(t, s.Versions, 1)
	assert.Empty(t, s.FeedbackHistory)
	assert.Len(t, c.Versions, 2)
}

func TestCharCountCountsRunes(t *testing.T) {
	v := domain.Version{Text: "Café 🚀"}
	assert.Equal(t, 6, v.CharCount())
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("rate limited")
	err := error(&domain.GenerationFailure{Cause: cause})

	assert.ErrorIs(t, err, cause)
	assert.True(t, domain.IsRetryable(err))
	assert.False(t, domain.IsRetryable(&domain.InvalidVersionError{Requested: 3}))
	assert.Contains(t, err.Error(), "rate limited")
}
