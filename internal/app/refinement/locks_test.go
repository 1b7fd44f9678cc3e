package refinement

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/postcraft/internal/adapters/llm"
	"github.com/PabloGalante/postcraft/internal/adapters/storage/memory"
	"github.com/PabloGalante/postcraft/internal/domain"
)

func TestLockEntriesAreReleased(t *testing.T) {
	ctx := context.Background()
	svc := NewService(llm.NewMockLLM(), memory.NewSessionStore(), nil)

	for i := 0; i < 1000; i++ {
		id := domain.SessionID(fmt.Sprintf("unknown-%d", i))
		_, err := svc.Reset(ctx, id)
		require.ErrorIs(t, err, domain.ErrSessionNotFound)
		_, err = svc.Revert(ctx, id, 1)
		require.ErrorIs(t, err, domain.ErrSessionNotFound)
	}
	assert.Zero(t, svc.locks.held(), "unknown ids leave no entries")

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.Generate(ctx, GenerateInput{SessionID: session.ID, Topic: "Remote work tips"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.SubmitFeedback(ctx, FeedbackInput{SessionID: session.ID, Text: fmt.Sprintf("fb %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	_, err = svc.Reset(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, svc.locks.held())

	got, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Versions)
}
