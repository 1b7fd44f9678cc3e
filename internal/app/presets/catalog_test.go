package presets_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/postcraft/internal/app/presets"
)

func TestDefaultCatalog(t *testing.T) {
	c := presets.Default()

	assert.Len(t, c.Topics, 4)
	assert.Len(t, c.Feedback, 4)

	p, ok := c.FeedbackPreset("shorter")
	require.True(t, ok)
	assert.Equal(t, "Make the post shorter and more concise while keeping the key message", p.Text)

	_, ok = c.Topic("missing")
	assert.False(t, ok)
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := presets.Parse([]byte(`
topics:
  - {id: a, label: A, text: one}
  - {id: a, label: B, text: two}
`))
	assert.ErrorContains(t, err, "duplicate")
}

func TestParseRejectsMissingText(t *testing.T) {
	_, err := presets.Parse([]byte("feedback:\n  - id: x\n"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topics:\n  - {id: ai, label: AI, text: AI at work}\n"), 0o644))

	c, err := presets.Load(path)
	require.NoError(t, err)

	p, ok := c.Topic("ai")
	require.True(t, ok)
	assert.Equal(t, "AI at work", p.Text)
	assert.Empty(t, c.Feedback)
}
