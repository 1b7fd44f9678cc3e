package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("POSTCRAFT_USE_MOCK_LLM", "true")

	cfgFile = ""
	color.NoColor = true
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestDraftPrintsEveryVersion(t *testing.T) {
	out, err := run(t, "draft", "--topic", "Remote work tips", "-f", "make it shorter", "--preset", "hashtags")
	require.NoError(t, err)

	assert.Contains(t, out, "Version 1")
	assert.Contains(t, out, "Version 2")
	assert.Contains(t, out, "Version 3")
	assert.Contains(t, out, "Feedback applied: make it shorter")
	assert.Contains(t, out, "Feedback applied: Add more relevant hashtags")
	assert.Contains(t, out, "3 version(s), 2 feedback(s)")
}

func TestDraftRequiresTopic(t *testing.T) {
	_, err := run(t, "draft")
	assert.Error(t, err)
}

func TestPresetsListsCatalog(t *testing.T) {
	out, err := run(t, "presets")
	require.NoError(t, err)

	assert.Contains(t, out, "career")
	assert.Contains(t, out, "hashtags")
}

func TestSessionsAndExportWithSQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "postcraft.db")
	t.Setenv("POSTCRAFT_STORAGE_BACKEND", "sqlite")
	t.Setenv("POSTCRAFT_SQLITE_PATH", db)

	out, err := run(t, "draft", "--preset-topic", "learning", "-f", "shorter please")
	require.NoError(t, err)

	first := strings.SplitN(out, "\n", 2)[0]
	id := strings.TrimPrefix(first, "Session ")
	require.NotEmpty(t, id)

	out, err = run(t, "sessions")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "continuous learning")

	out, err = run(t, "export", id, "--version", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Draft #1")
}

func TestDraftKeepsFeedbackAndPresetOrder(t *testing.T) {
	out, err := run(t, "draft", "--topic", "Remote work tips",
		"--preset", "hashtags", "-f", "make it shorter", "--preset", "professional")
	require.NoError(t, err)

	hashtags := strings.Index(out, "Feedback applied: Add more relevant hashtags")
	shorter := strings.Index(out, "Feedback applied: make it shorter")
	professional := strings.Index(out, "Feedback applied: Make the tone more professional")
	require.Positive(t, hashtags)
	assert.Less(t, hashtags, shorter)
	assert.Less(t, shorter, professional)
	assert.Contains(t, out, "4 version(s), 3 feedback(s)")
}
