package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDir_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Logs")

	first, err := NewDir(path)
	require.NoError(t, err)

	// Creating the same directory again must not fail.
	second, err := NewDir(path)
	require.NoError(t, err)
	assert.Equal(t, first.Path(), second.Path())
}

func TestOpen_DistinctFilesPerRequest(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)

	// Two loggers opened within the same clock second must not collide.
	a, err := dir.Open()
	require.NoError(t, err)
	defer a.Close()

	b, err := dir.Open()
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Path(), b.Path())
}

func TestLogger_WritesTimestampedEntries(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)

	l, err := dir.Open()
	require.NoError(t, err)

	l.Info("received txt data table request")
	l.Info("staged artifact created", "path", "/tmp/thickness-abc.txt")
	l.Error("processing failed", "error", "no numeric data region")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "received txt data table request")
	assert.Contains(t, text, "staged artifact created")
	assert.Contains(t, text, "level=ERROR")
	assert.Contains(t, text, "no numeric data region")
	assert.Contains(t, text, "time=", "entries must be timestamped")
}

func TestOpen_BadDirectory(t *testing.T) {
	// A Dir pointing at a path that was removed after NewDir should fail Open.
	base := t.TempDir()
	path := filepath.Join(base, "Logs")
	dir, err := NewDir(path)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(path))

	_, err = dir.Open()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "audit log"))
}
