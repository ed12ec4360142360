package staging

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_WritesPayload(t *testing.T) {
	s := New(t.TempDir())

	data := []byte("1.02\t1.03\t1.05\n")
	path, err := s.Stage(data, FormatText)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, ".txt"), "path %q should carry the .txt suffix", path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, s.Release(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "artifact should be gone after Release")
}

func TestStage_SpreadsheetSuffix(t *testing.T) {
	s := New(t.TempDir())

	path, err := s.Stage([]byte{0x50, 0x4b}, FormatSpreadsheet)
	require.NoError(t, err)
	defer s.Release(path)

	assert.True(t, strings.HasSuffix(path, ".xlsx"), "path %q should carry the .xlsx suffix", path)
}

func TestStage_SameBytesDistinctPaths(t *testing.T) {
	s := New(t.TempDir())
	data := []byte("identical content")

	first, err := s.Stage(data, FormatText)
	require.NoError(t, err)
	defer s.Release(first)

	second, err := s.Stage(data, FormatText)
	require.NoError(t, err)
	defer s.Release(second)

	assert.NotEqual(t, first, second, "staging must never collide")
}

func TestStage_EmptyPayload(t *testing.T) {
	s := New(t.TempDir())

	// Zero-length uploads still stage; the processor decides what they mean.
	path, err := s.Stage(nil, FormatText)
	require.NoError(t, err)
	defer s.Release(path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestStage_BadDirectory(t *testing.T) {
	s := New("/nonexistent/staging/dir")

	_, err := s.Stage([]byte("data"), FormatText)
	require.Error(t, err)
}

func TestRelease_MissingArtifact(t *testing.T) {
	s := New(t.TempDir())

	err := s.Release("/nonexistent/thickness-xyz.txt")
	require.Error(t, err)
}
