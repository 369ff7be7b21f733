package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetup_DisabledByDefault verifies a Nop logger and no files without debug
func TestSetup_DisabledByDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := Setup(Options{Dir: dir, Level: "info"})
	require.NoError(t, err)
	defer l.Close()

	l.Info("discarded")
	assert.Empty(t, l.Path)
	_, err = uuid.Parse(l.SessionID)
	assert.NoError(t, err)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "no log dir without debug")
}

// TestSetup_EnabledWithDebug verifies the file is created and carries the session id
func TestSetup_EnabledWithDebug(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := Setup(Options{Debug: true, Level: "info", Dir: dir})
	require.NoError(t, err)

	l.Info("hello")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), l.SessionID)
	assert.True(t, strings.HasPrefix(string(data), "{"), "JSON above debug level")
}

// TestSetup_DebugLevelUsesConsole verifies the human-readable encoding at debug
func TestSetup_DebugLevelUsesConsole(t *testing.T) {
	dir := t.TempDir()
	l, err := Setup(Options{Debug: true, Level: "debug", Dir: dir})
	require.NoError(t, err)

	l.Debug("trace")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "trace")
	assert.False(t, strings.HasPrefix(string(data), "{"))
}

// TestSetup_Rotation verifies an oversized log is moved aside
func TestSetup_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, make([]byte, MaxLogSize+1), 0o644))

	l, err := Setup(Options{Debug: true, Level: "info", Dir: dir})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	backup, err := os.Stat(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, int64(MaxLogSize+1), backup.Size())

	fresh, err := os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, fresh.Size(), int64(MaxLogSize))
}

// TestSetup_BadLevel verifies unknown levels are rejected
func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup(Options{Debug: true, Level: "loud", Dir: t.TempDir()})
	assert.Error(t, err)
}
