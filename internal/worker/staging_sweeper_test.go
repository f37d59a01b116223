package worker

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/prescription-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func TestSweepRemovesOnlyExpiredFiles(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "prescription-old.png")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))
	require.NoError(t, os.Chtimes(stale, time.Now().Add(-2*time.Hour), time.Now().Add(-2*time.Hour)))

	fresh := filepath.Join(dir, "prescription-new.png")
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o600))

	sweeper := NewStagingSweeper(dir, time.Hour, time.Minute, nil, testLogger())
	swept, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestSweepMissingDirIsNotAnError(t *testing.T) {
	sweeper := NewStagingSweeper(filepath.Join(t.TempDir(), "nope"), time.Hour, time.Minute, nil, testLogger())
	swept, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Zero(t, swept)
}

func TestSweepSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "keep")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.Chtimes(sub, time.Now().Add(-2*time.Hour), time.Now().Add(-2*time.Hour)))

	sweeper := NewStagingSweeper(dir, time.Hour, time.Minute, nil, testLogger())
	swept, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Zero(t, swept)

	_, err = os.Stat(sub)
	assert.NoError(t, err)
}
