package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carletonu/hysim-go/config"
)

func TestDefaultTuning(t *testing.T) {
	d := config.Default()
	require.Equal(t, 20*time.Second, d.AbortTimeout)
	require.Equal(t, 5*time.Second, d.HeartbeatTimeout)
	require.Equal(t, time.Second, d.ReconnectBackoff)
}

func TestLoadNoPathReturnsDefault(t *testing.T) {
	tuning, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Default(), tuning)
}

func TestLoadOverlaysPartialFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(p, []byte("abort_timeout: 30s\n"), 0o644))

	tuning, err := config.Load(p)
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, tuning.AbortTimeout)
	require.Equal(t, 5*time.Second, tuning.HeartbeatTimeout) // unchanged default
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
