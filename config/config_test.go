package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNodeConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.yml")
	content := []byte(`config:
  data_dir: /var/lib/massa
  rpc_addr: ":8899"
  consensus:
    thread_count: 8
    bootstrap_part_size: 2
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadNodeConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/massa", cfg.DataDir)
	assert.Equal(t, ":8899", cfg.RPCAddr)
	assert.Equal(t, uint8(8), cfg.Consensus.ThreadCount)
	assert.Equal(t, 2, cfg.Consensus.BootstrapPartSize)

	// Unset tunables fall back to defaults.
	assert.Equal(t, DefaultMaxCreditSlots, cfg.Consensus.MaxCreditSlots)
	assert.Equal(t, DefaultMaxCreditsPerSlot, cfg.Consensus.MaxCreditsPerSlot)
	assert.Equal(t, DefaultCommandChannelSize, cfg.Consensus.CommandChannelSize)
	assert.Equal(t, DefaultStatsTimespanMs, cfg.Consensus.StatsTimespanMs)
	assert.Equal(t, DefaultFinalityDepth, cfg.Consensus.FinalityDepth)
}

func TestLoadNodeConfigMissingFile(t *testing.T) {
	_, err := LoadNodeConfig(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoadTuningConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.ini")
	content := []byte("[tuning]\nlog_category_debug = true\nmetrics_enabled = true\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.LogCategoryDebug)
	assert.True(t, cfg.MetricsEnabled)
}
