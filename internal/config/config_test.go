package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cardsmith", "config.toml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultResultsLimit, cfg.ResultsLimit)
	assert.Equal(t, DefaultInteractionTimeout, cfg.InteractionTimeout.Duration)
	assert.Equal(t, ".", cfg.CmdPrefix)
	assert.Equal(t, "kgf", cfg.Command)
	assert.Empty(t, cfg.Admins)

	var written Config
	_, err = toml.DecodeFile(path, &written)
	require.NoError(t, err)
	assert.Equal(t, cfg.DeckFile, written.DeckFile)
	assert.Equal(t, DefaultInteractionTimeout, written.InteractionTimeout.Duration)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
admins = ["111", "222"]
results_limit = 5
deck_file = "/tmp/decks.json"
interaction_timeout = "30s"
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222"}, cfg.Admins)
	assert.Equal(t, 5, cfg.ResultsLimit)
	assert.Equal(t, "/tmp/decks.json", cfg.DeckFile)
	assert.Equal(t, 30*time.Second, cfg.InteractionTimeout.Duration)
	// Unset keys keep their defaults.
	assert.Equal(t, "kgf", cfg.Command)
	assert.True(t, cfg.IsAdmin("222"))
	assert.False(t, cfg.IsAdmin("333"))
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`results_limit = 5`), 0644))
	t.Setenv("CARDSMITH_RESULTS_LIMIT", "3")
	t.Setenv("CARDSMITH_ADMINS", "a,b")
	t.Setenv("CARDSMITH_INTERACTION_TIMEOUT", "2m")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.ResultsLimit)
	assert.Equal(t, []string{"a", "b"}, cfg.Admins)
	assert.Equal(t, 2*time.Minute, cfg.InteractionTimeout.Duration)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
results_limit = 0
interaction_timeout = "-1s"
`), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "results_limit")
	assert.ErrorContains(t, err, "interaction_timeout")
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`interaction_timeout = "soon"`), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "error decoding config file")
}
