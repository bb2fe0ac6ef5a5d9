package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9000\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "mock", cfg.Assistant.Mode)
	assert.Equal(t, 800, cfg.Assistant.DelayMinMs)
	assert.Equal(t, 1000, cfg.Assistant.DelayMaxMs)
	assert.Equal(t, "I'm sorry, I encountered an error processing your request. Please try again later.", cfg.Assistant.FallbackMessage)
	assert.Equal(t, "blog-plan-exports", cfg.Kafka.Topic)
	assert.Equal(t, 7*24, cfg.Conversation.TTLHours)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: \"from-file\"\n")
	t.Setenv("BLOGPLANNER_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoad_RejectsUnknownMode(t *testing.T) {
	path := writeConfig(t, "assistant:\n  mode: \"psychic\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "psychic")
}

func TestLoad_RemoteModeRequiresURL(t *testing.T) {
	path := writeConfig(t, "assistant:\n  mode: \"remote\"\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsInvertedDelayRange(t *testing.T) {
	path := writeConfig(t, "assistant:\n  delay_min_ms: 500\n  delay_max_ms: 100\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInit_SetsGlobal(t *testing.T) {
	path := writeConfig(t, "server:\n  mode: \"release\"\n")

	Init(path)
	assert.Equal(t, "release", Conf.Server.Mode)
}
