package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, "whisper-1", cfg.OpenAI.WhisperModel)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.Groq.BaseURL)
	assert.Equal(t, "meta-llama/llama-4-maverick-17b-128e-instruct", cfg.Groq.Model)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, "yo", cfg.Spitch.Language)
	assert.Equal(t, "openai", cfg.Extract.DefaultProvider)
	assert.Equal(t, 10, cfg.Extract.MaxImages)
	assert.InDelta(t, 5, cfg.OpenAI.RateLimit, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
extract:
  default_provider: groq
log:
  level: debug
  format: console
pricing:
  my-model:
    input: 0.001
    output: 0.002
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.Extract.DefaultProvider)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 0.001, cfg.Pricing["my-model"].Input, 1e-9)
	assert.InDelta(t, 0.002, cfg.Pricing["my-model"].Output, 1e-9)
	// Defaults still apply for unset values
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
extract:
  default_provider: groq
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("EXTRACT_EXTRACT_DEFAULT_PROVIDER", "anthropic")
	t.Setenv("EXTRACT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "anthropic", cfg.Extract.DefaultProvider)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("EXTRACT_OPENAI_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.OpenAI.Key)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func TestValidateExtract_KeyPresent(t *testing.T) {
	cfg := &Config{}
	cfg.Extract.DefaultProvider = "openai"
	cfg.OpenAI.Key = "sk-test"

	assert.NoError(t, cfg.Validate("extract"))
}

func TestValidateExtract_KeyMissing(t *testing.T) {
	cfg := &Config{}
	cfg.Extract.DefaultProvider = "groq"

	err := cfg.Validate("extract")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq.key is required")
}

func TestValidateAudio_NeedsTranscriber(t *testing.T) {
	cfg := &Config{}
	cfg.Extract.DefaultProvider = "anthropic"
	cfg.Anthropic.Key = "sk-ant"

	err := cfg.Validate("audio")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription")

	cfg.Spitch.Key = "sp-key"
	assert.NoError(t, cfg.Validate("audio"))
}
