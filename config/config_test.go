package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GOOGLE_SEARCH_API_KEY", "")
	t.Setenv("GOOGLE_CSE_ID", "")
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ProviderGemini, cfg.Models.Primary.Provider)
	assert.Equal(t, ProviderOpenAI, cfg.Models.Secondary.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Models.Primary.StableModel)
	assert.Equal(t, 60*time.Second, cfg.Models.Primary.Timeout)
	assert.Equal(t, uint32(5), cfg.Models.Breaker.MaxFailures)
	assert.Equal(t, 5*time.Second, cfg.Broadcast.SendTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Empty(t, cfg.Models.Primary.APIKey)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: "127.0.0.1:9000"
models:
  primary:
    provider: anthropic
    api_key: ${MY_CLAUDE_KEY}
  secondary:
    provider: none
tools:
  timeout: 2s
agents:
  file: agents.yaml
`), 0o600))
	t.Setenv("MY_CLAUDE_KEY", "sk-ant-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, ProviderAnthropic, cfg.Models.Primary.Provider)
	assert.Equal(t, "sk-ant-test", cfg.Models.Primary.APIKey)
	assert.False(t, cfg.Models.Secondary.Enabled())
	assert.Equal(t, 2*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, "agents.yaml", cfg.Agents.File)
}

func TestLoad_ProviderEnvKeys(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "g-key", cfg.Models.Primary.APIKey)
	assert.Equal(t, "o-key", cfg.Models.Secondary.APIKey)
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	isolate(t)
	t.Setenv("HIVEMIND_SERVER_ADDR", ":7777")
	t.Setenv("HIVEMIND_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models:\n  primary:\n    provider: llama\n"), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestEnvKeyFor(t *testing.T) {
	assert.Equal(t, "GOOGLE_API_KEY", EnvKeyFor(ProviderGemini))
	assert.Equal(t, "ANTHROPIC_API_KEY", EnvKeyFor(ProviderAnthropic))
	assert.Empty(t, EnvKeyFor(ProviderNone))
}

func TestLoad_ModelDefaultsFollowProvider(t *testing.T) {
	isolate(t)
	t.Setenv("HIVEMIND_MODELS_PRIMARY_PROVIDER", ProviderAnthropic)
	t.Setenv("HIVEMIND_MODELS_SECONDARY_PROVIDER", ProviderGemini)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultsFor(ProviderAnthropic).StableModel, cfg.Models.Primary.StableModel)
	assert.Equal(t, DefaultsFor(ProviderAnthropic).Candidates, cfg.Models.Primary.Candidates)
	assert.Equal(t, "gemini-2.0-flash", cfg.Models.Secondary.StableModel)
	assert.Empty(t, cfg.Models.Primary.Model)
}

func TestWithProviderDefaults_KeepsExplicitValues(t *testing.T) {
	b := BackendConfig{
		Provider:    ProviderOpenAI,
		Candidates:  []string{"my-finetune"},
		StableModel: "gpt-4o-mini",
	}.WithProviderDefaults()

	assert.Equal(t, []string{"my-finetune"}, b.Candidates)
	assert.Equal(t, "gpt-4o-mini", b.StableModel)

	assert.Empty(t, BackendConfig{Provider: ProviderNone}.WithProviderDefaults().StableModel)
}

func TestLoad_SearchKeysFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_SEARCH_API_KEY", "search-key")
	t.Setenv("GOOGLE_CSE_ID", "engine-1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "search-key", cfg.Tools.Search.APIKey)
	assert.Equal(t, "engine-1", cfg.Tools.Search.EngineID)
	assert.Equal(t, 5, cfg.Tools.Search.Results)
}
