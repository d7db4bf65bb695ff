// Package config handles configuration loading for the hive mind service.
// It layers built-in defaults, an optional YAML file and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend providers understood by the model router.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Models    ModelsConfig    `mapstructure:"models"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Agents    AgentsConfig    `mapstructure:"agents"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// ServerConfig holds HTTP/WebSocket transport settings.
type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// ModelsConfig holds the primary and optional secondary backend.
type ModelsConfig struct {
	Primary   BackendConfig `mapstructure:"primary"`
	Secondary BackendConfig `mapstructure:"secondary"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

// BackendConfig configures one text-completion backend.
type BackendConfig struct {
	// Provider is one of gemini, openai, anthropic or none.
	Provider string `mapstructure:"provider"`
	// APIKey falls back to the provider's conventional env variable when empty.
	APIKey string `mapstructure:"api_key"`
	// Model, when set, is tried before Candidates.
	Model string `mapstructure:"model"`
	// Candidates lists preferred model ids in order.
	Candidates []string `mapstructure:"candidates"`
	// StableModel is used when the provider's model listing fails.
	StableModel string `mapstructure:"stable_model"`
	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways, proxies).
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int64         `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
}

// Enabled reports whether the backend has a provider selected.
func (b BackendConfig) Enabled() bool {
	return b.Provider != "" && b.Provider != ProviderNone
}

// ProviderDefaults are the model ids a provider falls back to when a backend
// does not configure its own.
type ProviderDefaults struct {
	Candidates  []string
	StableModel string
}

// DefaultsFor returns the built-in model preferences for provider. Unknown
// providers get the zero value.
func DefaultsFor(provider string) ProviderDefaults {
	switch provider {
	case ProviderGemini:
		return ProviderDefaults{
			Candidates:  []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"},
			StableModel: "gemini-2.0-flash",
		}
	case ProviderOpenAI:
		return ProviderDefaults{
			Candidates:  []string{"gpt-4o", "gpt-4o-mini"},
			StableModel: "gpt-4o",
		}
	case ProviderAnthropic:
		return ProviderDefaults{
			Candidates:  []string{"claude-sonnet-4-20250514", "claude-3-7-sonnet-latest", "claude-3-5-sonnet-latest"},
			StableModel: "claude-3-5-sonnet-latest",
		}
	default:
		return ProviderDefaults{}
	}
}

// WithProviderDefaults fills empty Candidates and StableModel from the
// backend's provider.
func (b BackendConfig) WithProviderDefaults() BackendConfig {
	d := DefaultsFor(b.Provider)
	if len(b.Candidates) == 0 {
		b.Candidates = d.Candidates
	}
	if b.StableModel == "" {
		b.StableModel = d.StableModel
	}
	return b
}

// BreakerConfig configures the per-backend circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32 `mapstructure:"max_failures"`
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration `mapstructure:"timeout"`
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration `mapstructure:"interval"`
}

// ToolsConfig holds tool registry settings.
type ToolsConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Search  SearchConfig  `mapstructure:"search"`
}

// SearchConfig configures the google_search tool (Google Custom Search JSON API).
type SearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	EngineID string `mapstructure:"engine_id"`
	// Endpoint overrides the Custom Search URL.
	Endpoint string `mapstructure:"endpoint"`
	// Results is the number of hits returned (1-10).
	Results int `mapstructure:"results"`
}

// AgentsConfig holds agent table settings.
type AgentsConfig struct {
	// File optionally replaces the built-in agent table with a YAML one.
	File string `mapstructure:"file"`
}

// BroadcastConfig holds observer fan-out settings.
type BroadcastConfig struct {
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter"` // stdout or noop
}

// Load reads configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables (HIVEMIND_SERVER_ADDR, HIVEMIND_MODELS_PRIMARY_API_KEY, ...)
//  2. The file at path, or hivemind.yaml in the working directory or user config dir
//  3. Built-in defaults
//
// Empty model preferences are then filled from DefaultsFor the backend's
// provider, and empty API keys from GOOGLE_API_KEY, OPENAI_API_KEY or
// ANTHROPIC_API_KEY. The search tool falls back to GOOGLE_SEARCH_API_KEY and
// GOOGLE_CSE_ID. A missing default
// config file is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	} else {
		v.SetConfigName("hivemind")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(userConfigDir())
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("HIVEMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Models.Primary = cfg.Models.Primary.WithProviderDefaults()
	cfg.Models.Secondary = cfg.Models.Secondary.WithProviderDefaults()
	cfg.Models.Primary.APIKey = resolveAPIKey(cfg.Models.Primary)
	cfg.Models.Secondary.APIKey = resolveAPIKey(cfg.Models.Secondary)
	cfg.Tools.Search.APIKey = os.ExpandEnv(cfg.Tools.Search.APIKey)
	if cfg.Tools.Search.APIKey == "" {
		cfg.Tools.Search.APIKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	}
	if cfg.Tools.Search.EngineID == "" {
		cfg.Tools.Search.EngineID = os.Getenv("GOOGLE_CSE_ID")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks for settings that would make the service unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	for label, b := range map[string]BackendConfig{"primary": c.Models.Primary, "secondary": c.Models.Secondary} {
		switch b.Provider {
		case "", ProviderNone, ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		default:
			return fmt.Errorf("models.%s.provider: unsupported provider %q", label, b.Provider)
		}
	}
	return nil
}

// EnvKeyFor returns the conventional API key variable for provider.
func EnvKeyFor(provider string) string {
	switch provider {
	case ProviderGemini:
		return "GOOGLE_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

func resolveAPIKey(b BackendConfig) string {
	key := os.ExpandEnv(b.APIKey)
	if key != "" {
		return key
	}
	if env := EnvKeyFor(b.Provider); env != "" {
		return os.Getenv(env)
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("models.primary.provider", ProviderGemini)
	v.SetDefault("models.primary.api_key", "")
	v.SetDefault("models.primary.model", "")
	v.SetDefault("models.primary.candidates", []string{})
	v.SetDefault("models.primary.stable_model", "")
	v.SetDefault("models.primary.base_url", "")
	v.SetDefault("models.primary.timeout", 60*time.Second)
	v.SetDefault("models.primary.max_tokens", 4096)
	v.SetDefault("models.primary.temperature", 0.7)

	v.SetDefault("models.secondary.provider", ProviderOpenAI)
	v.SetDefault("models.secondary.api_key", "")
	v.SetDefault("models.secondary.model", "")
	v.SetDefault("models.secondary.candidates", []string{})
	v.SetDefault("models.secondary.stable_model", "")
	v.SetDefault("models.secondary.base_url", "")
	v.SetDefault("models.secondary.timeout", 60*time.Second)
	v.SetDefault("models.secondary.max_tokens", 4096)
	v.SetDefault("models.secondary.temperature", 0.7)

	v.SetDefault("models.breaker.max_failures", 5)
	v.SetDefault("models.breaker.timeout", 30*time.Second)
	v.SetDefault("models.breaker.interval", 60*time.Second)

	v.SetDefault("tools.timeout", 30*time.Second)
	v.SetDefault("tools.search.api_key", "")
	v.SetDefault("tools.search.engine_id", "")
	v.SetDefault("tools.search.endpoint", "")
	v.SetDefault("tools.search.results", 5)
	v.SetDefault("agents.file", "")
	v.SetDefault("broadcast.send_timeout", 5*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
}

// userConfigDir returns the XDG config directory for the service.
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hivemind")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "hivemind")
}
