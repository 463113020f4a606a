package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	OpenAI    OpenAIConfig            `yaml:"openai" mapstructure:"openai"`
	Groq      GroqConfig              `yaml:"groq" mapstructure:"groq"`
	Anthropic AnthropicConfig         `yaml:"anthropic" mapstructure:"anthropic"`
	Spitch    SpitchConfig            `yaml:"spitch" mapstructure:"spitch"`
	Extract   ExtractConfig           `yaml:"extract" mapstructure:"extract"`
	Pricing   map[string]ModelPricing `yaml:"pricing" mapstructure:"pricing"`
	Log       LogConfig               `yaml:"log" mapstructure:"log"`
}

// OpenAIConfig holds OpenAI API settings, shared by the chat and Whisper
// endpoints.
type OpenAIConfig struct {
	Key          string  `yaml:"key" mapstructure:"key"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	Model        string  `yaml:"model" mapstructure:"model"`
	WhisperModel string  `yaml:"whisper_model" mapstructure:"whisper_model"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// GroqConfig holds Groq API settings.
type GroqConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Model     string  `yaml:"model" mapstructure:"model"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SpitchConfig holds Spitch speech API settings for African-language
// transcription.
type SpitchConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Language string `yaml:"language" mapstructure:"language"`
}

// ExtractConfig configures routing and orchestration behavior.
type ExtractConfig struct {
	DefaultProvider string `yaml:"default_provider" mapstructure:"default_provider"`
	MaxImages       int    `yaml:"max_images" mapstructure:"max_images"`
}

// ModelPricing holds per-model token pricing (USD per thousand tokens).
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.whisper_model", "whisper-1")
	v.SetDefault("openai.rate_limit", 5)
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model", "meta-llama/llama-4-maverick-17b-128e-instruct")
	v.SetDefault("groq.rate_limit", 5)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("spitch.base_url", "https://api.spi-tch.com/v1")
	v.SetDefault("spitch.language", "yo")
	v.SetDefault("extract.default_provider", "openai")
	v.SetDefault("extract.max_images", 10)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that credentials required by the given command are
// present. Commands: "extract", "audio", "image".
func (c *Config) Validate(command string) error {
	var missing []string

	keyFor := func(provider string) string {
		switch provider {
		case "openai":
			return c.OpenAI.Key
		case "groq":
			return c.Groq.Key
		case "anthropic":
			return c.Anthropic.Key
		}
		return ""
	}

	switch command {
	case "extract", "image":
		if keyFor(c.Extract.DefaultProvider) == "" {
			missing = append(missing, c.Extract.DefaultProvider+".key is required")
		}
	case "audio":
		if keyFor(c.Extract.DefaultProvider) == "" {
			missing = append(missing, c.Extract.DefaultProvider+".key is required")
		}
		if c.OpenAI.Key == "" && c.Spitch.Key == "" {
			missing = append(missing, "openai.key or spitch.key is required for transcription")
		}
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
