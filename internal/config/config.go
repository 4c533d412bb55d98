// Package config loads service configuration from an optional YAML file and
// AFFECT_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/justestif/go-affect-fusion/internal/fusion"
)

// EnvPrefix prefixes every environment override, e.g. AFFECT_SERVER_ADDR.
const EnvPrefix = "AFFECT"

// Lexicon sources.
const (
	LexiconFile     = "file"
	LexiconPostgres = "postgres"
	LexiconNone     = "none"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Face     ServiceConfig  `mapstructure:"face"`
	Audio    ServiceConfig  `mapstructure:"audio"`
	Lexicon  LexiconConfig  `mapstructure:"lexicon"`
	Database DatabaseConfig `mapstructure:"database"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Fusion   fusion.Weights `mapstructure:"fusion_weights"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CORSConfig configures cross-origin access.
type CORSConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Origins []string `mapstructure:"origins"`
	Methods []string `mapstructure:"methods"`
	Headers []string `mapstructure:"headers"`
	MaxAge  int      `mapstructure:"max_age"`
}

// ServiceConfig points at an external modality service. An empty BaseURL
// disables the modality.
type ServiceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// RetryDelays returns exponential backoff delays starting at one second, one
// per retry.
func (s ServiceConfig) RetryDelays() []time.Duration {
	delays := make([]time.Duration, 0, s.MaxRetries)
	d := time.Second
	for range s.MaxRetries {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// LexiconConfig selects where the text lexicon is loaded from.
type LexiconConfig struct {
	Source     string `mapstructure:"source"`
	Path       string `mapstructure:"path"`
	WordColumn string `mapstructure:"word_column"`
}

// DatabaseConfig configures PostgreSQL.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// OpenAIConfig configures advice generation. Without an API key the canned
// generator is used.
type OpenAIConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	MaxOutputTokens int64  `mapstructure:"max_output_tokens"`
}

// PipelineConfig tunes the multimodal pipeline.
type PipelineConfig struct {
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout"`
	RenderReport   bool          `mapstructure:"render_report"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("cors.methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("cors.max_age", 3600)

	v.SetDefault("face.base_url", "")
	v.SetDefault("face.timeout", 15*time.Second)
	v.SetDefault("face.max_retries", 3)
	v.SetDefault("audio.base_url", "")
	v.SetDefault("audio.timeout", 30*time.Second)
	v.SetDefault("audio.max_retries", 3)

	v.SetDefault("lexicon.source", LexiconFile)
	v.SetDefault("lexicon.path", "data/emolex_ko.tsv")
	v.SetDefault("lexicon.word_column", "Korean Word")

	v.SetDefault("database.url", "")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_output_tokens", 500)

	v.SetDefault("pipeline.adapter_timeout", 20*time.Second)
	v.SetDefault("pipeline.render_report", true)

	v.SetDefault("fusion_weights.face", fusion.DefaultWeights.Face)
	v.SetDefault("fusion_weights.audio", fusion.DefaultWeights.Audio)
	v.SetDefault("fusion_weights.text", fusion.DefaultWeights.Text)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads configuration. path names a YAML file; when empty, an optional
// affect-fusion.yaml in the working directory is used. Environment variables
// override file values, and OPENAI_API_KEY is honoured as a fallback key.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding OpenAI key: %w", err)
	}
	if err := v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("binding database URL: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("affect-fusion")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.Lexicon.Source {
	case LexiconFile, LexiconPostgres, LexiconNone:
	default:
		return fmt.Errorf("invalid lexicon source %q, must be one of: file, postgres, none", c.Lexicon.Source)
	}
	if c.Lexicon.Source == LexiconPostgres && c.Database.URL == "" {
		return errors.New("lexicon source postgres requires database.url")
	}

	timeouts := map[string]time.Duration{
		"server.read_timeout":      c.Server.ReadTimeout,
		"server.write_timeout":     c.Server.WriteTimeout,
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
		"face.timeout":             c.Face.Timeout,
		"audio.timeout":            c.Audio.Timeout,
		"pipeline.adapter_timeout": c.Pipeline.AdapterTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.Face.MaxRetries < 0 || c.Audio.MaxRetries < 0 {
		return errors.New("max_retries cannot be negative")
	}

	if err := c.Fusion.Validate(); err != nil {
		return fmt.Errorf("fusion_weights: %w", err)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format %q, must be console or json", c.Logging.Format)
	}

	return nil
}
