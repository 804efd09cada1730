// Package config provides configuration loading for the tender analyzer.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Credential sources.
const (
	CredentialEmbeddedStore = "embedded_store"
	CredentialManual        = "manual"
	CredentialEnv           = "env"
)

// Model providers selectable as model_primary.
const (
	ModelGeneralChat        = "general_chat"
	ModelConstitutionalChat = "constitutional_chat"
	ModelNone               = "none"
)

// Config holds all configuration for the tender analyzer.
type Config struct {
	Analysis      AnalysisOptions     `yaml:"analysis"`
	Models        ModelsConfig        `yaml:"models"`
	NLP           NLPConfig           `yaml:"nlp"`
	Cache         CacheConfig         `yaml:"cache"`
	Storage       StorageConfig       `yaml:"storage"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// AnalysisOptions is the options record every analysis runs under.
type AnalysisOptions struct {
	CredentialSource string        `yaml:"credential_source" validate:"oneof=embedded_store manual env"`
	ModelPrimary     string        `yaml:"model_primary" validate:"oneof=general_chat constitutional_chat none"`
	StrictModel      bool          `yaml:"strict_model"`
	CurrencyDefault  string        `yaml:"currency_default" validate:"len=3,uppercase"`
	SummaryMaxTokens int           `yaml:"summary_max_tokens" validate:"min=1,max=8192"`
	AdapterTimeout   time.Duration `yaml:"adapter_timeout" validate:"gt=0"`
	AnalysisTimeout  time.Duration `yaml:"analysis_timeout" validate:"gt=0"`
	MaxInputBytes    int64         `yaml:"max_input_bytes" validate:"gt=0"`
}

// ModelsConfig holds per-provider chat model settings.
type ModelsConfig struct {
	General        ModelConfig `yaml:"general_chat"`
	Constitutional ModelConfig `yaml:"constitutional_chat"`
	Retry          RetryConfig `yaml:"retry"`
}

// ModelConfig configures one chat provider. APIKey is the explicit (manual) credential.
type ModelConfig struct {
	Model       string  `yaml:"model" validate:"required"`
	BaseURL     string  `yaml:"base_url" validate:"omitempty,url"`
	APIKey      string  `yaml:"api_key"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
}

// RetryConfig holds adapter retry settings.
type RetryConfig struct {
	Attempts       int           `yaml:"attempts" validate:"min=1,max=10"`
	InitialBackoff time.Duration `yaml:"initial_backoff" validate:"gt=0"`
	Jitter         float64       `yaml:"jitter" validate:"gte=0,lt=1"`
}

// NLPConfig holds local NLP adapter settings.
type NLPConfig struct {
	Enabled          bool `yaml:"enabled"`
	SummarySentences int  `yaml:"summary_sentences" validate:"min=1"`
}

// CacheConfig holds completion cache settings.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Driver     string        `yaml:"driver" validate:"oneof=memory redis"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Prefix   string `yaml:"prefix"`
}

// StorageConfig holds object storage settings for s3:// artifact URIs.
type StorageConfig struct {
	MinIO MinIOConfig `yaml:"minio"`
}

// MinIOConfig holds S3-compatible object store settings. An empty endpoint disables object loading.
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Region          string `yaml:"region"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes" validate:"gt=0"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level" validate:"oneof=trace debug info warn warning error disabled"`
	LogFormat string `yaml:"log_format" validate:"oneof=json console"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with defaults suitable for local use.
func DefaultConfig() *Config {
	return &Config{
		Analysis: DefaultAnalysisOptions(),
		Models: ModelsConfig{
			General: ModelConfig{
				Model:       "gpt-4o-mini",
				Temperature: 0.2,
			},
			Constitutional: ModelConfig{
				Model:       "claude-3-5-haiku-latest",
				BaseURL:     "https://api.anthropic.com",
				Temperature: 0.2,
			},
			Retry: RetryConfig{
				Attempts:       3,
				InitialBackoff: 250 * time.Millisecond,
				Jitter:         0.2,
			},
		},
		NLP: NLPConfig{
			Enabled:          true,
			SummarySentences: 3,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Driver:     "memory",
			TTL:        24 * time.Hour,
			MaxEntries: 1000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
				Prefix:   "dac:",
			},
		},
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8090,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     150 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   32 << 20,
			AllowedOrigins:   []string{"*"},
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// DefaultAnalysisOptions returns the options used when the embedder supplies none.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		CredentialSource: CredentialEnv,
		ModelPrimary:     ModelNone,
		CurrencyDefault:  "SAR",
		SummaryMaxTokens: 512,
		AdapterTimeout:   30 * time.Second,
		AnalysisTimeout:  120 * time.Second,
		MaxInputBytes:    64 << 20,
	}
}

var validate = validator.New()

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describe(err)
	}

	if c.Cache.Enabled && c.Cache.Driver == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New("cache.redis.addr is required when cache.driver is redis")
	}

	if c.Analysis.AnalysisTimeout < c.Analysis.AdapterTimeout {
		return fmt.Errorf("analysis_timeout (%s) must not be shorter than adapter_timeout (%s)",
			c.Analysis.AnalysisTimeout, c.Analysis.AdapterTimeout)
	}

	return nil
}

// Validate checks an options record on its own, for embedders that bypass Load.
func (o AnalysisOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return describe(err)
	}
	return nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MODEL_PRIMARY"); v != "" {
		cfg.Analysis.ModelPrimary = v
	}

	if v := os.Getenv("CREDENTIAL_SOURCE"); v != "" {
		cfg.Analysis.CredentialSource = v
	}

	if v := os.Getenv("STRICT_MODEL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Analysis.StrictModel = b
		}
	}

	if v := os.Getenv("CURRENCY_DEFAULT"); v != "" {
		cfg.Analysis.CurrencyDefault = strings.ToUpper(v)
	}

	if v := os.Getenv("SUMMARY_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.SummaryMaxTokens = n
		}
	}

	if v := os.Getenv("GENERAL_CHAT_MODEL"); v != "" {
		cfg.Models.General.Model = v
	}

	if v := os.Getenv("GENERAL_CHAT_BASE_URL"); v != "" {
		cfg.Models.General.BaseURL = v
	}

	if v := os.Getenv("CONSTITUTIONAL_CHAT_MODEL"); v != "" {
		cfg.Models.Constitutional.Model = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Enabled = true
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Storage.MinIO.Endpoint = v
	}

	if v := os.Getenv("MINIO_ACCESS_KEY_ID"); v != "" {
		cfg.Storage.MinIO.AccessKeyID = v
	}

	if v := os.Getenv("MINIO_SECRET_ACCESS_KEY"); v != "" {
		cfg.Storage.MinIO.SecretAccessKey = v
	}

	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.MinIO.UseSSL = b
		}
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, o)
			}
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
