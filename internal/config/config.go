package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Anthropic    AnthropicConfig    `yaml:"anthropic" mapstructure:"anthropic"`
	Jina         JinaConfig         `yaml:"jina" mapstructure:"jina"`
	Firecrawl    FirecrawlConfig    `yaml:"firecrawl" mapstructure:"firecrawl"`
	Hunter       HunterConfig       `yaml:"hunter" mapstructure:"hunter"`
	Salesforce   SalesforceConfig   `yaml:"salesforce" mapstructure:"salesforce"`
	Email        EmailConfig        `yaml:"email" mapstructure:"email"`
	Slack        SlackConfig        `yaml:"slack" mapstructure:"slack"`
	Engine       EngineConfig       `yaml:"engine" mapstructure:"engine"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator" mapstructure:"orchestrator"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-log database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite | postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings for the extractor.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// JinaConfig holds Jina AI Reader settings for enrichment fetches.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FirecrawlConfig holds Firecrawl API settings (enrichment fallback only).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// HunterConfig holds Hunter.io domain-intelligence settings.
type HunterConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SalesforceConfig holds Salesforce JWT auth settings for the record store.
type SalesforceConfig struct {
	ClientID string  `yaml:"client_id" mapstructure:"client_id"`
	Username string  `yaml:"username" mapstructure:"username"`
	KeyPath  string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string  `yaml:"login_url" mapstructure:"login_url"`
	RateRPS  float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
	// CorrelationField is the external-id field carrying the idempotency key.
	CorrelationField string `yaml:"correlation_field" mapstructure:"correlation_field"`
}

// EmailConfig configures the SES email notifier.
type EmailConfig struct {
	Region string `yaml:"region" mapstructure:"region"`
	From   string `yaml:"from" mapstructure:"from"`
	To     string `yaml:"to" mapstructure:"to"`
}

// SlackConfig configures the Slack webhook notifier.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// EngineConfig configures the decision engine.
type EngineConfig struct {
	// RulesPath optionally points at a YAML rule-table override file.
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// OrchestratorConfig configures per-stage timeouts and the persist retry loop.
type OrchestratorConfig struct {
	ExtractTimeout     time.Duration `yaml:"extract_timeout" mapstructure:"extract_timeout"`
	EnrichTimeout      time.Duration `yaml:"enrich_timeout" mapstructure:"enrich_timeout"`
	PersistTimeout     time.Duration `yaml:"persist_timeout" mapstructure:"persist_timeout"`
	NotifyTimeout      time.Duration `yaml:"notify_timeout" mapstructure:"notify_timeout"`
	PersistMaxAttempts int           `yaml:"persist_max_attempts" mapstructure:"persist_max_attempts"`
	PersistBackoff     time.Duration `yaml:"persist_backoff" mapstructure:"persist_backoff"`
	BreakerThreshold   int           `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldown    time.Duration `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
	// DedupWindow bounds the local correlation-key window; inquiries
	// hashing to the same key inside it map to one run.
	DedupWindow time.Duration `yaml:"dedup_window" mapstructure:"dedup_window"`
}

// ServerConfig configures the webhook intake server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("LEADINTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "lead-intake.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.rate_rps", 5.0)
	v.SetDefault("salesforce.correlation_field", "Correlation_Key__c")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("orchestrator.extract_timeout", "30s")
	v.SetDefault("orchestrator.enrich_timeout", "20s")
	v.SetDefault("orchestrator.persist_timeout", "30s")
	v.SetDefault("orchestrator.notify_timeout", "15s")
	v.SetDefault("orchestrator.persist_max_attempts", 3)
	v.SetDefault("orchestrator.persist_backoff", "500ms")
	v.SetDefault("orchestrator.breaker_threshold", 3)
	v.SetDefault("orchestrator.breaker_cooldown", "60s")
	v.SetDefault("orchestrator.dedup_window", "1h")

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
