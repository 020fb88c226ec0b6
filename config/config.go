package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research wrapper
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Research  ResearchConfig  `mapstructure:"research"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Listen   string `mapstructure:"listen"`
	// APIKey protects every non-health endpoint. An empty key rejects all
	// requests, matching the upstream contract.
	APIKey string `mapstructure:"api_key"`
}

// LLMConfig contains language-model provider settings
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // anthropic
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ResearchConfig bounds a single research run
type ResearchConfig struct {
	MaxCallDepth       int `mapstructure:"max_call_depth"`       // tool round-trips per exchange
	DefaultMaxSearches int `mapstructure:"default_max_searches"` // iteration budget
	DefaultMaxResults  int `mapstructure:"default_max_results"`  // result budget
}

// ToolsConfig configures the web tool executors
type ToolsConfig struct {
	WebSearch WebSearchConfig `mapstructure:"web_search"`
	WebFetch  WebFetchConfig  `mapstructure:"web_fetch"`
}

// WebSearchConfig contains web search settings
type WebSearchConfig struct {
	Provider     string        `mapstructure:"provider"` // serper, brave
	SerperAPIKey string        `mapstructure:"serper_api_key"`
	BraveAPIKey  string        `mapstructure:"brave_api_key"`
	MaxResults   int           `mapstructure:"max_results"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// WebFetchConfig contains page fetch settings
type WebFetchConfig struct {
	Type      string        `mapstructure:"type"` // http, chromedp
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxChars  int           `mapstructure:"max_chars"`
	UserAgent string        `mapstructure:"user_agent"`
}

// SourcesConfig contains the biomedical pass-through source settings
type SourcesConfig struct {
	PubMed         SourceConfig `mapstructure:"pubmed"`
	ClinicalTrials SourceConfig `mapstructure:"clinicaltrials"`
	OpenTargets    SourceConfig `mapstructure:"opentargets"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

// SourceConfig describes one upstream search API
type SourceConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// StorageConfig contains optional persistence settings
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains monitoring settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DSN builds a Postgres connection string, preferring the URL form.
func (p PostgresConfig) DSN() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (storage.postgres.host/dbname or url)")
	}
	port := p.Port
	if port == 0 {
		port = 5432
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

// Enabled reports whether persistence is configured at all.
func (p PostgresConfig) Enabled() bool {
	return p.URL != "" || (p.Host != "" && p.DBName != "")
}

// Enabled reports whether the redis cache is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("ripel_config")
		viper.SetConfigType("json")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("RIPEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file (optional - will use defaults if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// General defaults
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.listen", ":10001")

	// LLM defaults
	viper.SetDefault("llm.provider", "anthropic")
	viper.SetDefault("llm.model", "claude-3-5-sonnet-latest")
	viper.SetDefault("llm.max_tokens", 8192)
	viper.SetDefault("llm.temperature", 0.0)
	viper.SetDefault("llm.timeout", "2m")

	// Research loop defaults
	viper.SetDefault("research.max_call_depth", 5)
	viper.SetDefault("research.default_max_searches", 2)
	viper.SetDefault("research.default_max_results", 5)

	// Tool defaults
	viper.SetDefault("tools.web_search.provider", "serper")
	viper.SetDefault("tools.web_search.max_results", 10)
	viper.SetDefault("tools.web_search.timeout", "30s")
	viper.SetDefault("tools.web_fetch.type", "http")
	viper.SetDefault("tools.web_fetch.timeout", "15s")
	viper.SetDefault("tools.web_fetch.max_chars", 20000)
	viper.SetDefault("tools.web_fetch.user_agent", "RipelResearchAgent/1.0 (+contact@example.com)")

	// Source defaults
	viper.SetDefault("sources.pubmed.endpoint", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	viper.SetDefault("sources.pubmed.max_results", 10)
	viper.SetDefault("sources.pubmed.timeout", "15s")
	viper.SetDefault("sources.clinicaltrials.endpoint", "https://clinicaltrials.gov/api/v2")
	viper.SetDefault("sources.clinicaltrials.max_results", 10)
	viper.SetDefault("sources.clinicaltrials.timeout", "15s")
	viper.SetDefault("sources.opentargets.endpoint", "https://api.platform.opentargets.org/api/v4/graphql")
	viper.SetDefault("sources.opentargets.max_results", 10)
	viper.SetDefault("sources.opentargets.timeout", "15s")
	viper.SetDefault("sources.cache_ttl", "10m")

	// Storage defaults
	viper.SetDefault("storage.postgres.port", 5432)
	viper.SetDefault("storage.postgres.sslmode", "disable")
	viper.SetDefault("storage.postgres.timeout", "5s")
	viper.SetDefault("storage.redis.port", 6379)
	viper.SetDefault("storage.redis.db", 0)
	viper.SetDefault("storage.redis.timeout", "5s")

	// Telemetry defaults
	viper.SetDefault("telemetry.enabled", true)
}

// overrideFromEnv overrides configuration with environment variables
func overrideFromEnv() {
	if apiKey := os.Getenv("PROGRAM_FINDER_API_KEY"); apiKey != "" {
		viper.Set("general.api_key", apiKey)
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		viper.Set("llm.api_key", apiKey)
	}
	if apiKey := os.Getenv("SERPER_API_KEY"); apiKey != "" {
		viper.Set("tools.web_search.serper_api_key", apiKey)
	}
	if apiKey := os.Getenv("BRAVE_SEARCH_KEY"); apiKey != "" {
		viper.Set("tools.web_search.brave_api_key", apiKey)
	}

	// Postgres configuration
	if url := os.Getenv("DATABASE_URL"); url != "" {
		viper.Set("storage.postgres.url", url)
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		viper.Set("storage.postgres.host", host)
	}
	if port := os.Getenv("POSTGRES_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("storage.postgres.port", p)
		}
	}
	if user := os.Getenv("POSTGRES_USER"); user != "" {
		viper.Set("storage.postgres.user", user)
	}
	if pass := os.Getenv("POSTGRES_PASSWORD"); pass != "" {
		viper.Set("storage.postgres.password", pass)
	}
	if db := os.Getenv("POSTGRES_DB"); db != "" {
		viper.Set("storage.postgres.dbname", db)
	}

	// Redis configuration
	if host := os.Getenv("REDIS_HOST"); host != "" {
		viper.Set("storage.redis.host", host)
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("storage.redis.port", p)
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		viper.Set("storage.redis.password", password)
	}
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.LLM.Provider == "" {
		return fmt.Errorf("llm.provider must be configured")
	}
	if config.LLM.Model == "" {
		return fmt.Errorf("llm.model must be configured")
	}
	if config.Research.MaxCallDepth <= 0 {
		return fmt.Errorf("research.max_call_depth must be positive")
	}
	if config.Research.DefaultMaxSearches <= 0 || config.Research.DefaultMaxResults <= 0 {
		return fmt.Errorf("research default budgets must be positive")
	}
	switch config.Tools.WebSearch.Provider {
	case "serper", "brave":
	default:
		return fmt.Errorf("unsupported web search provider '%s'", config.Tools.WebSearch.Provider)
	}
	switch config.Tools.WebFetch.Type {
	case "http", "chromedp":
	default:
		return fmt.Errorf("unsupported web fetch type '%s'", config.Tools.WebFetch.Type)
	}
	return nil
}
