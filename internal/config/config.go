package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/insighthire/internal/domain/rank/mode"
)

// Config holds the insighthire configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	CORS      CORSConfig      `yaml:"cors"`
	Database  DatabaseConfig  `yaml:"database"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Title     TitleConfig     `yaml:"title"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Search    SearchConfig    `yaml:"search"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CORSConfig holds cross-origin settings. No origins disables CORS.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAgeSec        int      `yaml:"max_age_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Job store drivers.
const (
	JobsDriverRedis    = "redis"
	JobsDriverPostgres = "postgres"
)

// JobsConfig selects where search sessions are persisted.
type JobsConfig struct {
	Driver      string `yaml:"driver"` // redis (default), postgres
	PostgresDSN string `yaml:"postgres_dsn"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// Title providers.
const (
	TitleProviderOpenAI = "openai"
	TitleProviderGemini = "gemini"
	TitleProviderNone   = "none"
)

// Default title models per provider.
const (
	DefaultOpenAITitleModel = "gpt-3.5-turbo"
	DefaultGeminiTitleModel = "gemini-2.5-flash"
)

// TitleConfig holds job title generation settings.
type TitleConfig struct {
	Provider     string  `yaml:"provider"` // openai (default), gemini, none
	Model        string  `yaml:"model"`
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	GeminiAPIKey string  `yaml:"gemini_api_key"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
}

// RankingConfig holds ranker settings.
type RankingConfig struct {
	Workers int    `yaml:"workers"` // 0 = GOMAXPROCS
	Mode    string `yaml:"mode"`
}

// SearchConfig holds search response settings.
type SearchConfig struct {
	ResultLimit int `yaml:"result_limit"`
	TopSkills   int `yaml:"top_skills"` // 0 disables per-candidate skill ranking
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config, expanding ${VAR} references, then applies
// defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// title generation and a full scan can take a while
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Jobs.Driver == "" {
		c.Jobs.Driver = JobsDriverRedis
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-large"
	}
	if c.Title.Provider == "" {
		c.Title.Provider = TitleProviderOpenAI
	}
	if c.Title.Model == "" {
		switch c.Title.Provider {
		case TitleProviderOpenAI:
			c.Title.Model = DefaultOpenAITitleModel
		case TitleProviderGemini:
			c.Title.Model = DefaultGeminiTitleModel
		}
	}
	if c.Title.APIKey == "" {
		c.Title.APIKey = c.Embedding.APIKey
	}
	if c.Title.BaseURL == "" && c.Title.Provider == TitleProviderOpenAI {
		c.Title.BaseURL = c.Embedding.BaseURL
	}
	if c.Title.Temperature <= 0 {
		c.Title.Temperature = 0.3
	}
	if c.Title.MaxTokens <= 0 {
		c.Title.MaxTokens = 50
	}
	if c.Ranking.Mode == "" {
		c.Ranking.Mode = string(mode.VectorMath)
	}
	if c.Search.ResultLimit <= 0 {
		c.Search.ResultLimit = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "insighthire:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	for i, addr := range c.Database.Addrs {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("database.addrs[%d] is empty", i)
		}
	}
	switch c.Jobs.Driver {
	case JobsDriverRedis:
	case JobsDriverPostgres:
		if c.Jobs.PostgresDSN == "" {
			return fmt.Errorf("jobs.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("jobs.driver must be \"redis\" or \"postgres\", got %q", c.Jobs.Driver)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	switch c.Title.Provider {
	case TitleProviderOpenAI, TitleProviderNone:
	case TitleProviderGemini:
		if c.Title.GeminiAPIKey == "" {
			return fmt.Errorf("title.gemini_api_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("title.provider must be \"openai\", \"gemini\" or \"none\", got %q", c.Title.Provider)
	}
	m, err := mode.Parse(c.Ranking.Mode)
	if err != nil {
		return fmt.Errorf("ranking.mode: %w", err)
	}
	if !m.IsImplemented() {
		return fmt.Errorf("ranking.mode %q is not implemented", m)
	}
	if c.Ranking.Workers < 0 {
		return fmt.Errorf("ranking.workers must not be negative, got %d", c.Ranking.Workers)
	}
	if c.Search.TopSkills < 0 {
		return fmt.Errorf("search.top_skills must not be negative, got %d", c.Search.TopSkills)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
