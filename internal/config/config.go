package config

import (
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	SessionBackendDB     = "db"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	DefaultDB              = "portfolio.db"
	DefaultProjectsPerPage = 10
	DefaultHTTPTimeout     = 30
)

// Config is read from an optional YAML file and then from the environment,
// which wins.
type Config struct {
	BotToken        string   `yaml:"bot_token" envconfig:"BOT_TOKEN"`
	DB              string   `yaml:"db" envconfig:"DB"`
	ImgBBAPIKey     string   `yaml:"imgbb_api_key" envconfig:"IMGBB_API_KEY"`
	AdminIDs        []string `yaml:"admin_ids" envconfig:"ADMIN_IDS"`
	SessionBackend  string   `yaml:"session_backend" envconfig:"SESSION_BACKEND"`
	RedisURL        string   `yaml:"redis_url" envconfig:"REDIS_URL"`
	ProjectsPerPage int      `yaml:"projects_per_page" envconfig:"PROJECTS_PER_PAGE"`
	LogLevel        string   `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat       string   `yaml:"log_format" envconfig:"LOG_FORMAT"`
	// HTTPTimeoutSeconds bounds every outbound HTTP request.
	HTTPTimeoutSeconds int `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT"`
}

// Load reads the YAML file named by CONFIG_FILE (if any), applies the
// environment and normalizes the result.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "parse config file")
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "process env")
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills in defaults. BOT_TOKEN is checked by the
// commands that need it.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}

	cfg.BotToken = strings.TrimSpace(cfg.BotToken)
	cfg.DB = strings.TrimSpace(cfg.DB)
	if cfg.DB == "" {
		cfg.DB = DefaultDB
	}

	ids := make([]string, 0, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	cfg.AdminIDs = ids

	backend := strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	if backend == "" {
		backend = SessionBackendDB
	}
	switch backend {
	case SessionBackendDB, SessionBackendMemory:
	case SessionBackendRedis:
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return errors.New("REDIS_URL is required when SESSION_BACKEND is redis")
		}
	default:
		return errors.Errorf("invalid SESSION_BACKEND %q; allowed: db, memory, redis", cfg.SessionBackend)
	}
	cfg.SessionBackend = backend

	if cfg.ProjectsPerPage < 0 {
		return errors.New("PROJECTS_PER_PAGE must be >= 0")
	}
	if cfg.ProjectsPerPage == 0 {
		cfg.ProjectsPerPage = DefaultProjectsPerPage
	}

	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if format == "" {
		format = LogFormatConsole
	}
	if format != LogFormatConsole && format != LogFormatJSON {
		return errors.Errorf("invalid LOG_FORMAT %q; allowed: console, json", cfg.LogFormat)
	}
	cfg.LogFormat = format

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.HTTPTimeoutSeconds < 0 {
		return errors.New("HTTP_TIMEOUT must be >= 0")
	}
	if cfg.HTTPTimeoutSeconds == 0 {
		cfg.HTTPTimeoutSeconds = DefaultHTTPTimeout
	}
	return nil
}

// RequireBotToken reports a missing BOT_TOKEN.
func (c *Config) RequireBotToken() error {
	if c.BotToken == "" {
		return errors.New("BOT_TOKEN environment variable is required")
	}
	return nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
