package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath           = "CONFIG_PATH"
	EnvDBConnection         = "DB_CONNECTION"
	EnvPort                 = "PORT"
	EnvLogLevel             = "LOG_LEVEL"
	EnvPostmarkServerToken  = "POSTMARK_SERVER_TOKEN"
	EnvPostmarkAccountToken = "POSTMARK_ACCOUNT_TOKEN"
	EnvRateLimitRedisAddr   = "RATE_LIMIT_REDIS_ADDR"
)

// Defaults applied when the config file omits a value.
const (
	DefaultPort              = 8080
	DefaultLogLevel          = "info"
	DefaultUsernameMaxLength = 150
	DefaultMailProvider      = MailProviderLog
	DefaultRateLimitPrefix   = "appsubs:rl"
)

// Mail provider names.
const (
	MailProviderLog      = "log"
	MailProviderPostmark = "postmark"
)

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// AccountConfig controls signup behaviour.
type AccountConfig struct {
	UniqueEmail       *bool `yaml:"unique-email"`
	UsernameMaxLength int   `yaml:"username-max-length"`
}

// EmailUnique reports whether email uniqueness is enforced.
func (a AccountConfig) EmailUnique() bool {
	return a.UniqueEmail == nil || *a.UniqueEmail
}

// MailConfig selects and configures the outbound mail sender.
type MailConfig struct {
	Provider     string `yaml:"provider"`
	From         string `yaml:"from"`
	ServerToken  string `yaml:"server-token"`
	AccountToken string `yaml:"account-token"`
	ConfirmURL   string `yaml:"confirm-url"`
}

// RateLimitConfig configures throttling of the unauthenticated auth routes.
// Limits are requests per second per client; 0 disables the limit.
type RateLimitConfig struct {
	Limit         int            `yaml:"limit"`
	Routes        map[string]int `yaml:"routes"` // Per-route overrides keyed by path, e.g. "/login".
	RedisEnabled  bool           `yaml:"redis-enabled"`
	RedisAddr     string         `yaml:"redis-addr"`
	RedisPassword string         `yaml:"redis-password"`
	RedisDB       int            `yaml:"redis-db"`
	RedisPrefix   string         `yaml:"redis-prefix"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled reports whether /metrics is served. Defaults to true.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// PlanSeed describes a catalog plan inserted at startup.
type PlanSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
}

// Config holds resolved application configuration values.
type Config struct {
	ConfigPath string `yaml:"-"`

	Port        int    `yaml:"port"`
	DatabaseDSN string `yaml:"database-dsn"`
	Database    struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log-level"`

	Account   AccountConfig   `yaml:"account"`
	Mail      MailConfig      `yaml:"mail"`
	RateLimit RateLimitConfig `yaml:"rate-limit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Plans     []PlanSeed      `yaml:"plans"`
}

// DSN returns the effective database DSN.
func (c Config) DSN() string {
	if dsn := strings.TrimSpace(c.DatabaseDSN); dsn != "" {
		return dsn
	}
	return strings.TrimSpace(c.Database.DSN)
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the config file at path (when present), applies environment
// overrides and defaults, and validates the result.
func Load(path string) (Config, error) {
	cfg := Config{ConfigPath: ResolveConfigPath(path)}

	data, errRead := os.ReadFile(cfg.ConfigPath)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	case errors.Is(errRead, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config file: %w", errRead)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.DSN() == "" {
		return Config{}, ErrMissingDatabaseDSN
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	switch cfg.Mail.Provider {
	case MailProviderLog, MailProviderPostmark:
	default:
		return Config{}, fmt.Errorf("unsupported mail provider: %s", cfg.Mail.Provider)
	}
	return cfg, nil
}

// LoadFromEnv loads config from the path named by CONFIG_PATH.
func LoadFromEnv() (Config, error) {
	return Load(os.Getenv(EnvConfigPath))
}

func applyEnv(cfg *Config) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if portRaw := strings.TrimSpace(os.Getenv(EnvPort)); portRaw != "" {
		if port, errParse := strconv.Atoi(portRaw); errParse == nil {
			cfg.Port = port
		}
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.LogLevel = level
	}
	if token := strings.TrimSpace(os.Getenv(EnvPostmarkServerToken)); token != "" {
		cfg.Mail.ServerToken = token
	}
	if token := strings.TrimSpace(os.Getenv(EnvPostmarkAccountToken)); token != "" {
		cfg.Mail.AccountToken = token
	}
	if addr := strings.TrimSpace(os.Getenv(EnvRateLimitRedisAddr)); addr != "" {
		cfg.RateLimit.RedisAddr = addr
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Account.UsernameMaxLength <= 0 {
		cfg.Account.UsernameMaxLength = DefaultUsernameMaxLength
	}
	cfg.Mail.Provider = strings.ToLower(strings.TrimSpace(cfg.Mail.Provider))
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = DefaultMailProvider
	}
	if cfg.RateLimit.Limit < 0 {
		cfg.RateLimit.Limit = 0
	}
	if cfg.RateLimit.RedisDB < 0 {
		cfg.RateLimit.RedisDB = 0
	}
	cfg.RateLimit.RedisPrefix = strings.TrimSpace(cfg.RateLimit.RedisPrefix)
	if cfg.RateLimit.RedisPrefix == "" {
		cfg.RateLimit.RedisPrefix = DefaultRateLimitPrefix
	}
}
