package ratelimit

import (
	"strings"

	"github.com/router-for-me/AppSubscriptions/internal/config"
)

// Settings are the normalized rate limit settings.
type Settings struct {
	Limit         int            // Default requests per second per client; 0 disables.
	Routes        map[string]int // Per-route overrides keyed by normalized path.
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// SettingsFromConfig normalizes the rate limit section of the config file.
func SettingsFromConfig(cfg config.RateLimitConfig) Settings {
	settings := Settings{
		Limit:         max(cfg.Limit, 0),
		Routes:        make(map[string]int, len(cfg.Routes)),
		RedisEnabled:  cfg.RedisEnabled,
		RedisAddr:     strings.TrimSpace(cfg.RedisAddr),
		RedisPassword: strings.TrimSpace(cfg.RedisPassword),
		RedisDB:       max(cfg.RedisDB, 0),
		RedisPrefix:   strings.TrimSpace(cfg.RedisPrefix),
	}
	for route, limit := range cfg.Routes {
		settings.Routes[normalizeRoute(route)] = max(limit, 0)
	}
	if settings.RedisPrefix == "" {
		settings.RedisPrefix = config.DefaultRateLimitPrefix
	}
	return settings
}
