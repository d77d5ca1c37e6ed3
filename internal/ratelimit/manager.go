package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	redisBackoff     = 30 * time.Second
	redisPingTimeout = 2 * time.Second
)

// Options customizes a Manager. Zero values use the real clock and redis.NewClient.
type Options struct {
	Now         func() time.Time
	RedisClient func(options *redis.Options) *redis.Client
}

// Manager routes checks to Redis when it is enabled and reachable, and to an
// in-process limiter otherwise. After a Redis failure the memory limiter is
// used for redisBackoff before Redis is tried again.
type Manager struct {
	settings    Settings
	now         func() time.Time
	memory      *MemoryLimiter
	redisClient func(options *redis.Options) *redis.Client

	mu      sync.Mutex
	shared  *RedisLimiter
	retryAt time.Time
}

// NewManager constructs a Manager for settings.
func NewManager(settings Settings, opts Options) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RedisClient == nil {
		opts.RedisClient = redis.NewClient
	}
	return &Manager{
		settings:    settings,
		now:         opts.Now,
		memory:      NewMemoryLimiter(),
		redisClient: opts.RedisClient,
	}
}

// Settings returns the settings the manager enforces.
func (m *Manager) Settings() Settings {
	if m == nil {
		return Settings{}
	}
	return m.settings
}

// Allow checks decision against the best available backend.
func (m *Manager) Allow(ctx context.Context, decision Decision) (Result, error) {
	key := KeyForDecision(decision)
	if m == nil || key == "" {
		return Result{Allowed: true}, nil
	}
	now := m.now()
	if shared := m.sharedLimiter(ctx, now); shared != nil {
		result, errShared := shared.Allow(ctx, key, decision.Limit, now)
		if errShared == nil {
			return result, nil
		}
		m.backOff(errShared, now)
	}
	return m.memory.Allow(ctx, key, decision.Limit, now)
}

// Close releases the Redis client, if one was opened.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shared == nil {
		return nil
	}
	errClose := m.shared.client.Close()
	m.shared = nil
	return errClose
}

// sharedLimiter returns the Redis limiter, dialing it on first use. It
// returns nil when Redis is disabled or backing off.
func (m *Manager) sharedLimiter(ctx context.Context, now time.Time) *RedisLimiter {
	if !m.settings.RedisEnabled || m.settings.RedisAddr == "" {
		return nil
	}
	m.mu.Lock()
	if m.shared != nil || now.Before(m.retryAt) {
		shared := m.shared
		m.mu.Unlock()
		return shared
	}
	m.mu.Unlock()

	client := m.redisClient(&redis.Options{
		Addr:     m.settings.RedisAddr,
		Password: m.settings.RedisPassword,
		DB:       m.settings.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if errPing := client.Ping(ctxPing).Err(); errPing != nil {
		_ = client.Close()
		m.backOff(errPing, now)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shared != nil {
		_ = client.Close()
		return m.shared
	}
	m.shared = NewRedisLimiter(client, m.settings.RedisPrefix)
	return m.shared
}

// backOff drops the Redis client and skips Redis until now+redisBackoff.
func (m *Manager) backOff(err error, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Before(m.retryAt) {
		return
	}
	if m.shared != nil {
		_ = m.shared.client.Close()
		m.shared = nil
	}
	m.retryAt = now.Add(redisBackoff)
	log.WithError(err).WithField("addr", m.settings.RedisAddr).Warn("rate limit: redis unavailable, using memory limiter")
}
