// Package config loads service configuration from environment variables so
// main stays lean. Values are parsed with github.com/caarlos0/env; Sanitize
// applies guardrails after loading.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the full service configuration.
type Config struct {
	Addr string `env:"CHEMCONSOLE_ADDR" envDefault:":8080"`

	// JWTSigningKey verifies session tokens issued by the identity provider.
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`

	// DatabaseURL enables the PostgreSQL profile and activity stores when
	// set. Empty means in-memory stores.
	DatabaseURL string `env:"DATABASE_URL"`

	// DevAccountPassword seeds built-in sign-in accounts when set. Leave
	// empty outside local development.
	DevAccountPassword string `env:"DEV_ACCOUNT_PASSWORD"`

	Redis RedisConfig `envPrefix:"REDIS_"`

	Resolver ResolverConfig
	Presence PresenceConfig
}

// RedisConfig configures the optional Redis backends (presence, deletion
// guard). An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// ResolverConfig holds the identity resolution timing ceilings.
type ResolverConfig struct {
	// LookupTimeout bounds the profile-store lookup race.
	LookupTimeout time.Duration `env:"RESOLVER_LOOKUP_TIMEOUT" envDefault:"3s"`
	// CreateTimeout bounds first-time profile creation.
	CreateTimeout time.Duration `env:"RESOLVER_CREATE_TIMEOUT" envDefault:"10s"`
	// SafetyTimeout forces the controller out of its loading state.
	SafetyTimeout time.Duration `env:"RESOLVER_SAFETY_TIMEOUT" envDefault:"15s"`
	// DeletionGuardTTL is the soft-deletion suppression window.
	DeletionGuardTTL time.Duration `env:"DELETION_GUARD_TTL" envDefault:"10m"`
}

// PresenceConfig holds liveness tracking knobs.
type PresenceConfig struct {
	// TTL is how long a liveness record survives without a heartbeat.
	TTL time.Duration `env:"PRESENCE_TTL" envDefault:"2m"`
	// ActivityWindow is the default activity summary window.
	ActivityWindow time.Duration `env:"ACTIVITY_WINDOW" envDefault:"24h"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from env. Timing ceilings are
// hard floors here: a zero or negative timeout would turn the timeout race
// into an immediate fallback.
func (c *Config) Sanitize() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Resolver.LookupTimeout <= 0 {
		c.Resolver.LookupTimeout = 3 * time.Second
	}
	if c.Resolver.CreateTimeout <= 0 {
		c.Resolver.CreateTimeout = 10 * time.Second
	}
	if c.Resolver.SafetyTimeout <= 0 {
		c.Resolver.SafetyTimeout = 15 * time.Second
	}
	if c.Resolver.DeletionGuardTTL <= 0 {
		c.Resolver.DeletionGuardTTL = 10 * time.Minute
	}
	if c.Presence.TTL <= 0 {
		c.Presence.TTL = 2 * time.Minute
	}
	if c.Presence.ActivityWindow <= 0 {
		c.Presence.ActivityWindow = 24 * time.Hour
	}
}
