package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.Resolver.LookupTimeout)
	assert.Equal(t, 10*time.Second, cfg.Resolver.CreateTimeout)
	assert.Equal(t, 15*time.Second, cfg.Resolver.SafetyTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Resolver.DeletionGuardTTL)
	assert.Equal(t, 2*time.Minute, cfg.Presence.TTL)
	assert.Equal(t, 24*time.Hour, cfg.Presence.ActivityWindow)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHEMCONSOLE_ADDR", ":9090")
	t.Setenv("RESOLVER_LOOKUP_TIMEOUT", "1s")
	t.Setenv("PRESENCE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, time.Second, cfg.Resolver.LookupTimeout)
	assert.Equal(t, 90*time.Second, cfg.Presence.TTL)
}

func TestSanitize_FloorsNonPositiveDurations(t *testing.T) {
	cfg := &Config{}
	cfg.Resolver.LookupTimeout = -1
	cfg.Presence.TTL = 0
	cfg.Sanitize()

	assert.Equal(t, 3*time.Second, cfg.Resolver.LookupTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Presence.TTL)
	assert.Equal(t, ":8080", cfg.Addr)
}
