package config

import (
	"strings"
	"testing"
	"time"

	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig_Defaults(t *testing.T) {
	require.NoError(t, validateConfig(DefaultConfig()))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{name: "zero capacity", mutate: func(c *Config) { c.Cache.Capacity = 0 }, wantKey: "cache.capacity"},
		{name: "unknown source", mutate: func(c *Config) { c.Source.Kind = "redis" }, wantKey: "source.kind"},
		{
			name: "memcache port",
			mutate: func(c *Config) {
				c.Source.Kind = SourceMemcache
				c.Memcache.Port = 0
			},
			wantKey: "memcache.port",
		},
		{
			name: "memcache key prefix too long",
			mutate: func(c *Config) {
				c.Source.Kind = SourceMemcache
				c.Memcache.KeyPrefix = strings.Repeat("p", maxKeyPrefixLength+1)
			},
			wantKey: "memcache.key_prefix",
		},
		{
			name: "memcache key prefix with space",
			mutate: func(c *Config) {
				c.Source.Kind = SourceMemcache
				c.Memcache.KeyPrefix = "user profile:"
			},
			wantKey: "memcache.key_prefix",
		},
		{
			name: "memcache ttl beyond relative range",
			mutate: func(c *Config) {
				c.Source.Kind = SourceMemcache
				c.Memcache.TTL = 31 * 24 * time.Hour
			},
			wantKey: "memcache.ttl",
		},
		{name: "negative latency", mutate: func(c *Config) { c.Simulated.Latency = -time.Second }, wantKey: "simulated.latency"},
		{name: "listen addr", mutate: func(c *Config) { c.Server.ListenAddr = "localhost" }, wantKey: "server.listen_addr"},
		{name: "warm concurrency", mutate: func(c *Config) { c.Warm.Concurrency = 0 }, wantKey: "warm.concurrency"},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantKey: "logging.level"},
		{name: "log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantKey: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}

func TestValidateConfig_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Capacity = -1
	cfg.Warm.Concurrency = 0

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.capacity")
	assert.Contains(t, err.Error(), "warm.concurrency")
}

func TestValidateConfig_MemcacheLongestPrefixFitsKeyLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.Kind = SourceMemcache
	cfg.Memcache.KeyPrefix = strings.Repeat("p", maxKeyPrefixLength)
	cfg.Memcache.TTL = time.Hour

	require.NoError(t, validateConfig(cfg))
	assert.LessOrEqual(t, len(cfg.Memcache.KeyPrefix)+entity.MaxUserIDLength, maxMemcacheKeyLength)
}

func TestValidateConfig_MemcacheIgnoredForOtherSources(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memcache.Port = 0
	assert.NoError(t, validateConfig(cfg))
}

func TestNormalizeConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.Kind = " Memcache "
	cfg.Logging.Level = "WARN"
	cfg.Logging.Format = ""

	normalizeConfig(cfg)

	assert.Equal(t, SourceMemcache, cfg.Source.Kind)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}
