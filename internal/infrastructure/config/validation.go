package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/bnema/profilecache/internal/domain/entity"
)

const (
	// memcached rejects keys longer than this.
	maxMemcacheKeyLength = 250
	maxKeyPrefixLength   = maxMemcacheKeyLength - entity.MaxUserIDLength
	// Longer expirations are read by memcached as unix timestamps.
	maxMemcacheTTL = 30 * 24 * time.Hour
)

var validLogLevels = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "warning": {},
	"error": {}, "disabled": {}, "off": {},
}

// validateConfig collects every invalid value into a single error.
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateCache(config)...)
	validationErrors = append(validationErrors, validateSource(config)...)
	validationErrors = append(validationErrors, validateMemcache(config)...)
	validationErrors = append(validationErrors, validateSimulated(config)...)
	validationErrors = append(validationErrors, validateServer(config)...)
	validationErrors = append(validationErrors, validateWarm(config)...)
	validationErrors = append(validationErrors, validateLogging(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

func validateCache(config *Config) []string {
	if config.Cache.Capacity < 1 {
		return []string{fmt.Sprintf("cache.capacity must be at least 1 (got %d)", config.Cache.Capacity)}
	}
	return nil
}

func validateSource(config *Config) []string {
	switch config.Source.Kind {
	case SourceSQLite, SourceMemcache, SourceSimulated:
		return nil
	default:
		return []string{fmt.Sprintf("source.kind must be one of sqlite, memcache, simulated (got %q)", config.Source.Kind)}
	}
}

func validateMemcache(config *Config) []string {
	if config.Source.Kind != SourceMemcache {
		return nil
	}
	var validationErrors []string
	if config.Memcache.Host == "" {
		validationErrors = append(validationErrors, "memcache.host must not be empty")
	}
	if config.Memcache.Port < 1 || config.Memcache.Port > 65535 {
		validationErrors = append(validationErrors, "memcache.port must be between 1 and 65535")
	}
	if config.Memcache.Timeout < 0 {
		validationErrors = append(validationErrors, "memcache.timeout must be non-negative")
	}
	if len(config.Memcache.KeyPrefix) > maxKeyPrefixLength {
		validationErrors = append(validationErrors, fmt.Sprintf("memcache.key_prefix must be at most %d bytes", maxKeyPrefixLength))
	}
	if strings.ContainsFunc(config.Memcache.KeyPrefix, func(r rune) bool { return r <= ' ' || r == 0x7f }) {
		validationErrors = append(validationErrors, "memcache.key_prefix must not contain whitespace or control characters")
	}
	if config.Memcache.TTL < 0 || config.Memcache.TTL > maxMemcacheTTL {
		validationErrors = append(validationErrors, "memcache.ttl must be between 0 and 720h")
	}
	return validationErrors
}

func validateSimulated(config *Config) []string {
	if config.Simulated.Latency < 0 {
		return []string{"simulated.latency must be non-negative"}
	}
	return nil
}

func validateServer(config *Config) []string {
	var validationErrors []string
	if _, _, err := net.SplitHostPort(config.Server.ListenAddr); err != nil {
		validationErrors = append(validationErrors, fmt.Sprintf("server.listen_addr %q is not host:port", config.Server.ListenAddr))
	}
	if config.Server.ShutdownTimeout < 0 {
		validationErrors = append(validationErrors, "server.shutdown_timeout must be non-negative")
	}
	return validationErrors
}

func validateWarm(config *Config) []string {
	if config.Warm.Concurrency < 1 {
		return []string{"warm.concurrency must be at least 1"}
	}
	return nil
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	if config.Logging.Level != "" {
		if _, ok := validLogLevels[config.Logging.Level]; !ok {
			validationErrors = append(validationErrors, fmt.Sprintf("logging.level %q is not a known level", config.Logging.Level))
		}
	}
	switch config.Logging.Format {
	case "console", "json":
	default:
		validationErrors = append(validationErrors, "logging.format must be console or json")
	}
	return validationErrors
}
