package config

import "time"

const (
	defaultCapacity        = 5
	defaultMemcacheHost    = "127.0.0.1"
	defaultMemcachePort    = 11211
	defaultMemcachePrefix  = "profile:"
	defaultMemcacheTimeout = 500 * time.Millisecond
	defaultLatency         = 500 * time.Millisecond
	defaultListenAddr      = "127.0.0.1:8080"
	defaultShutdownTimeout = 10 * time.Second
	defaultWarmConcurrency = 4
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Capacity: defaultCapacity,
		},
		Source: SourceConfig{
			Kind: SourceSimulated,
		},
		Database: DatabaseConfig{
			// Path is resolved in Load()
		},
		Memcache: MemcacheConfig{
			Host:      defaultMemcacheHost,
			Port:      defaultMemcachePort,
			KeyPrefix: defaultMemcachePrefix,
			Timeout:   defaultMemcacheTimeout,
		},
		Simulated: SimulatedConfig{
			Latency: defaultLatency,
		},
		Server: ServerConfig{
			ListenAddr:      defaultListenAddr,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Warm: WarmConfig{
			Concurrency: defaultWarmConcurrency,
		},
		Logging: LoggingConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("cache.capacity", defaults.Cache.Capacity)
	m.viper.SetDefault("source.kind", string(defaults.Source.Kind))

	m.viper.SetDefault("memcache.host", defaults.Memcache.Host)
	m.viper.SetDefault("memcache.port", defaults.Memcache.Port)
	m.viper.SetDefault("memcache.key_prefix", defaults.Memcache.KeyPrefix)
	m.viper.SetDefault("memcache.timeout", defaults.Memcache.Timeout)
	m.viper.SetDefault("memcache.ttl", defaults.Memcache.TTL)

	m.viper.SetDefault("simulated.latency", defaults.Simulated.Latency)

	m.viper.SetDefault("server.listen_addr", defaults.Server.ListenAddr)
	m.viper.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)

	m.viper.SetDefault("warm.concurrency", defaults.Warm.Concurrency)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
}
