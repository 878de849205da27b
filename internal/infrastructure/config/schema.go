package config

import "time"

// Config is the profilecache configuration tree.
type Config struct {
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache" toml:"cache" json:"cache"`
	Source    SourceConfig    `mapstructure:"source" yaml:"source" toml:"source" json:"source"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database" toml:"database" json:"database"`
	Memcache  MemcacheConfig  `mapstructure:"memcache" yaml:"memcache" toml:"memcache" json:"memcache"`
	Simulated SimulatedConfig `mapstructure:"simulated" yaml:"simulated" toml:"simulated" json:"simulated"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server" toml:"server" json:"server"`
	Warm      WarmConfig      `mapstructure:"warm" yaml:"warm" toml:"warm" json:"warm"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging" toml:"logging" json:"logging"`
}

// CacheConfig sizes the in-memory profile cache.
type CacheConfig struct {
	// Capacity is the maximum number of cached profiles.
	Capacity int `mapstructure:"capacity" yaml:"capacity" toml:"capacity" json:"capacity" jsonschema:"minimum=1,default=5"`
}

// SourceKind selects the backend the cache loads profiles from.
type SourceKind string

const (
	SourceSQLite    SourceKind = "sqlite"
	SourceMemcache  SourceKind = "memcache"
	SourceSimulated SourceKind = "simulated"
)

// SourceConfig selects the profile backend.
type SourceConfig struct {
	Kind SourceKind `mapstructure:"kind" yaml:"kind" toml:"kind" json:"kind" jsonschema:"enum=sqlite,enum=memcache,enum=simulated,default=simulated"`
}

// DatabaseConfig locates the sqlite profile store.
type DatabaseConfig struct {
	// Path defaults to $XDG_DATA_HOME/profilecache/profiles.db when empty.
	Path string `mapstructure:"path" yaml:"path" toml:"path" json:"path,omitempty"`
}

// MemcacheConfig addresses the memcached profile store.
type MemcacheConfig struct {
	Host      string `mapstructure:"host" yaml:"host" toml:"host" json:"host" jsonschema:"default=127.0.0.1"`
	Port      int    `mapstructure:"port" yaml:"port" toml:"port" json:"port" jsonschema:"minimum=1,maximum=65535,default=11211"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix" toml:"key_prefix" json:"key_prefix"`
	// Timeout bounds every memcached round trip.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" toml:"timeout" json:"timeout"`
	// TTL is the expiration of seeded profiles. Zero keeps them until evicted.
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl" toml:"ttl" json:"ttl"`
}

// SimulatedConfig tunes the built-in slow profile server.
type SimulatedConfig struct {
	Latency time.Duration `mapstructure:"latency" yaml:"latency" toml:"latency" json:"latency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr" yaml:"listen_addr" toml:"listen_addr" json:"listen_addr" jsonschema:"default=127.0.0.1:8080"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout" json:"shutdown_timeout"`
}

// WarmConfig bounds concurrent warm-up loads.
type WarmConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency" toml:"concurrency" json:"concurrency" jsonschema:"minimum=1,default=4"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,enum=disabled,default=info"`
	Format string `mapstructure:"format" yaml:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json,default=console"`
}
