// Package cli wires configuration, logging and the profile cache for the
// profilecache commands.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/bnema/profilecache/internal/application/port"
	"github.com/bnema/profilecache/internal/application/usecase"
	"github.com/bnema/profilecache/internal/cli/styles"
	"github.com/bnema/profilecache/internal/domain/build"
	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/infrastructure/cache"
	"github.com/bnema/profilecache/internal/infrastructure/config"
	"github.com/bnema/profilecache/internal/infrastructure/memcached"
	"github.com/bnema/profilecache/internal/infrastructure/metrics"
	"github.com/bnema/profilecache/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/profilecache/internal/infrastructure/remote"
	"github.com/bnema/profilecache/internal/logging"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "profilecache"

// ErrSeedUnsupported is returned when the configured source cannot be written to.
var ErrSeedUnsupported = errors.New("seeding requires source.kind sqlite or memcache")

// App holds CLI dependencies.
type App struct {
	Config    *config.Config
	ConfigMgr *config.Manager
	Theme     *styles.Theme
	BuildInfo build.Info
	Registry  *prometheus.Registry

	Source port.ProfileSource
	// Writer is nil for sources that cannot be seeded.
	Writer port.ProfileWriter
	Cache  *cache.Loading[string, *entity.Profile]

	// Use cases
	ProfilesUC *usecase.GetProfileUseCase
	WarmUC     *usecase.WarmProfilesUseCase

	db  *sqlite.LazyDB
	ctx context.Context
}

// NewApp loads configuration from configFile (or the default locations when
// empty) and builds the profile cache over the configured source.
func NewApp(configFile string) (*App, error) {
	mgr, err := config.NewManager(configFile)
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	// The logger itself stays at trace so the global level can be changed on config reload.
	logger := logging.NewFromConfigValues("trace", cfg.Logging.Format)
	zerolog.SetGlobalLevel(logging.ParseLevel(cfg.Logging.Level))
	ctx := logging.WithContext(context.Background(), logger)

	if used := mgr.ConfigFileUsed(); used != "" {
		logger.Debug().Str("file", used).Msg("config loaded")
	}

	app := &App{
		Config:    cfg,
		ConfigMgr: mgr,
		Theme:     styles.NewTheme(),
		Registry:  newRegistry(),
		ctx:       ctx,
	}

	app.openSource(ctx)

	app.Cache, err = NewProfileCache(cfg.Cache.Capacity, app.Source,
		cache.WithObserver(metrics.NewCacheMetrics(app.Registry, MetricsNamespace, "profiles")))
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("create profile cache: %w", err)
	}

	app.ProfilesUC = usecase.NewGetProfileUseCase(app.Cache)
	app.WarmUC = usecase.NewWarmProfilesUseCase(app.ProfilesUC, cfg.Warm.Concurrency)
	return app, nil
}

// NewProfileCache creates a loading cache over source.
func NewProfileCache(capacity int, source port.ProfileSource, opts ...cache.Option) (*cache.Loading[string, *entity.Profile], error) {
	return cache.New[string, *entity.Profile](capacity, source.Fetch, opts...)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (a *App) openSource(ctx context.Context) {
	log := logging.FromContext(ctx)
	cfg := a.Config

	switch cfg.Source.Kind {
	case config.SourceSQLite:
		// The database is opened on the first load or seed.
		a.db = sqlite.NewLazyDB(cfg.Database.Path)
		repo := sqlite.NewLazyProfileRepository(a.db)
		a.Source = sqlite.NewProfileSource(repo)
		a.Writer = repo
		log.Debug().Str("db_path", cfg.Database.Path).Msg("sqlite profile source ready")

	case config.SourceMemcache:
		client := memcached.NewClient(cfg.Memcache.Host, cfg.Memcache.Port, cfg.Memcache.Timeout)
		source := memcached.NewSource(client, cfg.Memcache.KeyPrefix, cfg.Memcache.TTL)
		a.Source = source
		a.Writer = source
		log.Debug().Str("host", cfg.Memcache.Host).Int("port", cfg.Memcache.Port).Msg("memcached profile source ready")

	default:
		a.Source = remote.NewSimulatedServer(cfg.Simulated.Latency)
		log.Debug().Dur("latency", cfg.Simulated.Latency).Msg("simulated profile source ready")
	}
}

// SeedUC returns the seeding use case for the configured source.
func (a *App) SeedUC() (*usecase.SeedProfilesUseCase, error) {
	if a.Writer == nil {
		return nil, fmt.Errorf("%w (configured: %s)", ErrSeedUnsupported, a.Config.Source.Kind)
	}
	return usecase.NewSeedProfilesUseCase(a.Writer), nil
}

// WatchConfig reloads the config file on change and applies the new log level.
func (a *App) WatchConfig() error {
	a.ConfigMgr.OnConfigChange(func(cfg *config.Config) {
		level := logging.ParseLevel(cfg.Logging.Level)
		zerolog.SetGlobalLevel(level)
		logging.FromContext(a.ctx).Info().Str("level", level.String()).Msg("config reloaded")
	})
	return a.ConfigMgr.Watch()
}

// Ctx returns the context carrying the application logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
