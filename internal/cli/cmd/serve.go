package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/profilecache/internal/infrastructure/server"
	"github.com/bnema/profilecache/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve profiles over HTTP",
	Long: `Starts the HTTP API:

  GET    /profiles/{id}          resolve a profile through the cache
  DELETE /profiles/{id}          drop a cached profile
  POST   /profiles/{id}/refresh  reload a profile from the source
  GET    /stats                  cache counters
  GET    /metrics                Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM. Changes to the config file's
logging.level are applied without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.listen_addr)")
}

func runServe(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	log := logging.FromContext(app.Ctx())

	if err := app.WatchConfig(); err != nil {
		log.Warn().Err(err).Msg("config watch unavailable")
	}

	addr := app.Config.Server.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(app.Ctx(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(app.ProfilesUC, server.Options{
		Addr:            addr,
		ShutdownTimeout: app.Config.Server.ShutdownTimeout,
		Gatherer:        app.Registry,
		Logger:          *log,
	})
	log.Info().
		Str("source", string(app.Config.Source.Kind)).
		Int("capacity", app.Config.Cache.Capacity).
		Msg("profile cache ready")

	return srv.ListenAndServe(ctx)
}
