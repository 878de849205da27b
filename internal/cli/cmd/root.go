// Package cmd provides Cobra CLI commands for profilecache.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/profilecache/internal/cli"
	"github.com/bnema/profilecache/internal/domain/build"
)

var (
	app        *cli.App
	buildInfo  build.Info
	configFile string
	rootCmd    = &cobra.Command{
		Use:   "profilecache",
		Short: "A loading LRU cache in front of slow profile stores",
		Long: `profilecache serves user profiles through a fixed-size LRU cache.

Misses are loaded from the configured source (sqlite, memcached or a
simulated slow server). Concurrent lookups of the same profile share a single
load, and failed loads are never cached.

Use 'profilecache demo' to replay the classic scenario, or 'profilecache serve'
to expose the cache over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			if !needsApp(cmd) {
				return nil
			}

			var err error
			app, err = cli.NewApp(configFile)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/profilecache/config.toml)")
}

// needsApp reports whether cmd runs against the configured cache.
func needsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "version", "schema", "demo":
		return false
	}
	return true
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}

func requireApp() (*cli.App, error) {
	a := GetApp()
	if a == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return a, nil
}
