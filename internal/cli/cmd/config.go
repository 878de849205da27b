package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/profilecache/internal/infrastructure/config"
)

var schemaOut string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the config file",
	Long: `Prints the JSON schema of config.toml. With --out, writes
config.schema.json into the given directory instead.`,
	Args: cobra.NoArgs,
	RunE: runConfigSchema,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSchemaCmd)
	configSchemaCmd.Flags().StringVar(&schemaOut, "out", "", "directory to write config.schema.json to")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	theme := app.Theme

	file := app.ConfigMgr.ConfigFileUsed()
	if file == "" {
		file = "(none, defaults and environment only)"
	}
	cfg := app.Config

	fmt.Fprintln(out, theme.Title.Render("config file")+" "+theme.Subtle.Render(file))
	rows := [][2]string{
		{"cache.capacity", fmt.Sprint(cfg.Cache.Capacity)},
		{"source.kind", string(cfg.Source.Kind)},
		{"database.path", cfg.Database.Path},
		{"memcache", fmt.Sprintf("%s:%d prefix=%q", cfg.Memcache.Host, cfg.Memcache.Port, cfg.Memcache.KeyPrefix)},
		{"simulated.latency", cfg.Simulated.Latency.String()},
		{"server.listen_addr", cfg.Server.ListenAddr},
		{"warm.concurrency", fmt.Sprint(cfg.Warm.Concurrency)},
		{"logging", cfg.Logging.Level + " / " + cfg.Logging.Format},
	}
	for _, row := range rows {
		fmt.Fprintln(out, theme.Subtle.Width(20).Render(row[0])+theme.Normal.Render(row[1]))
	}
	return nil
}

func runConfigSchema(cmd *cobra.Command, _ []string) error {
	if schemaOut != "" {
		path, err := config.GenerateSchemaFile(schemaOut)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Generated JSON schema: "+path)
		return nil
	}

	data, err := config.Schema()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
