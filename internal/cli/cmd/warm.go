package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/profilecache/internal/cli/styles"
)

var warmCmd = &cobra.Command{
	Use:   "warm <user-id>...",
	Short: "Load profiles into the cache concurrently",
	Long: `Loads the given profiles concurrently, at most warm.concurrency at a time,
then prints the cache statistics. Failed IDs are reported but do not stop the run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWarm,
}

func init() {
	rootCmd.AddCommand(warmCmd)
}

func runWarm(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	renderer := styles.NewProfileRenderer(app.Theme)

	result, err := app.WarmUC.Execute(app.Ctx(), args)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderWarmResult(result.Loaded, result.Failed))
	fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderStats(app.ProfilesUC.Stats()))
	return nil
}
