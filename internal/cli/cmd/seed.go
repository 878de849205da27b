package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedScore int

var seedCmd = &cobra.Command{
	Use:   "seed <user-id>...",
	Short: "Write profiles into the configured store",
	Long: `Creates a "User: <id>" profile for every ID in the sqlite database or in
memcached, depending on source.kind. The simulated source cannot be seeded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVar(&seedScore, "score", 10, "score stored with every profile")
}

func runSeed(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	seed, err := app.SeedUC()
	if err != nil {
		return err
	}

	profiles, err := seed.Execute(app.Ctx(), args, seedScore)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), app.Theme.SuccessStyle.Render(
		fmt.Sprintf("seeded %d profile(s) into %s", len(profiles), app.Config.Source.Kind)))
	return nil
}
