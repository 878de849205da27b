package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/profilecache/internal/cli/styles"
	"github.com/bnema/profilecache/internal/domain/entity"
)

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get <user-id>...",
	Short: "Resolve profiles through the cache",
	Long: `Resolves each user ID through the cache in order. Repeated IDs are served
from memory; the rest are loaded from the configured source.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&getJSON, "json", false, "print profiles as JSON")
}

func runGet(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	ctx := app.Ctx()
	out := cmd.OutOrStdout()
	renderer := styles.NewProfileRenderer(app.Theme)

	var (
		found  []*entity.Profile
		failed int
	)
	for _, id := range args {
		_, hit := app.ProfilesUC.Cached(id)
		start := time.Now()
		profile, err := app.ProfilesUC.Execute(ctx, id)
		if err != nil {
			failed++
		} else {
			found = append(found, profile)
		}
		if !getJSON {
			fmt.Fprintln(out, renderer.RenderLookup(styles.Lookup{
				UserID:  id,
				Hit:     hit,
				Profile: profile,
				Err:     err,
				Elapsed: time.Since(start),
			}))
		}
	}

	if getJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(found); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d lookup(s) failed", failed, len(args))
	}
	return nil
}
