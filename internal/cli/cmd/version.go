package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/profilecache/internal/cli/styles"
	"github.com/bnema/profilecache/internal/domain/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Run: func(cmd *cobra.Command, _ []string) {
		theme := styles.NewTheme()
		fmt.Fprintln(cmd.OutOrStdout(), theme.Title.Render("profilecache")+" "+theme.Highlight.Render(buildInfo.Version))
		fmt.Fprintln(cmd.OutOrStdout(), theme.Subtle.Render(fmt.Sprintf("commit %s, built %s, %s", buildInfo.Commit, buildInfo.BuildDate, buildInfo.GoVersion)))
		fmt.Fprintln(cmd.OutOrStdout(), theme.Subtle.Render(build.RepoURL()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
