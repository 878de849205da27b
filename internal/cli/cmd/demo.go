package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/profilecache/internal/cli"
	"github.com/bnema/profilecache/internal/cli/styles"
	"github.com/bnema/profilecache/internal/infrastructure/remote"
	"github.com/bnema/profilecache/internal/logging"
)

var (
	demoCapacity int
	demoLatency  time.Duration
	demoBurst    int
)

// demoSequence is the classic walk-through: with capacity 3, dude2 and dude1
// are evicted and reloaded while dude1 and dude3 are served from memory.
var demoSequence = []string{"dude1", "dude2", "dude1", "dude3", "dude4", "dude2", "dude3", "dude1"}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Replay the profile cache walk-through against a simulated server",
	Long: `Replays a fixed lookup sequence against a simulated slow profile server
and shows which lookups were served from memory (HIT) and which had to load
(LOAD), together with the cache content after each step.

With --burst N, the demo finishes by requesting one uncached profile N times
concurrently to show that the lookups share a single load.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().IntVar(&demoCapacity, "capacity", 3, "cache capacity")
	demoCmd.Flags().DurationVar(&demoLatency, "latency", remote.DefaultLatency, "simulated server latency")
	demoCmd.Flags().IntVar(&demoBurst, "burst", 0, "concurrent lookups of one profile after the sequence")
}

func runDemo(cmd *cobra.Command, _ []string) error {
	theme := styles.NewTheme()
	renderer := styles.NewProfileRenderer(theme)
	out := cmd.OutOrStdout()

	ctx := logging.WithContext(cmd.Context(), logging.NewFromEnv())

	server := remote.NewSimulatedServer(demoLatency)
	profiles, err := cli.NewProfileCache(demoCapacity, server)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("capacity %d, latency %s", demoCapacity, demoLatency)))
	for _, id := range demoSequence {
		_, hit := profiles.Peek(id)
		start := time.Now()
		profile, err := profiles.Get(ctx, id)
		fmt.Fprintln(out, renderer.RenderLookup(styles.Lookup{
			UserID:  id,
			Hit:     hit,
			Profile: profile,
			Err:     err,
			Elapsed: time.Since(start),
			Keys:    profiles.Keys(),
		}))
	}

	if demoBurst > 0 {
		const burstID = "dude5"
		before := server.Calls()
		start := time.Now()

		var wg sync.WaitGroup
		for range demoBurst {
			wg.Go(func() {
				_, _ = profiles.Get(ctx, burstID)
			})
		}
		wg.Wait()

		fmt.Fprintln(out, theme.Subtitle.Render(fmt.Sprintf(
			"%d concurrent lookups of %s: %d server call(s) in %s",
			demoBurst, burstID, server.Calls()-before, time.Since(start).Round(time.Millisecond),
		)))
	}

	fmt.Fprintln(out, renderer.RenderStats(profiles.Stats()))
	fmt.Fprintln(out, theme.Subtle.Render(fmt.Sprintf("server calls: %d", server.Calls())))
	return nil
}
