package usecase

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/profilecache/internal/logging"
)

const defaultWarmConcurrency = 4

// WarmProfilesUseCase preloads profiles into the cache concurrently.
type WarmProfilesUseCase struct {
	profiles    *GetProfileUseCase
	concurrency int
}

// NewWarmProfilesUseCase creates a new WarmProfilesUseCase running at most
// concurrency lookups at once.
func NewWarmProfilesUseCase(profiles *GetProfileUseCase, concurrency int) *WarmProfilesUseCase {
	if concurrency < 1 {
		concurrency = defaultWarmConcurrency
	}
	return &WarmProfilesUseCase{profiles: profiles, concurrency: concurrency}
}

// WarmProfilesOutput reports which profiles were loaded and which failed.
type WarmProfilesOutput struct {
	Loaded []string
	Failed map[string]error
}

// Execute resolves every ID through the cache. Individual failures are
// collected rather than aborting the run; only ctx cancellation is returned.
func (uc *WarmProfilesUseCase) Execute(ctx context.Context, userIDs []string) (*WarmProfilesOutput, error) {
	log := logging.FromContext(ctx)

	var mu sync.Mutex
	out := &WarmProfilesOutput{Failed: make(map[string]error)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for _, id := range userIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := uc.profiles.Execute(gctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Failed[id] = err
				return nil
			}
			out.Loaded = append(out.Loaded, id)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}

	log.Info().
		Int("requested", len(userIDs)).
		Int("loaded", len(out.Loaded)).
		Int("failed", len(out.Failed)).
		Msg("profile cache warmed")

	return out, nil
}
