// Package remote provides a stand-in for the slow profile server that the
// cache is meant to shield.
package remote

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/logging"
)

// DefaultLatency is the simulated round trip to the profile server.
const DefaultLatency = 500 * time.Millisecond

const (
	minScore   = 5
	scoreRange = 20
)

// SimulatedServer fabricates profiles after a fixed delay. It implements
// port.ProfileSource and counts the fetches it serves.
type SimulatedServer struct {
	latency time.Duration
	calls   atomic.Int64
}

// NewSimulatedServer creates a server answering after latency.
func NewSimulatedServer(latency time.Duration) *SimulatedServer {
	if latency < 0 {
		latency = 0
	}
	return &SimulatedServer{latency: latency}
}

// Fetch waits for the simulated latency and returns a profile named
// "User: <id>". It fails early when ctx is done.
func (s *SimulatedServer) Fetch(ctx context.Context, userID string) (*entity.Profile, error) {
	if err := entity.ValidateUserID(userID); err != nil {
		return nil, err
	}

	s.calls.Add(1)
	logging.FromContext(ctx).Info().Str("user_id", userID).Msg("fetching profile from server")

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return entity.NewProfile(userID, fmt.Sprintf("User: %s", userID), minScore+rand.IntN(scoreRange)), nil
}

// Calls returns how many fetches the server has served.
func (s *SimulatedServer) Calls() int64 {
	return s.calls.Load()
}
