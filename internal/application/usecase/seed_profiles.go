package usecase

import (
	"context"
	"fmt"

	"github.com/bnema/profilecache/internal/application/port"
	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/logging"
)

// SeedProfilesUseCase writes profiles into a backing store so that the
// sqlite and memcached sources have something to serve.
type SeedProfilesUseCase struct {
	repo port.ProfileWriter
}

// NewSeedProfilesUseCase creates a new SeedProfilesUseCase.
func NewSeedProfilesUseCase(repo port.ProfileWriter) *SeedProfilesUseCase {
	return &SeedProfilesUseCase{repo: repo}
}

// Execute creates a "User: <id>" profile for every ID.
// It stops at the first invalid ID or storage error.
func (uc *SeedProfilesUseCase) Execute(ctx context.Context, userIDs []string, score int) ([]*entity.Profile, error) {
	log := logging.FromContext(ctx)

	profiles := make([]*entity.Profile, 0, len(userIDs))
	for _, id := range userIDs {
		profile := entity.NewProfile(id, "User: "+id, score)
		if err := profile.Validate(); err != nil {
			return profiles, err
		}
		if err := uc.repo.Save(ctx, profile); err != nil {
			return profiles, fmt.Errorf("save profile %q: %w", id, err)
		}
		profiles = append(profiles, profile)
	}

	log.Info().Int("count", len(profiles)).Msg("profiles seeded")
	return profiles, nil
}
