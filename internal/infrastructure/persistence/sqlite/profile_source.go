package sqlite

import (
	"context"
	"fmt"

	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/domain/repository"
)

// ProfileSource serves profiles from a repository. It implements port.ProfileSource.
type ProfileSource struct {
	repo repository.ProfileRepository
}

// NewProfileSource wraps repo as a cache loader backend.
func NewProfileSource(repo repository.ProfileRepository) *ProfileSource {
	return &ProfileSource{repo: repo}
}

// Fetch returns the stored profile or entity.ErrProfileNotFound.
func (s *ProfileSource) Fetch(ctx context.Context, userID string) (*entity.Profile, error) {
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query profile %q: %w", userID, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrProfileNotFound, userID)
	}
	return profile, nil
}
