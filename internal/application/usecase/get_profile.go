package usecase

import (
	"context"
	"fmt"

	"github.com/bnema/profilecache/internal/application/port"
	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/logging"
)

// GetProfileUseCase serves user profiles through a loading cache.
type GetProfileUseCase struct {
	cache port.LoadingCache[string, *entity.Profile]
}

// NewGetProfileUseCase creates a new GetProfileUseCase.
func NewGetProfileUseCase(cache port.LoadingCache[string, *entity.Profile]) *GetProfileUseCase {
	return &GetProfileUseCase{cache: cache}
}

// Execute returns the profile for userID, loading it from the profile source
// when it is not cached.
func (uc *GetProfileUseCase) Execute(ctx context.Context, userID string) (*entity.Profile, error) {
	if err := entity.ValidateUserID(userID); err != nil {
		return nil, err
	}

	ctx = logging.WithComponent(ctx, "profiles")
	profile, err := uc.cache.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile %q: %w", userID, err)
	}
	return profile, nil
}

// Refresh reloads the profile for userID from the profile source.
func (uc *GetProfileUseCase) Refresh(ctx context.Context, userID string) (*entity.Profile, error) {
	if err := entity.ValidateUserID(userID); err != nil {
		return nil, err
	}

	ctx = logging.WithComponent(ctx, "profiles")
	profile, err := uc.cache.Refresh(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("refresh profile %q: %w", userID, err)
	}
	return profile, nil
}

// Cached returns the cached profile without loading it or changing its recency.
func (uc *GetProfileUseCase) Cached(userID string) (*entity.Profile, bool) {
	return uc.cache.Peek(userID)
}

// Invalidate drops the cached profile for userID.
func (uc *GetProfileUseCase) Invalidate(userID string) {
	uc.cache.Invalidate(userID)
}

// Stats returns the cache counters.
func (uc *GetProfileUseCase) Stats() port.CacheStats {
	return uc.cache.Stats()
}
