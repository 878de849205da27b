package repository

import (
	"context"

	"github.com/bnema/profilecache/internal/domain/entity"
)

// ProfileRepository defines operations for profile persistence.
type ProfileRepository interface {
	// Get retrieves a profile by user ID.
	// Returns nil if the profile does not exist.
	Get(ctx context.Context, userID string) (*entity.Profile, error)

	// Save inserts or replaces a profile.
	Save(ctx context.Context, profile *entity.Profile) error

	// Delete removes a profile. Deleting a missing profile is not an error.
	Delete(ctx context.Context, userID string) error

	// List returns up to limit profiles, most recently updated first.
	List(ctx context.Context, limit int) ([]*entity.Profile, error)
}
