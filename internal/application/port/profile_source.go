package port

import (
	"context"

	"github.com/bnema/profilecache/internal/domain/entity"
)

// ProfileSource is the backend a profile cache loads from on miss.
// Fetch returns entity.ErrProfileNotFound when the user does not exist.
type ProfileSource interface {
	Fetch(ctx context.Context, userID string) (*entity.Profile, error)
}

// ProfileWriter persists profiles into a store a ProfileSource reads from.
type ProfileWriter interface {
	Save(ctx context.Context, profile *entity.Profile) error
}
