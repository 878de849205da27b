package sqlite

import (
	"context"
	"sync"

	"github.com/bnema/profilecache/internal/application/port"
	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/domain/repository"
)

// LazyProfileRepository wraps a profile repository with lazy database initialization.
type LazyProfileRepository struct {
	provider port.DatabaseProvider
	repo     repository.ProfileRepository
	once     sync.Once
	initErr  error
}

// NewLazyProfileRepository creates a lazy-loading profile repository.
func NewLazyProfileRepository(provider port.DatabaseProvider) repository.ProfileRepository {
	return &LazyProfileRepository{provider: provider}
}

func (r *LazyProfileRepository) init(ctx context.Context) error {
	r.once.Do(func() {
		db, err := r.provider.DB(ctx)
		if err != nil {
			r.initErr = err
			return
		}
		r.repo = NewProfileRepository(db)
	})
	return r.initErr
}

func (r *LazyProfileRepository) Get(ctx context.Context, userID string) (*entity.Profile, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	return r.repo.Get(ctx, userID)
}

func (r *LazyProfileRepository) Save(ctx context.Context, profile *entity.Profile) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	return r.repo.Save(ctx, profile)
}

func (r *LazyProfileRepository) Delete(ctx context.Context, userID string) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	return r.repo.Delete(ctx, userID)
}

func (r *LazyProfileRepository) List(ctx context.Context, limit int) ([]*entity.Profile, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	return r.repo.List(ctx, limit)
}
