package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bnema/profilecache/internal/application/port"
	"github.com/bnema/profilecache/internal/application/usecase"
	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/infrastructure/cache"
	"github.com/bnema/profilecache/internal/logging"
)

func testContext() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

func newProfileUseCase(t *testing.T, capacity int, source port.ProfileSource) *usecase.GetProfileUseCase {
	t.Helper()
	c, err := cache.New[string, *entity.Profile](capacity, source.Fetch)
	require.NoError(t, err)
	return usecase.NewGetProfileUseCase(c)
}
