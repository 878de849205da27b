package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/infrastructure/persistence/sqlite"
)

func TestLazyDB_NotInitializedByDefault(t *testing.T) {
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "profiles.db"))

	assert.False(t, lazy.IsInitialized(), "LazyDB should not be initialized before DB() is called")
	assert.NoError(t, lazy.Close())
}

func TestLazyDB_ConcurrentAccessSharesConnection(t *testing.T) {
	ctx := profileTestCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "profiles.db"))
	t.Cleanup(func() { _ = lazy.Close() })

	const goroutines = 10
	dbs := make([]*sql.DB, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Go(func() {
			db, err := lazy.DB(ctx)
			assert.NoError(t, err)
			dbs[i] = db
		})
	}
	wg.Wait()

	require.NotNil(t, dbs[0])
	for _, db := range dbs[1:] {
		assert.Same(t, dbs[0], db, "all callers should receive the same connection")
	}
	assert.True(t, lazy.IsInitialized())
}

func TestLazyDB_FailureIsSticky(t *testing.T) {
	ctx := profileTestCtx()
	lazy := sqlite.NewLazyDB("")

	_, err := lazy.DB(ctx)
	require.Error(t, err)
	_, err = lazy.DB(ctx)
	assert.Error(t, err)
	assert.False(t, lazy.IsInitialized())
}

func TestLazyDB_ClosedReturnsConnDone(t *testing.T) {
	ctx := profileTestCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "profiles.db"))

	_, err := lazy.DB(ctx)
	require.NoError(t, err)
	require.NoError(t, lazy.Close())

	db, err := lazy.DB(ctx)
	assert.Nil(t, db)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.False(t, lazy.IsInitialized())
}

func TestLazyDB_CloseBeforeUse(t *testing.T) {
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, lazy.Close())

	_, err := lazy.DB(profileTestCtx())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestLazyProfileRepository_OpensOnFirstUse(t *testing.T) {
	ctx := profileTestCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "profiles.db"))
	t.Cleanup(func() { _ = lazy.Close() })

	repo := sqlite.NewLazyProfileRepository(lazy)
	assert.False(t, lazy.IsInitialized())

	require.NoError(t, repo.Save(ctx, entity.NewProfile("dude1", "User: dude1", 8)))
	assert.True(t, lazy.IsInitialized())

	got, err := repo.Get(ctx, "dude1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 8, got.Score)

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, "dude1"))
	got, err = repo.Get(ctx, "dude1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLazyProfileRepository_PropagatesOpenError(t *testing.T) {
	repo := sqlite.NewLazyProfileRepository(sqlite.NewLazyDB(""))

	_, err := repo.Get(profileTestCtx(), "dude1")
	assert.Error(t, err)
}
