package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/bnema/profilecache/internal/application/port"
	"github.com/bnema/profilecache/internal/logging"
)

// LazyDB implements port.DatabaseProvider with lazy initialization.
// The connection is opened and migrated on first access; a failed open is
// remembered and returned to every later caller. After Close, DB returns
// sql.ErrConnDone.
type LazyDB struct {
	dbPath string
	db     *sql.DB
	err    error
	closed bool
	once   sync.Once
	mu     sync.RWMutex
}

// Compile-time interface check.
var _ port.DatabaseProvider = (*LazyDB)(nil)

// NewLazyDB creates a new lazy database provider.
// The actual connection is not established until DB() is called.
func NewLazyDB(dbPath string) *LazyDB {
	return &LazyDB{dbPath: dbPath}
}

// DB returns the database connection, initializing it if necessary.
func (l *LazyDB) DB(ctx context.Context) (*sql.DB, error) {
	l.mu.RLock()
	closed := l.closed
	l.mu.RUnlock()
	if closed {
		return nil, sql.ErrConnDone
	}

	l.once.Do(func() {
		log := logging.FromContext(ctx)
		log.Debug().Str("path", l.dbPath).Msg("opening profile database")

		db, err := NewConnection(ctx, l.dbPath)
		if err != nil {
			log.Error().Err(err).Msg("profile database initialization failed")
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed {
			if db != nil {
				_ = Close(db)
			}
			return
		}
		l.db, l.err = db, err
	})

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.err != nil {
		return nil, fmt.Errorf("database initialization failed: %w", l.err)
	}
	if l.closed || l.db == nil {
		return nil, sql.ErrConnDone
	}
	return l.db, nil
}

// Close closes the database connection if it was initialized.
func (l *LazyDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.db == nil {
		return nil
	}
	err := Close(l.db)
	l.db = nil
	return err
}

// IsInitialized returns true if the database has been initialized.
func (l *LazyDB) IsInitialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db != nil
}

// Path returns the database path.
func (l *LazyDB) Path() string {
	return l.dbPath
}
