package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/domain/repository"
	"github.com/bnema/profilecache/internal/logging"
)

const (
	getProfileQuery = `SELECT user_id, name, score, fetched_at FROM profiles WHERE user_id = ?`

	upsertProfileQuery = `INSERT INTO profiles (user_id, name, score, fetched_at, updated_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(user_id) DO UPDATE SET
    name = excluded.name,
    score = excluded.score,
    fetched_at = excluded.fetched_at,
    updated_at = CURRENT_TIMESTAMP`

	deleteProfileQuery = `DELETE FROM profiles WHERE user_id = ?`

	listProfilesQuery = `SELECT user_id, name, score, fetched_at FROM profiles
ORDER BY updated_at DESC, user_id ASC LIMIT ?`
)

const defaultListLimit = 100

type profileRepo struct {
	db *sql.DB
}

// NewProfileRepository creates a new SQLite-backed profile repository.
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Get(ctx context.Context, userID string) (*entity.Profile, error) {
	log := logging.FromContext(ctx)
	log.Debug().Str("user_id", userID).Msg("getting profile")

	row := r.db.QueryRowContext(ctx, getProfileQuery, userID)
	profile, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) Save(ctx context.Context, profile *entity.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	log := logging.FromContext(ctx)
	log.Debug().Str("user_id", profile.UserID).Msg("saving profile")

	fetchedAt := profile.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, upsertProfileQuery,
		profile.UserID, profile.Name, profile.Score, fetchedAt.UTC())
	return err
}

func (r *profileRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, deleteProfileQuery, userID)
	return err
}

func (r *profileRepo) List(ctx context.Context, limit int) ([]*entity.Profile, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.db.QueryContext(ctx, listProfilesQuery, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var profiles []*entity.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*entity.Profile, error) {
	var p entity.Profile
	if err := row.Scan(&p.UserID, &p.Name, &p.Score, &p.FetchedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
