// Package memcached serves profiles stored in memcached. Values are gob
// encoded so that any process sharing the key prefix can seed them.
package memcached

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/logging"
)

// Client is the subset of *memcache.Client used by Source.
type Client interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
}

// NewClient connects to a single memcached server.
func NewClient(host string, port int, timeout time.Duration) *memcache.Client {
	mc := memcache.New(net.JoinHostPort(host, strconv.Itoa(port)))
	if timeout > 0 {
		mc.Timeout = timeout
	}
	return mc
}

// Source reads and writes profiles in memcached. It implements port.ProfileSource.
type Source struct {
	client Client
	prefix string
	ttl    time.Duration
}

// NewSource creates a Source storing profiles under prefix+userID.
// A zero ttl stores items without expiration.
func NewSource(client Client, prefix string, ttl time.Duration) *Source {
	return &Source{client: client, prefix: prefix, ttl: ttl}
}

// Fetch decodes the profile stored for userID. A memcached miss is reported
// as entity.ErrProfileNotFound.
func (s *Source) Fetch(ctx context.Context, userID string) (*entity.Profile, error) {
	if err := entity.ValidateUserID(userID); err != nil {
		return nil, err
	}

	item, err := s.client.Get(s.key(userID))
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, fmt.Errorf("%w: %s", entity.ErrProfileNotFound, userID)
		}
		logging.FromContext(ctx).Warn().Err(err).Str("user_id", userID).Msg("memcached get failed")
		return nil, fmt.Errorf("memcached get %q: %w", userID, err)
	}

	var profile entity.Profile
	if err := gob.NewDecoder(bytes.NewReader(item.Value)).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile %q: %w", userID, err)
	}
	return &profile, nil
}

// Save writes profile to memcached.
func (s *Source) Save(ctx context.Context, profile *entity.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(profile); err != nil {
		return fmt.Errorf("encode profile %q: %w", profile.UserID, err)
	}

	err := s.client.Set(&memcache.Item{
		Key:        s.key(profile.UserID),
		Value:      buf.Bytes(),
		Expiration: int32(s.ttl / time.Second),
	})
	if err != nil {
		return fmt.Errorf("memcached set %q: %w", profile.UserID, err)
	}
	logging.FromContext(ctx).Debug().Str("user_id", profile.UserID).Msg("profile stored in memcached")
	return nil
}

// Remove deletes the profile for userID. Removing a missing profile is not an error.
func (s *Source) Remove(_ context.Context, userID string) error {
	err := s.client.Delete(s.key(userID))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return fmt.Errorf("memcached delete %q: %w", userID, err)
	}
	return nil
}

func (s *Source) key(userID string) string {
	return s.prefix + userID
}
