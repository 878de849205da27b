package entity

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrProfileNotFound is returned by profile sources when a user does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidProfile is returned when a profile or user ID fails validation.
	ErrInvalidProfile = errors.New("invalid profile")
)

// MaxUserIDLength keeps IDs usable as memcached keys, leaving room for a key prefix.
const MaxUserIDLength = 200

// Profile is a user profile as served by a profile source.
type Profile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewProfile creates a profile stamped with the current time.
func NewProfile(userID, name string, score int) *Profile {
	return &Profile{
		UserID:    userID,
		Name:      name,
		Score:     score,
		FetchedAt: time.Now(),
	}
}

// Validate checks that the profile can be stored and cached.
func (p *Profile) Validate() error {
	if p == nil {
		return ErrInvalidProfile
	}
	return ValidateUserID(p.UserID)
}

// ValidateUserID rejects empty, oversized or whitespace-bearing user IDs.
func ValidateUserID(userID string) error {
	switch {
	case userID == "":
		return errors.Join(ErrInvalidProfile, errors.New("user id is empty"))
	case len(userID) > MaxUserIDLength:
		return errors.Join(ErrInvalidProfile, errors.New("user id is too long"))
	case strings.ContainsFunc(userID, isSpaceOrControl):
		return errors.Join(ErrInvalidProfile, errors.New("user id contains whitespace or control characters"))
	}
	return nil
}

func isSpaceOrControl(r rune) bool {
	return r <= ' ' || r == 0x7f
}
