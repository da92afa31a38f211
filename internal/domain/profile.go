package domain

import (
	"context"
	"errors"
)

// ErrProfileUnavailable is returned when a profile cannot be fetched right
// now (service down, user offline, unknown user). Callers fall back to the
// stored collaborator snapshot; this error never fails a roster read.
var ErrProfileUnavailable = errors.New("profile unavailable")

// Placeholder values used when profile fields are missing. Acceptance and
// roster assembly never fail for incomplete profile data.
const (
	DefaultDisplayName = "Member"
	DefaultAvatar      = "person"
)

// Profile is a user profile snapshot from the profile store.
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Username    string `json:"username"`
	Email       string `json:"email"`
}

// ProfileStore is a read-only lookup of user profiles.
type ProfileStore interface {
	// GetProfile returns the profile for userID, or ErrProfileUnavailable
	// when the lookup cannot be served.
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}
