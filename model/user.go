// Package model defines the user records shared by the auth engine, the
// durable store, and the cache.
package model

import (
	"time"

	"github.com/google/uuid"
)

// PrivateUser is the full user record as held by the durable store. It
// carries credential material (password hash and salt) and must never be
// serialized toward a client; use [PrivateUser.Public] for anything that
// leaves the process.
type PrivateUser struct {
	ID           string
	CreatedAt    time.Time
	Username     string
	DisplayName  string
	AvatarURL    *string
	PasswordHash string
	Salt         string
}

// PublicUser is the client-safe projection of a user record.
//
// The JSON field names are the cache wire format shared with existing
// consumers of the user hash; they stay camelCase regardless of the
// internal naming and must not be renamed. AvatarURL serializes as null
// when absent.
type PublicUser struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	AvatarURL   *string   `json:"avatarUrl"`
}

// Public strips credential material from the record.
func (u *PrivateUser) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		CreatedAt:   u.CreatedAt,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// NewUserInput carries a registration request before password hashing.
// DisplayName and AvatarURL are optional; Normalized* apply the fallback
// rules used at registration time.
type NewUserInput struct {
	Username    string
	Password    string
	DisplayName string
	AvatarURL   string
}

const maxDisplayName = 20

// NormalizedDisplayName falls back to the username when the requested
// display name is empty or longer than 20 characters.
func (in NewUserInput) NormalizedDisplayName() string {
	if in.DisplayName == "" || len(in.DisplayName) > maxDisplayName {
		return in.Username
	}
	return in.DisplayName
}

// NormalizedAvatarURL treats the empty string as "no avatar".
func (in NewUserInput) NormalizedAvatarURL() *string {
	if in.AvatarURL == "" {
		return nil
	}
	url := in.AvatarURL
	return &url
}

// Record builds the durable record for this registration with a fresh ID
// and creation timestamp. hash and salt come from the password hasher.
func (in NewUserInput) Record(hash, salt string) *PrivateUser {
	return &PrivateUser{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Username:     in.Username,
		DisplayName:  in.NormalizedDisplayName(),
		AvatarURL:    in.NormalizedAvatarURL(),
		PasswordHash: hash,
		Salt:         salt,
	}
}
