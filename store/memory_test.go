package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d2o5/webauth/model"
)

func newRecord(username string) *model.PrivateUser {
	return &model.PrivateUser{
		ID:           "id-" + username,
		CreatedAt:    time.Now().UTC(),
		Username:     username,
		DisplayName:  username,
		PasswordHash: "$argon2id$...",
		Salt:         "c2FsdA",
	}
}

func TestMemoryCreateFetch(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newRecord("alice")))

	got, err := s.FetchUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "id-alice", got.ID)
}

func TestMemoryDuplicateUsername(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newRecord("alice")))

	err := s.CreateUser(ctx, newRecord("alice"))
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestMemoryFetchUnknown(t *testing.T) {
	s := NewMemory()

	_, err := s.FetchUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryFetchCount(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newRecord("alice")))
	assert.EqualValues(t, 0, s.FetchCount())

	_, _ = s.FetchUser(ctx, "alice")
	_, _ = s.FetchUser(ctx, "nobody")
	assert.EqualValues(t, 2, s.FetchCount())
}

func TestMemoryErrorInjection(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	boom := errors.New("backend down")
	s.SetError(boom)

	err := s.CreateUser(ctx, newRecord("alice"))
	assert.ErrorIs(t, err, boom)

	_, err = s.FetchUser(ctx, "alice")
	assert.ErrorIs(t, err, boom)

	s.SetError(nil)
	require.NoError(t, s.CreateUser(ctx, newRecord("alice")))
}

func TestMemoryFetchReturnsCopy(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newRecord("alice")))

	first, err := s.FetchUser(ctx, "alice")
	require.NoError(t, err)
	first.DisplayName = "mutated"

	second, err := s.FetchUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", second.DisplayName)
}
