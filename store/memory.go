package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/d2o5/webauth/model"
)

// Memory is an in-process store for tests and embedded deployments. It
// counts fetches and can be forced to fail, which is enough to observe
// cache-aside behavior and degraded-backend paths from the outside.
type Memory struct {
	mu      sync.RWMutex
	users   map[string]model.PrivateUser
	failErr error

	fetches atomic.Int64
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]model.PrivateUser),
	}
}

// CreateUser inserts the record, rejecting duplicate usernames.
func (s *Memory) CreateUser(_ context.Context, user *model.PrivateUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}
	if _, ok := s.users[user.Username]; ok {
		return ErrDuplicateUsername
	}
	s.users[user.Username] = *user
	return nil
}

// FetchUser returns the record for username or [ErrUserNotFound].
func (s *Memory) FetchUser(_ context.Context, username string) (*model.PrivateUser, error) {
	s.fetches.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failErr != nil {
		return nil, s.failErr
	}
	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// FetchCount reports how many FetchUser calls the store has seen,
// including failed ones.
func (s *Memory) FetchCount() int64 {
	return s.fetches.Load()
}

// SetError forces every subsequent operation to fail with err; nil
// restores normal behavior.
func (s *Memory) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}
