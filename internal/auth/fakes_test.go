package auth

import (
	"context"
	"sync"
	"time"

	"github.com/leadvault/backend/internal/db"
)

// fakeTokenStore is an in-memory stand-in for the shared Redis store,
// honoring TTLs so expiry behavior can be tested.
type fakeTokenStore struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	setErr    error
	existsErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{entries: make(map[string]time.Time)}
}

func (f *fakeTokenStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = time.Now().Add(ttl)
	return nil
}

func (f *fakeTokenStore) Exists(ctx context.Context, key string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	expiry, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(f.entries, key)
		return false, nil
	}
	return true, nil
}

func (f *fakeTokenStore) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	now := time.Now()
	for _, expiry := range f.entries {
		if now.Before(expiry) {
			n++
		}
	}
	return n
}

// fakeUserStore is an in-memory credential store keyed by email, with the
// same duplicate and not-found semantics as the Postgres repository.
type fakeUserStore struct {
	mu        sync.Mutex
	users     map[string]*db.User
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*db.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *db.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[user.Email]; exists {
		return db.ErrEmailExists
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	return user, nil
}

func newTestService(store *fakeTokenStore, users *fakeUserStore) *Service {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	return NewService(users, issuer, NewBlacklist(store))
}
