// Package memory holds process-local implementations of the storage ports.
// They back the "memory" store driver for local development and the
// end-to-end tests of the HTTP API.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cryptotracker/tracker/internal/core/domain"
)

// UserRepository keeps user documents in a map guarded by a mutex, so each
// operation is atomic just like a single-document Mongo write.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
	seq     int
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *UserRepository) Create(_ context.Context, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return nil, domain.ErrDuplicateEmail
	}

	r.seq++
	now := r.now()
	u := &domain.User{
		ID:           strconv.Itoa(r.seq),
		Email:        email,
		PasswordHash: passwordHash,
		Favorites:    []string{},
		Settings:     domain.DefaultSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	return clone(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) UpdateSettings(_ context.Context, id string, patch domain.SettingsPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Settings = patch.Apply(u.Settings)
	u.UpdatedAt = r.now()
	return clone(u), nil
}

func (r *UserRepository) ReplaceFavorites(_ context.Context, id string, favorites []string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Favorites = append(make([]string, 0, len(favorites)), favorites...)
	u.UpdatedAt = r.now()
	return clone(u), nil
}

// Delete removes a user. Not reachable through the API; tests use it to
// simulate an account vanishing while a token is still valid.
func (r *UserRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[id]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, id)
	}
}

func clone(u *domain.User) *domain.User {
	c := *u
	c.Favorites = append(make([]string, 0, len(u.Favorites)), u.Favorites...)
	return &c
}
