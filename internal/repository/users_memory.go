package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/crm-automations/api/internal/entity"
)

// MemoryUsersRepository is the in-memory UsersRepository adapter.
type MemoryUsersRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*entity.User
}

// NewMemoryUsersRepository builds an empty in-memory user store.
func NewMemoryUsersRepository() *MemoryUsersRepository {
	return &MemoryUsersRepository{users: make(map[uuid.UUID]*entity.User)}
}

// FindByEmail fetches a user by email if present.
func (r *MemoryUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByID retrieves a user by identifier.
func (r *MemoryUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// Create inserts a new user, enforcing email uniqueness.
func (r *MemoryUsersRepository) Create(ctx context.Context, email, passwordHash, role string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return nil, ErrEmailDuplicate
		}
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.ID] = user

	copied := *user
	return &copied, nil
}

// List returns all users.
func (r *MemoryUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]entity.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

// Update patches user attributes.
func (r *MemoryUsersRepository) Update(ctx context.Context, id uuid.UUID, email, passwordHash, role *string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if email != nil {
		for otherID, other := range r.users {
			if otherID != id && strings.EqualFold(other.Email, *email) {
				return nil, ErrEmailDuplicate
			}
		}
		user.Email = *email
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	if role != nil {
		user.Role = *role
	}
	user.UpdatedAt = time.Now()

	copied := *user
	return &copied, nil
}

// Delete removes a user by id.
func (r *MemoryUsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

var _ UsersRepository = (*MemoryUsersRepository)(nil)
