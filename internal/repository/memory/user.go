// Package memory provides an in-process user store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Rrens/auth-service/internal/domain"
	"github.com/google/uuid"
)

// UserRepository implements domain.UserRepository on a map
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
	byPhone map[string]string
	now     func() time.Time
}

// NewUserRepository creates an empty store
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UserRepository) find(id string, ok bool, opts []domain.FindOption) *domain.User {
	if !ok {
		return nil
	}
	u, ok := r.byID[id]
	if !ok {
		return nil
	}
	if !domain.ApplyFindOptions(opts...).IncludePassword {
		u.PasswordHash = ""
	}
	return &u
}

func (r *UserRepository) FindByID(_ context.Context, id string, opts ...domain.FindOption) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(id, true, opts), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string, opts ...domain.FindOption) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	return r.find(id, ok, opts), nil
}

func (r *UserRepository) FindByPhone(_ context.Context, phone string, opts ...domain.FindOption) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPhone[phone]
	return r.find(id, ok, opts), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = domain.NormalizeEmail(user.Email)
	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrDuplicateUser
	}
	if user.Phone != "" {
		if _, exists := r.byPhone[user.Phone]; exists {
			return domain.ErrDuplicateUser
		}
	}

	now := r.now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = domain.RoleCustomer
	}

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	if user.Phone != "" {
		r.byPhone[user.Phone] = user.ID
	}
	return nil
}

func (r *UserRepository) UpdatePasswordByID(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = r.now().UTC()
	r.byID[id] = u
	return nil
}

func (r *UserRepository) Ping(context.Context) error {
	return nil
}
