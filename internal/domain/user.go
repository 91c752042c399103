package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Role is the single authorization flag carried in access tokens
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Gender is an optional profile attribute
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOthers Gender = "others"
)

// User represents a registered account. PasswordHash is only populated when
// the store was asked for it.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Role         Role      `json:"role"`
	Gender       Gender    `json:"gender,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Repository errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user with this email or phone already exists")
)

// FindOptions controls which fields a lookup returns
type FindOptions struct {
	IncludePassword bool
}

// FindOption mutates FindOptions
type FindOption func(*FindOptions)

// WithPassword asks the store to return the password hash
func WithPassword() FindOption {
	return func(o *FindOptions) {
		o.IncludePassword = true
	}
}

// ApplyFindOptions folds opts into a FindOptions value
func ApplyFindOptions(opts ...FindOption) FindOptions {
	var o FindOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// UserRepository is the user store contract. Lookups return (nil, nil) when
// no user matches.
type UserRepository interface {
	FindByID(ctx context.Context, id string, opts ...FindOption) (*User, error)
	FindByEmail(ctx context.Context, email string, opts ...FindOption) (*User, error)
	FindByPhone(ctx context.Context, phone string, opts ...FindOption) (*User, error)
	// Create assigns ID and timestamps. Returns ErrDuplicateUser on a unique index conflict.
	Create(ctx context.Context, user *User) error
	// UpdatePasswordByID returns ErrUserNotFound when no row matched.
	UpdatePasswordByID(ctx context.Context, id, passwordHash string) error
	Ping(ctx context.Context) error
}
