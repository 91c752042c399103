package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/auth-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	userColumns    = `id::text, email, COALESCE(phone, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), role, COALESCE(gender, ''), created_at, updated_at`
	passwordColumn = `password`
	noPassword     = `''`
)

// UserRepository implements domain.UserRepository
type UserRepository struct {
	db  Querier
	now func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

func selectQuery(where string, opts []domain.FindOption) string {
	password := noPassword
	if domain.ApplyFindOptions(opts...).IncludePassword {
		password = passwordColumn
	}
	return fmt.Sprintf("SELECT %s, %s FROM users WHERE %s", userColumns, password, where)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	var role, gender string
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Phone,
		&u.FirstName,
		&u.LastName,
		&role,
		&gender,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Role = domain.Role(role)
	u.Gender = domain.Gender(gender)
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string, opts ...domain.FindOption) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return r.findOne(ctx, selectQuery("id = $1", opts), id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string, opts ...domain.FindOption) (*domain.User, error) {
	return r.findOne(ctx, selectQuery("email = $1", opts), domain.NormalizeEmail(email))
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string, opts ...domain.FindOption) (*domain.User, error) {
	return r.findOne(ctx, selectQuery("phone = $1", opts), phone)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := r.now().UTC()
	id := uuid.New()
	if user.Role == "" {
		user.Role = domain.RoleCustomer
	}
	user.Email = domain.NormalizeEmail(user.Email)

	query := `
		INSERT INTO users (id, email, password, phone, first_name, last_name, role, gender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		id,
		user.Email,
		user.PasswordHash,
		nullable(user.Phone),
		nullable(user.FirstName),
		nullable(user.LastName),
		string(user.Role),
		nullable(string(user.Gender)),
		now,
		now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateUser, pgErr.ConstraintName)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id.String()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) UpdatePasswordByID(ctx context.Context, id, passwordHash string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrUserNotFound
	}

	query := `UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, passwordHash, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
