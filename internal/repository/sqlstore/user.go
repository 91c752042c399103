package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/auth-service/internal/domain"
	"github.com/google/uuid"
)

const userColumns = `id, email, COALESCE(phone, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), role, COALESCE(gender, ''), created_at, updated_at`

// UserRepository implements domain.UserRepository
type UserRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, d Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: d, now: time.Now}
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any, opts []domain.FindOption) (*domain.User, error) {
	password := "''"
	if domain.ApplyFindOptions(opts...).IncludePassword {
		password = "password"
	}
	query := fmt.Sprintf("SELECT %s, %s FROM users WHERE %s", userColumns, password, where)

	var u domain.User
	var role, gender string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Role = domain.Role(role)
	u.Gender = domain.Gender(gender)
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string, opts ...domain.FindOption) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id, opts)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string, opts ...domain.FindOption) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", domain.NormalizeEmail(email), opts)
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string, opts ...domain.FindOption) (*domain.User, error) {
	return r.findOne(ctx, "phone = ?", phone, opts)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := r.now().UTC()
	id := uuid.NewString()
	if user.Role == "" {
		user.Role = domain.RoleCustomer
	}
	user.Email = domain.NormalizeEmail(user.Email)

	query := `
		INSERT INTO users (id, email, password, phone, first_name, last_name, role, gender, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
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
		if r.dialect.duplicate(err) {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) UpdatePasswordByID(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password = ?, updated_at = ? WHERE id = ?`,
		passwordHash, r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
