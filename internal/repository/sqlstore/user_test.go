package sqlstore_test

import (
	"context"
	"testing"

	"github.com/Rrens/auth-service/internal/domain"
	"github.com/Rrens/auth-service/internal/repository/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *sqlstore.UserRepository {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, sqlstore.SQLite, ":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlstore.EnsureSchema(ctx, db, sqlstore.SQLite))
	return sqlstore.NewUserRepository(db, sqlstore.SQLite)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	user := &domain.User{
		Email:        "John@Mail.com",
		PasswordHash: "hash",
		Phone:        "8976543659",
		FirstName:    "John",
		Gender:       domain.GenderMale,
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	got, err := repo.FindByEmail(ctx, "john@mail.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "John", got.FirstName)
	assert.Empty(t, got.LastName)
	assert.Equal(t, domain.GenderMale, got.Gender)
	assert.Equal(t, domain.RoleCustomer, got.Role)
	assert.Empty(t, got.PasswordHash)
	assert.False(t, got.CreatedAt.IsZero())

	withPassword, err := repo.FindByPhone(ctx, "8976543659", domain.WithPassword())
	require.NoError(t, err)
	require.NotNil(t, withPassword)
	assert.Equal(t, "hash", withPassword.PasswordHash)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
}

func TestUserRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	got, err := repo.FindByID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, repo.UpdatePasswordByID(ctx, "missing", "hash"), domain.ErrUserNotFound)
}

func TestUserRepository_Duplicates(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "john@mail.com", PasswordHash: "h", Phone: "8976543659"}))

	err := repo.Create(ctx, &domain.User{Email: "john@mail.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	err = repo.Create(ctx, &domain.User{Email: "jane@mail.com", PasswordHash: "h", Phone: "8976543659"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	// users without a phone do not collide
	require.NoError(t, repo.Create(ctx, &domain.User{Email: "a@mail.com", PasswordHash: "h"}))
	require.NoError(t, repo.Create(ctx, &domain.User{Email: "b@mail.com", PasswordHash: "h"}))
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	user := &domain.User{Email: "john@mail.com", PasswordHash: "old"}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.UpdatePasswordByID(ctx, user.ID, "new"))

	got, err := repo.FindByID(ctx, user.ID, domain.WithPassword())
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)
}

func TestDialectFor(t *testing.T) {
	d, err := sqlstore.DialectFor("mysql")
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name)

	_, err = sqlstore.DialectFor("oracle")
	assert.Error(t, err)
}
