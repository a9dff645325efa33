package users_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"campus-ticketing/internal/models"
	"campus-ticketing/internal/users/db"
	users "campus-ticketing/internal/users/service"
)

func setupService(t *testing.T) *users.UserService {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.User)(nil)).Exec(context.Background())
	require.NoError(t, err)

	return users.NewUserService(&db.DB{Bun: bunDB})
}

func TestRegister(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Budi Santoso", "budi@example.com", "rahasia123", "2110511001", "08123456789")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role, "self-registration never yields an admin")
	assert.NotEqual(t, "rahasia123", user.Password, "password must be stored hashed")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Budi", "budi@example.com", "rahasia123", "", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Budi Lain", "budi@example.com", "rahasia456", "", "")
	assert.ErrorIs(t, err, users.ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "Siti", "siti@example.com", "rahasia123", "", "")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "siti@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "siti@example.com", "salah")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "tidakada@example.com", "rahasia123")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestGetUser(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "Andi", "andi@example.com", "rahasia123", "", "")
	require.NoError(t, err)

	user, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Andi", user.Name)

	_, err = svc.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}
