package users

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mechsathi/pkg/database"
)

func testRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Setup(db))
	return NewRepo(db)
}

func TestCreateAndGetByEmail(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, "Sita Sharma", "sita@example.com", "+977-98-1111111")
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	u, err := repo.GetByEmail(ctx, "sita@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, id, u.ID)
	require.Equal(t, "Sita Sharma", u.Name)
	require.Equal(t, "+977-98-1111111", u.Phone)
	require.False(t, u.CreatedAt.IsZero())
}

func TestGetByEmailUnknownIsNotAnError(t *testing.T) {
	repo := testRepo(t)

	u, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestDuplicateEmailFailsAndFirstUserSurvives(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, "First", "dup@example.com", "")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "Second", "dup@example.com", "")
	require.Error(t, err)

	u, err := repo.GetByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, id, u.ID)
	require.Equal(t, "First", u.Name)
}

func TestUpdateProfilePartialFields(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, "Old Name", "update@example.com", "000")
	require.NoError(t, err)

	name := "New Name"
	require.NoError(t, repo.UpdateProfile(ctx, id, ProfileUpdate{Name: &name}))

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "New Name", u.Name)
	require.Equal(t, "update@example.com", u.Email, "untouched field must survive")
	require.Equal(t, "000", u.Phone, "untouched field must survive")
}

func TestUpdateProfileEmptyIsNoOp(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, "Someone", "noop@example.com", "")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateProfile(ctx, id, ProfileUpdate{}))

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Someone", u.Name)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	repo := testRepo(t)

	phone := "123"
	err := repo.UpdateProfile(context.Background(), 9999, ProfileUpdate{Phone: &phone})
	require.Error(t, err)
}

func TestEmailStoredLowercase(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "Caps", "CAPS@Example.COM", "")
	require.NoError(t, err)

	u, err := repo.GetByEmail(ctx, "caps@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)

	var stored string
	require.NoError(t, repo.DB.QueryRow(`SELECT email FROM users WHERE id = ?`, u.ID).Scan(&stored))
	require.Equal(t, "caps@example.com", stored)
}
