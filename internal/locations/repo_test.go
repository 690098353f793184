package locations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechsathi/internal/users"
	"mechsathi/pkg/database"
)

func testSetup(t *testing.T) (*Repo, int64, int64) {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Setup(db))

	userRepo := users.NewRepo(db)
	ctx := context.Background()
	alice, err := userRepo.Create(ctx, "Alice", "alice@example.com", "")
	require.NoError(t, err)
	bob, err := userRepo.Create(ctx, "Bob", "bob@example.com", "")
	require.NoError(t, err)

	return NewRepo(db), alice, bob
}

func TestSaveAndListNewestFirst(t *testing.T) {
	repo, alice, _ := testSetup(t)
	ctx := context.Background()

	first, err := repo.Save(ctx, alice, "Home", 27.70, 85.32, "Kathmandu")
	require.NoError(t, err)
	second, err := repo.Save(ctx, alice, "Office", 27.68, 85.31, "Lalitpur")
	require.NoError(t, err)

	items, err := repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second, items[0].ID, "newest first")
	assert.Equal(t, first, items[1].ID)
	assert.Equal(t, "Office", items[0].Name)
}

func TestListIsScopedToUser(t *testing.T) {
	repo, alice, bob := testSetup(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, alice, "Home", 27.70, 85.32, "Kathmandu")
	require.NoError(t, err)

	items, err := repo.ListByUser(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteRemovesExactlyOneRow(t *testing.T) {
	repo, alice, _ := testSetup(t)
	ctx := context.Background()

	keep, err := repo.Save(ctx, alice, "Keep", 1, 1, "a")
	require.NoError(t, err)
	drop, err := repo.Save(ctx, alice, "Drop", 2, 2, "b")
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, drop, alice)
	require.NoError(t, err)
	require.True(t, ok)

	items, err := repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep, items[0].ID)
}

func TestDeleteRequiresOwnership(t *testing.T) {
	repo, alice, bob := testSetup(t)
	ctx := context.Background()

	id, err := repo.Save(ctx, alice, "Home", 27.70, 85.32, "Kathmandu")
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, id, bob)
	require.NoError(t, err)
	assert.False(t, ok, "another user's id must not be deletable")

	items, err := repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, items, 1, "row must survive the foreign delete attempt")
}

func TestDeleteUnknownID(t *testing.T) {
	repo, alice, _ := testSetup(t)

	ok, err := repo.Delete(context.Background(), 9999, alice)
	require.NoError(t, err)
	assert.False(t, ok)
}
