package reviews

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechsathi/internal/users"
	"mechsathi/pkg/database"
)

func testSetup(t *testing.T) (*Repo, *sql.DB, int64) {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Setup(db))

	userID, err := users.NewRepo(db).Create(context.Background(), "Reviewer", "reviewer@example.com", "")
	require.NoError(t, err)

	return NewRepo(db), db, userID
}

func workshopRating(t *testing.T, db *sql.DB, workshopID int64) float64 {
	t.Helper()
	var rating float64
	require.NoError(t, db.QueryRow(`SELECT rating FROM workshops WHERE id = ?`, workshopID).Scan(&rating))
	return rating
}

func TestAddRecomputesWorkshopRating(t *testing.T) {
	repo, db, userID := testSetup(t)
	ctx := context.Background()

	// seeded catalog rating is replaced by the review mean
	id, newRating, err := repo.Add(ctx, userID, 1, 4, "solid work")
	require.NoError(t, err)
	require.Greater(t, id, int64(0))
	assert.Equal(t, 4.0, newRating)
	assert.Equal(t, 4.0, workshopRating(t, db, 1))

	_, newRating, err = repo.Add(ctx, userID, 1, 5, "even better")
	require.NoError(t, err)
	assert.Equal(t, 4.5, newRating)
	assert.Equal(t, 4.5, workshopRating(t, db, 1))

	// (4+5+5)/3 = 4.666... -> 4.7
	_, newRating, err = repo.Add(ctx, userID, 1, 5, "")
	require.NoError(t, err)
	assert.Equal(t, 4.7, newRating)
	assert.Equal(t, 4.7, workshopRating(t, db, 1))
}

func TestAddAllValidRatings(t *testing.T) {
	repo, db, userID := testSetup(t)
	ctx := context.Background()

	sum := 0
	for r := 1; r <= 5; r++ {
		_, got, err := repo.Add(ctx, userID, 2, r, "")
		require.NoError(t, err)

		sum += r
		want := math.Round(float64(sum)/float64(r)*10) / 10
		assert.Equal(t, want, got, "after rating %d", r)
		assert.Equal(t, want, workshopRating(t, db, 2))
	}
}

func TestAddRejectsOutOfRangeRatings(t *testing.T) {
	repo, db, userID := testSetup(t)
	ctx := context.Background()

	before := workshopRating(t, db, 1)

	for _, bad := range []int{0, 6, -1, 100} {
		_, _, err := repo.Add(ctx, userID, 1, bad, "nope")
		require.ErrorIs(t, err, ErrRatingOutOfRange, "rating %d", bad)
	}

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&count))
	assert.Zero(t, count, "no review row may be written")
	assert.Equal(t, before, workshopRating(t, db, 1), "rating must be untouched")
}

func TestListByWorkshopJoinsReviewerName(t *testing.T) {
	repo, _, userID := testSetup(t)
	ctx := context.Background()

	_, _, err := repo.Add(ctx, userID, 1, 5, "great")
	require.NoError(t, err)
	_, _, err = repo.Add(ctx, userID, 1, 3, "ok")
	require.NoError(t, err)

	items, err := repo.ListByWorkshop(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ok", items[0].Comment, "newest first")
	assert.Equal(t, "Reviewer", items[0].UserName)
	assert.Equal(t, "Reviewer", items[1].UserName)
}

func TestListByUserJoinsWorkshopName(t *testing.T) {
	repo, _, userID := testSetup(t)
	ctx := context.Background()

	_, _, err := repo.Add(ctx, userID, 1, 5, "")
	require.NoError(t, err)
	_, _, err = repo.Add(ctx, userID, 2, 4, "")
	require.NoError(t, err)

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, r := range items {
		assert.NotEmpty(t, r.WorkshopName)
	}
	assert.Equal(t, int64(2), items[0].WorkshopID, "newest first")
}

func TestListByWorkshopEmpty(t *testing.T) {
	repo, _, _ := testSetup(t)

	items, err := repo.ListByWorkshop(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddManyReviewersMeanExample(t *testing.T) {
	repo, db, _ := testSetup(t)
	ctx := context.Background()

	userRepo := users.NewRepo(db)
	ratings := []int{4, 4, 5} // mean 4.333... -> 4.3
	for i, r := range ratings {
		uid, err := userRepo.Create(ctx, fmt.Sprintf("User %d", i), fmt.Sprintf("u%d@example.com", i), "")
		require.NoError(t, err)
		_, _, err = repo.Add(ctx, uid, 3, r, "")
		require.NoError(t, err)
	}

	assert.Equal(t, 4.3, workshopRating(t, db, 3))
}
