package workshops

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
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

func TestListAllOrderedByRating(t *testing.T) {
	repo := testRepo(t)

	items, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, []float64{4.5, 4.2, 4.0}, []float64{items[0].Rating, items[1].Rating, items[2].Rating})
	assert.Equal(t, "Kathmandu Auto Service", items[0].Name)
	assert.Equal(t, []string{"Engine Repair", "Tire Change", "Battery"}, items[0].Services)
	assert.False(t, items[0].Is24x7)
	assert.True(t, items[1].Is24x7, "Pokhara Highway Garage runs 24/7")
}

func TestNearbyFiltersBySquaredDistance(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	// near Kalanki: only the Kathmandu workshop is inside a tight radius
	items, err := repo.Nearby(ctx, 27.70, 85.30, 0.01)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Kathmandu Auto Service", items[0].Name)
	assert.Greater(t, items[0].Distance, 0.0)

	// a wide radius picks up all three, closest first
	items, err = repo.Nearby(ctx, 27.70, 85.30, 2.0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Kathmandu Auto Service", items[0].Name)
	assert.Equal(t, "Chitwan Auto Works", items[1].Name)
	assert.Equal(t, "Pokhara Highway Garage", items[2].Name)
	assert.Less(t, items[0].Distance, items[1].Distance)
	assert.Less(t, items[1].Distance, items[2].Distance)
}

func TestNearbyDefaultRadius(t *testing.T) {
	repo := testRepo(t)

	items, err := repo.Nearby(context.Background(), 27.70, 85.30, 0)
	require.NoError(t, err)
	require.Len(t, items, 3, "radius <= 0 falls back to the default 50")
}

func TestSearchMatchesServicesAndHighway(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	items, err := repo.Search(ctx, "Towing")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Pokhara Highway Garage", items[0].Name)

	items, err = repo.Search(ctx, "Prithvi")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Kathmandu Auto Service", items[0].Name, "best rated first")

	items, err = repo.Search(ctx, "no such thing")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetByID(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	w, err := repo.GetByID(ctx, all[0].ID)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, all[0].Name, w.Name)

	missing, err := repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// The is_24x7 column is BOOLEAN-declared, so the driver returns a Go
// bool; every read path must scan it as one.
func TestBooleanColumnScansAcrossReadPaths(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	byName := map[string]bool{}

	items, err := repo.ListAll(ctx)
	require.NoError(t, err)
	for _, w := range items {
		byName[w.Name] = w.Is24x7
	}
	assert.Equal(t, map[string]bool{
		"Kathmandu Auto Service": false,
		"Pokhara Highway Garage": true,
		"Chitwan Auto Works":     false,
	}, byName)

	near, err := repo.Nearby(ctx, 27.99, 84.41, 0.01)
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.True(t, near[0].Is24x7)

	found, err := repo.Search(ctx, "Pokhara")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Is24x7)

	w, err := repo.GetByID(ctx, found[0].ID)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.True(t, w.Is24x7)
}

func TestSplitServices(t *testing.T) {
	assert.Equal(t, []string{"Engine Repair", "Tire Change", "Battery"}, splitServices("Engine Repair,Tire Change,Battery"))
	assert.Equal(t, []string{"Towing"}, splitServices("Towing"))
	assert.Empty(t, splitServices(""))
	assert.Equal(t, []string{"A", "B"}, splitServices("A, B,"))
}
