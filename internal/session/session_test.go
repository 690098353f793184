package session

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechsathi/internal/users"
	"mechsathi/pkg/database"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, log.New(io.Discard, "", 0))
}

func TestOperationsFailBeforeInit(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	assert.False(t, s.Initialized())

	_, err := s.Login(ctx, "anyone@example.com", "pw")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = s.Register(ctx, "A", "a@example.com", "")
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, s.SaveLocation(ctx, "Home", 27.7, 85.3, ""), ErrNotInitialized)
	assert.ErrorIs(t, s.AddReview(ctx, 1, 5, ""), ErrNotInitialized)

	assert.Empty(t, s.Workshops())
	assert.Empty(t, s.SearchWorkshops(ctx, "Towing"))
}

func TestInitLoadsSeededCatalog(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.Init(ctx))
	assert.True(t, s.Initialized())

	catalog := s.Workshops()
	require.Len(t, catalog, 3)
	assert.Equal(t, "Kathmandu Auto Service", catalog[0].Name)
}

func TestLoginUnknownEmailIsFalseNotError(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	ok, err := s.Login(ctx, "nobody@example.com", "whatever")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, s.CurrentUser())
}

func TestRegisterAdoptsUserWithoutRefetch(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	ok, err := s.Register(ctx, "Sita", "sita@example.com", "9800000001")
	require.NoError(t, err)
	require.True(t, ok)

	u := s.CurrentUser()
	require.NotNil(t, u)
	assert.Equal(t, "Sita", u.Name)
	assert.Equal(t, "sita@example.com", u.Email)
	assert.Greater(t, u.ID, int64(0))

	// duplicate email degrades to false, session keeps the first user
	ok, err = s.Register(ctx, "Other", "sita@example.com", "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Sita", s.CurrentUser().Name)
}

func TestLoginLoadsPerUserCaches(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	ok, err := s.Register(ctx, "Ram", "ram@example.com", "")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.SaveLocation(ctx, "Home", 27.7, 85.3, "Kathmandu"))
	require.NoError(t, s.AddReview(ctx, 1, 5, "great"))
	s.Logout()

	assert.Nil(t, s.CurrentUser())
	assert.Empty(t, s.SavedLocations())
	assert.Empty(t, s.UserReviews())
	assert.Len(t, s.Workshops(), 3, "catalog survives logout")

	ok, err = s.Login(ctx, "ram@example.com", "ignored")
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, s.SavedLocations(), 1)
	assert.Equal(t, "Home", s.SavedLocations()[0].Name)
	require.Len(t, s.UserReviews(), 1)
	assert.Equal(t, 5, s.UserReviews()[0].Rating)
}

func TestAddReviewRefreshesCatalogRating(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	ok, err := s.Register(ctx, "Hari", "hari@example.com", "")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.AddReview(ctx, 1, 3, "average"))

	var found bool
	for _, w := range s.Workshops() {
		if w.ID == 1 {
			found = true
			assert.Equal(t, 3.0, w.Rating, "catalog reflects recomputed rating")
		}
	}
	assert.True(t, found)
}

func TestAddReviewOutOfRangePropagates(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	ok, err := s.Register(ctx, "Gita", "gita@example.com", "")
	require.NoError(t, err)
	require.True(t, ok)

	err = s.AddReview(ctx, 1, 6, "")
	require.Error(t, err)
	assert.Empty(t, s.UserReviews())
}

func TestDeleteLocationRequiresOwnership(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	ok, err := s.Register(ctx, "Owner", "owner@example.com", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.SaveLocation(ctx, "Garage", 28.2, 83.9, ""))
	require.Len(t, s.SavedLocations(), 1)
	locationID := s.SavedLocations()[0].ID

	s.Logout()
	ok, err = s.Register(ctx, "Intruder", "intruder@example.com", "")
	require.NoError(t, err)
	require.True(t, ok)

	require.Error(t, s.DeleteLocation(ctx, locationID), "other user's location must not be deletable")

	s.Logout()
	ok, err = s.Login(ctx, "owner@example.com", "")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.DeleteLocation(ctx, locationID))
	assert.Empty(t, s.SavedLocations())
}

func TestUpdateProfileMergesIntoCurrentUser(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	ok, err := s.Register(ctx, "Before", "before@example.com", "111")
	require.NoError(t, err)
	require.True(t, ok)

	name := "After"
	phone := "222"
	require.NoError(t, s.UpdateProfile(ctx, users.ProfileUpdate{Name: &name, Phone: &phone}))

	u := s.CurrentUser()
	assert.Equal(t, "After", u.Name)
	assert.Equal(t, "before@example.com", u.Email)
	assert.Equal(t, "222", u.Phone)
}

func TestMutationsRequireLogin(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	assert.ErrorIs(t, s.SaveLocation(ctx, "X", 0, 0, ""), ErrNotLoggedIn)
	assert.ErrorIs(t, s.AddReview(ctx, 1, 4, ""), ErrNotLoggedIn)
	assert.ErrorIs(t, s.DeleteLocation(ctx, 1), ErrNotLoggedIn)
	assert.ErrorIs(t, s.UpdateProfile(ctx, users.ProfileUpdate{}), ErrNotLoggedIn)
}
