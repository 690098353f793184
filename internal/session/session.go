// Package session is the stateful layer between raw storage and a UI
// client: it owns the current user, cached collections, and re-fetches
// each collection wholesale after every write that affects it.
package session

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"

	"mechsathi/internal/locations"
	"mechsathi/internal/reviews"
	"mechsathi/internal/users"
	"mechsathi/internal/workshops"
	"mechsathi/pkg/database"
	"mechsathi/pkg/models"
)

var (
	// ErrNotInitialized is returned by every operation invoked before
	// Init has completed.
	ErrNotInitialized = errors.New("session: store not initialized")
	// ErrNotLoggedIn is returned by operations that need a current user.
	ErrNotLoggedIn = errors.New("session: no user logged in")
)

// Session is constructed explicitly and passed around; there is no
// package-level state, so tests can run independent sessions against
// independent databases.
type Session struct {
	mu          sync.Mutex
	initialized bool

	users     *users.Repo
	workshops *workshops.Repo
	locations *locations.Repo
	reviews   *reviews.Repo

	currentUser    *models.User
	workshopCache  []models.Workshop
	savedLocations []models.SavedLocation
	userReviews    []models.Review

	logger *log.Logger
}

func New(db *sql.DB, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		users:     users.NewRepo(db),
		workshops: workshops.NewRepo(db),
		locations: locations.NewRepo(db),
		reviews:   reviews.NewRepo(db),
		logger:    logger,
	}
}

// Init runs schema setup and seeding, then loads the workshop catalog.
// Until it returns nil every other operation fails with
// ErrNotInitialized.
func (s *Session) Init(ctx context.Context) error {
	if err := database.Setup(s.users.DB); err != nil {
		return err
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	s.LoadWorkshops(ctx)
	return nil
}

func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Session) ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (s *Session) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser
}

func (s *Session) currentUserID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0, ErrNotInitialized
	}
	if s.currentUser == nil {
		return 0, ErrNotLoggedIn
	}
	return s.currentUser.ID, nil
}

// Login resolves the user by email only; the password is accepted and
// ignored since no stored secret exists to check it against. An unknown
// email is a plain false, not an error.
func (s *Session) Login(ctx context.Context, email, password string) (bool, error) {
	_ = password

	if err := s.ready(); err != nil {
		return false, err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Printf("login failed: %v", err)
		return false, nil
	}
	if u == nil {
		return false, nil
	}

	s.mu.Lock()
	s.currentUser = u
	s.mu.Unlock()

	s.LoadSavedLocations(ctx)
	s.LoadUserReviews(ctx)
	return true, nil
}

// Register creates the user and adopts it as the active session without
// re-fetching from storage. A duplicate email degrades to false.
func (s *Session) Register(ctx context.Context, name, email, phone string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}

	id, err := s.users.Create(ctx, name, email, phone)
	if err != nil {
		s.logger.Printf("registration failed: %v", err)
		return false, nil
	}

	s.mu.Lock()
	s.currentUser = &models.User{ID: id, Name: name, Email: email, Phone: phone}
	s.mu.Unlock()
	return true, nil
}

// Logout drops the current user and the per-user caches. The workshop
// cache stays; workshops are not user-scoped.
func (s *Session) Logout() {
	s.mu.Lock()
	s.currentUser = nil
	s.savedLocations = nil
	s.userReviews = nil
	s.mu.Unlock()
}

// UpdateProfile applies the given fields and merges them into the
// in-memory current user. Write-path errors propagate.
func (s *Session) UpdateProfile(ctx context.Context, upd users.ProfileUpdate) error {
	id, err := s.currentUserID()
	if err != nil {
		return err
	}

	if err := s.users.UpdateProfile(ctx, id, upd); err != nil {
		s.logger.Printf("profile update failed: %v", err)
		return err
	}

	s.mu.Lock()
	if s.currentUser != nil {
		if upd.Name != nil {
			s.currentUser.Name = *upd.Name
		}
		if upd.Email != nil {
			s.currentUser.Email = *upd.Email
		}
		if upd.Phone != nil {
			s.currentUser.Phone = *upd.Phone
		}
	}
	s.mu.Unlock()
	return nil
}

// LoadWorkshops refreshes the catalog cache. Read-path failures are
// logged, never surfaced; the previous cache stays in place.
func (s *Session) LoadWorkshops(ctx context.Context) {
	if err := s.ready(); err != nil {
		return
	}
	items, err := s.workshops.ListAll(ctx)
	if err != nil {
		s.logger.Printf("load workshops failed: %v", err)
		return
	}
	s.mu.Lock()
	s.workshopCache = items
	s.mu.Unlock()
}

func (s *Session) Workshops() []models.Workshop {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workshopCache
}

// SearchWorkshops queries storage directly; results are not cached.
func (s *Session) SearchWorkshops(ctx context.Context, query string) []models.Workshop {
	if err := s.ready(); err != nil {
		return []models.Workshop{}
	}
	items, err := s.workshops.Search(ctx, query)
	if err != nil {
		s.logger.Printf("search failed: %v", err)
		return []models.Workshop{}
	}
	return items
}

// NearbyWorkshops queries storage directly with the default radius.
func (s *Session) NearbyWorkshops(ctx context.Context, lat, lng float64) []models.Workshop {
	if err := s.ready(); err != nil {
		return []models.Workshop{}
	}
	items, err := s.workshops.Nearby(ctx, lat, lng, 50)
	if err != nil {
		s.logger.Printf("nearby lookup failed: %v", err)
		return []models.Workshop{}
	}
	return items
}

// SaveLocation stores a location for the current user, then re-fetches
// the whole saved-location collection.
func (s *Session) SaveLocation(ctx context.Context, name string, lat, lng float64, address string) error {
	id, err := s.currentUserID()
	if err != nil {
		return err
	}

	if _, err := s.locations.Save(ctx, id, name, lat, lng, address); err != nil {
		s.logger.Printf("save location failed: %v", err)
		return err
	}

	s.LoadSavedLocations(ctx)
	return nil
}

func (s *Session) LoadSavedLocations(ctx context.Context) {
	id, err := s.currentUserID()
	if err != nil {
		return
	}
	items, err := s.locations.ListByUser(ctx, id)
	if err != nil {
		s.logger.Printf("load saved locations failed: %v", err)
		return
	}
	s.mu.Lock()
	s.savedLocations = items
	s.mu.Unlock()
}

func (s *Session) SavedLocations() []models.SavedLocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedLocations
}

// DeleteLocation removes one of the current user's saved locations and
// refreshes the collection. Deleting an id the user does not own fails.
func (s *Session) DeleteLocation(ctx context.Context, locationID int64) error {
	id, err := s.currentUserID()
	if err != nil {
		return err
	}

	ok, err := s.locations.Delete(ctx, locationID, id)
	if err != nil {
		s.logger.Printf("delete location failed: %v", err)
		return err
	}
	if !ok {
		return errors.New("session: location not found")
	}

	s.LoadSavedLocations(ctx)
	return nil
}

// AddReview writes the review, which recomputes the workshop's rating,
// then refreshes both the user's review list and the workshop catalog
// so the new rating is visible.
func (s *Session) AddReview(ctx context.Context, workshopID int64, rating int, comment string) error {
	id, err := s.currentUserID()
	if err != nil {
		return err
	}

	if _, _, err := s.reviews.Add(ctx, id, workshopID, rating, comment); err != nil {
		s.logger.Printf("add review failed: %v", err)
		return err
	}

	s.LoadUserReviews(ctx)
	s.LoadWorkshops(ctx)
	return nil
}

func (s *Session) LoadUserReviews(ctx context.Context) {
	id, err := s.currentUserID()
	if err != nil {
		return
	}
	items, err := s.reviews.ListByUser(ctx, id)
	if err != nil {
		s.logger.Printf("load user reviews failed: %v", err)
		return
	}
	s.mu.Lock()
	s.userReviews = items
	s.mu.Unlock()
}

func (s *Session) UserReviews() []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userReviews
}

// WorkshopReviews lists a workshop's reviews with reviewer names; not
// cached, the UI fetches them per detail screen.
func (s *Session) WorkshopReviews(ctx context.Context, workshopID int64) []models.Review {
	if err := s.ready(); err != nil {
		return []models.Review{}
	}
	items, err := s.reviews.ListByWorkshop(ctx, workshopID)
	if err != nil {
		s.logger.Printf("load workshop reviews failed: %v", err)
		return []models.Review{}
	}
	return items
}
