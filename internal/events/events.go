package events

import "time"

const (
	TypeReviewAdded     = "review.added"
	TypeRatingUpdated   = "workshop.rating"
	TypeLocationSaved   = "location.saved"
	TypeLocationDeleted = "location.deleted"
)

// ReviewEvent announces a new review and the recomputed workshop rating
// so catalog views can refresh without re-fetching everything.
type ReviewEvent struct {
	Type           string    `json:"type"`
	WorkshopID     int64     `json:"workshop_id"`
	UserID         int64     `json:"user_id"`
	Rating         int       `json:"rating"`
	WorkshopRating float64   `json:"workshop_rating"`
	At             time.Time `json:"at"`
}

// RatingEvent carries just the recomputed workshop rating, for
// subscribers that track the catalog rather than individual reviews.
type RatingEvent struct {
	Type       string    `json:"type"`
	WorkshopID int64     `json:"workshop_id"`
	Rating     float64   `json:"rating"`
	At         time.Time `json:"at"`
}

type LocationEvent struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	LocationID int64     `json:"location_id"`
	At         time.Time `json:"at"`
}
