package models

import "time"

type Review struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	WorkshopID int64     `json:"workshop_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// Filled by joined queries: reviewer name when listing a workshop's
	// reviews, workshop name when listing a user's reviews.
	UserName     string `json:"user_name,omitempty"`
	WorkshopName string `json:"workshop_name,omitempty"`
}
