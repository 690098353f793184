package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"mechsathi/pkg/models"
)

// ErrRatingOutOfRange is returned before any SQL runs when a review
// rating falls outside 1..5.
var ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Add inserts a review and recomputes the workshop's stored rating as
// the mean of all its reviews rounded to one decimal, in the same
// transaction. Returns the new review id and the recomputed rating.
func (r *Repo) Add(ctx context.Context, userID, workshopID int64, rating int, comment string) (int64, float64, error) {
	if rating < 1 || rating > 5 {
		return 0, 0, ErrRatingOutOfRange
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin add review: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO reviews (user_id, workshop_id, rating, comment)
		VALUES (?, ?, ?, ?)
	`, userID, workshopID, rating, strings.TrimSpace(comment))
	if err != nil {
		return 0, 0, fmt.Errorf("insert review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("last insert id: %w", err)
	}

	var avg sql.NullFloat64
	if err = tx.QueryRowContext(ctx, `
		SELECT AVG(rating) FROM reviews WHERE workshop_id = ?
	`, workshopID).Scan(&avg); err != nil {
		return 0, 0, fmt.Errorf("average rating: %w", err)
	}

	newRating := math.Round(avg.Float64*10) / 10
	if avg.Valid {
		if _, err = tx.ExecContext(ctx, `
			UPDATE workshops SET rating = ? WHERE id = ?
		`, newRating, workshopID); err != nil {
			return 0, 0, fmt.Errorf("update workshop rating: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit add review: %w", err)
	}
	return id, newRating, nil
}

// ListByWorkshop returns a workshop's reviews with the reviewer's name,
// newest first.
func (r *Repo) ListByWorkshop(ctx context.Context, workshopID int64) ([]models.Review, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.workshop_id, r.rating, r.comment, r.created_at, u.name
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.workshop_id = ?
		ORDER BY r.created_at DESC, r.id DESC
	`, workshopID)
	if err != nil {
		return nil, fmt.Errorf("list workshop reviews: %w", err)
	}
	defer rows.Close()

	out := []models.Review{}
	for rows.Next() {
		var review models.Review
		var comment sql.NullString
		var created time.Time
		if err := rows.Scan(&review.ID, &review.UserID, &review.WorkshopID, &review.Rating, &comment, &created, &review.UserName); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		review.Comment = comment.String
		review.CreatedAt = created
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ListByUser returns a user's reviews with the workshop's name, newest
// first.
func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]models.Review, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.workshop_id, r.rating, r.comment, r.created_at, w.name
		FROM reviews r
		JOIN workshops w ON r.workshop_id = w.id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	defer rows.Close()

	out := []models.Review{}
	for rows.Next() {
		var review models.Review
		var comment sql.NullString
		var created time.Time
		if err := rows.Scan(&review.ID, &review.UserID, &review.WorkshopID, &review.Rating, &comment, &created, &review.WorkshopName); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		review.Comment = comment.String
		review.CreatedAt = created
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
