package locations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mechsathi/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Save(ctx context.Context, userID int64, name string, lat, lng float64, address string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO saved_locations (user_id, name, latitude, longitude, address)
		VALUES (?, ?, ?, ?, ?)
	`, userID, strings.TrimSpace(name), lat, lng, strings.TrimSpace(address))
	if err != nil {
		return 0, fmt.Errorf("save location: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]models.SavedLocation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, name, latitude, longitude, address, created_at
		FROM saved_locations
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	out := []models.SavedLocation{}
	for rows.Next() {
		var loc models.SavedLocation
		var created time.Time
		if err := rows.Scan(&loc.ID, &loc.UserID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.Address, &created); err != nil {
			return nil, fmt.Errorf("scan location row: %w", err)
		}
		loc.CreatedAt = created
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Delete removes a saved location only when it belongs to userID. A
// false return means no row matched, either an unknown id or somebody
// else's location.
func (r *Repo) Delete(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM saved_locations
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete location: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}
