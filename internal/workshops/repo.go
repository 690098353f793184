package workshops

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

const selectCols = `id, name, location, highway, latitude, longitude, phone, rating, services, is_24x7, hours, created_at`

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Workshop, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+selectCols+`
		FROM workshops
		WHERE id = ?
	`, id)

	w, err := scanWorkshop(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get workshop: %w", err)
	}
	return w, nil
}

// ListAll returns the whole catalog, best rated first.
func (r *Repo) ListAll(ctx context.Context) ([]models.Workshop, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+selectCols+`
		FROM workshops
		ORDER BY rating DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list workshops: %w", err)
	}
	defer rows.Close()

	return collect(rows, false)
}

// Nearby filters by planar squared coordinate distance. This is a rough
// regional filter, not a geodesic distance: the radius is in squared
// degrees and accuracy drops at high latitudes and long ranges.
func (r *Repo) Nearby(ctx context.Context, lat, lng, radius float64) ([]models.Workshop, error) {
	if radius <= 0 {
		radius = 50
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+selectCols+`,
			((latitude - ?) * (latitude - ?) + (longitude - ?) * (longitude - ?)) AS distance
		FROM workshops
		WHERE distance < ?
		ORDER BY distance, rating DESC
	`, lat, lat, lng, lng, radius)
	if err != nil {
		return nil, fmt.Errorf("nearby workshops: %w", err)
	}
	defer rows.Close()

	return collect(rows, true)
}

// Search matches the query as a substring of name, location, highway or
// services, best rated first.
func (r *Repo) Search(ctx context.Context, query string) ([]models.Workshop, error) {
	kw := "%" + strings.TrimSpace(query) + "%"

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+selectCols+`
		FROM workshops
		WHERE name LIKE ? OR location LIKE ? OR highway LIKE ? OR services LIKE ?
		ORDER BY rating DESC
	`, kw, kw, kw, kw)
	if err != nil {
		return nil, fmt.Errorf("search workshops: %w", err)
	}
	defer rows.Close()

	return collect(rows, false)
}

func collect(rows *sql.Rows, withDistance bool) ([]models.Workshop, error) {
	var out []models.Workshop
	for rows.Next() {
		var w *models.Workshop
		var err error
		if withDistance {
			w, err = scanWorkshopDistance(rows.Scan)
		} else {
			w, err = scanWorkshop(rows.Scan)
		}
		if err != nil {
			return nil, fmt.Errorf("scan workshop row: %w", err)
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	if out == nil {
		out = []models.Workshop{}
	}
	return out, nil
}

func scanWorkshop(scan func(...any) error) (*models.Workshop, error) {
	var (
		w        models.Workshop
		services string
		created  time.Time
	)
	// is_24x7 is declared BOOLEAN, so the driver hands it back as a
	// Go bool, not an integer.
	if err := scan(
		&w.ID, &w.Name, &w.Location, &w.Highway, &w.Latitude, &w.Longitude,
		&w.Phone, &w.Rating, &services, &w.Is24x7, &w.Hours, &created,
	); err != nil {
		return nil, err
	}
	fill(&w, services, created)
	return &w, nil
}

func scanWorkshopDistance(scan func(...any) error) (*models.Workshop, error) {
	var (
		w        models.Workshop
		services string
		created  time.Time
	)
	if err := scan(
		&w.ID, &w.Name, &w.Location, &w.Highway, &w.Latitude, &w.Longitude,
		&w.Phone, &w.Rating, &services, &w.Is24x7, &w.Hours, &created, &w.Distance,
	); err != nil {
		return nil, err
	}
	fill(&w, services, created)
	return &w, nil
}

func fill(w *models.Workshop, services string, created time.Time) {
	w.Services = splitServices(services)
	w.CreatedAt = created
}

// splitServices turns the stored comma-joined form into an ordered list.
func splitServices(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinServices is the inverse of the services split, used by bulk import.
func JoinServices(services []string) string {
	return strings.Join(services, ",")
}
