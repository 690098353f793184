package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"mechsathi/pkg/database"
)

func main() {
	var (
		workshopsOut = flag.String("workshops", "data/workshops.csv", "output CSV path for workshops")
		reviewsOut   = flag.String("reviews", "data/reviews.csv", "output CSV path for reviews")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Setup(db); err != nil {
		log.Fatalf("db setup failed: %v", err)
	}

	if err := exportWorkshops(ctx, db, *workshopsOut); err != nil {
		log.Fatalf("export workshops failed: %v", err)
	}
	if err := exportReviews(ctx, db, *reviewsOut); err != nil {
		log.Fatalf("export reviews failed: %v", err)
	}

	log.Printf("exported workshops to %s and reviews to %s", *workshopsOut, *reviewsOut)
}

func exportWorkshops(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "location", "highway", "latitude", "longitude", "phone", "rating", "services", "is_24x7", "hours"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, location, highway, latitude, longitude, phone, rating, services, is_24x7, hours
		FROM workshops
		ORDER BY rating DESC
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       int64
			name     string
			location string
			highway  string
			lat      float64
			lng      float64
			phone    string
			rating   float64
			services string
			is24x7   bool
			hours    string
		)
		if err := rows.Scan(&id, &name, &location, &highway, &lat, &lng, &phone, &rating, &services, &is24x7, &hours); err != nil {
			return err
		}

		if err := w.Write([]string{
			strconv.FormatInt(id, 10),
			name,
			location,
			highway,
			strconv.FormatFloat(lat, 'f', -1, 64),
			strconv.FormatFloat(lng, 'f', -1, 64),
			phone,
			strconv.FormatFloat(rating, 'f', 1, 64),
			services,
			strconv.FormatBool(is24x7),
			hours,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportReviews(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "user_id", "workshop_id", "rating", "comment", "created_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, workshop_id, rating, comment, created_at
		FROM reviews
		ORDER BY created_at DESC
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id         int64
			userID     int64
			workshopID int64
			rating     int
			comment    sql.NullString
			createdAt  time.Time
		)
		if err := rows.Scan(&id, &userID, &workshopID, &rating, &comment, &createdAt); err != nil {
			return err
		}

		if err := w.Write([]string{
			strconv.FormatInt(id, 10),
			strconv.FormatInt(userID, 10),
			strconv.FormatInt(workshopID, 10),
			strconv.Itoa(rating),
			comment.String,
			createdAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
