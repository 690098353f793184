package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"mechsathi/pkg/database"
)

// Imports workshops from a CSV. Rows are matched by workshop name:
// existing names are updated in place, new names inserted. Ratings from
// the file are taken as-is; review-derived ratings overwrite them as
// soon as a review lands.
func main() {
	var (
		workshopsIn = flag.String("workshops", "data/workshops.csv", "input CSV path for workshops")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Setup(db); err != nil {
		log.Fatalf("db setup failed: %v", err)
	}

	n, err := importWorkshops(ctx, db, *workshopsIn)
	if err != nil {
		log.Fatalf("import workshops failed: %v", err)
	}

	log.Printf("imported %d workshops from %s", n, *workshopsIn)
}

func importWorkshops(ctx context.Context, db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	insert, err := db.PrepareContext(ctx, `
		INSERT INTO workshops (name, location, highway, latitude, longitude, phone, rating, services, is_24x7, hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer insert.Close()

	update, err := db.PrepareContext(ctx, `
		UPDATE workshops
		SET location = ?, highway = ?, latitude = ?, longitude = ?, phone = ?, rating = ?, services = ?, is_24x7 = ?, hours = ?
		WHERE id = ?
	`)
	if err != nil {
		return 0, err
	}
	defer update.Close()

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		if len(row) == 0 {
			continue
		}

		name := valueAt(header, row, "name")
		location := valueAt(header, row, "location")
		highway := valueAt(header, row, "highway")
		if name == "" || location == "" || highway == "" {
			continue
		}

		lat, err := parseFloat(valueAt(header, row, "latitude"))
		if err != nil {
			return count, fmt.Errorf("parse latitude for %s: %w", name, err)
		}
		lng, err := parseFloat(valueAt(header, row, "longitude"))
		if err != nil {
			return count, fmt.Errorf("parse longitude for %s: %w", name, err)
		}
		rating, err := parseFloat(valueAt(header, row, "rating"))
		if err != nil {
			return count, fmt.Errorf("parse rating for %s: %w", name, err)
		}
		is24x7 := parseBool(valueAt(header, row, "is_24x7"))

		var existingID int64
		err = db.QueryRowContext(ctx, `SELECT id FROM workshops WHERE name = ?`, name).Scan(&existingID)
		switch {
		case err == sql.ErrNoRows:
			_, err = insert.ExecContext(ctx,
				name, location, highway, lat, lng,
				valueAt(header, row, "phone"), rating,
				valueAt(header, row, "services"), is24x7,
				valueAt(header, row, "hours"),
			)
		case err == nil:
			_, err = update.ExecContext(ctx,
				location, highway, lat, lng,
				valueAt(header, row, "phone"), rating,
				valueAt(header, row, "services"), is24x7,
				valueAt(header, row, "hours"), existingID,
			)
		}
		if err != nil {
			return count, fmt.Errorf("store workshop %s: %w", name, err)
		}
		count++
	}

	return count, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
