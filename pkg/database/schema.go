package database

import (
	"database/sql"
	"fmt"
)

// Setup creates the four tables if they are missing and seeds the
// workshop catalog the first time the table is found empty. Safe to call
// on every launch: N calls leave the same state as one.
func Setup(db *sql.DB) error {
	if err := createTables(db); err != nil {
		return err
	}
	if err := seedWorkshops(db); err != nil {
		return err
	}
	return nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS workshops (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			location TEXT NOT NULL,
			highway TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			phone TEXT NOT NULL,
			rating REAL DEFAULT 0,
			services TEXT NOT NULL,
			is_24x7 BOOLEAN DEFAULT 0,
			hours TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS saved_locations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			address TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users (id)
		);`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			workshop_id INTEGER NOT NULL,
			rating INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
			comment TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users (id),
			FOREIGN KEY (workshop_id) REFERENCES workshops (id)
		);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

type seedWorkshop struct {
	Name      string
	Location  string
	Highway   string
	Latitude  float64
	Longitude float64
	Phone     string
	Rating    float64
	Services  string
	Is24x7    int
	Hours     string
}

var seedCatalog = []seedWorkshop{
	{
		Name:      "Kathmandu Auto Service",
		Location:  "Kalanki, Kathmandu",
		Highway:   "Prithvi Highway",
		Latitude:  27.6915,
		Longitude: 85.2890,
		Phone:     "+977-1-4123456",
		Rating:    4.5,
		Services:  "Engine Repair,Tire Change,Battery",
		Is24x7:    0,
		Hours:     "6:00 AM - 8:00 PM",
	},
	{
		Name:      "Pokhara Highway Garage",
		Location:  "Dumre, Tanahun",
		Highway:   "Prithvi Highway",
		Latitude:  27.9881,
		Longitude: 84.4100,
		Phone:     "+977-65-123456",
		Rating:    4.2,
		Services:  "Towing,Engine Repair,AC Service",
		Is24x7:    1,
		Hours:     "24/7",
	},
	{
		Name:      "Chitwan Auto Works",
		Location:  "Bharatpur, Chitwan",
		Highway:   "East-West Highway",
		Latitude:  27.6839,
		Longitude: 84.4347,
		Phone:     "+977-56-789012",
		Rating:    4.0,
		Services:  "Brake Service,Tire Change,Oil Change",
		Is24x7:    0,
		Hours:     "7:00 AM - 6:00 PM",
	},
}

// seedWorkshops inserts the fixed catalog once. The row-count guard is
// what makes repeated Setup calls a no-op.
func seedWorkshops(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM workshops`).Scan(&count); err != nil {
		return fmt.Errorf("count workshops: %w", err)
	}
	if count > 0 {
		return nil
	}

	stmt, err := db.Prepare(`
		INSERT INTO workshops (name, location, highway, latitude, longitude, phone, rating, services, is_24x7, hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare seed insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range seedCatalog {
		if _, err := stmt.Exec(
			w.Name, w.Location, w.Highway, w.Latitude, w.Longitude,
			w.Phone, w.Rating, w.Services, w.Is24x7, w.Hours,
		); err != nil {
			return fmt.Errorf("seed workshop %q: %w", w.Name, err)
		}
	}
	return nil
}
