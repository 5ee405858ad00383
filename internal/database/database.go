package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite aircraft reference database
type DB struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and ensures the schema
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// applyPragmas tunes SQLite for a small single-writer reference table
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// AircraftRepository returns the repository backed by this database
func (d *DB) AircraftRepository() AircraftRepository {
	return NewAircraftRepository(d.db)
}

// initSchema creates the database schema if it doesn't exist
func (d *DB) initSchema() error {
	aircraftSchema := `CREATE TABLE IF NOT EXISTS aircraft (
		icao24 TEXT PRIMARY KEY,
		registration TEXT,
		typecode TEXT,
		manufacturer_name TEXT,
		model TEXT,
		operator TEXT
	);`

	if _, err := d.db.Exec(aircraftSchema); err != nil {
		return fmt.Errorf("failed to create aircraft table: %w", err)
	}

	return nil
}
