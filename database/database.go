package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
)

// Store holds the incident database connection.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if necessary) the incident database at dbPath and
// ensures the schema exists.
func NewStore(dbPath string) (*Store, error) {
	// Ensure the directory for the database file exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("Successfully connected to the incident database at", dbPath)
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	incidents := `
    CREATE TABLE IF NOT EXISTS incidents (
        incident_id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT,
        channel_id TEXT,
        message_id TEXT,
        user_id TEXT,
        username TEXT,
        action TEXT,
        score INTEGER,
        reasons TEXT,
        timestamp INTEGER
    );`
	if _, err := s.db.Exec(incidents); err != nil {
		return fmt.Errorf("failed to create incidents table: %w", err)
	}

	stats := `
    CREATE TABLE IF NOT EXISTS daily_stats (
        date TEXT,
        guild_id TEXT,
        watchlisted INTEGER DEFAULT 0,
        deleted INTEGER DEFAULT 0,
        banned INTEGER DEFAULT 0,
        PRIMARY KEY (date, guild_id)
    );`
	if _, err := s.db.Exec(stats); err != nil {
		return fmt.Errorf("failed to create daily_stats table: %w", err)
	}

	return nil
}
