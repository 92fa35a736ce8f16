// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists conversion outcomes in a SQLite ledger. It is
// purely observational: a catalog failure never affects a conversion.
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ot-tools/otbconvert/internal/convert"
)

// Store manages the conversion ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		archive TEXT NOT NULL,
		status TEXT NOT NULL,
		channels INTEGER NOT NULL,
		samples INTEGER NOT NULL,
		duration_s REAL NOT NULL,
		error TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	)`)
	return err
}

// Record implements convert.Recorder by appending one ledger row.
func (s *Store) Record(rec convert.Record) error {
	_, err := s.db.Exec(
		`INSERT INTO conversions (archive, status, channels, samples, duration_s, error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Archive, string(rec.Status), rec.Channels, rec.Samples, rec.Duration, rec.Error,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording conversion: %w", err)
	}
	return nil
}

// Entry is one ledger row.
type Entry struct {
	Archive    string
	Status     convert.Status
	Channels   int
	Samples    int
	Duration   float64
	Error      string
	RecordedAt string
}

// List returns all ledger rows, newest first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT archive, status, channels, samples, duration_s, error, recorded_at
		 FROM conversions ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status string
		if err := rows.Scan(&e.Archive, &status, &e.Channels, &e.Samples, &e.Duration, &e.Error, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		e.Status = convert.Status(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog rows: %w", err)
	}
	return entries, nil
}
