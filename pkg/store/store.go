package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database holding knowledge bases, agents, campaigns,
// scheduled calls and email leads.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the schema
// exists. Pass ":memory:" for an in-memory database (used by tests).
func Open(path string) (*Store, error) {
	dsn := path
	if dsn != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_fk=1", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Single writer avoids "database is locked" errors under the sweep loop.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS knowledge_bases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			source_type TEXT DEFAULT 'manual',
			content TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS agents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			knowledge_base_id INTEGER NOT NULL,
			name TEXT,
			company_name TEXT,
			purpose TEXT,
			script TEXT NOT NULL,
			type TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (knowledge_base_id) REFERENCES knowledge_bases(id)
		)`,
		`CREATE TABLE IF NOT EXISTS campaigns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			agent_id INTEGER NOT NULL,
			status TEXT DEFAULT 'pending',
			scheduled_time TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (agent_id) REFERENCES agents(id)
		)`,
		`CREATE TABLE IF NOT EXISTS scheduled_calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_name TEXT,
			phone_number TEXT,
			scheduled_time TEXT,
			script TEXT,
			status TEXT DEFAULT 'pending',
			agent_id INTEGER,
			campaign_id INTEGER,
			called_at TEXT,
			duration INTEGER,
			outcome TEXT,
			FOREIGN KEY (agent_id) REFERENCES agents(id),
			FOREIGN KEY (campaign_id) REFERENCES campaigns(id)
		)`,
		`CREATE TABLE IF NOT EXISTS email_leads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT,
			subject TEXT,
			preview TEXT,
			content TEXT,
			category TEXT,
			follow_up_status TEXT,
			time TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scheduled_calls_status ON scheduled_calls(status, scheduled_time)`,
		`CREATE INDEX IF NOT EXISTS idx_scheduled_calls_campaign ON scheduled_calls(campaign_id, status)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
