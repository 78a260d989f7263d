package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Database manages the collection database lifecycle: it opens a
// WAL-mode SQLite connection, runs pending embedded migrations, and
// provides the connection to repositories.
//
// Usage:
//
//	database, err := db.Open("data/collection.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer database.Close()
//
//	store := collection.NewStore(database.Conn())
type Database struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// Open creates a Database at the given path with default connection
// settings and applies pending migrations. Parent directories are created
// if missing.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConnectionConfig(path))
}

// OpenWithConfig creates a Database with a custom connection configuration.
func OpenWithConfig(config ConnectionConfig) (*Database, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if dir := filepath.Dir(config.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	conn, err := NewSQLiteConnection(config)
	if err != nil {
		return nil, err
	}

	if err := MigrateUp(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{
		conn: conn,
		path: config.Path,
	}, nil
}

// Conn returns the underlying connection for repository use.
func (d *Database) Conn() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.conn
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

// Close closes the database connection. Safe to call more than once.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}
