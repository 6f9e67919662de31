package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (events, event_links, meta)
const currentSchemaVersion = 1

// DefaultPartitionCount is used when creating a store without an explicit
// partition count.
const DefaultPartitionCount = 4

const (
	metaKeySchemaVersion  = "schema_version"
	metaKeyPartitionCount = "partition_count"
)

// Store provides durable storage for the provenance event log.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db         *sql.DB
	partitions int
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// partitions fixes the partition count for a NEW store; pass 0 to use
// DefaultPartitionCount. For an EXISTING store, pass 0 to adopt the stored
// count; a non-zero value that disagrees with the stored count is an error,
// since re-partitioning would strand already-written events.
func Open(path string, partitions int) (*Store, error) {
	if partitions < 0 {
		return nil, fmt.Errorf("partition count must be non-negative, got %d", partitions)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	resolved, err := resolvePartitionCount(db, partitions)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, partitions: resolved}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PartitionCount returns the store's fixed partition count. Lineage
// computations run one query step per partition.
func (s *Store) PartitionCount() int {
	return s.partitions
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	_, err := db.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, metaKeySchemaVersion, strconv.Itoa(currentSchemaVersion))
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// resolvePartitionCount reconciles the requested partition count with the
// one persisted in meta, storing it on first creation.
func resolvePartitionCount(db *sql.DB, requested int) (int, error) {
	var stored string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaKeyPartitionCount).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		if requested == 0 {
			requested = DefaultPartitionCount
		}
		_, err := db.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`,
			metaKeyPartitionCount, strconv.Itoa(requested))
		if err != nil {
			return 0, fmt.Errorf("failed to record partition count: %w", err)
		}
		return requested, nil

	case err != nil:
		return 0, fmt.Errorf("failed to read partition count: %w", err)
	}

	count, err := strconv.Atoi(stored)
	if err != nil || count < 1 {
		return 0, fmt.Errorf("corrupt partition count %q in meta", stored)
	}
	if requested != 0 && requested != count {
		return 0, fmt.Errorf("store has %d partitions, cannot reopen with %d", count, requested)
	}
	return count, nil
}
