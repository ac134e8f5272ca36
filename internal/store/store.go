package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

// Store persists named worlds and the history of queries run against them.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for schema and migration messages.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// pragma is a connection setting applied on every Open. readback is what
// "PRAGMA name" reports once the setting took effect.
type pragma struct {
	name     string
	value    string
	readback string
	required bool
}

// Cascading deletes of entities and runs depend on foreign_keys, so Open
// refuses a connection where it did not take effect. journal_mode reads
// back "memory" for in-memory databases and is not checked.
var pragmas = []pragma{
	{name: "journal_mode", value: "WAL", readback: "wal"},
	{name: "synchronous", value: "NORMAL", readback: "1"},
	{name: "busy_timeout", value: "5000", readback: "5000"},
	{name: "foreign_keys", value: "ON", readback: "1", required: true},
}

// migration upgrades a database from version-1 to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// Version 0 is the bare schema.sql.
var migrations = []migration{
	{
		version: 1,
		name:    "index query runs by world",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_query_runs_world ON query_runs(world, id)`,
	},
}

// currentSchemaVersion is the user_version of a fully migrated database.
var currentSchemaVersion = migrations[len(migrations)-1].version

// Open creates or opens the SQLite database at path; ":memory:" gives a
// private in-memory store. Pragmas, the schema and pending migrations are
// applied on every call.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	// One connection: SQLite has a single writer, and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	s.db = db

	if err := s.applyPragmas(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("store opened", zap.String("path", path), zap.Int("schema_version", currentSchemaVersion))
	return s, nil
}

// Close closes the database. It is safe on a zero Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applyPragmas() error {
	for _, p := range pragmas {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
		if !p.required {
			continue
		}
		got, err := s.pragmaValue(p.name)
		if err != nil {
			return err
		}
		if got != p.readback {
			return fmt.Errorf("pragma %s: reads %q after setting %s", p.name, got, p.value)
		}
	}
	return nil
}

// pragmaValue reports the current value of a pragma.
func (s *Store) pragmaValue(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return value, nil
}

// migrate creates missing tables, then runs every migration newer than the
// database's user_version, each in its own transaction.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := s.runMigration(m); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		s.logger.Info("store migrated", zap.String("path", s.path), zap.Int("version", m.version), zap.String("migration", m.name))
	}
	return nil
}

func (s *Store) runMigration(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.stmt); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return err
	}
	return tx.Commit()
}
