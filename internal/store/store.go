package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/franz/pgn-loader/internal/util"
	_ "modernc.org/sqlite" // SQLite driver
)

// Variant names one of the two games table layouts
type Variant string

const (
	// VariantMinimal stores the nine classic tags
	VariantMinimal Variant = "minimal"

	// VariantExtended stores Lichess-style fields (ECO, opening, rating diffs...)
	VariantExtended Variant = "extended"
)

// ErrSchemaMismatch indicates the database was initialized with another variant
var ErrSchemaMismatch = errors.New("schema variant mismatch")

// ParseVariant validates a variant name
func ParseVariant(name string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := variants[v]; !ok {
		return "", fmt.Errorf("%w: unknown schema %q (want %s or %s)",
			util.ErrInvalidConfig, name, VariantMinimal, VariantExtended)
	}
	return v, nil
}

// Store owns the games database for one run
type Store struct {
	db      *sql.DB
	path    string
	variant Variant
	schema  schemaColumns
}

// OpenOptions holds options for opening a database
type OpenOptions struct {
	Variant Variant
}

// uriPath escapes the characters SQLite would otherwise read as URI syntax
// in a file: DSN. SQLite decodes the %HH escapes back before opening.
var uriPath = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// Open opens or creates a SQLite database at the given path and ensures
// the tables of the given variant exist
func Open(path string, variant Variant) (*Store, error) {
	return OpenWithOptions(path, &OpenOptions{Variant: variant})
}

// OpenWithOptions opens or creates a SQLite database with custom options
func OpenWithOptions(path string, opts *OpenOptions) (*Store, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}
	if opts.Variant == "" {
		opts.Variant = VariantExtended
	}

	variant, err := ParseVariant(string(opts.Variant))
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", uriPath.Replace(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer, one connection for the whole run
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{
		db:      db,
		path:    path,
		variant: variant,
		schema:  variants[variant],
	}

	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema initialization failed: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Variant returns the schema variant in use
func (s *Store) Variant() Variant {
	return s.variant
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	err = db.QueryRow("SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity() error {
	var result string
	err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}

// ensureSchema creates the variant's tables if they are missing. It never
// alters existing tables.
func (s *Store) ensureSchema() error {
	return s.Transaction(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(schemaInfoTable); err != nil {
			return fmt.Errorf("failed to create schema_info: %w", err)
		}

		existing, err := recordedVariant(tx)
		if err != nil {
			return err
		}
		if existing == "" {
			if existing, err = detectVariant(tx); err != nil {
				return err
			}
		}
		if existing != "" && existing != s.variant {
			return fmt.Errorf("%w: database holds %q tables, requested %q",
				ErrSchemaMismatch, existing, s.variant)
		}

		if _, err := tx.Exec(s.schema.ddl); err != nil {
			return fmt.Errorf("failed to apply %s schema: %w", s.variant, err)
		}

		var rows int
		if err := tx.QueryRow("SELECT COUNT(*) FROM schema_info").Scan(&rows); err != nil {
			return err
		}
		if rows == 0 {
			if _, err := tx.Exec("INSERT INTO schema_info (variant) VALUES (?)", string(s.variant)); err != nil {
				return fmt.Errorf("failed to record schema variant: %w", err)
			}
		}
		return nil
	})
}

// recordedVariant returns the variant stored in schema_info, if any
func recordedVariant(tx *sql.Tx) (Variant, error) {
	var v string
	err := tx.QueryRow("SELECT variant FROM schema_info LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read schema_info: %w", err)
	}
	return Variant(v), nil
}

// detectVariant inspects a games table created before schema_info existed
func detectVariant(tx *sql.Tx) (Variant, error) {
	rows, err := tx.Query("SELECT name FROM pragma_table_info('games')")
	if err != nil {
		return "", fmt.Errorf("failed to inspect games table: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	for _, name := range names {
		switch {
		case variants[VariantMinimal].hasColumn(name) && !variants[VariantExtended].hasColumn(name):
			return VariantMinimal, nil
		case variants[VariantExtended].hasColumn(name) && !variants[VariantMinimal].hasColumn(name):
			return VariantExtended, nil
		}
	}
	return "", nil
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Game is one row of the games table. Fields a variant has no column for
// are left zero. Empty text is stored as NULL.
type Game struct {
	ID              int64
	Event           string
	Site            string
	Round           string
	Date            string
	White           string
	Black           string
	Result          string
	UTCDate         string
	UTCTime         string
	WhiteElo        int
	BlackElo        int
	WhiteRatingDiff int
	BlackRatingDiff int
	ECO             string
	Opening         string
	TimeControl     string
	Termination     string
}

// Move is one row of the moves table: a White move and Black's reply
type Move struct {
	ID         int64
	GameID     int64
	MoveNumber int
	WhiteMove  string
	BlackMove  sql.NullString // NULL when the game ends on White's move
}
