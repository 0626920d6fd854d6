package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/pgn-loader/internal/store"
)

func TestCheckSQLite(t *testing.T) {
	result := checkSQLite()

	if result.error {
		t.Errorf("SQLite check failed: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected version information in message")
	}
}

func TestCheckDatabase_NonExistent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nonexistent.db")

	result := checkDatabase(dbPath, store.VariantExtended)

	// Should not error - database will be created on first run
	if result.error {
		t.Errorf("non-existent database check should not error: %s", result.message)
	}

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("check should not create the database")
	}
}

func TestCheckDatabase_Existing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := store.Open(dbPath, store.VariantMinimal)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.Close()

	result := checkDatabase(dbPath, store.VariantMinimal)
	if result.error {
		t.Errorf("database check failed: %s", result.message)
	}
	if !strings.Contains(result.message, "minimal") {
		t.Errorf("expected schema in message, got %q", result.message)
	}
}

func TestCheckDatabase_SchemaMismatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := store.Open(dbPath, store.VariantMinimal)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.Close()

	result := checkDatabase(dbPath, store.VariantExtended)
	if !result.error {
		t.Errorf("expected error for schema mismatch, got %q", result.message)
	}
}

func TestCheckDatabase_Empty(t *testing.T) {
	result := checkDatabase("", store.VariantExtended)

	if !result.warning {
		t.Error("expected warning for empty database path")
	}
}

func TestCheckDatabaseFilesystem(t *testing.T) {
	result := checkDatabaseFilesystem(filepath.Join(t.TempDir(), "games.db"))

	if result.error {
		t.Errorf("filesystem check should never error: %s", result.message)
	}
	if result.message == "" {
		t.Error("expected message with filesystem info")
	}
}

func TestCheckSourceDirectory(t *testing.T) {
	withGames := t.TempDir()
	if err := os.WriteFile(filepath.Join(withGames, "a.PGN"), []byte(`[Event "x"]`), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	empty := t.TempDir()
	if err := os.WriteFile(filepath.Join(empty, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	file := filepath.Join(t.TempDir(), "file.pgn")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		path        string
		wantError   bool
		wantWarning bool
	}{
		{name: "has games", path: withGames},
		{name: "no matching files", path: empty, wantWarning: true},
		{name: "missing", path: "/nonexistent/path/that/does/not/exist", wantError: true},
		{name: "file instead of directory", path: file, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checkSourceDirectory(tt.path, ".pgn")
			if result.error != tt.wantError {
				t.Errorf("error = %v, want %v (%s)", result.error, tt.wantError, result.message)
			}
			if result.warning != tt.wantWarning {
				t.Errorf("warning = %v, want %v (%s)", result.warning, tt.wantWarning, result.message)
			}
		})
	}
}

func TestCheckEventsDirectory_Create(t *testing.T) {
	newDir := filepath.Join(t.TempDir(), "artifacts")

	result := checkEventsDirectory(newDir)

	if result.error || result.warning {
		t.Errorf("events directory check failed: %s", result.message)
	}

	if _, err := os.Stat(newDir); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}

func TestCheckEventsDirectory_File(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := checkEventsDirectory(filePath)

	if !result.warning {
		t.Error("expected warning when path is a file, not a directory")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := checkDiskSpace(t.TempDir(), "test")

	if result.error {
		t.Errorf("disk space check failed: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected message with disk space info")
	}
}

func TestCheckDiskSpace_NonExistent(t *testing.T) {
	result := checkDiskSpace("/nonexistent/path", "test")

	// Should produce a warning (not error)
	if !result.warning {
		t.Error("expected warning for non-existent path")
	}
}
