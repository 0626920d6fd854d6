package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/franz/pgn-loader/internal/store"
	"github.com/franz/pgn-loader/internal/util"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure pgnl can operate correctly.

This command checks:
- SQLite version
- Database accessibility, schema and integrity
- Whether the database sits on network storage
- Source directory and the number of matching files
- Event log directory permissions
- Disk space next to the database

Use this command to troubleshoot issues before importing.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	util.InfoLog("=== pgnl doctor ===")
	util.InfoLog("")

	results := []checkResult{
		checkSQLite(),
		checkDatabase(cfg.DB, cfg.Schema),
		checkDatabaseFilesystem(cfg.DB),
		checkSourceDirectory(cfg.Source, cfg.Extension),
		checkEventsDirectory(cfg.Events),
		checkDiskSpace(filepath.Dir(cfg.DB), "database"),
	}

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("Some critical checks failed. Please resolve errors before importing.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("All checks passed.")
	}

	return nil
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is built in, so this only reads the version
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies the database opens with the configured schema
func checkDatabase(dbPath string, variant store.Variant) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath, variant)
	if err != nil {
		if errors.Is(err, store.ErrSchemaMismatch) {
			return checkResult{
				name:    "Database",
				error:   true,
				message: fmt.Sprintf("%v (pass the matching --schema)", err),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	games, _ := db.CountGames()
	moves, _ := db.CountMoves()
	size := util.FormatBytes(info.Size())

	return checkResult{
		name:    "Database",
		message: fmt.Sprintf("%s (%s, %s schema, %d games, %d moves)", dbPath, size, db.Variant(), games, moves),
	}
}

// checkDatabaseFilesystem warns when the database is on network storage,
// where SQLite WAL locking is unreliable
func checkDatabaseFilesystem(dbPath string) checkResult {
	info, err := util.DetectNetworkFilesystem(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database filesystem",
			warning: true,
			message: fmt.Sprintf("cannot detect filesystem: %v", err),
		}
	}

	if info.IsNetwork {
		return checkResult{
			name:    "Database filesystem",
			warning: true,
			message: fmt.Sprintf("%s is on %s (%s); keep the database on a local disk", dbPath, info.Protocol, info.MountPath),
		}
	}

	return checkResult{
		name:    "Database filesystem",
		message: "local",
	}
}

// checkSourceDirectory verifies the source directory is readable and
// holds files to import
func checkSourceDirectory(path, ext string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		return checkResult{
			name:    "Source directory",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Source directory",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return checkResult{
			name:    "Source directory",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	matching := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), strings.ToLower(ext)) {
			matching++
		}
	}

	if matching == 0 {
		return checkResult{
			name:    "Source directory",
			warning: true,
			message: fmt.Sprintf("%s has no %s files", path, ext),
		}
	}

	return checkResult{
		name:    "Source directory",
		message: fmt.Sprintf("%s (%d %s files)", path, matching, ext),
	}
}

// checkEventsDirectory verifies the event log directory is writable
func checkEventsDirectory(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0755); err != nil {
				return checkResult{
					name:    "Event log directory",
					warning: true,
					message: fmt.Sprintf("cannot create %s: %v", path, err),
				}
			}
			return checkResult{
				name:    "Event log directory",
				message: fmt.Sprintf("%s (created)", path),
			}
		}
		return checkResult{
			name:    "Event log directory",
			warning: true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Event log directory",
			warning: true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	// Check write permission by creating a temp file
	testFile := filepath.Join(path, ".pgnl_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Event log directory",
			warning: true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Event log directory",
		message: fmt.Sprintf("%s (writable)", path),
	}
}

// checkDiskSpace verifies available disk space
func checkDiskSpace(path string, label string) checkResult {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return checkResult{
			name:    fmt.Sprintf("Disk space (%s)", label),
			warning: true,
			message: fmt.Sprintf("cannot determine disk space: %v", err),
		}
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)
	totalBytes := stat.Blocks * uint64(stat.Bsize)
	usedBytes := totalBytes - (stat.Bfree * uint64(stat.Bsize))
	usedPercent := float64(usedBytes) / float64(totalBytes) * 100

	// Warn below 100MB or above 95% used
	warning := false
	warningMsg := ""
	if availBytes < 100*1024*1024 {
		warning = true
		warningMsg = " (low space!)"
	} else if usedPercent > 95 {
		warning = true
		warningMsg = " (>95% used)"
	}

	return checkResult{
		name:    fmt.Sprintf("Disk space (%s)", label),
		warning: warning,
		message: fmt.Sprintf("%s available%s", util.FormatBytes(int64(availBytes)), warningMsg),
	}
}
