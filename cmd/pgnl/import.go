package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/franz/pgn-loader/internal/ingest"
	"github.com/franz/pgn-loader/internal/store"
	"github.com/franz/pgn-loader/internal/util"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import every PGN file of the source directory",
	Long: `Import every file with the configured extension from the source
directory into the database.

Each game is committed in its own transaction together with its moves.
A file that cannot be read or parsed is logged and skipped; the run
continues with the next file. Importing the same directory twice stores
every game twice.

Exit status is 2 when no file matched and 3 when some files failed.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	util.InfoLog("Opening database: %s (%s schema)", cfg.DB, cfg.Schema)

	db, err := store.Open(cfg.DB, cfg.Schema)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger := openEventLogger(cfg)
	defer logger.Close()

	logger.LogRun("start", map[string]string{
		"source": cfg.Source,
		"db":     cfg.DB,
		"schema": string(cfg.Schema),
	})

	importer, err := ingest.New(&ingest.Config{
		Store:     db,
		Source:    cfg.Source,
		Extension: cfg.Extension,
		Schema:    cfg.Schema,
		Logger:    logger,
		Progress:  true,
	})
	if err != nil {
		return err
	}

	startTime := time.Now()

	result, err := importer.Run(ctx)
	if result != nil {
		logger.LogRun("end", map[string]string{
			"files":  strconv.Itoa(result.FilesProcessed),
			"failed": strconv.Itoa(result.FilesFailed),
			"games":  strconv.Itoa(result.Games),
			"moves":  strconv.Itoa(result.Moves),
		})
	}
	if err != nil {
		if errors.Is(err, util.ErrNoInput) {
			util.WarnLog("Nothing to import")
			return err
		}
		if result != nil && ctx.Err() != nil {
			util.WarnLog("Import interrupted after %d games", result.Games)
		}
		return fmt.Errorf("import failed: %w", err)
	}

	util.SuccessLog("Import complete in %v", time.Since(startTime).Round(time.Millisecond))
	util.InfoLog("  Files imported: %d of %d", result.FilesProcessed, result.FilesFound)
	util.InfoLog("  Games: %d", result.Games)
	util.InfoLog("  Moves: %d", result.Moves)

	totalGames, _ := db.CountGames()
	totalMoves, _ := db.CountMoves()
	util.InfoLog("Database now holds %d games and %d moves", totalGames, totalMoves)

	if result.FilesFailed > 0 {
		util.WarnLog("  Failed files: %d", result.FilesFailed)
		for _, e := range result.Errors {
			util.WarnLog("    %v", e)
		}
		return fmt.Errorf("%w: %d of %d", util.ErrFilesFailed, result.FilesFailed, result.FilesFound)
	}

	return nil
}
