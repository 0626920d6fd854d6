package main

import (
	"fmt"

	"github.com/franz/pgn-loader/internal/store"
	"github.com/franz/pgn-loader/internal/util"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the games and moves tables",
	Long: `Create the database and its tables for the configured schema without
importing anything. Running it on an initialized database is a no-op;
running it with a different schema than the database was created with
fails.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DB, cfg.Schema)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	games, err := db.CountGames()
	if err != nil {
		return fmt.Errorf("failed to count games: %w", err)
	}

	util.SuccessLog("Database ready: %s (%s schema, %d games)", db.Path(), db.Variant(), games)
	return nil
}
