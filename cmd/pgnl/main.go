package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/franz/pgn-loader/internal/util"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "pgnl",
		Short: "PGN loader - import chess games into SQLite",
		Long: `pgnl reads every PGN file in a source directory, extracts the game
headers and move pairs, and stores them in a SQLite database with a
games table and a moves table.

Running pgnl without a subcommand is the same as "pgnl import".`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runImport,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/pgnl.yaml)")
	rootCmd.PersistentFlags().String("db", "chess_games.db", "SQLite database file")
	rootCmd.PersistentFlags().StringP("source", "s", "./chess_games", "directory holding the PGN files")
	rootCmd.PersistentFlags().String("ext", ".pgn", "file extension to import")
	rootCmd.PersistentFlags().String("schema", "extended", "games table layout (minimal or extended)")
	rootCmd.PersistentFlags().String("events", "artifacts", "directory for the JSONL event log")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored log output")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("extension", rootCmd.PersistentFlags().Lookup("ext"))
	viper.BindPFlag("schema", rootCmd.PersistentFlags().Lookup("schema"))
	viper.BindPFlag("events", rootCmd.PersistentFlags().Lookup("events"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
}

func initConfig() {
	// .env values become PGNL_* environment variables for viper
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		util.WarnLog("Failed to load .env: %v", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("pgnl")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("PGNL")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return util.ExitOK
	case errors.Is(err, util.ErrNoInput):
		return util.ExitNoInput
	case errors.Is(err, util.ErrFilesFailed):
		return util.ExitFileErrors
	default:
		return util.ExitFatal
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(exitCode(err))
}
