package main

import (
	"github.com/franz/pgn-loader/internal/report"
	"github.com/franz/pgn-loader/internal/store"
	"github.com/franz/pgn-loader/internal/util"
	"github.com/spf13/viper"
)

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (PGNL_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigBool retrieves a bool config value
func GetConfigBool(key string) bool {
	return viper.GetBool(key)
}

// settings is the configuration of one run, resolved once at startup
type settings struct {
	DB        string
	Source    string
	Extension string
	Schema    store.Variant
	Events    string
	Verbose   bool
	Quiet     bool
	NoColor   bool
}

func loadSettings() (*settings, error) {
	variant, err := store.ParseVariant(GetConfigString("schema", string(store.VariantExtended)))
	if err != nil {
		return nil, err
	}

	s := &settings{
		DB:        GetConfigString("db", "chess_games.db"),
		Source:    GetConfigString("source", "./chess_games"),
		Extension: GetConfigString("extension", ".pgn"),
		Schema:    variant,
		Events:    GetConfigString("events", "artifacts"),
		Verbose:   GetConfigBool("verbose"),
		Quiet:     GetConfigBool("quiet"),
		NoColor:   GetConfigBool("no-color"),
	}

	// Set log level
	util.SetLogLevel(util.LevelInfo)
	util.SetVerbose(s.Verbose)
	util.SetQuiet(s.Quiet)
	if s.NoColor {
		util.SetColors(false)
	}

	return s, nil
}

// openEventLogger creates the JSONL event log, falling back to a no-op
// logger when the directory is not writable
func openEventLogger(s *settings) *report.EventLogger {
	logLevel := report.LevelInfo // Default
	if s.Quiet {
		logLevel = report.LevelWarning // Only warnings and errors
	} else if s.Verbose {
		logLevel = report.LevelDebug // Everything
	}

	logger, err := report.NewEventLogger(s.Events, logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}

	util.InfoLog("Event log: %s", logger.Path())
	return logger
}
