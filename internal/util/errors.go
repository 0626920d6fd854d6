package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoInput indicates the source directory held no matching game files
	ErrNoInput = errors.New("no input files found")

	// ErrFilesFailed indicates a batch finished but some files were not imported
	ErrFilesFailed = errors.New("one or more files failed")
)

// Exit codes returned by the CLI
const (
	ExitOK         = 0
	ExitFatal      = 1
	ExitNoInput    = 2
	ExitFileErrors = 3
)
