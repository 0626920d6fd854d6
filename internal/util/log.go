package util

import (
	"fmt"
	"io"
	"os"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

type levelStyle struct {
	label string
	color string
}

var levelStyles = map[LogLevel]levelStyle{
	LevelDebug: {"DEBUG", "\033[90m"},
	LevelInfo:  {"INFO", "\033[36m"},
	LevelWarn:  {"WARN", "\033[33m"},
	LevelError: {"ERROR", "\033[31m"},
}

// successStyle prints at info level under its own label
var successStyle = levelStyle{"OK", "\033[32m"}

var (
	currentLogLevel           = LevelInfo
	useColors                 = IsTerminal(os.Stderr.Fd())
	logOutput       io.Writer = os.Stderr
)

// SetLogLevel sets the minimum log level to display
func SetLogLevel(level LogLevel) {
	currentLogLevel = level
}

// SetVerbose enables debug logging
func SetVerbose(verbose bool) {
	if verbose {
		currentLogLevel = LevelDebug
	}
}

// SetQuiet limits output to errors. It wins over SetVerbose when both are set.
func SetQuiet(quiet bool) {
	if quiet {
		currentLogLevel = LevelError
	}
}

// IsQuiet reports whether only errors are being logged
func IsQuiet() bool {
	return currentLogLevel >= LevelError
}

// SetColors enables or disables colored output
func SetColors(enabled bool) {
	useColors = enabled
}

// Logf writes one line at the given level if the current level allows it
func Logf(level LogLevel, format string, args ...any) {
	style, ok := levelStyles[level]
	if !ok {
		style = levelStyles[LevelInfo]
	}
	emit(level, style, fmt.Sprintf(format, args...))
}

func emit(level LogLevel, style levelStyle, msg string) {
	if level < currentLogLevel {
		return
	}
	ts := time.Now().Format("15:04:05")
	if useColors {
		ts = style.color + ts + "\033[0m"
	}
	fmt.Fprintf(logOutput, "%s %-7s %s\n", ts, "["+style.label+"]", msg)
}

func DebugLog(format string, args ...any) { Logf(LevelDebug, format, args...) }

func InfoLog(format string, args ...any) { Logf(LevelInfo, format, args...) }

func WarnLog(format string, args ...any) { Logf(LevelWarn, format, args...) }

func ErrorLog(format string, args ...any) { Logf(LevelError, format, args...) }

// SuccessLog reports a completed step; hidden in quiet mode
func SuccessLog(format string, args ...any) {
	emit(LevelInfo, successStyle, fmt.Sprintf(format, args...))
}

// FileLog announces the file an import is about to read, as "[n/total] path".
// When a progress bar is drawing the same information the line drops to
// debug level so it only shows up with verbose output.
func FileLog(index, total int, path string, barActive bool) {
	level := LevelInfo
	if barActive {
		level = LevelDebug
	}
	width := len(fmt.Sprint(total))
	Logf(level, "Processing file [%*d/%d]: %s", width, index, total, path)
}
