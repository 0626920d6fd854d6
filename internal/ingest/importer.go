package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/pgn-loader/internal/pgn"
	"github.com/franz/pgn-loader/internal/report"
	"github.com/franz/pgn-loader/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
)

// Importer loads every matching PGN file of a directory into a store
type Importer struct {
	cfg    *Config
	fs     afero.Fs
	parser pgn.Parser
	loader *Loader
	logger *report.EventLogger
}

// New creates an Importer from a validated configuration
func New(cfg *Config) (*Importer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	parser, err := pgn.New(ModeFor(cfg.Schema))
	if err != nil {
		return nil, err
	}

	return &Importer{
		cfg:    cfg,
		fs:     cfg.Fs,
		parser: parser,
		loader: NewLoader(cfg.Store),
		logger: cfg.Logger,
	}, nil
}

// Result summarizes an import run
type Result struct {
	FilesFound     int
	FilesProcessed int
	FilesFailed    int
	Games          int
	Moves          int
	Errors         []error
}

// Run imports the source directory. Files that fail are logged, recorded
// in Result.Errors and skipped. Games are committed one at a time, so a
// cancelled run keeps everything loaded before the cancellation.
func (im *Importer) Run(ctx context.Context) (*Result, error) {
	util.InfoLog("Importing from: %s", im.cfg.Source)

	paths, err := im.discover()
	if err != nil {
		im.logger.LogError(report.EventError, im.cfg.Source, err)
		return nil, err
	}

	result := &Result{
		FilesFound: len(paths),
		Errors:     make([]error, 0),
	}

	if len(paths) == 0 {
		return result, fmt.Errorf("%w: no %s files in %s", util.ErrNoInput, im.cfg.Extension, im.cfg.Source)
	}

	var bar *progressbar.ProgressBar
	if im.cfg.Progress && util.IsTerminal(os.Stdout.Fd()) && !util.IsQuiet() {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionSetWidth(barWidth()),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		util.FileLog(i+1, len(paths), path, bar != nil)
		start := time.Now()

		hash, games, moves, err := im.importFile(ctx, path)
		result.Games += games
		result.Moves += moves

		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			util.ErrorLog("Failed to import %s: %v", path, err)
			result.FilesFailed++
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", path, err))
			im.logger.LogError(report.EventFile, path, err)
		} else {
			result.FilesProcessed++
			util.DebugLog("Imported %s [%s]: %d games, %d moves", path, util.ShortHash(hash), games, moves)
		}

		im.logger.LogFile(path, hash, games, moves, time.Since(start), err)

		if bar != nil {
			bar.Add(1)
		}
	}

	if bar != nil {
		bar.Finish()
	}

	return result, nil
}

// barWidth sizes the bar to leave room for the description and counters
func barWidth() int {
	w := util.GetTerminalWidth() - 50
	if w > 40 {
		return 40
	}
	if w < 10 {
		return 10
	}
	return w
}

// discover lists the source directory and keeps regular files with the
// configured extension
func (im *Importer) discover() ([]string, error) {
	entries, err := afero.ReadDir(im.fs, im.cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(im.cfg.Source, entry.Name())

		if entry.IsDir() {
			im.logger.LogSkip(path, "directory")
			continue
		}
		if !im.matches(entry.Name()) {
			im.logger.LogSkip(path, "extension")
			continue
		}

		util.DebugLog("Found %s (%s)", path, util.FormatBytes(entry.Size()))
		paths = append(paths, path)
	}

	return paths, nil
}

func (im *Importer) matches(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(im.cfg.Extension))
}

// importFile reads, decodes and parses one file, then loads its games.
// Games loaded before a failure stay committed.
func (im *Importer) importFile(ctx context.Context, path string) (hash string, games, moves int, err error) {
	data, err := util.RetryableReadFile(im.fs, path, im.cfg.Retry)
	if err != nil {
		return "", 0, 0, fmt.Errorf("read: %w", err)
	}
	hash = util.ContentHash(data)

	parsed, err := im.parser.Parse(pgn.Decode(data))
	if err != nil {
		return hash, 0, 0, fmt.Errorf("parse: %w", err)
	}
	if len(parsed) == 0 {
		util.WarnLog("No games found in %s", path)
	}

	for _, g := range parsed {
		if err := ctx.Err(); err != nil {
			return hash, games, moves, err
		}

		record, rows, err := im.loader.Load(ctx, g)
		if err != nil {
			return hash, games, moves, fmt.Errorf("insert game %d: %w", games+1, err)
		}

		games++
		moves += len(rows)
		util.DebugLog("Inserted game %d: %s, %d move rows", record.ID, g.String(), len(rows))
		im.logger.LogGame(path, record.ID, len(rows), record.White, record.Black)
	}

	return hash, games, moves, nil
}
