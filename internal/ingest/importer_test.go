package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/franz/pgn-loader/internal/pgn"
	"github.com/franz/pgn-loader/internal/report"
	"github.com/franz/pgn-loader/internal/store"
	"github.com/franz/pgn-loader/internal/util"
	"github.com/spf13/afero"
)

const sourceDir = "/games"

const exampleGame = `[Event "Test"]
[Site "Internet"]
[White "A"]
[Black "B"]
[Result "1-0"]
[WhiteElo "1500"]
[BlackElo "1400"]

1. e4 e5 2. Nf3 Nc6 1-0
`

const twoGames = `[Event "First"]
[White "A"]
[Black "B"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0

[Event "Second"]
[White "C"]
[Black "D"]
[Result "0-1"]

1. f3 e5 2. g4 Qh4# 0-1
`

const classicGame = `[Event "Casual Game"]
[Site "London"]
[Round "1"]
[Date "1851.06.21"]
[White "Adolf Anderssen"]
[Black "Lionel Kieseritzky"]
[Result "1-0"]
[WhiteElo "0"]
[BlackElo "0"]

1. e4 e5 2. f4 exf4 3. Bc4 Qh4+ 1-0
`

func newTestImporter(t *testing.T, variant store.Variant, files map[string]string) (*Importer, *store.Store) {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "games.db"), variant)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(sourceDir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for name, content := range files {
		path := filepath.Join(sourceDir, name)
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	im, err := New(&Config{
		Store:  s,
		Fs:     fs,
		Source: sourceDir,
		Schema: variant,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return im, s
}

func TestRun_Example(t *testing.T) {
	im, s := newTestImporter(t, store.VariantExtended, map[string]string{"example.pgn": exampleGame})

	result, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.FilesProcessed != 1 || result.Games != 1 || result.Moves != 2 {
		t.Errorf("result = %+v, want 1 file, 1 game, 2 moves", result)
	}

	ids, err := s.GameIDs()
	if err != nil || len(ids) != 1 {
		t.Fatalf("GameIDs = %v, %v", ids, err)
	}

	g, err := s.GetGame(ids[0])
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if g.White != "A" || g.Black != "B" || g.WhiteElo != 1500 || g.BlackElo != 1400 || g.Result != "1-0" {
		t.Errorf("game = %+v", g)
	}

	moves, err := s.GetMoves(ids[0])
	if err != nil {
		t.Fatalf("GetMoves failed: %v", err)
	}
	want := [][3]string{{"1", "e4", "e5"}, {"2", "Nf3", "Nc6"}}
	if len(moves) != len(want) {
		t.Fatalf("got %d moves, want %d", len(moves), len(want))
	}
	for i, m := range moves {
		if got := [3]string{strconv.Itoa(m.MoveNumber), m.WhiteMove, m.BlackMove.String}; got != want[i] {
			t.Errorf("move %d = %v, want %v", i, got, want[i])
		}
	}
}

func TestRun_TwoBlocksArePartitioned(t *testing.T) {
	im, s := newTestImporter(t, store.VariantExtended, map[string]string{"two.pgn": twoGames})

	result, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Games != 2 {
		t.Fatalf("Games = %d, want 2", result.Games)
	}

	ids, _ := s.GameIDs()
	wantMoves := []int{4, 2}
	wantEvent := []string{"First", "Second"}
	for i, id := range ids {
		g, _ := s.GetGame(id)
		if g.Event != wantEvent[i] {
			t.Errorf("game %d event = %q, want %q", i, g.Event, wantEvent[i])
		}
		moves, _ := s.GetMoves(id)
		if len(moves) != wantMoves[i] {
			t.Errorf("game %d has %d moves, want %d", i, len(moves), wantMoves[i])
		}
	}
}

func TestRun_FiltersEntries(t *testing.T) {
	im, _ := newTestImporter(t, store.VariantExtended, map[string]string{
		"a.pgn":          exampleGame,
		"b.PGN":          exampleGame,
		"notes.txt":      "not a game",
		"sub/c.pgn":      exampleGame,
		"archive.pgn.gz": "binary",
	})

	result, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.FilesFound != 2 {
		t.Errorf("FilesFound = %d, want 2", result.FilesFound)
	}
	if result.Games != 2 {
		t.Errorf("Games = %d, want 2", result.Games)
	}
}

func TestRun_RerunDoublesRows(t *testing.T) {
	im, s := newTestImporter(t, store.VariantExtended, map[string]string{"two.pgn": twoGames})

	for i := 0; i < 2; i++ {
		if _, err := im.Run(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}

	games, _ := s.CountGames()
	moves, _ := s.CountMoves()
	if games != 4 {
		t.Errorf("CountGames = %d, want 4", games)
	}
	if moves != 12 {
		t.Errorf("CountMoves = %d, want 12", moves)
	}
}

func TestRun_FailedFileIsIsolated(t *testing.T) {
	missingRound := `[Event "Casual Game"]
[Site "London"]
[Date "1851.06.21"]
[White "X"]
[Black "Y"]
[Result "1-0"]
[WhiteElo "0"]
[BlackElo "0"]

1. e4 e5 1-0
`
	im, s := newTestImporter(t, store.VariantMinimal, map[string]string{
		"a_bad.pgn":  missingRound,
		"b_good.pgn": classicGame,
	})

	result, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.FilesFailed != 1 || result.FilesProcessed != 1 {
		t.Errorf("result = %+v, want 1 failed and 1 processed", result)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], pgn.ErrMissingTag) {
		t.Errorf("Errors = %v, want one ErrMissingTag", result.Errors)
	}

	count, _ := s.CountGames()
	if count != 1 {
		t.Errorf("CountGames = %d, want 1", count)
	}
}

func TestRun_FailedFileLogsErrorEvent(t *testing.T) {
	im, _ := newTestImporter(t, store.VariantMinimal, map[string]string{
		"a_bad.pgn":  "[Event \"x\"]\n\n1. e4 e5 1-0\n",
		"b_good.pgn": classicGame,
	})

	logger, err := report.NewEventLogger(t.TempDir(), report.LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	im.logger = logger

	if _, err := im.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	logger.Close()

	badPath := filepath.Join(sourceDir, "a_bad.pgn")
	var fileEvents, errorEvents int
	for _, ev := range readEventLog(t, logger.Path()) {
		if ev.SrcPath != badPath || ev.Event != report.EventFile {
			continue
		}
		fileEvents++
		if ev.Level == report.LevelError && strings.Contains(ev.Error, pgn.ErrMissingTag.Error()) {
			errorEvents++
		}
	}
	if fileEvents != 2 || errorEvents != 2 {
		t.Errorf("got %d file events (%d errors) for %s, want a summary and an error event", fileEvents, errorEvents, badPath)
	}
}

func TestRun_MissingSourceLogsErrorEvent(t *testing.T) {
	im, _ := newTestImporter(t, store.VariantExtended, nil)
	im.cfg.Source = "/does/not/exist"

	logger, err := report.NewEventLogger(t.TempDir(), report.LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	im.logger = logger

	if _, err := im.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing source directory")
	}
	logger.Close()

	events := readEventLog(t, logger.Path())
	if len(events) != 1 || events[0].Event != report.EventError || events[0].SrcPath != "/does/not/exist" {
		t.Errorf("events = %+v, want one error event for the source", events)
	}
}

func readEventLog(t *testing.T, path string) []report.Event {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var events []report.Event
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var ev report.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestRun_MinimalVariant(t *testing.T) {
	im, s := newTestImporter(t, store.VariantMinimal, map[string]string{"classic.pgn": classicGame})

	if _, err := im.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ids, _ := s.GameIDs()
	if len(ids) != 1 {
		t.Fatalf("expected 1 game, got %d", len(ids))
	}
	g, _ := s.GetGame(ids[0])
	if g.Round != "1" || g.Date != "1851.06.21" || g.White != "Adolf Anderssen" {
		t.Errorf("game = %+v", g)
	}
	moves, _ := s.GetMoves(ids[0])
	if len(moves) != 3 {
		t.Errorf("got %d moves, want 3", len(moves))
	}
}

func TestRun_DanglingWhiteMove(t *testing.T) {
	game := `[Event "Short"]
[White "A"]
[Black "B"]
[Result "*"]

1. e4 e5 2. Nf3 *
`
	im, s := newTestImporter(t, store.VariantExtended, map[string]string{"short.pgn": game})

	if _, err := im.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ids, _ := s.GameIDs()
	moves, _ := s.GetMoves(ids[0])
	if len(moves) != 2 {
		t.Fatalf("got %d moves, want 2", len(moves))
	}
	if moves[1].WhiteMove != "Nf3" || moves[1].BlackMove.Valid {
		t.Errorf("last move = %+v, want Nf3 with NULL black", moves[1])
	}
}

func TestRun_NoInput(t *testing.T) {
	im, _ := newTestImporter(t, store.VariantExtended, map[string]string{"readme.md": "nothing"})

	result, err := im.Run(context.Background())
	if !errors.Is(err, util.ErrNoInput) {
		t.Fatalf("err = %v, want ErrNoInput", err)
	}
	if result == nil || result.FilesFound != 0 {
		t.Errorf("result = %+v, want zero files found", result)
	}
}

func TestRun_MissingSource(t *testing.T) {
	im, _ := newTestImporter(t, store.VariantExtended, nil)
	im.cfg.Source = "/does/not/exist"

	_, err := im.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for missing source directory")
	}
	if errors.Is(err, util.ErrNoInput) {
		t.Errorf("missing directory should not be reported as no input: %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	im, s := newTestImporter(t, store.VariantExtended, map[string]string{"two.pgn": twoGames})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := im.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	count, _ := s.CountGames()
	if count != 0 {
		t.Errorf("CountGames = %d, want 0", count)
	}
}

func TestConfigValidate(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "games.db"), store.VariantExtended)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{Store: s, Source: "/games"}},
		{name: "explicit extension", cfg: Config{Store: s, Source: "/games", Extension: ".txt"}},
		{name: "missing store", cfg: Config{Source: "/games"}, wantErr: true},
		{name: "missing source", cfg: Config{Store: s}, wantErr: true},
		{name: "extension without dot", cfg: Config{Store: s, Source: "/games", Extension: "pgn"}, wantErr: true},
		{name: "unknown schema", cfg: Config{Store: s, Source: "/games", Schema: "wide"}, wantErr: true},
		{name: "schema mismatch", cfg: Config{Store: s, Source: "/games", Schema: store.VariantMinimal}, wantErr: true},
		{name: "zero retry attempts", cfg: Config{Store: s, Source: "/games", Retry: &util.RetryConfig{MaxAttempts: 0}}},
		{name: "negative retry attempts", cfg: Config{Store: s, Source: "/games", Retry: &util.RetryConfig{MaxAttempts: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, util.ErrInvalidConfig) {
					t.Errorf("err = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if cfg.Extension == "" || cfg.Schema != store.VariantExtended || cfg.Fs == nil || cfg.Retry == nil {
				t.Fatalf("defaults not filled: %+v", cfg)
			}
			if cfg.Retry.MaxAttempts < 1 {
				t.Errorf("Retry.MaxAttempts = %d, want at least 1", cfg.Retry.MaxAttempts)
			}
		})
	}
}
