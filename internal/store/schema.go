package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// The moves table is shared by both variants.
const movesTable = `
CREATE TABLE IF NOT EXISTS moves (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  game_id INTEGER NOT NULL,
  move_number INTEGER NOT NULL,
  white_move TEXT NOT NULL,
  black_move TEXT,
  FOREIGN KEY (game_id) REFERENCES games(id)
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id, move_number);
`

// Variant A: the nine tags of a classic over-the-board record
const minimalGamesTable = `
CREATE TABLE IF NOT EXISTS games (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  event TEXT,
  site TEXT,
  round TEXT,
  date TEXT,
  white_person TEXT,
  black_person TEXT,
  white_elo INTEGER,
  black_elo INTEGER,
  result TEXT
);
`

// Variant B: Lichess export fields
const extendedGamesTable = `
CREATE TABLE IF NOT EXISTS games (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  event TEXT,
  site TEXT,
  white TEXT,
  black TEXT,
  result TEXT,
  utc_date TEXT,
  utc_time TEXT,
  white_elo INTEGER NOT NULL DEFAULT 0,
  black_elo INTEGER NOT NULL DEFAULT 0,
  white_rating_diff INTEGER NOT NULL DEFAULT 0,
  black_rating_diff INTEGER NOT NULL DEFAULT 0,
  eco TEXT,
  opening TEXT,
  time_control TEXT,
  termination TEXT
);

CREATE INDEX IF NOT EXISTS idx_games_eco ON games(eco);
`

// Records which variant a database file was initialized with
const schemaInfoTable = `
CREATE TABLE IF NOT EXISTS schema_info (
  variant TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// column maps one games column onto a Game field
type column struct {
	name  string
	text  bool
	field func(g *Game) any // pointer to the Game field
}

func textColumn(name string, field func(g *Game) *string) column {
	return column{name: name, text: true, field: func(g *Game) any { return field(g) }}
}

func intColumn(name string, field func(g *Game) *int) column {
	return column{name: name, field: func(g *Game) any { return field(g) }}
}

// schemaColumns describes one schema variant
type schemaColumns struct {
	ddl     string
	columns []column
}

var variants = map[Variant]schemaColumns{
	VariantMinimal: {
		ddl: minimalGamesTable + movesTable,
		columns: []column{
			textColumn("event", func(g *Game) *string { return &g.Event }),
			textColumn("site", func(g *Game) *string { return &g.Site }),
			textColumn("round", func(g *Game) *string { return &g.Round }),
			textColumn("date", func(g *Game) *string { return &g.Date }),
			textColumn("white_person", func(g *Game) *string { return &g.White }),
			textColumn("black_person", func(g *Game) *string { return &g.Black }),
			intColumn("white_elo", func(g *Game) *int { return &g.WhiteElo }),
			intColumn("black_elo", func(g *Game) *int { return &g.BlackElo }),
			textColumn("result", func(g *Game) *string { return &g.Result }),
		},
	},
	VariantExtended: {
		ddl: extendedGamesTable + movesTable,
		columns: []column{
			textColumn("event", func(g *Game) *string { return &g.Event }),
			textColumn("site", func(g *Game) *string { return &g.Site }),
			textColumn("white", func(g *Game) *string { return &g.White }),
			textColumn("black", func(g *Game) *string { return &g.Black }),
			textColumn("result", func(g *Game) *string { return &g.Result }),
			textColumn("utc_date", func(g *Game) *string { return &g.UTCDate }),
			textColumn("utc_time", func(g *Game) *string { return &g.UTCTime }),
			intColumn("white_elo", func(g *Game) *int { return &g.WhiteElo }),
			intColumn("black_elo", func(g *Game) *int { return &g.BlackElo }),
			intColumn("white_rating_diff", func(g *Game) *int { return &g.WhiteRatingDiff }),
			intColumn("black_rating_diff", func(g *Game) *int { return &g.BlackRatingDiff }),
			textColumn("eco", func(g *Game) *string { return &g.ECO }),
			textColumn("opening", func(g *Game) *string { return &g.Opening }),
			textColumn("time_control", func(g *Game) *string { return &g.TimeControl }),
			textColumn("termination", func(g *Game) *string { return &g.Termination }),
		},
	},
}

// insertArgs returns the insert values for g; empty text becomes NULL
func (sc schemaColumns) insertArgs(g *Game) []any {
	args := make([]any, len(sc.columns))
	for i, c := range sc.columns {
		if c.text {
			s := *c.field(g).(*string)
			args[i] = sql.NullString{String: s, Valid: s != ""}
			continue
		}
		args[i] = *c.field(g).(*int)
	}
	return args
}

// scanDest returns the scan destinations matching selectList
func (sc schemaColumns) scanDest(g *Game) []any {
	dest := []any{&g.ID}
	for _, c := range sc.columns {
		dest = append(dest, c.field(g))
	}
	return dest
}

func (sc schemaColumns) insertSQL() string {
	names := make([]string, len(sc.columns))
	marks := make([]string, len(sc.columns))
	for i, c := range sc.columns {
		names[i] = c.name
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO games (%s) VALUES (%s)",
		strings.Join(names, ", "), strings.Join(marks, ", "))
}

func (sc schemaColumns) selectList() string {
	exprs := []string{"id"}
	for _, c := range sc.columns {
		if c.text {
			exprs = append(exprs, fmt.Sprintf("COALESCE(%s, '')", c.name))
		} else {
			exprs = append(exprs, fmt.Sprintf("COALESCE(%s, 0)", c.name))
		}
	}
	return strings.Join(exprs, ", ")
}

// hasColumn reports whether a column name belongs to this variant
func (sc schemaColumns) hasColumn(name string) bool {
	for _, c := range sc.columns {
		if c.name == name {
			return true
		}
	}
	return false
}
