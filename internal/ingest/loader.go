package ingest

import (
	"context"
	"database/sql"

	"github.com/franz/pgn-loader/internal/pgn"
	"github.com/franz/pgn-loader/internal/store"
	"github.com/franz/pgn-loader/internal/util"
)

// ModeFor returns the parse mode that feeds a schema variant
func ModeFor(variant store.Variant) pgn.Mode {
	if variant == store.VariantMinimal {
		return pgn.ModeFixed
	}
	return pgn.ModeOpen
}

// ToRecord maps a parsed game onto a games row. Missing or non-numeric
// integer tags become 0; missing text tags stay empty and are stored as
// NULL. Columns the store's variant lacks are ignored on insert.
func ToRecord(g *pgn.Game) *store.Game {
	text := func(name string) string {
		v, _ := g.Tags.Get(name)
		return v
	}

	return &store.Game{
		Event:           text(pgn.TagEvent),
		Site:            text(pgn.TagSite),
		Round:           text(pgn.TagRound),
		Date:            text(pgn.TagDate),
		White:           text(pgn.TagWhite),
		Black:           text(pgn.TagBlack),
		Result:          text(pgn.TagResult),
		UTCDate:         text(pgn.TagUTCDate),
		UTCTime:         text(pgn.TagUTCTime),
		WhiteElo:        intTag(g.Tags, pgn.TagWhiteElo),
		BlackElo:        intTag(g.Tags, pgn.TagBlackElo),
		WhiteRatingDiff: intTag(g.Tags, pgn.TagWhiteRatingDiff),
		BlackRatingDiff: intTag(g.Tags, pgn.TagBlackRatingDiff),
		ECO:             text(pgn.TagECO),
		Opening:         text(pgn.TagOpening),
		TimeControl:     text(pgn.TagTimeControl),
		Termination:     text(pgn.TagTermination),
	}
}

func intTag(tags pgn.Tags, name string) int {
	v, ok := tags.Get(name)
	if !ok {
		return 0
	}
	n, err := pgn.ParseInt(v)
	if err != nil {
		util.DebugLog("%s %q defaulted to 0", name, v)
		return 0
	}
	return n
}

// PairMoves groups move tokens into numbered pairs starting at 1. With an
// odd token count the last pair has a NULL black move.
func PairMoves(tokens []string) []store.Move {
	moves := make([]store.Move, 0, (len(tokens)+1)/2)
	for i := 0; i < len(tokens); i += 2 {
		m := store.Move{
			MoveNumber: i/2 + 1,
			WhiteMove:  tokens[i],
		}
		if i+1 < len(tokens) {
			m.BlackMove = sql.NullString{String: tokens[i+1], Valid: true}
		}
		moves = append(moves, m)
	}
	return moves
}

// Loader writes parsed games to a store, one transaction per game
type Loader struct {
	store *store.Store
}

// NewLoader creates a Loader
func NewLoader(s *store.Store) *Loader {
	return &Loader{store: s}
}

// Load inserts one game and its move pairs. It returns the stored row
// and moves with their generated IDs.
func (l *Loader) Load(ctx context.Context, g *pgn.Game) (*store.Game, []store.Move, error) {
	record := ToRecord(g)
	moves := PairMoves(g.Moves)

	if err := l.store.InsertGame(ctx, record, moves); err != nil {
		return nil, nil, err
	}
	return record, moves, nil
}
