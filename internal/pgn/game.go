// Package pgn turns Portable Game Notation text into tag maps and move
// token sequences. It knows nothing about chess rules: moves are kept as
// the SAN strings found in the source.
package pgn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

var (
	// ErrMissingTag indicates a required tag pair is absent from a game
	ErrMissingTag = errors.New("missing tag")

	// ErrBadTagValue indicates a tag value could not be converted
	ErrBadTagValue = errors.New("bad tag value")
)

// Mode selects a parsing strategy
type Mode string

const (
	// ModeFixed reads one game per file with a fixed set of nine tags
	ModeFixed Mode = "fixed"

	// ModeOpen reads any number of games per file and keeps every tag
	ModeOpen Mode = "open"
)

// Standard tag names
const (
	TagEvent           = "Event"
	TagSite            = "Site"
	TagDate            = "Date"
	TagRound           = "Round"
	TagWhite           = "White"
	TagBlack           = "Black"
	TagResult          = "Result"
	TagWhiteElo        = "WhiteElo"
	TagBlackElo        = "BlackElo"
	TagUTCDate         = "UTCDate"
	TagUTCTime         = "UTCTime"
	TagWhiteRatingDiff = "WhiteRatingDiff"
	TagBlackRatingDiff = "BlackRatingDiff"
	TagECO             = "ECO"
	TagOpening         = "Opening"
	TagTimeControl     = "TimeControl"
	TagTermination     = "Termination"
)

// Tags maps tag names to their verbatim values
type Tags map[string]string

// Get returns a tag value and whether the tag was present
func (t Tags) Get(name string) (string, bool) {
	v, ok := t[name]
	return v, ok
}

// ParseInt converts a numeric tag value such as an Elo or a rating
// difference ("+12"). Values are always read as decimal, so "0800" is 800.
// Blank values and anything but an optional sign followed by digits are
// rejected.
func ParseInt(value string) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("%w: empty value", ErrBadTagValue)
	}

	sign := ""
	switch v[0] {
	case '+':
		v = v[1:]
	case '-':
		sign, v = "-", v[1:]
	}
	if v == "" || strings.Trim(v, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrBadTagValue, value)
	}

	// cast reads a leading 0 as an octal prefix
	v = strings.TrimLeft(v, "0")
	if v == "" {
		return 0, nil
	}

	n, err := cast.ToIntE(sign + v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrBadTagValue, value)
	}
	return n, nil
}

// Game is one parsed game block
type Game struct {
	Tags  Tags
	Moves []string // SAN tokens in source order, White first
}

// String returns a short description for logs
func (g *Game) String() string {
	white, _ := g.Tags.Get(TagWhite)
	black, _ := g.Tags.Get(TagBlack)
	if white == "" && black == "" {
		return fmt.Sprintf("game (%d plies)", len(g.Moves))
	}
	return fmt.Sprintf("%s vs %s (%d plies)", white, black, len(g.Moves))
}

// Parser splits the text of one source file into games
type Parser interface {
	Parse(text string) ([]*Game, error)
}

// New returns the parser for a mode
func New(mode Mode) (Parser, error) {
	switch Mode(strings.ToLower(string(mode))) {
	case ModeFixed:
		return NewFixedTagParser(), nil
	case ModeOpen:
		return NewOpenTagParser(), nil
	default:
		return nil, fmt.Errorf("unknown parse mode %q", mode)
	}
}
