package pgn

import (
	"fmt"
	"regexp"
	"strings"
)

// FixedTags are the tags a fixed-mode game must carry, in column order
var FixedTags = []string{
	TagEvent,
	TagSite,
	TagRound,
	TagDate,
	TagWhite,
	TagBlack,
	TagWhiteElo,
	TagBlackElo,
	TagResult,
}

var (
	// Both tokens are required: a final White move without a reply is not matched.
	fixedMovePairPattern = regexp.MustCompile(`\d+\.\s*([a-zA-Z0-9\-\+]+)\s+([a-zA-Z0-9\-\+]+)`)

	tagLinePattern = regexp.MustCompile(`^\s*\[\w+\s+".*"\]\s*$`)
)

// FixedTagParser reads a file holding exactly one game and extracts the
// nine FixedTags by independent lookups.
type FixedTagParser struct {
	tagPatterns map[string]*regexp.Regexp
}

// NewFixedTagParser creates a FixedTagParser
func NewFixedTagParser() *FixedTagParser {
	patterns := make(map[string]*regexp.Regexp, len(FixedTags))
	for _, name := range FixedTags {
		patterns[name] = regexp.MustCompile(`\[` + regexp.QuoteMeta(name) + ` "(.*?)"\]`)
	}
	return &FixedTagParser{tagPatterns: patterns}
}

// Parse implements Parser. It always returns one game or an error.
func (p *FixedTagParser) Parse(text string) ([]*Game, error) {
	tags := make(Tags, len(FixedTags))
	for _, name := range FixedTags {
		m := p.tagPatterns[name].FindStringSubmatch(text)
		if m == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingTag, name)
		}
		tags[name] = m[1]
	}

	for _, name := range []string{TagWhiteElo, TagBlackElo} {
		if _, err := ParseInt(tags[name]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	return []*Game{{Tags: tags, Moves: fixedMoves(text)}}, nil
}

// fixedMoves collects move tokens from every line after the first,
// skipping tag pairs.
func fixedMoves(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	kept := lines[:0]
	for _, line := range lines {
		if tagLinePattern.MatchString(line) {
			continue
		}
		kept = append(kept, strings.TrimSpace(line))
	}

	moveLine := stripResults(strings.Join(kept, " "))

	var moves []string
	for _, m := range fixedMovePairPattern.FindAllStringSubmatch(moveLine, -1) {
		moves = append(moves, m[1], m[2])
	}
	return moves
}
