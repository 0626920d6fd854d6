package pgn

import (
	"regexp"
	"strings"
)

const san = `(?:[0O]-[0O](?:-[0O])?[+#]?|[a-zA-Z][a-zA-Z0-9+#=@\-]*)`

var (
	tagPairPattern = regexp.MustCompile(`\[(\w+)\s+"(.*?)"\]`)
	blankLine      = regexp.MustCompile(`\n[ \t]*\n`)
	eventTagLine   = regexp.MustCompile(`^\[Event\s+"`)

	// The black group is optional so a final unanswered White move survives.
	openMovePairPattern = regexp.MustCompile(`\d+\.+\s*(` + san + `)(?:\s+(` + san + `))?`)

	commentPattern     = regexp.MustCompile(`\{[^}]*\}`)
	lineCommentPattern = regexp.MustCompile(`;[^\n]*`)
	variationPattern   = regexp.MustCompile(`\([^()]*\)`)
	nagPattern         = regexp.MustCompile(`\$\d+`)
	glyphPattern       = regexp.MustCompile(`[!?]+`)
	resultPattern      = regexp.MustCompile(`(^|\s)(1-0|0-1|1/2-1/2|\*)(\s|$)`)
)

// OpenTagParser reads any number of games per file and keeps every tag
// pair it finds. Missing tags are simply absent from Game.Tags.
type OpenTagParser struct{}

// NewOpenTagParser creates an OpenTagParser
func NewOpenTagParser() *OpenTagParser {
	return &OpenTagParser{}
}

// Parse implements Parser. It never fails; blocks that are empty after
// trimming are skipped.
func (p *OpenTagParser) Parse(text string) ([]*Game, error) {
	var games []*Game
	for _, block := range SplitGames(text) {
		games = append(games, &Game{
			Tags:  ParseTags(block),
			Moves: ExtractMoves(Movetext(block)),
		})
	}
	return games, nil
}

// SplitGames cuts text into game blocks at every blank line that is
// immediately followed by an [Event "..."] tag. Longer tag names such as
// EventDate do not start a game.
func SplitGames(text string) []string {
	lines := strings.Split(text, "\n")

	var blocks []string
	start := 0
	for i := 1; i < len(lines); i++ {
		if eventTagLine.MatchString(lines[i]) && strings.TrimSpace(lines[i-1]) == "" {
			blocks = appendBlock(blocks, lines[start:i])
			start = i
		}
	}
	return appendBlock(blocks, lines[start:])
}

func appendBlock(blocks []string, lines []string) []string {
	block := strings.TrimSpace(strings.Join(lines, "\n"))
	if block == "" {
		return blocks
	}
	return append(blocks, block)
}

// ParseTags returns every [Key "Value"] pair in a block. A repeated key
// keeps its last value.
func ParseTags(block string) Tags {
	tags := make(Tags)
	for _, m := range tagPairPattern.FindAllStringSubmatch(block, -1) {
		tags[m[1]] = m[2]
	}
	return tags
}

// Movetext returns the part of a block after its tag section. Blocks with
// no blank line fall back to the lines that are not tag pairs.
func Movetext(block string) string {
	if loc := blankLine.FindStringIndex(block); loc != nil {
		return block[loc[1]:]
	}

	var kept []string
	for _, line := range strings.Split(block, "\n") {
		if !tagLinePattern.MatchString(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// ExtractMoves returns the move tokens of a movetext in order, dropping
// move numbers, comments, variations, NAGs, glyphs and the result.
func ExtractMoves(movetext string) []string {
	clean := commentPattern.ReplaceAllString(movetext, " ")
	clean = lineCommentPattern.ReplaceAllString(clean, " ")
	for {
		stripped := variationPattern.ReplaceAllString(clean, " ")
		if stripped == clean {
			break
		}
		clean = stripped
	}
	clean = nagPattern.ReplaceAllString(clean, " ")
	clean = glyphPattern.ReplaceAllString(clean, "")
	clean = stripResults(strings.ReplaceAll(clean, "\n", " "))

	var moves []string
	for _, m := range openMovePairPattern.FindAllStringSubmatch(clean, -1) {
		for _, tok := range m[1:] {
			if tok != "" {
				moves = append(moves, tok)
			}
		}
	}
	return moves
}

func stripResults(s string) string {
	return resultPattern.ReplaceAllString(s, "$1$3")
}
