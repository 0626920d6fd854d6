package pgn

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw file bytes to parser input. Files with a byte
// order mark are decoded per the mark; BOM-less input that is not valid
// UTF-8 is read as ISO-8859-1, the traditional PGN encoding. Line endings
// become \n and the result is NFC-normalized.
func Decode(raw []byte) string {
	var text string
	switch {
	case hasBOM(raw):
		decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
		if err != nil {
			decoded = bytes.TrimPrefix(raw, bomUTF8)
		}
		text = string(decoded)
	case utf8.Valid(raw):
		text = string(raw)
	default:
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			decoded = raw
		}
		text = string(decoded)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFC.String(text)
}

func hasBOM(raw []byte) bool {
	return bytes.HasPrefix(raw, bomUTF8) ||
		bytes.HasPrefix(raw, bomUTF16LE) ||
		bytes.HasPrefix(raw, bomUTF16BE)
}
