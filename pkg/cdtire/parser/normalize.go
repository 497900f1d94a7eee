package parser

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// Normalize returns the canonical token for a cell: lower-cased, trimmed,
// invisible characters, brackets and periods removed, underscores and
// hyphens turned into spaces and white space collapsed. Empty cells yield "".
func Normalize(c models.Cell) string {
	if c.IsEmpty() {
		return ""
	}
	return NormalizeString(c.String())
}

// NormalizeString is Normalize for plain strings.
func NormalizeString(s string) string {
	s = cases.Lower(language.Und).String(models.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '[', ']', '(', ')', '.':
			return -1
		case '_', '-':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// tokens splits a canonical token into its words.
func tokens(s string) []string {
	return strings.Fields(s)
}
