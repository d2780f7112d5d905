package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// quoteFolder maps typographic quotes to their ASCII equivalents.
// Room and zone names arrive from spreadsheets and word processors, which
// substitute curly quotes silently.
var quoteFolder = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
)

// NormalizeName canonicalizes a room, zone, tab, or track name for
// matching: Unicode NFC form, typographic quotes folded to ASCII, and all
// runs of whitespace collapsed to single spaces.
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	s = quoteFolder.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
