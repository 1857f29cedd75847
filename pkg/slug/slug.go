package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Letters that have no decomposed ASCII base.
	letters = strings.NewReplacer(
		"ı", "i", "ø", "o", "ß", "ss", "æ", "ae", "œ", "oe",
		"đ", "d", "ł", "l", "þ", "th", "&", " and ",
	)
)

// Generate turns a title into a lowercase, hyphen-separated URL slug.
// Diacritics are stripped, so "Café Crème" becomes "cafe-creme".
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = letters.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
