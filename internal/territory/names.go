package territory

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	budgetPrefix = regexp.MustCompile(`^(reg|dep)\s+`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// NormalizeName lower-cases and trims a territory name. Département and
// région budget labels lose their "dep "/"reg " prefix.
func NormalizeName(level Level, name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = whitespace.ReplaceAllString(n, " ")
	if level != Communes {
		n = strings.TrimSpace(budgetPrefix.ReplaceAllString(n, ""))
	}
	return n
}

// MatchKey folds accents and joins words with hyphens so that "Saint-Étienne",
// "saint etienne" and "SAINT ETIENNE" compare equal.
func MatchKey(level Level, name string) string {
	n := NormalizeName(level, name)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, n)
	if err != nil {
		folded = n
	}
	folded = strings.NewReplacer("'", "-", "’", "-", " ", "-").Replace(folded)
	for strings.Contains(folded, "--") {
		folded = strings.ReplaceAll(folded, "--", "-")
	}
	return strings.Trim(folded, "-")
}
