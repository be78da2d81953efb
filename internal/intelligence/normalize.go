package intelligence

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that carry no combining mark under NFD and so survive mark removal
var foldReplacer = strings.NewReplacer(
	"ı", "i",
	"ø", "o",
	"ł", "l",
	"ß", "ss",
	"đ", "d",
	"æ", "ae",
	"œ", "oe",
)

func newFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize lowercases s, folds diacritics to their base Latin letters and
// drops everything that is not a letter, digit or whitespace.
func Normalize(s string) string {
	lowered := strings.ToLower(s)
	folded, _, err := transform.String(newFolder(), lowered)
	if err != nil {
		folded = lowered
	}
	folded = foldReplacer.Replace(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

// Keywords returns the distinct whitespace separated tokens of the normalized name.
func Keywords(name string) []string {
	fields := strings.Fields(Normalize(name))
	seen := make(map[string]struct{}, len(fields))
	keywords := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		keywords = append(keywords, f)
	}
	return keywords
}

// keywordHits counts the keywords contained in normalized as substrings.
func keywordHits(normalized string, keywords []string) int {
	hits := 0
	for _, k := range keywords {
		if strings.Contains(normalized, k) {
			hits++
		}
	}
	return hits
}
