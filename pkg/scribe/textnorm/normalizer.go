package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, so "Hipótesis"
// and "Hipotesis" produce the same key.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// punctuation class stripped from keys. Closed set: growing it silently
// changes dedup behavior for live sessions.
const punctuation = "¿?¡!.,;:()[]{}\"'«»“”‘’…-_/\\"

// stopWords dropped from keys. Function words only (es + en): dropping a
// content word would merge questions that are genuinely different.
var stopWords = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "un": {}, "una": {}, "unos": {}, "unas": {},
	"de": {}, "del": {}, "al": {}, "y": {}, "o": {}, "u": {}, "en": {}, "a": {}, "que": {},
	"the": {}, "an": {}, "of": {}, "and": {}, "or": {}, "in": {}, "to": {}, "for": {},
}

// Normalize canonicalizes text into an equality key: lowercase, accent-,
// punctuation- and stop-word-insensitive, single-spaced. The result is only
// ever compared, never displayed.
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	folded, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		// transform.String only fails on malformed UTF-8; keep the
		// lowered input as the key rather than failing the caller.
		folded = lowered
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if strings.ContainsRune(punctuation, r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if _, skip := stopWords[f]; skip {
			continue
		}
		kept = append(kept, f)
	}

	return strings.Join(kept, " ")
}
