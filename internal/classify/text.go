package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/tsawler/prose/v3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// wordRe keeps word runs of at least two characters; single-letter
// fragments carry no signal.
var wordRe = regexp.MustCompile(`[a-z0-9]{2,}`)

// accentFold decomposes to NFD, drops combining marks, and recomposes,
// so "café" and "cafe" produce the same token.
var accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldAccents(s string) string {
	out, _, err := transform.String(accentFold, s)
	if err != nil {
		return s
	}
	return out
}

// tokenize lower-cases and accent-folds the text, tokenizes it with
// prose, and reduces each token to its word runs. Falls back to
// whitespace splitting if prose cannot build a document (it errors
// only on pathological input).
func tokenize(text string) []string {
	text = strings.ToLower(foldAccents(text))

	var raw []string
	if doc, err := prose.NewDocument(text); err == nil {
		for _, tok := range doc.Tokens() {
			raw = append(raw, tok.Text)
		}
	} else {
		raw = strings.Fields(text)
	}

	var out []string
	for _, t := range raw {
		out = append(out, wordRe.FindAllString(t, -1)...)
	}
	return out
}

// ngrams returns the unigrams plus adjacent bigrams (joined with a
// single space) of a token sequence.
func ngrams(tokens []string) []string {
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}
