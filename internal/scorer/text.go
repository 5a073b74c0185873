package scorer

import (
	"regexp"
	"strings"
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+`)
	termPattern = regexp.MustCompile(`[\p{L}\p{N}']+`)
)

// splitSentences splits on runs of terminal punctuation and drops fragments
// no longer than minChars once trimmed.
func splitSentences(text string, minChars int) []string {
	parts := sentenceEnd.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > minChars {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// stopwords are excluded from lexical overlap so that shared function words
// do not count as corroboration.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true, "with": true,
	"was": true, "were": true, "are": true, "but": true, "not": true, "you": true,
	"his": true, "her": true, "its": true, "our": true, "they": true, "them": true,
	"have": true, "had": true, "has": true, "from": true, "what": true, "when": true,
	"then": true, "than": true, "there": true, "which": true, "about": true, "into": true,
	"der": true, "die": true, "das": true, "und": true, "ist": true, "war": true,
	"ich": true, "mich": true, "mir": true, "nicht": true, "ein": true, "eine": true,
	"mit": true, "von": true, "dem": true, "den": true, "des": true, "auf": true,
}

// terms returns the distinct lowercase content words of text.
func terms(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range termPattern.FindAllString(strings.ToLower(text), -1) {
		w = strings.Trim(w, "'")
		if len([]rune(w)) < 3 || stopwords[w] {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}
