package scorer

// redFlagDelta sums the penalty of every distinct red-flag pattern found in
// text. Repeated occurrences of one pattern count once.
func (s *Scorer) redFlagDelta(text string) (float64, []string) {
	var delta float64
	var matched []string
	seen := make(map[string]bool, len(s.redFlags))
	for _, p := range s.redFlags {
		if seen[p.id] || !p.re.MatchString(text) {
			continue
		}
		seen[p.id] = true
		delta += p.weight
		matched = append(matched, p.key)
	}
	return delta, matched
}

// stripRedFlags blanks out every red-flag match so the words of a red-flag
// phrase never count as shared content.
func (s *Scorer) stripRedFlags(text string) string {
	for _, p := range s.redFlags {
		text = p.re.ReplaceAllLiteralString(text, " ")
	}
	return text
}
