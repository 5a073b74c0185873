package scorer

// markerGroups returns the marker language groups to check for a hint.
// A hint restricts matching to that language plus the AnyLanguage group;
// no hint checks every group.
func (s *Scorer) markerGroups(hint string) []string {
	if hint == "" {
		return s.languages
	}
	lang := normalizeLanguage(hint)
	groups := make([]string, 0, 2)
	if _, ok := s.markers[lang]; ok {
		groups = append(groups, lang)
	}
	if _, ok := s.markers[AnyLanguage]; ok && lang != AnyLanguage {
		groups = append(groups, AnyLanguage)
	}
	return groups
}

// markerDelta rewards each distinct experience marker once across all
// applicable language groups, bounded by MarkerRewardCap.
func (s *Scorer) markerDelta(text, hint string) (float64, []string) {
	var delta float64
	var matched []string
	seen := make(map[string]bool)
	for _, lang := range s.markerGroups(hint) {
		for _, p := range s.markers[lang] {
			if seen[p.id] || !p.re.MatchString(text) {
				continue
			}
			seen[p.id] = true
			delta += p.weight
			matched = append(matched, p.key)
		}
	}
	if c := s.cfg.MarkerRewardCap; c != nil && delta > *c {
		delta = *c
	}
	return delta, matched
}

// stripMarkers blanks out every marker match in any language, so a marker
// phrase can never complete a red-flag pattern.
func (s *Scorer) stripMarkers(text string) string {
	for _, lang := range s.languages {
		for _, p := range s.markers[lang] {
			text = p.re.ReplaceAllLiteralString(text, " ")
		}
	}
	return text
}
