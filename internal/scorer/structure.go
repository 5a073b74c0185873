package scorer

import (
	"math"
	"strings"
)

// sentenceLengthCV returns the coefficient of variation of sentence word
// counts, and false when there are too few sentences to judge.
func sentenceLengthCV(sentences []string, minSentences int) (float64, bool) {
	if len(sentences) < minSentences || len(sentences) < 2 {
		return 0, false
	}
	lengths := make([]float64, len(sentences))
	var sum float64
	for i, s := range sentences {
		lengths[i] = float64(len(strings.Fields(s)))
		sum += lengths[i]
	}
	mean := sum / float64(len(lengths))
	if mean == 0 {
		return 0, false
	}
	var variance float64
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	variance /= float64(len(lengths))
	return math.Sqrt(variance) / mean, true
}

// structuralDelta penalizes text whose sentences are suspiciously even in
// length. Text carrying an experience marker is exempt, so adding a marker
// can never turn a fragment into a penalized one.
func (s *Scorer) structuralDelta(text string, hasMarkers bool) float64 {
	if hasMarkers {
		return 0
	}
	cv, ok := sentenceLengthCV(splitSentences(text, s.cfg.MinSentenceChars), s.cfg.MinSentences)
	if !ok || cv >= s.cfg.UniformityThreshold {
		return 0
	}
	return s.cfg.StructuralPenalty
}
