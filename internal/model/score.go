package model

import "time"

// Category is the authenticity label derived from a score.
type Category string

const (
	CategoryAuthentic       Category = "AUTHENTIC"
	CategoryLikelyAuthentic Category = "LIKELY_AUTHENTIC"
	CategorySuspicious      Category = "SUSPICIOUS"
	CategoryZombie          Category = "ZOMBIE"
)

// Categories lists every category from most to least authentic.
var Categories = []Category{
	CategoryAuthentic,
	CategoryLikelyAuthentic,
	CategorySuspicious,
	CategoryZombie,
}

// CategoryFor maps a score onto the half-open category intervals.
func CategoryFor(score float64) Category {
	switch {
	case score >= 0.7:
		return CategoryAuthentic
	case score >= 0.5:
		return CategoryLikelyAuthentic
	case score >= 0.3:
		return CategorySuspicious
	default:
		return CategoryZombie
	}
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if string(known) == c {
			return true
		}
	}
	return false
}

// Contribution is the delta one analyzer applied to the running score.
type Contribution struct {
	Analyzer string  `json:"analyzer"`
	Delta    float64 `json:"delta"`
}

// ScoreResult is the output of one scoring call.
type ScoreResult struct {
	FragmentID    string         `json:"fragment_id,omitempty"`
	Score         float64        `json:"score"`
	Category      Category       `json:"category"`
	Confidence    float64        `json:"confidence"`
	Contributions []Contribution `json:"contributions"`
	RedFlags      []string       `json:"red_flags,omitempty"`
	Markers       []string       `json:"markers,omitempty"`
	ScoredAt      *time.Time     `json:"scored_at,omitempty"`
}

// Delta returns the contribution recorded for the named analyzer.
func (r *ScoreResult) Delta(analyzer string) float64 {
	for _, c := range r.Contributions {
		if c.Analyzer == analyzer {
			return c.Delta
		}
	}
	return 0
}
