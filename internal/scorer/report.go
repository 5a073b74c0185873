package scorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rcliao/memory-authenticity/internal/model"
)

// PatternCount is how many scored fragments matched one pattern.
type PatternCount struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// Report summarizes a set of score results.
type Report struct {
	Total             int                    `json:"total"`
	Counts            map[model.Category]int `json:"counts"`
	AverageScore      float64                `json:"average_score"`
	AverageConfidence float64                `json:"average_confidence"`
	TopRedFlags       []PatternCount         `json:"top_red_flags"`
	TopMarkers        []PatternCount         `json:"top_markers"`
	Conclusion        string                 `json:"conclusion"`
}

const reportTopN = 3

// BuildReport aggregates results. Nil entries are skipped.
func BuildReport(results []*model.ScoreResult) Report {
	r := Report{Counts: make(map[model.Category]int, len(model.Categories))}
	for _, c := range model.Categories {
		r.Counts[c] = 0
	}

	redFlags := map[string]int{}
	markers := map[string]int{}
	var scoreSum, confSum float64
	for _, res := range results {
		if res == nil {
			continue
		}
		r.Total++
		r.Counts[res.Category]++
		scoreSum += res.Score
		confSum += res.Confidence
		for _, p := range res.RedFlags {
			redFlags[p]++
		}
		for _, p := range res.Markers {
			markers[p]++
		}
	}

	if r.Total == 0 {
		r.Conclusion = "No fragments scored"
		return r
	}

	r.AverageScore = scoreSum / float64(r.Total)
	r.AverageConfidence = confSum / float64(r.Total)
	r.TopRedFlags = topPatterns(redFlags, reportTopN)
	r.TopMarkers = topPatterns(markers, reportTopN)

	ratio := float64(r.Counts[model.CategoryAuthentic]) / float64(r.Total)
	switch {
	case ratio > 0.7:
		r.Conclusion = "High authenticity detected - likely genuine experiences"
	case ratio > 0.4:
		r.Conclusion = "Mixed results - further review recommended"
	default:
		r.Conclusion = "Low authenticity detected - possible synthetic or templated memories"
	}
	return r
}

func topPatterns(counts map[string]int, n int) []PatternCount {
	out := make([]PatternCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, PatternCount{Pattern: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Pattern < out[j].Pattern
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// String renders the report as plain text.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total fragments analyzed: %d\n", r.Total)
	for _, c := range model.Categories {
		pct := 0.0
		if r.Total > 0 {
			pct = float64(r.Counts[c]) / float64(r.Total) * 100
		}
		fmt.Fprintf(&b, "- %s: %d (%.1f%%)\n", c, r.Counts[c], pct)
	}
	fmt.Fprintf(&b, "\nAverage score: %.3f\n", r.AverageScore)
	fmt.Fprintf(&b, "Average confidence: %.3f\n", r.AverageConfidence)

	writeCounts := func(title string, counts []PatternCount) {
		fmt.Fprintf(&b, "\n%s:\n", title)
		if len(counts) == 0 {
			b.WriteString("None detected\n")
			return
		}
		for _, pc := range counts {
			fmt.Fprintf(&b, "- %s: %d\n", pc.Pattern, pc.Count)
		}
	}
	writeCounts("Most common red flags", r.TopRedFlags)
	writeCounts("Most common experience markers", r.TopMarkers)

	fmt.Fprintf(&b, "\nConclusion: %s\n", r.Conclusion)
	return b.String()
}
