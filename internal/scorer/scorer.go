// Package scorer implements the memory authenticity scorer: four independent
// analyzers whose deltas are summed onto a neutral baseline and clamped to [0,1].
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rcliao/memory-authenticity/internal/model"
)

// Analyzer names, in the order their contributions are reported.
const (
	AnalyzerRedFlags     = "red_flags"
	AnalyzerMarkers      = "experience_markers"
	AnalyzerStructural   = "structural_uniformity"
	AnalyzerConnectivity = "connectivity"
)

// Scorer is immutable after New and safe for concurrent use.
type Scorer struct {
	cfg         Config
	redFlags    []compiledPattern
	markers     map[string][]compiledPattern
	languages   []string
	ignoredMeta map[string]bool
}

// New compiles the pattern set and validates the configuration. Any problem
// is reported as ErrConfiguration so a misconfigured scorer is never built.
func New(ps PatternSet, cfg Config) (*Scorer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	redFlags, err := compileRedFlags(ps.RedFlags, cfg.RedFlagPenaltyDefault, -cfg.StructuralPenalty)
	if err != nil {
		return nil, err
	}
	markers, langs, err := compileMarkers(ps.Markers, cfg.MarkerRewardDefault)
	if err != nil {
		return nil, err
	}

	ignored := make(map[string]bool, len(cfg.IgnoredMetadataKeys))
	for _, k := range cfg.IgnoredMetadataKeys {
		ignored[k] = true
	}
	cfg.IgnoredMetadataKeys = append([]string(nil), cfg.IgnoredMetadataKeys...)
	cfg.IgnoredMetadataPrefixes = append([]string(nil), cfg.IgnoredMetadataPrefixes...)
	if cfg.MarkerRewardCap != nil {
		cfg.MarkerRewardCap = Float(*cfg.MarkerRewardCap)
	}

	return &Scorer{
		cfg:         cfg,
		redFlags:    redFlags,
		markers:     markers,
		languages:   langs,
		ignoredMeta: ignored,
	}, nil
}

// Config returns a copy of the scorer's configuration.
func (s *Scorer) Config() Config {
	c := s.cfg
	c.IgnoredMetadataKeys = append([]string(nil), s.cfg.IgnoredMetadataKeys...)
	c.IgnoredMetadataPrefixes = append([]string(nil), s.cfg.IgnoredMetadataPrefixes...)
	if s.cfg.MarkerRewardCap != nil {
		c.MarkerRewardCap = Float(*s.cfg.MarkerRewardCap)
	}
	return c
}

// Score rates one fragment. Related fragments are only consulted by the
// connectivity analyzer and may be omitted.
func (s *Scorer) Score(f model.Fragment, related ...model.Fragment) (*model.ScoreResult, error) {
	if strings.TrimSpace(f.Text) == "" {
		return nil, fmt.Errorf("%w: fragment text is empty", ErrInvalidInput)
	}

	markerDelta, markers := s.markerDelta(f.Text, f.LanguageHint)
	redDelta, redFlags := s.redFlagDelta(s.stripMarkers(f.Text))

	contributions := []model.Contribution{
		{Analyzer: AnalyzerRedFlags, Delta: redDelta},
		{Analyzer: AnalyzerMarkers, Delta: markerDelta},
		{Analyzer: AnalyzerStructural, Delta: s.structuralDelta(f.Text, len(markers) > 0)},
		{Analyzer: AnalyzerConnectivity, Delta: s.connectivityDelta(f, related)},
	}

	return aggregate(s.cfg.Baseline, contributions, f.ID, redFlags, markers), nil
}

// aggregate applies the contributions in order onto the baseline.
func aggregate(baseline float64, contributions []model.Contribution, id string, redFlags, markers []string) *model.ScoreResult {
	total := baseline
	active := 0
	for _, c := range contributions {
		total += c.Delta
		if c.Delta != 0 {
			active++
		}
	}
	score := clamp(total)

	return &model.ScoreResult{
		FragmentID:    id,
		Score:         score,
		Category:      model.CategoryFor(score),
		Confidence:    confidence(score, active),
		Contributions: contributions,
		RedFlags:      redFlags,
		Markers:       markers,
	}
}

// confidence grows with distance from the undecided midpoint and with the
// number of analyzers that fired.
func confidence(score float64, active int) float64 {
	return math.Min(1, 0.5+math.Abs(score-0.5)*0.8+float64(active)*0.05)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
