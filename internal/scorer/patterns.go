package scorer

import (
	"regexp"
	"sort"
	"strings"
)

// AnyLanguage is the marker group checked regardless of the language hint.
const AnyLanguage = "*"

// Pattern is one red-flag or experience-marker phrase.
type Pattern struct {
	Expr    string  `yaml:"expr" json:"expr"`
	Literal bool    `yaml:"literal,omitempty" json:"literal,omitempty"`
	Weight  float64 `yaml:"weight,omitempty" json:"weight,omitempty"` // 0 means the configured default
	Group   string  `yaml:"group,omitempty" json:"group,omitempty"`
}

// PatternSet is the phrase configuration a Scorer is built from.
type PatternSet struct {
	RedFlags []Pattern            `yaml:"red_flags" json:"red_flags"`
	Markers  map[string][]Pattern `yaml:"markers" json:"markers"`
}

type compiledPattern struct {
	id     string // dedupe identity: expression plus literal flag
	key    string // reported name
	re     *regexp.Regexp
	weight float64
}

func compilePattern(p Pattern, defaultWeight float64) (compiledPattern, error) {
	expr := strings.TrimSpace(p.Expr)
	if expr == "" {
		return compiledPattern{}, configErr("empty pattern expression")
	}
	src := expr
	if p.Literal {
		src = regexp.QuoteMeta(expr)
	}
	re, err := regexp.Compile("(?i)" + src)
	if err != nil {
		return compiledPattern{}, configErr("pattern %q: %v", p.Expr, err)
	}
	w := p.Weight
	if w == 0 {
		w = defaultWeight
	}
	key := strings.ToLower(expr)
	id := "re:" + key
	if p.Literal {
		id = "lit:" + key
	}
	return compiledPattern{id: id, key: key, re: re, weight: w}, nil
}

// compileRedFlags requires every penalty to be at least as strong as
// minPenalty, so a red-flag phrase that happens to break up uniform sentence
// structure still lowers the score overall.
func compileRedFlags(patterns []Pattern, defaultWeight, minPenalty float64) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Weight > 0 {
			return nil, configErr("red flag %q has positive weight %v", p.Expr, p.Weight)
		}
		cp, err := compilePattern(p, defaultWeight)
		if err != nil {
			return nil, err
		}
		if -cp.weight < minPenalty {
			return nil, configErr("red flag %q weight %v is weaker than structural_penalty %v", p.Expr, cp.weight, -minPenalty)
		}
		out = append(out, cp)
	}
	return out, nil
}

func compileMarkers(groups map[string][]Pattern, defaultWeight float64) (map[string][]compiledPattern, []string, error) {
	keys := make([]string, 0, len(groups))
	for lang := range groups {
		keys = append(keys, lang)
	}
	sort.Strings(keys)

	out := make(map[string][]compiledPattern, len(groups))
	for _, lang := range keys {
		patterns := groups[lang]
		tag := normalizeLanguage(lang)
		if tag == "" {
			return nil, nil, configErr("marker group with empty language tag")
		}
		for _, p := range patterns {
			if p.Weight < 0 {
				return nil, nil, configErr("marker %q has negative weight %v", p.Expr, p.Weight)
			}
			cp, err := compilePattern(p, defaultWeight)
			if err != nil {
				return nil, nil, err
			}
			out[tag] = append(out[tag], cp)
		}
	}
	langs := make([]string, 0, len(out))
	for lang := range out {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return out, langs, nil
}

// normalizeLanguage reduces a tag like "en-US" to its primary subtag.
func normalizeLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == AnyLanguage {
		return tag
	}
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return tag
}
