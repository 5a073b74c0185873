package scorer

// Config holds the scorer tunables. Start from DefaultConfig and override fields.
type Config struct {
	// Baseline is the neutral score before any analyzer applies a delta.
	Baseline float64 `yaml:"baseline" json:"baseline"`

	// RedFlagPenaltyDefault applies to red-flag patterns declared without a weight. Must be <= 0.
	RedFlagPenaltyDefault float64 `yaml:"red_flag_penalty_default" json:"red_flag_penalty_default"`

	// MarkerRewardDefault applies to marker patterns declared without a weight. Must be >= 0.
	MarkerRewardDefault float64 `yaml:"marker_reward_default" json:"marker_reward_default"`

	// MarkerRewardCap bounds the total experience-marker reward. Nil means uncapped.
	MarkerRewardCap *float64 `yaml:"marker_reward_cap,omitempty" json:"marker_reward_cap,omitempty"`

	// UniformityThreshold is the sentence-length coefficient of variation below
	// which a fragment counts as structurally templated.
	UniformityThreshold float64 `yaml:"uniformity_threshold" json:"uniformity_threshold"`
	StructuralPenalty   float64 `yaml:"structural_penalty" json:"structural_penalty"`
	MinSentences        int     `yaml:"min_sentences" json:"min_sentences"`
	MinSentenceChars    int     `yaml:"min_sentence_chars" json:"min_sentence_chars"`

	// ConnectivityMax is the reward when every declared relation is corroborated.
	ConnectivityMax     float64  `yaml:"connectivity_max" json:"connectivity_max"`
	MinSharedTerms      int      `yaml:"min_shared_terms" json:"min_shared_terms"`
	IgnoredMetadataKeys []string `yaml:"ignored_metadata_keys" json:"ignored_metadata_keys"`

	// IgnoredMetadataPrefixes excludes every key starting with one of the
	// prefixes from metadata corroboration.
	IgnoredMetadataPrefixes []string `yaml:"ignored_metadata_prefixes" json:"ignored_metadata_prefixes"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Baseline:              0.4,
		RedFlagPenaltyDefault: -0.15,
		MarkerRewardDefault:   0.12,
		UniformityThreshold:   0.2,
		StructuralPenalty:     -0.08,
		MinSentences:          4,
		MinSentenceChars:      10,
		ConnectivityMax:       0.2,
		MinSharedTerms:        4,
		IgnoredMetadataKeys: []string{
			"timestamp",
			"created_at",
			"source_file",
			"fragment_type",
			"character_count",
			"section_title",
			"json_field",
			"date",
			"emotional_context",
			"causal_chain",
		},
		IgnoredMetadataPrefixes: []string{"json_"},
	}
}

func (c Config) validate() error {
	switch {
	case c.Baseline < 0 || c.Baseline > 1:
		return configErr("baseline %v outside [0,1]", c.Baseline)
	case c.RedFlagPenaltyDefault > 0:
		return configErr("red_flag_penalty_default %v must not be positive", c.RedFlagPenaltyDefault)
	case c.MarkerRewardDefault < 0:
		return configErr("marker_reward_default %v must not be negative", c.MarkerRewardDefault)
	case c.MarkerRewardCap != nil && *c.MarkerRewardCap < 0:
		return configErr("marker_reward_cap %v must not be negative", *c.MarkerRewardCap)
	case c.UniformityThreshold < 0:
		return configErr("uniformity_threshold %v must not be negative", c.UniformityThreshold)
	case c.StructuralPenalty > 0:
		return configErr("structural_penalty %v must not be positive", c.StructuralPenalty)
	case c.MinSentences < 2:
		return configErr("min_sentences %d must be at least 2", c.MinSentences)
	case c.MinSentenceChars < 0:
		return configErr("min_sentence_chars %d must not be negative", c.MinSentenceChars)
	case c.ConnectivityMax < 0:
		return configErr("connectivity_max %v must not be negative", c.ConnectivityMax)
	case c.MinSharedTerms < 1:
		return configErr("min_shared_terms %d must be at least 1", c.MinSharedTerms)
	}
	return nil
}

// Float returns a pointer to v, for optional tunables such as MarkerRewardCap.
func Float(v float64) *float64 {
	return &v
}
