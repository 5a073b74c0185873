// Package model defines the core fragment and scoring data types.
package model

import "time"

// Fragment is one unit of memory text submitted for authenticity scoring.
type Fragment struct {
	ID           string         `json:"id,omitempty"`
	Text         string         `json:"text"`
	LanguageHint string         `json:"language,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	RelatedIDs   []string       `json:"related,omitempty"`
	Source       string         `json:"source,omitempty"`
	Title        string         `json:"title,omitempty"`
	CreatedAt    time.Time      `json:"created_at,omitzero"`
}

// ScoredFragment pairs a stored fragment with its most recent score.
type ScoredFragment struct {
	Fragment
	Score *ScoreResult `json:"score,omitempty"`
}
