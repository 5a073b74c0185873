package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/memory-authenticity/internal/model"
	"github.com/rcliao/memory-authenticity/internal/scorer"
)

func TestDefaultBuildsScorer(t *testing.T) {
	ps := Default()
	assert.Len(t, ps.RedFlags, 18)
	assert.Contains(t, ps.Markers, "en")
	assert.Contains(t, ps.Markers, "de")
	assert.Contains(t, ps.Markers, scorer.AnyLanguage)

	s, err := scorer.New(ps, scorer.DefaultConfig())
	require.NoError(t, err)

	res, err := s.Score(model.Fragment{Text: "As an AI assistant I can help"})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, res.Score, 1e-9)

	res, err = s.Score(model.Fragment{Text: "Damals dachte ich, es sei einfach. Ich war unsicher.", LanguageHint: "de"})
	require.NoError(t, err)
	assert.InDelta(t, 0.64, res.Score, 1e-9)
	assert.Equal(t, model.CategoryLikelyAuthentic, res.Category)
}

func TestDefaultPatternOveruse(t *testing.T) {
	s, err := scorer.New(Default(), scorer.DefaultConfig())
	require.NoError(t, err)

	res, err := s.Score(model.Fragment{Text: "I felt it, then chose it, and knew the difference"})
	require.NoError(t, err)
	assert.Contains(t, res.RedFlags, "(spürte|felt).*?(entschied|chose).*?(differenz|difference)")
}

var defaultBases = []string{
	"We walked along the pier",
	"I walked to the old store today. I bought some fresh bread there. I carried it back home slowly.",
	"I walked to the old store today. I bought some fresh bread there. I carried it back home slowly. I ate it with some butter.",
	"Rain. I don't know why the morning felt so heavy after everything that happened at the station. Then the train came.",
	"I felt lost at the harbor. The ferry was late again. Nobody on the pier knew why. We waited for an hour.",
	"As an AI assistant I answered the letter. It was short. It was polite. It was sent on time.",
}

func TestDefaultMarkersNeverLowerScore(t *testing.T) {
	s, err := scorer.New(Default(), scorer.DefaultConfig())
	require.NoError(t, err)

	for lang, group := range Default().Markers {
		for _, p := range group {
			if !p.Literal {
				continue
			}
			for _, base := range defaultBases {
				before, err := s.Score(model.Fragment{Text: base})
				require.NoError(t, err)
				text := base + " It " + p.Expr + " after all."
				after, err := s.Score(model.Fragment{Text: text})
				require.NoError(t, err)
				assert.GreaterOrEqual(t, after.Score, before.Score, "%s: %s", lang, text)
			}
		}
	}
}

func TestDefaultRedFlagsNeverRaiseScore(t *testing.T) {
	s, err := scorer.New(Default(), scorer.DefaultConfig())
	require.NoError(t, err)

	for _, p := range Default().RedFlags {
		if !p.Literal {
			continue
		}
		for _, base := range defaultBases {
			before, err := s.Score(model.Fragment{Text: base})
			require.NoError(t, err)
			text := base + " It was " + p.Expr + " the plan."
			after, err := s.Score(model.Fragment{Text: text})
			require.NoError(t, err)
			assert.Less(t, after.Score, before.Score+1e-9, text)
		}
	}
}

func TestDefaultRedFlagWordsDoNotCorroborate(t *testing.T) {
	s, err := scorer.New(Default(), scorer.DefaultConfig())
	require.NoError(t, err)

	related := model.Fragment{ID: "r", Text: "harbor boats pier perfect understanding"}
	f := model.Fragment{ID: "f", Text: "harbor boats pier", RelatedIDs: []string{"r"}}
	before, err := s.Score(f, related)
	require.NoError(t, err)

	f.Text += " with perfect understanding of it"
	after, err := s.Score(f, related)
	require.NoError(t, err)
	assert.Zero(t, after.Delta(scorer.AnalyzerConnectivity))
	assert.Less(t, after.Score, before.Score)
}

func TestParse(t *testing.T) {
	data := []byte(`
red_flags:
  - expr: "synergy"
    literal: true
    weight: -0.2
markers:
  en:
    - expr: "i remember"
`)
	ps, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, ps.RedFlags, 1)
	assert.Equal(t, -0.2, ps.RedFlags[0].Weight)
	assert.True(t, ps.RedFlags[0].Literal)
	assert.Equal(t, "i remember", ps.Markers["en"][0].Expr)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("red_flag:\n  - expr: x\n"))
	assert.ErrorIs(t, err, scorer.ErrConfiguration)
}

func TestParseEmpty(t *testing.T) {
	ps, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, ps.RedFlags)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("markers:\n  fr:\n    - expr: \"je me souviens\"\n"), 0o644))

	ps, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, ps.Markers["fr"], 1)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	ps, err = Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, ps.RedFlags)
}

func TestMarshalDefaultReparses(t *testing.T) {
	out, err := Marshal(Default())
	require.NoError(t, err)

	ps, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, Default(), ps)
}
