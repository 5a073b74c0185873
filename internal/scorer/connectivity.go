package scorer

import (
	"fmt"
	"strings"

	"github.com/rcliao/memory-authenticity/internal/model"
)

// connectivityDelta rewards the fraction of declared relations that the
// supplied related fragments corroborate. No declared relations, or no
// related fragments supplied, is neutral.
func (s *Scorer) connectivityDelta(f model.Fragment, related []model.Fragment) float64 {
	declared := declaredRelations(f)
	if len(declared) == 0 || len(related) == 0 {
		return 0
	}

	byID := make(map[string]model.Fragment, len(related))
	for _, r := range related {
		if r.ID != "" {
			byID[r.ID] = r
		}
	}

	own := terms(s.content(f.Text))
	corroborated := 0
	for _, id := range declared {
		r, ok := byID[id]
		if !ok {
			continue
		}
		if s.sharesTerms(own, s.content(r.Text)) || s.sharesMetadata(f.Metadata, r.Metadata) {
			corroborated++
		}
	}
	return s.cfg.ConnectivityMax * float64(corroborated) / float64(len(declared))
}

// content is the text left for lexical overlap once marker and red-flag
// phrases are blanked out. Pattern phrases never count as shared content.
func (s *Scorer) content(text string) string {
	return s.stripRedFlags(s.stripMarkers(text))
}

// declaredRelations returns the distinct related IDs, excluding self-references.
func declaredRelations(f model.Fragment) []string {
	seen := make(map[string]bool, len(f.RelatedIDs))
	out := make([]string, 0, len(f.RelatedIDs))
	for _, id := range f.RelatedIDs {
		if id == "" || id == f.ID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *Scorer) sharesTerms(own map[string]struct{}, other string) bool {
	shared := 0
	for t := range terms(other) {
		if _, ok := own[t]; ok {
			shared++
			if shared >= s.cfg.MinSharedTerms {
				return true
			}
		}
	}
	return false
}

func (s *Scorer) sharesMetadata(a, b map[string]any) bool {
	for k, av := range a {
		if s.ignoredKey(k) {
			continue
		}
		bv, ok := b[k]
		if !ok {
			continue
		}
		as, aok := metadataValue(av)
		bs, bok := metadataValue(bv)
		if aok && bok && as != "" && as == bs {
			return true
		}
	}
	return false
}

func (s *Scorer) ignoredKey(k string) bool {
	if s.ignoredMeta[k] {
		return true
	}
	for _, p := range s.cfg.IgnoredMetadataPrefixes {
		if p != "" && strings.HasPrefix(k, p) {
			return true
		}
	}
	return false
}

// metadataValue renders string and numeric metadata for comparison. Other
// value types never corroborate.
func metadataValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}
