package snapshot

import (
	"context"

	"github.com/verte-zerg/typeledger/internal/funbox"
	"github.com/verte-zerg/typeledger/internal/metrics"
	"github.com/verte-zerg/typeledger/internal/model"
)

// LocalPB returns the global personal best for the variant. A test running
// any funbox that cannot set personal bests has none.
func (s *Store) LocalPB(mode model.Mode, mode2 model.Mode2, key model.VariantKey, funboxNames []string) (model.PersonalBest, bool) {
	if !funbox.CanGetPB(funbox.Resolve(s.funboxes, funboxNames)) {
		return model.PersonalBest{}, false
	}
	if s.snap == nil {
		return model.PersonalBest{}, false
	}
	return s.snap.PersonalBests.Find(mode, mode2, key)
}

// TagPB returns the tag's best wpm for the variant, or 0.
func (s *Store) TagPB(tagID string, mode model.Mode, mode2 model.Mode2, key model.VariantKey) float64 {
	if s.snap == nil {
		return 0
	}
	tag, ok := s.snap.Tag(tagID)
	if !ok {
		return 0
	}
	pb, ok := tag.PersonalBests.Find(mode, mode2, key)
	if !ok {
		return 0
	}
	return pb.WPM
}

// SaveTagPB writes a personal best into the tag's own table. Unknown tags
// and quote mode are ignored. The snapshot is not persisted.
func (s *Store) SaveTagPB(tagID string, mode model.Mode, mode2 model.Mode2, key model.VariantKey, stats model.PBStats) bool {
	if s.snap == nil {
		return false
	}
	tag, ok := s.snap.Tag(tagID)
	if !ok {
		return false
	}
	if !tag.PersonalBests.Upsert(mode, mode2, key, stats, s.now()) {
		return false
	}
	s.metrics.PersonalBest(metrics.ScopeTag)
	return true
}

// ActiveTagsPB returns the highest tag PB among active tags, or 0.
func (s *Store) ActiveTagsPB(mode model.Mode, mode2 model.Mode2, key model.VariantKey) float64 {
	if s.snap == nil {
		return 0
	}
	best := 0.0
	for _, tag := range s.snap.Tags {
		if !tag.Active {
			continue
		}
		if wpm := s.TagPB(tag.ID, mode, mode2, key); wpm > best {
			best = wpm
		}
	}
	return best
}

// UpdateTagPB recomputes the tag's personal best from history and persists
// it. Only results whose flags were recorded and equal the key count; with
// no such result the entry is reset to zeros.
func (s *Store) UpdateTagPB(ctx context.Context, tagID string, mode model.Mode, mode2 model.Mode2, key model.VariantKey) {
	if s.snap == nil {
		return
	}
	if _, ok := s.snap.Tag(tagID); !ok {
		return
	}
	var best model.PBStats
	for _, r := range s.snap.Results {
		if !r.HasTag(tagID) || r.WPM <= best.WPM {
			continue
		}
		if !r.MatchesStrict(mode, mode2, key) {
			continue
		}
		best = model.PBStats{WPM: r.WPM, Acc: r.Acc, Raw: r.RawWPM, Consistency: r.Consistency}
	}
	s.SaveTagPB(tagID, mode, mode2, key, best)
	s.save(ctx)
}
