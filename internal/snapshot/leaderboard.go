package snapshot

import (
	"context"

	"github.com/verte-zerg/typeledger/internal/model"
)

// RememberRank stores the last seen leaderboard rank. Only time mode has
// leaderboards; other modes are ignored.
func (s *Store) RememberRank(ctx context.Context, mode model.Mode, mode2 model.Mode2, language string, rank int) {
	if s.snap == nil {
		return
	}
	if !s.snap.LbMemory.Remember(mode, mode2, language, rank) {
		return
	}
	s.Set(ctx, s.snap)
}

// LastKnownRank returns the remembered rank.
func (s *Store) LastKnownRank(mode model.Mode, mode2 model.Mode2, language string) (int, bool) {
	if s.snap == nil {
		return 0, false
	}
	return s.snap.LbMemory.Rank(mode, mode2, language)
}
