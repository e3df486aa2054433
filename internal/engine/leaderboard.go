package engine

import (
	"math/rand"
	"sort"

	"github.com/defi-rpg/engine/internal/domain"
)

// ChangeSpread bounds the display-only rank change annotation: values
// fall in [-ChangeSpread/2, ChangeSpread/2).
const ChangeSpread = 20

// DeriveLeaderboard recomputes the full standings from the player set:
// score = XP, descending, ties kept in insertion order, dense 1-based
// ranks. Aside from the display-only Change field the result is a pure
// function of the input; rng may be nil to zero out Change.
func DeriveLeaderboard(players []domain.Player, rng *rand.Rand) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, len(players))
	for i, p := range players {
		change := 0
		if rng != nil {
			change = rng.Intn(ChangeSpread) - ChangeSpread/2
		}
		entries[i] = domain.LeaderboardEntry{
			Player: p,
			Score:  p.XP,
			Change: change,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
