package domain

// LeaderboardEntry is a derived ranking row. The full board is
// recomputed from the player set on every change, never patched.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Player Player `json:"player"`
	Score  int    `json:"score"`
	// Change is a pseudo-random display annotation and carries no
	// authoritative meaning.
	Change int `json:"change"`
}
