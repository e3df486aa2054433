package domain

import "time"

// Rarity tiers, ordered by reward magnitude
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Achievement is a one-time unlockable reward. Catalog entries are
// immutable; the copy attached to a player carries the unlock time.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Rarity      Rarity    `json:"rarity"`
	TokenID     string    `json:"token_id,omitempty"`
	XPReward    int       `json:"xp_reward"`
	UnlockedAt  time.Time `json:"unlocked_at,omitempty"`
}
