package domain

import "time"

// XPPerLevel is the amount of XP required to advance one level.
const XPPerLevel = 1000

// Player represents a player in the game
type Player struct {
	Address       string        `json:"address"`
	Username      string        `json:"username"`
	Class         RPGClass      `json:"rpg_class"`
	Level         int           `json:"level"`
	XP            int           `json:"xp"`
	XPToNextLevel int           `json:"xp_to_next_level"`
	AvatarURL     string        `json:"avatar_url"`
	Achievements  []Achievement `json:"achievements"`
	Stats         PlayerStats   `json:"stats"`
	JoinedAt      time.Time     `json:"joined_at"`
}

// PlayerStats holds aggregate activity counters for a player
type PlayerStats struct {
	TotalSwaps      int `json:"total_swaps"`
	TotalLiquidity  int `json:"total_liquidity"`
	TotalStaked     int `json:"total_staked"`
	TotalBridged    int `json:"total_bridged"`
	QuestsCompleted int `json:"quests_completed"`
	NFTsEarned      int `json:"nfts_earned"`
}

// HasAchievement reports whether the player already holds the achievement.
func (p *Player) HasAchievement(achievementID string) bool {
	for _, a := range p.Achievements {
		if a.ID == achievementID {
			return true
		}
	}
	return false
}

// LevelForXP returns the level implied by a cumulative XP total.
func LevelForXP(xp int) int {
	return xp/XPPerLevel + 1
}

// XPToNext returns the XP remaining until the next level boundary.
func XPToNext(xp int) int {
	return XPPerLevel - xp%XPPerLevel
}

// RPGClass is a static catalog entry describing a player class.
// Catalog entries are read-only and shared by every player that selects them.
type RPGClass struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Icon         string             `json:"icon"`
	PrimaryStat  string             `json:"primary_stat"`
	Bonuses      []string           `json:"bonuses"`
	Requirements []ClassRequirement `json:"requirements"`
}

// ClassRequirement describes what a player must do to unlock a class
type ClassRequirement struct {
	Type        ActivityType `json:"type"`
	MinAmount   int          `json:"min_amount"`
	Description string       `json:"description"`
}
