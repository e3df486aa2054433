// Package engine contains the pure progression state transitions.
// Functions here take value snapshots and return new values plus a
// description of what changed; they never touch shared state, emit
// logs, or perform I/O. The store owns commit and side effects.
package engine

import (
	"fmt"
	"time"

	"github.com/defi-rpg/engine/internal/domain"
)

// XPResult describes the outcome of an XP award.
type XPResult struct {
	Player    domain.Player
	LeveledUp bool
	NewLevel  int
	XPGained  int
}

// AwardXP applies an XP gain to a player snapshot and recomputes the
// derived level fields. Negative amounts are treated as zero so XP
// stays monotonically non-decreasing.
func AwardXP(p domain.Player, amount int) XPResult {
	if amount < 0 {
		amount = 0
	}
	newXP := p.XP + amount
	newLevel := domain.LevelForXP(newXP)
	leveledUp := newLevel > p.Level

	p.XP = newXP
	p.Level = newLevel
	p.XPToNextLevel = domain.XPToNext(newXP)

	return XPResult{
		Player:    p,
		LeveledUp: leveledUp,
		NewLevel:  newLevel,
		XPGained:  amount,
	}
}

// NewPlayer constructs a fresh level-1 player for an address. Username
// and avatar are derived deterministically from the address.
func NewPlayer(address string, class domain.RPGClass, now time.Time) domain.Player {
	return domain.Player{
		Address:       address,
		Username:      UsernameFor(address),
		Class:         class,
		Level:         1,
		XP:            0,
		XPToNextLevel: domain.XPPerLevel,
		AvatarURL:     AvatarFor(address),
		Achievements:  []domain.Achievement{},
		Stats:         domain.PlayerStats{},
		JoinedAt:      now,
	}
}

// UsernameFor derives a default display name from an address suffix.
func UsernameFor(address string) string {
	suffix := address
	if len(address) > 4 {
		suffix = address[len(address)-4:]
	}
	return "Player_" + suffix
}

// AvatarFor derives a deterministic avatar URL from an address.
func AvatarFor(address string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/pixel-art/svg?seed=%s", address)
}

// UnlockResult describes the outcome of an achievement unlock.
type UnlockResult struct {
	Player      domain.Player
	Achievement domain.Achievement
	Unlocked    bool
}

// UnlockAchievement attaches a copy of the catalog achievement to the
// player and bumps the NFT counter. Duplicate unlocks leave the player
// untouched.
func UnlockAchievement(p domain.Player, a domain.Achievement, now time.Time) UnlockResult {
	if p.HasAchievement(a.ID) {
		return UnlockResult{Player: p, Achievement: a, Unlocked: false}
	}

	unlocked := a
	unlocked.UnlockedAt = now

	achievements := make([]domain.Achievement, 0, len(p.Achievements)+1)
	achievements = append(achievements, p.Achievements...)
	achievements = append(achievements, unlocked)
	p.Achievements = achievements
	p.Stats.NFTsEarned++

	return UnlockResult{Player: p, Achievement: unlocked, Unlocked: true}
}

// ApplyActivity bumps the player's aggregate counter for one recorded
// DeFi action. Unknown actions leave the stats untouched.
func ApplyActivity(p domain.Player, action domain.ActivityType, amount int) domain.Player {
	if amount <= 0 {
		amount = 1
	}
	switch action {
	case domain.ActivitySwap:
		p.Stats.TotalSwaps += amount
	case domain.ActivityLiquidity:
		p.Stats.TotalLiquidity += amount
	case domain.ActivityStake:
		p.Stats.TotalStaked += amount
	case domain.ActivityBridge:
		p.Stats.TotalBridged += amount
	}
	return p
}
