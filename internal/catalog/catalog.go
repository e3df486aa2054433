// Package catalog holds the static game reference data: RPG classes,
// the achievement catalog, the quest board, and optional seed players.
// Everything here is read-only after process start and safe to share
// without synchronization.
package catalog

import (
	"time"

	"github.com/defi-rpg/engine/internal/domain"
)

// Classes returns the RPG class catalog. The first entry is the default
// class assigned to new players.
func Classes() []domain.RPGClass {
	return []domain.RPGClass{
		{
			ID:          "swapper",
			Name:        "Swapper",
			Description: "Masters of token exchange, earning bonuses on trading activities",
			Icon:        "⚡",
			PrimaryStat: "Trading Volume",
			Bonuses:     []string{"+20% XP from swaps", "Lower gas fees on trades"},
			Requirements: []domain.ClassRequirement{
				{Type: domain.ActivitySwap, MinAmount: 10, Description: "10+ token swaps"},
			},
		},
		{
			ID:          "farmer",
			Name:        "Liquidity Farmer",
			Description: "Providers of liquidity, earning rewards from yield farming",
			Icon:        "🌾",
			PrimaryStat: "Total Liquidity",
			Bonuses:     []string{"+25% XP from LP activities", "Higher yield multipliers"},
			Requirements: []domain.ClassRequirement{
				{Type: domain.ActivityLiquidity, MinAmount: 1000, Description: "$1000+ in liquidity provided"},
			},
		},
		{
			ID:          "staker",
			Name:        "Staking Sentinel",
			Description: "Long-term holders who secure networks through staking",
			Icon:        "🛡️",
			PrimaryStat: "Staked Amount",
			Bonuses:     []string{"+30% XP from staking", "Compound rewards boost"},
			Requirements: []domain.ClassRequirement{
				{Type: domain.ActivityStake, MinAmount: 500, Description: "$500+ staked assets"},
			},
		},
		{
			ID:          "bridger",
			Name:        "Bridge Navigator",
			Description: "Cross-chain experts who bridge assets between networks",
			Icon:        "🌉",
			PrimaryStat: "Bridge Volume",
			Bonuses:     []string{"+15% XP from bridging", "Reduced bridge fees"},
			Requirements: []domain.ClassRequirement{
				{Type: domain.ActivityBridge, MinAmount: 5, Description: "5+ cross-chain bridges"},
			},
		},
	}
}

// Achievements returns the achievement catalog.
func Achievements() []domain.Achievement {
	return []domain.Achievement{
		{ID: "first-swap", Name: "First Swap", Description: "Complete your first token swap", Icon: "🔄", Rarity: domain.RarityCommon, XPReward: 100},
		{ID: "whale-trader", Name: "Whale Trader", Description: "Complete a swap worth over $10,000", Icon: "🐋", Rarity: domain.RarityEpic, XPReward: 1000},
		{ID: "liquidity-legend", Name: "Liquidity Legend", Description: "Provide over $50,000 in total liquidity", Icon: "💎", Rarity: domain.RarityLegendary, XPReward: 2500},
		{ID: "quest-master", Name: "Quest Master", Description: "Complete 10 group quests", Icon: "🏆", Rarity: domain.RarityRare, XPReward: 500},
		{ID: "staking-champion", Name: "Staking Champion", Description: "Stake tokens for 30 consecutive days", Icon: "🛡️", Rarity: domain.RarityEpic, XPReward: 800},
		{ID: "bridge-master", Name: "Bridge Master", Description: "Complete 20 cross-chain bridges", Icon: "🌉", Rarity: domain.RarityRare, XPReward: 600},
		{ID: "defi-veteran", Name: "DeFi Veteran", Description: "Reach level 10 in the DeFi RPG", Icon: "⭐", Rarity: domain.RarityLegendary, XPReward: 3000},
		{ID: "social-butterfly", Name: "Social Butterfly", Description: "Send 100 messages in group chat", Icon: "🦋", Rarity: domain.RarityCommon, XPReward: 200},
	}
}

// Quests returns the quest board, with deadlines relative to now.
func Quests(now time.Time) []domain.Quest {
	return []domain.Quest{
		{
			ID:          "weekly-swap-challenge",
			Title:       "Weekly Swap Challenge",
			Description: "Complete 5 token swaps this week to earn bonus XP and exclusive NFT",
			Type:        domain.QuestTypeGroup,
			Requirements: []domain.QuestRequirement{
				{Type: domain.ActivitySwap, Amount: 5, Description: "Complete 5 token swaps"},
			},
			Rewards: []domain.QuestReward{
				{Type: domain.RewardTypeXP, Amount: 500, Description: "500 XP bonus"},
				{Type: domain.RewardTypeNFT, TokenID: "SWAP_MASTER_001", Description: "Swap Master NFT"},
			},
			Deadline: now.Add(7 * 24 * time.Hour),
			Status:   domain.QuestStatusActive,
			Progress: 0.3,
		},
		{
			ID:          "liquidity-pool-master",
			Title:       "Liquidity Pool Master",
			Description: "Provide $2000 in liquidity across different pools to become a LP master",
			Type:        domain.QuestTypeIndividual,
			Requirements: []domain.QuestRequirement{
				{Type: domain.ActivityLiquidity, Amount: 2000, Description: "Provide $2000 in liquidity"},
			},
			Rewards: []domain.QuestReward{
				{Type: domain.RewardTypeXP, Amount: 750, Description: "750 XP reward"},
				{Type: domain.RewardTypeTitle, Description: "LP Master title"},
			},
			Deadline: now.Add(14 * 24 * time.Hour),
			Status:   domain.QuestStatusActive,
			Progress: 0.6,
		},
		{
			ID:          "staking-sentinel",
			Title:       "Staking Sentinel",
			Description: "Stake $1000 worth of tokens to join the sentinel ranks",
			Type:        domain.QuestTypeIndividual,
			Requirements: []domain.QuestRequirement{
				{Type: domain.ActivityStake, Amount: 1000, Description: "Stake $1000 worth of tokens"},
			},
			Rewards: []domain.QuestReward{
				{Type: domain.RewardTypeXP, Amount: 600, Description: "600 XP reward"},
				{Type: domain.RewardTypeNFT, TokenID: "SENTINEL_001", Description: "Sentinel Badge NFT"},
			},
			Deadline: now.Add(10 * 24 * time.Hour),
			Status:   domain.QuestStatusActive,
			Progress: 0.8,
		},
		{
			ID:          "bridge-explorer",
			Title:       "Bridge Explorer",
			Description: "Complete 3 cross-chain bridges to explore the multiverse",
			Type:        domain.QuestTypeGroup,
			Requirements: []domain.QuestRequirement{
				{Type: domain.ActivityBridge, Amount: 3, Description: "Complete 3 cross-chain bridges"},
			},
			Rewards: []domain.QuestReward{
				{Type: domain.RewardTypeXP, Amount: 400, Description: "400 XP reward"},
				{Type: domain.RewardTypeNFT, TokenID: "EXPLORER_001", Description: "Bridge Explorer NFT"},
			},
			Deadline: now.Add(21 * 24 * time.Hour),
			Status:   domain.QuestStatusActive,
			Progress: 0.1,
		},
	}
}

// SeedPlayers returns the demo roster used when seeding is enabled.
// Not loaded in tests or when game.seed_players is false.
func SeedPlayers(now time.Time) []domain.Player {
	classes := Classes()
	achievements := Achievements()
	byID := make(map[string]domain.Achievement, len(achievements))
	for _, a := range achievements {
		byID[a.ID] = a
	}

	firstSwap := byID["first-swap"]
	firstSwap.UnlockedAt = now.Add(-24 * time.Hour)
	liquidityLegend := byID["liquidity-legend"]
	liquidityLegend.UnlockedAt = now.Add(-48 * time.Hour)

	return []domain.Player{
		{
			Address:       "0x1234567890123456789012345678901234567890",
			Username:      "CryptoWarrior",
			Class:         classes[0],
			Level:         5,
			XP:            4750,
			XPToNextLevel: 250,
			AvatarURL:     "https://api.dicebear.com/7.x/pixel-art/svg?seed=warrior",
			Achievements:  []domain.Achievement{firstSwap},
			Stats: domain.PlayerStats{
				TotalSwaps: 25, TotalLiquidity: 5000, TotalStaked: 2000,
				TotalBridged: 8, QuestsCompleted: 3, NFTsEarned: 2,
			},
			JoinedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			Address:       "0x2345678901234567890123456789012345678901",
			Username:      "DeFiMage",
			Class:         classes[1],
			Level:         7,
			XP:            6200,
			XPToNextLevel: 800,
			AvatarURL:     "https://api.dicebear.com/7.x/pixel-art/svg?seed=mage",
			Achievements:  []domain.Achievement{liquidityLegend},
			Stats: domain.PlayerStats{
				TotalSwaps: 15, TotalLiquidity: 12000, TotalStaked: 8000,
				TotalBridged: 3, QuestsCompleted: 5, NFTsEarned: 4,
			},
			JoinedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			Address:       "0x3456789012345678901234567890123456789012",
			Username:      "StakeKnight",
			Class:         classes[2],
			Level:         6,
			XP:            5800,
			XPToNextLevel: 200,
			AvatarURL:     "https://api.dicebear.com/7.x/pixel-art/svg?seed=knight",
			Achievements:  []domain.Achievement{},
			Stats: domain.PlayerStats{
				TotalSwaps: 8, TotalLiquidity: 3000, TotalStaked: 15000,
				TotalBridged: 2, QuestsCompleted: 4, NFTsEarned: 3,
			},
			JoinedAt: time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		},
	}
}

// SeedQuestParticipants wires the seed roster into the quest board the
// way the demo data ships: returns quest id -> participant addresses.
func SeedQuestParticipants() map[string][]string {
	return map[string][]string{
		"weekly-swap-challenge": {
			"0x1234567890123456789012345678901234567890",
			"0x2345678901234567890123456789012345678901",
			"0x3456789012345678901234567890123456789012",
		},
		"liquidity-pool-master": {
			"0x1234567890123456789012345678901234567890",
			"0x2345678901234567890123456789012345678901",
		},
		"staking-sentinel": {
			"0x3456789012345678901234567890123456789012",
		},
		"bridge-explorer": {
			"0x1234567890123456789012345678901234567890",
		},
	}
}
