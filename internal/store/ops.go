package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/defi-rpg/engine/internal/domain"
	"github.com/defi-rpg/engine/internal/engine"
)

// InitializePlayer selects the player at address, creating a fresh
// level-1 player when none exists. New and returning players are joined
// to the first active quest they have not joined yet; for new players
// the join happens asynchronously after a short delay.
func (s *Store) InitializePlayer(address string) {
	if address == "" {
		return
	}

	s.mu.Lock()

	if i := s.playerIndexLocked(address); i >= 0 {
		s.currentAddr = address
		if qi := s.firstJoinableQuestLocked(address); qi >= 0 {
			s.joinQuestLocked(qi, address)
		}
		s.commitLocked(false)
		s.mu.Unlock()
		return
	}

	player := engine.NewPlayer(address, s.classes[0], s.now())
	s.players = append(s.players, player)
	s.currentAddr = address
	s.appendSystemMessageLocked(
		fmt.Sprintf("🎮 Welcome %s! You've been assigned the %s class. Start your DeFi adventure!",
			player.Username, player.Class.Name),
		nil,
	)
	s.commitLocked(true)

	var joinQuestID string
	for _, q := range s.quests {
		if q.Status == domain.QuestStatusActive {
			joinQuestID = q.ID
			break
		}
	}
	s.mu.Unlock()

	if joinQuestID != "" {
		time.AfterFunc(s.joinDelay, func() {
			s.JoinQuest(joinQuestID, address)
		})
	}
}

// firstJoinableQuestLocked returns the index of the first active quest
// the address has not joined, or -1.
func (s *Store) firstJoinableQuestLocked(address string) int {
	for i, q := range s.quests {
		if q.Status == domain.QuestStatusActive && !q.HasParticipant(address) {
			return i
		}
	}
	return -1
}

// SetCurrentPlayer selects an existing player as current. Unknown
// addresses are ignored.
func (s *Store) SetCurrentPlayer(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playerIndexLocked(address) < 0 {
		return
	}
	s.currentAddr = address
	s.commitLocked(true)
}

// AwardXP grants XP to a player and recomputes its level. Unknown
// addresses are a silent no-op. A level-up is committed together with
// its event and celebratory message.
func (s *Store) AwardXP(address string, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.awardXPLocked(address, amount) {
		return
	}
	s.commitLocked(true)
}

func (s *Store) awardXPLocked(address string, amount int) bool {
	i := s.playerIndexLocked(address)
	if i < 0 {
		return false
	}

	res := engine.AwardXP(s.players[i], amount)
	s.players[i] = res.Player

	if res.LeveledUp {
		s.appendEventLocked(domain.EventLevelUp, address, map[string]any{
			"new_level": res.NewLevel,
			"xp_gained": res.XPGained,
		})
		s.appendSystemMessageLocked(
			fmt.Sprintf("🎉 %s leveled up to Level %d! (+%d XP)",
				res.Player.Username, res.NewLevel, res.XPGained),
			&domain.MessageMetadata{Action: "level_up", XPGained: res.XPGained},
		)
	}
	return true
}

// JoinQuest adds an address to a quest's participants. Missing quests
// and repeat joins are silent no-ops.
func (s *Store) JoinQuest(questID, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qi := s.questIndexLocked(questID)
	if qi < 0 {
		return
	}
	if !s.joinQuestLocked(qi, address) {
		return
	}
	s.commitLocked(false)
}

func (s *Store) joinQuestLocked(qi int, address string) bool {
	quest, joined := engine.JoinQuest(s.quests[qi], address)
	if !joined {
		return false
	}
	s.quests[qi] = quest
	s.appendSystemMessageLocked(
		fmt.Sprintf("🎯 %s joined \"%s\"!", s.displayNameLocked(address), quest.Title),
		nil,
	)
	return true
}

// UpdateQuestProgress advances quest progress by delta, clamped to
// [0, 1]. Progress updates never change quest status.
func (s *Store) UpdateQuestProgress(questID, address string, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qi := s.questIndexLocked(questID)
	if qi < 0 {
		return
	}
	s.quests[qi] = engine.AdvanceProgress(s.quests[qi], delta)
	s.commitLocked(false)
}

// CompleteQuest records a quest completion for an address: completedBy
// grows, progress steps forward, XP rewards pay out, the player's
// counter increments, and the quest flips to completed once every
// participant has finished. Completing twice for the same address has
// no additional effect. The quest and player commits appear to
// observers as one transition.
func (s *Store) CompleteQuest(questID, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qi := s.questIndexLocked(questID)
	if qi < 0 {
		return
	}

	res := engine.CompleteQuest(s.quests[qi], address)
	if !res.Completed {
		return
	}
	s.quests[qi] = res.Quest

	for _, reward := range res.Quest.Rewards {
		if reward.Type == domain.RewardTypeXP && reward.Amount > 0 {
			s.awardXPLocked(address, reward.Amount)
		}
	}

	if pi := s.playerIndexLocked(address); pi >= 0 {
		s.players[pi].Stats.QuestsCompleted++
	}

	s.appendEventLocked(domain.EventQuestCompleted, address, map[string]any{
		"quest_id":    res.Quest.ID,
		"quest_title": res.Quest.Title,
	})
	s.appendSystemMessageLocked(
		fmt.Sprintf("🏆 %s completed \"%s\"! Earned %d XP!",
			s.displayNameLocked(address), res.Quest.Title, res.XPReward),
		nil,
	)

	s.commitLocked(true)
}

// UnlockAchievement attaches a catalog achievement to a player and pays
// its XP reward. Unknown ids, unknown players, and repeat unlocks are
// silent no-ops.
func (s *Store) UnlockAchievement(achievementID, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *domain.Achievement
	for i := range s.achievements {
		if s.achievements[i].ID == achievementID {
			found = &s.achievements[i]
			break
		}
	}
	if found == nil {
		return
	}

	pi := s.playerIndexLocked(address)
	if pi < 0 {
		return
	}

	res := engine.UnlockAchievement(s.players[pi], *found, s.now())
	if !res.Unlocked {
		return
	}
	s.players[pi] = res.Player

	s.awardXPLocked(address, res.Achievement.XPReward)

	s.appendEventLocked(domain.EventAchievementUnlocked, address, map[string]any{
		"achievement_id": res.Achievement.ID,
		"name":           res.Achievement.Name,
		"rarity":         string(res.Achievement.Rarity),
	})
	s.appendSystemMessageLocked(
		fmt.Sprintf("🏆 %s unlocked \"%s\" achievement! (+%d XP)",
			res.Player.Username, res.Achievement.Name, res.Achievement.XPReward),
		nil,
	)

	s.commitLocked(true)
}

// RecordActivity converts one DeFi action into progression state: the
// matching stat counter grows, XP is rolled from the configured range,
// matching active quests step forward, and an xp_gained event plus a
// system message are appended. Unknown players and actions are silent
// no-ops.
func (s *Store) RecordActivity(address string, action domain.ActivityType, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pi := s.playerIndexLocked(address)
	if pi < 0 || !domain.ValidActivity(action) {
		return
	}

	rule, ok := s.rules[action]
	if !ok {
		return
	}

	xp := rule.MinXP
	if spread := rule.MaxXP - rule.MinXP; spread > 0 {
		xp += s.rng.Intn(spread + 1)
	}

	s.players[pi] = engine.ApplyActivity(s.players[pi], action, amount)

	s.appendEventLocked(domain.EventXPGained, address, map[string]any{
		"action":    string(action),
		"amount":    amount,
		"xp_gained": xp,
	})
	s.appendSystemMessageLocked(
		activityMessage(action, s.players[pi].Username, xp),
		&domain.MessageMetadata{Action: string(action), XPGained: xp},
	)

	s.awardXPLocked(address, xp)

	for qi, q := range s.quests {
		if q.Status != domain.QuestStatusActive {
			continue
		}
		for _, req := range q.Requirements {
			if req.Type == action {
				s.quests[qi] = engine.AdvanceProgress(s.quests[qi], rule.QuestProgress)
				break
			}
		}
	}

	s.commitLocked(true)
}

func activityMessage(action domain.ActivityType, username string, xp int) string {
	switch action {
	case domain.ActivitySwap:
		return fmt.Sprintf("🔄 %s completed a swap and earned %d XP!", username, xp)
	case domain.ActivityLiquidity:
		return fmt.Sprintf("💧 %s provided liquidity and earned %d XP!", username, xp)
	case domain.ActivityStake:
		return fmt.Sprintf("🛡️ %s staked tokens and earned %d XP!", username, xp)
	case domain.ActivityBridge:
		return fmt.Sprintf("🌉 %s bridged assets and earned %d XP!", username, xp)
	}
	return fmt.Sprintf("%s earned %d XP!", username, xp)
}

// SendChat appends a user chat message and then attempts to relay it
// through the outbound transport. Relay failures degrade to local-only
// chat; the local append is never rolled back.
func (s *Store) SendChat(ctx context.Context, address, content string) {
	if content == "" {
		return
	}

	s.mu.Lock()
	s.messages = append(s.messages, domain.ChatMessage{
		ID:        uuid.New().String(),
		Sender:    address,
		Content:   content,
		Timestamp: s.now(),
		Type:      domain.MessageTypeUser,
	})
	s.commitLocked(false)
	topic := s.chatTopic
	s.mu.Unlock()

	if err := s.transport.Send(ctx, topic, content); err != nil {
		s.logger.Warn("chat relay failed, continuing in local mode", "error", err)
	}
}
