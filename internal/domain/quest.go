package domain

import "time"

// QuestType distinguishes solo quests from group quests
type QuestType string

const (
	QuestTypeIndividual QuestType = "individual"
	QuestTypeGroup      QuestType = "group"
)

// QuestStatus represents the lifecycle state of a quest.
// Transitions are forward-only: active -> completed, active -> expired.
type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusExpired   QuestStatus = "expired"
)

// RewardType enumerates what a quest can pay out
type RewardType string

const (
	RewardTypeXP    RewardType = "xp"
	RewardTypeNFT   RewardType = "nft"
	RewardTypeTitle RewardType = "title"
)

// CompletionProgressStep is the fixed progress increment applied every
// time a player completes a quest, independent of requirement amounts.
const CompletionProgressStep = 0.2

// Quest is a time-bounded challenge joined by one or more players
type Quest struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Type         QuestType          `json:"type"`
	Requirements []QuestRequirement `json:"requirements"`
	Rewards      []QuestReward      `json:"rewards"`
	Deadline     time.Time          `json:"deadline"`
	Participants []string           `json:"participants"`
	CompletedBy  []string           `json:"completed_by"`
	Status       QuestStatus        `json:"status"`
	Progress     float64            `json:"progress"`
}

// QuestRequirement describes one activity target of a quest
type QuestRequirement struct {
	Type        ActivityType `json:"type"`
	Amount      int          `json:"amount"`
	Description string       `json:"description"`
}

// QuestReward describes one payout of a quest
type QuestReward struct {
	Type        RewardType `json:"type"`
	Amount      int        `json:"amount,omitempty"`
	TokenID     string     `json:"token_id,omitempty"`
	Description string     `json:"description,omitempty"`
}

// HasParticipant reports whether the address has joined the quest.
func (q *Quest) HasParticipant(address string) bool {
	for _, p := range q.Participants {
		if p == address {
			return true
		}
	}
	return false
}

// IsCompletedBy reports whether the address already completed the quest.
func (q *Quest) IsCompletedBy(address string) bool {
	for _, c := range q.CompletedBy {
		if c == address {
			return true
		}
	}
	return false
}

// XPReward returns the first xp-kind reward amount, or 0 if the quest
// pays no XP.
func (q *Quest) XPReward() int {
	for _, r := range q.Rewards {
		if r.Type == RewardTypeXP {
			return r.Amount
		}
	}
	return 0
}
