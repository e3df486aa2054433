package domain

import "time"

// EventType identifies a significant state transition
type EventType string

const (
	EventXPGained            EventType = "xp_gained"
	EventLevelUp             EventType = "level_up"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventQuestCompleted      EventType = "quest_completed"
)

// GameEvent records a state transition. Events are append-only and
// immutable once committed.
type GameEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Player    string         `json:"player"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// MessageType classifies chat log entries
type MessageType string

const (
	MessageTypeUser   MessageType = "user"
	MessageTypeSystem MessageType = "system"
	MessageTypeBot    MessageType = "bot"
)

// ChatMessage is a human-readable log entry. The log is append-only;
// entries are never edited or evicted for the lifetime of the process.
type ChatMessage struct {
	ID        string           `json:"id"`
	Sender    string           `json:"sender"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Type      MessageType      `json:"type"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// MessageMetadata carries optional structured context for a chat message
type MessageMetadata struct {
	Action   string `json:"action,omitempty"`
	XPGained int    `json:"xp_gained,omitempty"`
}

// ActivityType enumerates the tracked DeFi actions
type ActivityType string

const (
	ActivitySwap      ActivityType = "swap"
	ActivityLiquidity ActivityType = "liquidity"
	ActivityStake     ActivityType = "stake"
	ActivityBridge    ActivityType = "bridge"
)

// ValidActivity reports whether t names a known activity type.
func ValidActivity(t ActivityType) bool {
	switch t {
	case ActivitySwap, ActivityLiquidity, ActivityStake, ActivityBridge:
		return true
	}
	return false
}

// ActivityEvent is an inbound DeFi action to be converted into
// progression state (XP, stats, quest progress). Carried over Kafka or
// submitted through the HTTP API.
type ActivityEvent struct {
	PlayerAddress string       `json:"player_address"`
	Action        ActivityType `json:"action"`
	Amount        int          `json:"amount"`
	TxHash        string       `json:"tx_hash,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}
