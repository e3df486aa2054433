package engine

import (
	"time"

	"github.com/defi-rpg/engine/internal/domain"
)

// JoinQuest appends an address to the quest's participant set. Joining
// twice is a no-op; the returned bool reports whether anything changed.
func JoinQuest(q domain.Quest, address string) (domain.Quest, bool) {
	if q.HasParticipant(address) {
		return q, false
	}
	participants := make([]string, 0, len(q.Participants)+1)
	participants = append(participants, q.Participants...)
	participants = append(participants, address)
	q.Participants = participants
	return q, true
}

// AdvanceProgress moves quest progress by delta, clamped to [0, 1].
// Progress alone never changes quest status.
func AdvanceProgress(q domain.Quest, delta float64) domain.Quest {
	q.Progress = clampProgress(q.Progress + delta)
	return q
}

// CompleteResult describes the outcome of a quest completion.
type CompleteResult struct {
	Quest     domain.Quest
	Completed bool
	// QuestDone is true when this completion flipped the quest status
	// to completed.
	QuestDone bool
	XPReward  int
}

// CompleteQuest marks the quest completed for an address. A second
// completion by the same address changes nothing. Completion does not
// require prior participation; the quest flips to completed once every
// participant is accounted for.
func CompleteQuest(q domain.Quest, address string) CompleteResult {
	if q.IsCompletedBy(address) {
		return CompleteResult{Quest: q, Completed: false}
	}

	completedBy := make([]string, 0, len(q.CompletedBy)+1)
	completedBy = append(completedBy, q.CompletedBy...)
	completedBy = append(completedBy, address)
	q.CompletedBy = completedBy
	q.Progress = clampProgress(q.Progress + domain.CompletionProgressStep)

	questDone := false
	if q.Status == domain.QuestStatusActive &&
		len(q.Participants) > 0 && len(q.CompletedBy) >= len(q.Participants) {
		q.Status = domain.QuestStatusCompleted
		questDone = true
	}

	return CompleteResult{
		Quest:     q,
		Completed: true,
		QuestDone: questDone,
		XPReward:  q.XPReward(),
	}
}

// EffectiveStatus reports the quest status as of now: an active quest
// past its deadline reads as expired. Deadlines are evaluated at read
// time; no background scheduler rewrites stored status.
func EffectiveStatus(q domain.Quest, now time.Time) domain.QuestStatus {
	if q.Status == domain.QuestStatusActive && !q.Deadline.IsZero() && now.After(q.Deadline) {
		return domain.QuestStatusExpired
	}
	return q.Status
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
