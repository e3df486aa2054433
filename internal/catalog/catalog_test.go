package catalog

import (
	"testing"
	"time"

	"github.com/defi-rpg/engine/internal/domain"
)

func TestClassesCatalog(t *testing.T) {
	classes := Classes()
	if len(classes) != 4 {
		t.Fatalf("expected 4 classes, got %d", len(classes))
	}
	if classes[0].ID != "swapper" {
		t.Errorf("expected swapper as the default class, got %q", classes[0].ID)
	}

	seen := make(map[string]bool)
	for _, c := range classes {
		if seen[c.ID] {
			t.Errorf("duplicate class id %q", c.ID)
		}
		seen[c.ID] = true
		if len(c.Requirements) == 0 {
			t.Errorf("class %q has no requirements", c.ID)
		}
	}
}

func TestAchievementsCatalog(t *testing.T) {
	achievements := Achievements()
	if len(achievements) != 8 {
		t.Fatalf("expected 8 achievements, got %d", len(achievements))
	}

	seen := make(map[string]bool)
	for _, a := range achievements {
		if seen[a.ID] {
			t.Errorf("duplicate achievement id %q", a.ID)
		}
		seen[a.ID] = true
		if a.XPReward <= 0 {
			t.Errorf("achievement %q has no XP reward", a.ID)
		}
		if !a.UnlockedAt.IsZero() {
			t.Errorf("catalog achievement %q must not carry an unlock time", a.ID)
		}
	}
}

func TestQuestsCatalog(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	quests := Quests(now)
	if len(quests) != 4 {
		t.Fatalf("expected 4 quests, got %d", len(quests))
	}

	seen := make(map[string]bool)
	for _, q := range quests {
		if seen[q.ID] {
			t.Errorf("duplicate quest id %q", q.ID)
		}
		seen[q.ID] = true
		if q.Status != domain.QuestStatusActive {
			t.Errorf("quest %q should start active, got %q", q.ID, q.Status)
		}
		if !q.Deadline.After(now) {
			t.Errorf("quest %q deadline should be in the future", q.ID)
		}
		if q.Progress < 0 || q.Progress > 1 {
			t.Errorf("quest %q progress %v outside [0, 1]", q.ID, q.Progress)
		}
		if q.XPReward() <= 0 {
			t.Errorf("quest %q pays no XP", q.ID)
		}
	}
}

func TestSeedPlayersConsistency(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	players := SeedPlayers(now)
	if len(players) != 3 {
		t.Fatalf("expected 3 seed players, got %d", len(players))
	}

	for _, p := range players {
		if got := domain.LevelForXP(p.XP); got != p.Level {
			t.Errorf("player %s: level %d inconsistent with %d XP (want %d)",
				p.Username, p.Level, p.XP, got)
		}
		if got := domain.XPToNext(p.XP); got != p.XPToNextLevel {
			t.Errorf("player %s: xpToNextLevel %d inconsistent with %d XP (want %d)",
				p.Username, p.XPToNextLevel, p.XP, got)
		}
	}
}

func TestSeedQuestParticipantsReferToSeedData(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	players := SeedPlayers(now)
	addresses := make(map[string]bool, len(players))
	for _, p := range players {
		addresses[p.Address] = true
	}
	questIDs := make(map[string]bool)
	for _, q := range Quests(now) {
		questIDs[q.ID] = true
	}

	for questID, participants := range SeedQuestParticipants() {
		if !questIDs[questID] {
			t.Errorf("seed participants reference unknown quest %q", questID)
		}
		for _, addr := range participants {
			if !addresses[addr] {
				t.Errorf("quest %q references unknown address %s", questID, addr)
			}
		}
	}
}
