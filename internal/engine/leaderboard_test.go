package engine

import (
	"math/rand"
	"testing"

	"github.com/defi-rpg/engine/internal/domain"
)

func TestDeriveLeaderboard(t *testing.T) {
	players := []domain.Player{
		{Address: "0xaaa", Username: "A", XP: 1200},
		{Address: "0xbbb", Username: "B", XP: 6200},
		{Address: "0xccc", Username: "C", XP: 4750},
	}

	entries := DeriveLeaderboard(players, nil)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantOrder := []string{"0xbbb", "0xccc", "0xaaa"}
	for i, want := range wantOrder {
		if entries[i].Player.Address != want {
			t.Errorf("rank %d: expected %s, got %s", i+1, want, entries[i].Player.Address)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, entries[i].Rank)
		}
		if entries[i].Score != entries[i].Player.XP {
			t.Errorf("expected score %d to equal XP, got %d", entries[i].Player.XP, entries[i].Score)
		}
	}
}

func TestDeriveLeaderboardStableTies(t *testing.T) {
	players := []domain.Player{
		{Address: "0xaaa", XP: 500},
		{Address: "0xbbb", XP: 500},
		{Address: "0xccc", XP: 500},
	}

	entries := DeriveLeaderboard(players, nil)
	for i, want := range []string{"0xaaa", "0xbbb", "0xccc"} {
		if entries[i].Player.Address != want {
			t.Errorf("tie order broken at %d: expected %s, got %s", i, want, entries[i].Player.Address)
		}
	}
	// Ranks are dense even on ties
	for i := range entries {
		if entries[i].Rank != i+1 {
			t.Errorf("expected dense rank %d, got %d", i+1, entries[i].Rank)
		}
	}
}

func TestDeriveLeaderboardNilRngZeroChange(t *testing.T) {
	entries := DeriveLeaderboard([]domain.Player{{Address: "0xaaa", XP: 100}}, nil)
	if entries[0].Change != 0 {
		t.Errorf("expected zero change with nil rng, got %d", entries[0].Change)
	}
}

func TestDeriveLeaderboardChangeBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	players := make([]domain.Player, 200)
	for i := range players {
		players[i] = domain.Player{Address: "0x", XP: i}
	}

	for _, e := range DeriveLeaderboard(players, rng) {
		if e.Change < -ChangeSpread/2 || e.Change >= ChangeSpread/2 {
			t.Fatalf("change %d outside [-%d, %d)", e.Change, ChangeSpread/2, ChangeSpread/2)
		}
	}
}

func TestDeriveLeaderboardEmpty(t *testing.T) {
	entries := DeriveLeaderboard(nil, nil)
	if len(entries) != 0 {
		t.Errorf("expected empty leaderboard, got %d entries", len(entries))
	}
}
