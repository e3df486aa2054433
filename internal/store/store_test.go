package store

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/defi-rpg/engine/internal/config"
	"github.com/defi-rpg/engine/internal/domain"
)

func testConfig() *config.GameConfig {
	cfg := config.DefaultConfig()
	cfg.Game.SeedPlayers = false
	cfg.Game.QuestJoinDelay = time.Millisecond
	return &cfg.Game
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{WithRand(rand.New(rand.NewSource(1)))}
	return New(testConfig(), testLogger(), append(base, opts...)...)
}

// failingTransport always refuses to relay.
type failingTransport struct {
	calls int
}

func (f *failingTransport) Send(ctx context.Context, topic, content string) error {
	f.calls++
	return errors.New("broker unreachable")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

// initPlayer initializes a player and waits for the delayed quest
// auto-join to land, so later log assertions see a quiet store.
func initPlayer(t *testing.T, s *Store, addr string) {
	t.Helper()
	s.InitializePlayer(addr)
	waitFor(t, func() bool {
		q, ok := s.Quest("weekly-swap-challenge")
		return ok && q.HasParticipant(addr)
	})
}

func TestNewStoreStartsWithWelcomeMessages(t *testing.T) {
	s := newTestStore(t)

	messages := s.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 welcome messages, got %d", len(messages))
	}
	if messages[0].Type != domain.MessageTypeSystem {
		t.Errorf("expected first message from system, got %q", messages[0].Type)
	}
	if messages[1].Type != domain.MessageTypeBot {
		t.Errorf("expected second message from bot, got %q", messages[1].Type)
	}

	if len(s.Players()) != 0 {
		t.Errorf("expected no players without seeding, got %d", len(s.Players()))
	}
	if len(s.Quests()) == 0 {
		t.Error("expected quest board to be populated")
	}
	if len(s.Events()) != 0 {
		t.Errorf("expected empty event log, got %d events", len(s.Events()))
	}
}

func TestInitializePlayerCreatesNewPlayer(t *testing.T) {
	s := newTestStore(t)

	s.InitializePlayer("0x1111222233334444555566667777888899990000")

	player, ok := s.Player("0x1111222233334444555566667777888899990000")
	if !ok {
		t.Fatal("expected player to exist after initialization")
	}
	if player.Level != 1 || player.XP != 0 {
		t.Errorf("expected fresh level-1 player, got level %d xp %d", player.Level, player.XP)
	}
	if player.Username != "Player_0000" {
		t.Errorf("expected derived username Player_0000, got %q", player.Username)
	}

	current, ok := s.CurrentPlayer()
	if !ok || current.Address != player.Address {
		t.Error("expected new player to become current")
	}

	var welcomed bool
	for _, m := range s.Messages() {
		if strings.Contains(m.Content, "Welcome Player_0000") {
			welcomed = true
		}
	}
	if !welcomed {
		t.Error("expected a personal welcome message")
	}

	// The new player is joined to the first active quest shortly after
	waitFor(t, func() bool {
		q, ok := s.Quest("weekly-swap-challenge")
		return ok && q.HasParticipant(player.Address)
	})
}

func TestInitializePlayerExistingSelectsAndJoins(t *testing.T) {
	s := newTestStore(t)
	addr := "0xaaaa222233334444555566667777888899990000"

	s.InitializePlayer(addr)
	waitFor(t, func() bool {
		q, _ := s.Quest("weekly-swap-challenge")
		return q.HasParticipant(addr)
	})
	players := len(s.Players())

	// Re-initializing must not create a second player and joins the
	// next quest the address has not joined yet, synchronously.
	s.InitializePlayer(addr)
	if got := len(s.Players()); got != players {
		t.Errorf("expected %d players after re-init, got %d", players, got)
	}
	q, _ := s.Quest("liquidity-pool-master")
	if !q.HasParticipant(addr) {
		t.Error("expected returning player to join the next open quest")
	}
}

func TestInitializePlayerEmptyAddressNoOp(t *testing.T) {
	s := newTestStore(t)
	s.InitializePlayer("")
	if len(s.Players()) != 0 {
		t.Error("expected empty address to be ignored")
	}
}

func TestSetCurrentPlayerUnknownNoOp(t *testing.T) {
	s := newTestStore(t)
	s.SetCurrentPlayer("0xnobody")
	if _, ok := s.CurrentPlayer(); ok {
		t.Error("expected no current player after selecting unknown address")
	}
}

func TestAwardXPLevelUp(t *testing.T) {
	s := newTestStore(t)
	addr := "0xbbbb222233334444555566667777888899990000"
	initPlayer(t, s, addr)

	eventsBefore := len(s.Events())
	s.AwardXP(addr, 1050)

	player, _ := s.Player(addr)
	if player.XP != 1050 || player.Level != 2 {
		t.Errorf("expected xp 1050 level 2, got xp %d level %d", player.XP, player.Level)
	}
	if player.XPToNextLevel != 950 {
		t.Errorf("expected xpToNextLevel 950, got %d", player.XPToNextLevel)
	}

	events := s.Events()
	if len(events) != eventsBefore+1 {
		t.Fatalf("expected 1 new event, got %d", len(events)-eventsBefore)
	}
	evt := events[len(events)-1]
	if evt.Type != domain.EventLevelUp {
		t.Errorf("expected level_up event, got %q", evt.Type)
	}
	if evt.Data["new_level"] != 2 {
		t.Errorf("expected new_level 2 in event data, got %v", evt.Data["new_level"])
	}

	messages := s.Messages()
	last := messages[len(messages)-1]
	if !strings.Contains(last.Content, "leveled up to Level 2") {
		t.Errorf("expected level-up message, got %q", last.Content)
	}
	if last.Metadata == nil || last.Metadata.XPGained != 1050 {
		t.Error("expected level-up message metadata with xp gained")
	}
}

func TestAwardXPWithinLevelNoEvent(t *testing.T) {
	s := newTestStore(t)
	addr := "0xcccc222233334444555566667777888899990000"
	s.InitializePlayer(addr)

	eventsBefore := len(s.Events())
	s.AwardXP(addr, 100)

	if got := len(s.Events()); got != eventsBefore {
		t.Errorf("expected no events for a within-level gain, got %d new", got-eventsBefore)
	}
}

func TestAwardXPUnknownPlayerNoOp(t *testing.T) {
	s := newTestStore(t)
	s.AwardXP("0xnobody", 500)
	if len(s.Events()) != 0 {
		t.Error("expected no events for unknown player")
	}
	if len(s.Messages()) != 2 {
		t.Error("expected no messages for unknown player")
	}
}

func TestJoinQuestRepeatNoOp(t *testing.T) {
	s := newTestStore(t)
	addr := "0xdddd222233334444555566667777888899990000"

	s.JoinQuest("bridge-explorer", addr)
	messagesAfterJoin := len(s.Messages())

	s.JoinQuest("bridge-explorer", addr)
	if got := len(s.Messages()); got != messagesAfterJoin {
		t.Error("expected repeat join to append no message")
	}
	q, _ := s.Quest("bridge-explorer")
	if len(q.Participants) != 1 {
		t.Errorf("expected 1 participant, got %d", len(q.Participants))
	}
}

func TestJoinQuestUnknownQuestNoOp(t *testing.T) {
	s := newTestStore(t)
	s.JoinQuest("no-such-quest", "0xaaa")
	if len(s.Messages()) != 2 {
		t.Error("expected no message for unknown quest")
	}
}

func TestUpdateQuestProgress(t *testing.T) {
	s := newTestStore(t)

	s.UpdateQuestProgress("bridge-explorer", "0xaaa", 0.5)
	q, _ := s.Quest("bridge-explorer")
	if q.Progress != 0.6 {
		t.Errorf("expected progress 0.6, got %v", q.Progress)
	}

	s.UpdateQuestProgress("bridge-explorer", "0xaaa", 5)
	q, _ = s.Quest("bridge-explorer")
	if q.Progress != 1.0 {
		t.Errorf("expected progress clamped to 1.0, got %v", q.Progress)
	}
	if q.Status != domain.QuestStatusActive {
		t.Errorf("full progress must not change status, got %q", q.Status)
	}
}

func TestCompleteQuestPaysOutOnce(t *testing.T) {
	s := newTestStore(t)
	addr := "0xeeee222233334444555566667777888899990000"
	initPlayer(t, s, addr)
	s.JoinQuest("staking-sentinel", addr)

	s.CompleteQuest("staking-sentinel", addr)

	player, _ := s.Player(addr)
	if player.XP != 600 {
		t.Errorf("expected 600 XP from quest reward, got %d", player.XP)
	}
	if player.Stats.QuestsCompleted != 1 {
		t.Errorf("expected 1 quest completed, got %d", player.Stats.QuestsCompleted)
	}

	q, _ := s.Quest("staking-sentinel")
	if !q.IsCompletedBy(addr) {
		t.Error("expected completion to be recorded")
	}
	if q.Status != domain.QuestStatusCompleted {
		t.Errorf("sole participant finished, expected completed, got %q", q.Status)
	}

	eventsAfter := len(s.Events())
	messagesAfter := len(s.Messages())

	// Completing again must change nothing: no XP, no counter, no logs
	s.CompleteQuest("staking-sentinel", addr)

	player, _ = s.Player(addr)
	if player.XP != 600 {
		t.Errorf("expected XP unchanged at 600 after repeat completion, got %d", player.XP)
	}
	if player.Stats.QuestsCompleted != 1 {
		t.Errorf("expected counter unchanged, got %d", player.Stats.QuestsCompleted)
	}
	if got := len(s.Events()); got != eventsAfter {
		t.Errorf("expected no new events, got %d", got-eventsAfter)
	}
	if got := len(s.Messages()); got != messagesAfter {
		t.Errorf("expected no new messages, got %d", got-messagesAfter)
	}
}

func TestCompleteQuestGroupFlipsWhenAllFinish(t *testing.T) {
	s := newTestStore(t)
	a := "0x1111222233334444555566667777888899990001"
	b := "0x1111222233334444555566667777888899990002"
	s.JoinQuest("bridge-explorer", a)
	s.JoinQuest("bridge-explorer", b)

	s.CompleteQuest("bridge-explorer", a)
	q, _ := s.Quest("bridge-explorer")
	if q.Status != domain.QuestStatusActive {
		t.Errorf("expected quest still active with one finisher, got %q", q.Status)
	}

	s.CompleteQuest("bridge-explorer", b)
	q, _ = s.Quest("bridge-explorer")
	if q.Status != domain.QuestStatusCompleted {
		t.Errorf("expected quest completed after all finishers, got %q", q.Status)
	}
}

func TestUnlockAchievementIdempotent(t *testing.T) {
	s := newTestStore(t)
	addr := "0xffff222233334444555566667777888899990000"
	s.InitializePlayer(addr)

	s.UnlockAchievement("first-swap", addr)

	player, _ := s.Player(addr)
	if !player.HasAchievement("first-swap") {
		t.Fatal("expected achievement to be unlocked")
	}
	if player.XP != 100 {
		t.Errorf("expected 100 XP from achievement, got %d", player.XP)
	}
	if player.Stats.NFTsEarned != 1 {
		t.Errorf("expected 1 NFT earned, got %d", player.Stats.NFTsEarned)
	}

	eventsAfter := len(s.Events())
	s.UnlockAchievement("first-swap", addr)

	player, _ = s.Player(addr)
	if player.XP != 100 {
		t.Errorf("expected XP unchanged after repeat unlock, got %d", player.XP)
	}
	if len(player.Achievements) != 1 {
		t.Errorf("expected 1 achievement, got %d", len(player.Achievements))
	}
	if got := len(s.Events()); got != eventsAfter {
		t.Error("expected no new events for repeat unlock")
	}
}

func TestUnlockAchievementUnknownIDNoOp(t *testing.T) {
	s := newTestStore(t)
	addr := "0x9999222233334444555566667777888899990000"
	s.InitializePlayer(addr)

	s.UnlockAchievement("no-such-achievement", addr)

	player, _ := s.Player(addr)
	if len(player.Achievements) != 0 {
		t.Error("expected no achievements for unknown id")
	}
}

func TestRecordActivity(t *testing.T) {
	s := newTestStore(t)
	addr := "0x8888222233334444555566667777888899990000"
	s.InitializePlayer(addr)

	swapBefore, _ := s.Quest("weekly-swap-challenge")
	s.RecordActivity(addr, domain.ActivitySwap, 3)

	player, _ := s.Player(addr)
	if player.Stats.TotalSwaps != 3 {
		t.Errorf("expected 3 total swaps, got %d", player.Stats.TotalSwaps)
	}
	if player.XP < 50 || player.XP > 149 {
		t.Errorf("expected XP within configured swap range [50, 149], got %d", player.XP)
	}

	events := s.Events()
	if len(events) == 0 {
		t.Fatal("expected an xp_gained event")
	}
	evt := events[0]
	if evt.Type != domain.EventXPGained {
		t.Errorf("expected xp_gained event, got %q", evt.Type)
	}
	if evt.Data["action"] != "swap" {
		t.Errorf("expected action swap in event data, got %v", evt.Data["action"])
	}

	// Active quests requiring swaps step forward by the configured delta
	swapAfter, _ := s.Quest("weekly-swap-challenge")
	want := swapBefore.Progress + 0.2
	if diff := swapAfter.Progress - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected swap quest progress %v, got %v", want, swapAfter.Progress)
	}

	// Quests with unrelated requirements are untouched
	stake, _ := s.Quest("staking-sentinel")
	if stake.Progress != 0.8 {
		t.Errorf("expected stake quest progress unchanged at 0.8, got %v", stake.Progress)
	}
}

func TestRecordActivityUnknownPlayerNoOp(t *testing.T) {
	s := newTestStore(t)
	s.RecordActivity("0xnobody", domain.ActivitySwap, 1)
	if len(s.Events()) != 0 {
		t.Error("expected no events for unknown player")
	}
}

func TestSendChatRelayFailureKeepsLocalMessage(t *testing.T) {
	transport := &failingTransport{}
	s := newTestStore(t, WithTransport(transport, "chat-topic"))

	s.SendChat(context.Background(), "0xaaa", "gm everyone")

	messages := s.Messages()
	last := messages[len(messages)-1]
	if last.Content != "gm everyone" {
		t.Errorf("expected local message kept, got %q", last.Content)
	}
	if last.Type != domain.MessageTypeUser {
		t.Errorf("expected user message, got %q", last.Type)
	}
	if last.Sender != "0xaaa" {
		t.Errorf("expected sender 0xaaa, got %q", last.Sender)
	}
	if transport.calls != 1 {
		t.Errorf("expected one relay attempt, got %d", transport.calls)
	}
}

func TestSendChatEmptyContentNoOp(t *testing.T) {
	transport := &failingTransport{}
	s := newTestStore(t, WithTransport(transport, "chat-topic"))

	s.SendChat(context.Background(), "0xaaa", "")
	if len(s.Messages()) != 2 {
		t.Error("expected empty content to be ignored")
	}
	if transport.calls != 0 {
		t.Error("expected no relay attempt for empty content")
	}
}

func TestSubscribeReceivesCommittedSnapshot(t *testing.T) {
	s := newTestStore(t)
	snapshots, cancel := s.Subscribe()
	defer cancel()

	addr := "0x7777222233334444555566667777888899990000"
	s.InitializePlayer(addr)

	select {
	case snap := <-snapshots:
		if len(snap.Players) != 1 {
			t.Errorf("expected 1 player in snapshot, got %d", len(snap.Players))
		}
		if snap.CurrentPlayer == nil || snap.CurrentPlayer.Address != addr {
			t.Error("expected current player in snapshot")
		}
		if len(snap.Leaderboard) != 1 {
			t.Errorf("expected 1 leaderboard entry, got %d", len(snap.Leaderboard))
		}
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot after commit")
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	s := newTestStore(t)
	snapshots, cancel := s.Subscribe()
	cancel()

	if _, ok := <-snapshots; ok {
		t.Error("expected channel closed after cancel")
	}
}

func TestLeaderboardTracksXP(t *testing.T) {
	s := newTestStore(t)
	a := "0x1111222233334444555566667777888899990011"
	b := "0x1111222233334444555566667777888899990022"
	s.InitializePlayer(a)
	s.InitializePlayer(b)

	s.AwardXP(b, 2000)

	entries := s.Leaderboard()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Player.Address != b {
		t.Errorf("expected %s on top, got %s", b, entries[0].Player.Address)
	}
	if entries[0].Score != 2000 {
		t.Errorf("expected score 2000, got %d", entries[0].Score)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Errorf("expected dense ranks 1 and 2, got %d and %d", entries[0].Rank, entries[1].Rank)
	}
}

func TestQuestDeadlineReadAsExpired(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }
	s := New(testConfig(), testLogger(), WithClock(clock), WithRand(rand.New(rand.NewSource(1))))

	q, _ := s.Quest("weekly-swap-challenge")
	if q.Status != domain.QuestStatusActive {
		t.Fatalf("expected active quest, got %q", q.Status)
	}

	// Jump past the 7-day deadline; stored status is untouched but
	// reads report expired
	current = current.Add(8 * 24 * time.Hour)
	q, _ = s.Quest("weekly-swap-challenge")
	if q.Status != domain.QuestStatusExpired {
		t.Errorf("expected expired quest past deadline, got %q", q.Status)
	}
}

func TestSeededStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Game.QuestJoinDelay = time.Millisecond
	s := New(&cfg.Game, testLogger(), WithRand(rand.New(rand.NewSource(1))))

	players := s.Players()
	if len(players) != 3 {
		t.Fatalf("expected 3 seed players, got %d", len(players))
	}

	entries := s.Leaderboard()
	if entries[0].Player.Username != "DeFiMage" {
		t.Errorf("expected DeFiMage on top with 6200 XP, got %s", entries[0].Player.Username)
	}

	q, _ := s.Quest("weekly-swap-challenge")
	if len(q.Participants) != 3 {
		t.Errorf("expected 3 seeded participants, got %d", len(q.Participants))
	}
}

func TestFromContextPanicsWithoutStore(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic when reading store from a bare context")
		}
	}()
	FromContext(context.Background())
}

func TestFromContextRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := NewContext(context.Background(), s)
	if FromContext(ctx) != s {
		t.Error("expected the same store back from the context")
	}
}
