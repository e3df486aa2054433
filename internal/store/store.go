// Package store owns all mutable game state. Every mutation funnels
// through one mutex so at most one operation is in flight at a time;
// observers only ever see fully committed snapshots.
package store

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/defi-rpg/engine/internal/catalog"
	"github.com/defi-rpg/engine/internal/config"
	"github.com/defi-rpg/engine/internal/domain"
	"github.com/defi-rpg/engine/internal/engine"
	"github.com/defi-rpg/engine/internal/transport"
)

// Snapshot is an immutable view of committed game state delivered to
// subscribers after every commit. Slices are owned by the snapshot and
// must not be mutated by receivers.
type Snapshot struct {
	CurrentPlayer *domain.Player
	Players       []domain.Player
	Quests        []domain.Quest
	Leaderboard   []domain.LeaderboardEntry
	Messages      []domain.ChatMessage
	Events        []domain.GameEvent
}

// Store is the single owner of players, quests, logs and the derived
// leaderboard. All other components hold read-only views or mutate
// through its operations.
type Store struct {
	mu sync.Mutex

	players     []domain.Player
	currentAddr string
	quests      []domain.Quest
	leaderboard []domain.LeaderboardEntry
	messages    []domain.ChatMessage
	events      []domain.GameEvent

	// read-only catalogs, shared without locking
	classes      []domain.RPGClass
	achievements []domain.Achievement

	rules     map[domain.ActivityType]config.ActivityRule
	joinDelay time.Duration

	rng       *rand.Rand
	now       func() time.Time
	transport transport.Transport
	chatTopic string
	logger    *slog.Logger

	subMu   sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithTransport sets the outbound chat relay and its topic.
func WithTransport(t transport.Transport, topic string) Option {
	return func(s *Store) {
		s.transport = t
		s.chatTopic = topic
	}
}

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRand overrides the random source used for activity XP rolls and
// the leaderboard change annotation.
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) { s.rng = rng }
}

// New creates a Store populated with the static catalogs and, when
// cfg.SeedPlayers is set, the demo roster.
func New(cfg *config.GameConfig, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		classes:      catalog.Classes(),
		achievements: catalog.Achievements(),
		rules:        make(map[domain.ActivityType]config.ActivityRule, len(cfg.Activities)),
		joinDelay:    cfg.QuestJoinDelay,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
		transport:    transport.Nop{},
		logger:       logger,
		subs:         make(map[int]chan Snapshot),
	}
	for action, rule := range cfg.Activities {
		s.rules[domain.ActivityType(action)] = rule
	}
	for _, opt := range opts {
		opt(s)
	}

	now := s.now()
	s.quests = catalog.Quests(now)
	s.messages = []domain.ChatMessage{
		{
			ID:        "welcome-1",
			Sender:    "system",
			Content:   "🎮 Welcome to DeFi RPG Agent! Connect your wallet to start your adventure.",
			Timestamp: now.Add(-60 * time.Second),
			Type:      domain.MessageTypeSystem,
		},
		{
			ID:        "welcome-2",
			Sender:    "bot",
			Content:   "🚀 Try typing \"swap\", \"liquidity\", \"stake\", or \"quest\" to see the game mechanics in action!",
			Timestamp: now.Add(-30 * time.Second),
			Type:      domain.MessageTypeBot,
		},
	}

	if cfg.SeedPlayers {
		s.players = catalog.SeedPlayers(now)
		joined := catalog.SeedQuestParticipants()
		for i, q := range s.quests {
			if participants, ok := joined[q.ID]; ok {
				s.quests[i].Participants = append([]string(nil), participants...)
			}
		}
	}

	s.leaderboard = engine.DeriveLeaderboard(s.players, s.rng)
	return s
}

// Subscribe registers an observer. The returned channel receives a
// Snapshot after every commit; slow receivers miss snapshots rather
// than blocking commits. The cancel func unregisters the observer and
// closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 16)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// commitLocked finalizes a mutation: the leaderboard is re-derived when
// the player set changed, then the new snapshot is fanned out. Must be
// called with s.mu held.
func (s *Store) commitLocked(playersChanged bool) {
	if playersChanged {
		s.leaderboard = engine.DeriveLeaderboard(s.players, s.rng)
	}
	snap := s.snapshotLocked()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			s.logger.Warn("subscriber lagging, snapshot dropped", "subscriber", id)
		}
	}
}

func (s *Store) snapshotLocked() Snapshot {
	now := s.now()
	quests := make([]domain.Quest, len(s.quests))
	for i, q := range s.quests {
		q.Status = engine.EffectiveStatus(q, now)
		quests[i] = q
	}

	snap := Snapshot{
		Players:     append([]domain.Player(nil), s.players...),
		Quests:      quests,
		Leaderboard: append([]domain.LeaderboardEntry(nil), s.leaderboard...),
		Messages:    append([]domain.ChatMessage(nil), s.messages...),
		Events:      append([]domain.GameEvent(nil), s.events...),
	}
	if i := s.playerIndexLocked(s.currentAddr); i >= 0 {
		p := s.players[i]
		snap.CurrentPlayer = &p
	}
	return snap
}

func (s *Store) playerIndexLocked(address string) int {
	if address == "" {
		return -1
	}
	for i := range s.players {
		if s.players[i].Address == address {
			return i
		}
	}
	return -1
}

func (s *Store) questIndexLocked(questID string) int {
	for i := range s.quests {
		if s.quests[i].ID == questID {
			return i
		}
	}
	return -1
}

// displayNameLocked returns the best-effort display name for an address.
func (s *Store) displayNameLocked(address string) string {
	if i := s.playerIndexLocked(address); i >= 0 {
		return s.players[i].Username
	}
	return "Player"
}

func (s *Store) appendEventLocked(kind domain.EventType, player string, data map[string]any) {
	s.events = append(s.events, domain.GameEvent{
		ID:        uuid.New().String(),
		Type:      kind,
		Player:    player,
		Data:      data,
		Timestamp: s.now(),
	})
}

func (s *Store) appendSystemMessageLocked(content string, meta *domain.MessageMetadata) {
	s.messages = append(s.messages, domain.ChatMessage{
		ID:        uuid.New().String(),
		Sender:    "system",
		Content:   content,
		Timestamp: s.now(),
		Type:      domain.MessageTypeSystem,
		Metadata:  meta,
	})
}

// CurrentPlayer returns the selected player, or false when none is set.
func (s *Store) CurrentPlayer() (domain.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.playerIndexLocked(s.currentAddr); i >= 0 {
		return s.players[i], true
	}
	return domain.Player{}, false
}

// Player returns the player at an address.
func (s *Store) Player(address string) (domain.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.playerIndexLocked(address); i >= 0 {
		return s.players[i], true
	}
	return domain.Player{}, false
}

// Players returns all players in insertion order.
func (s *Store) Players() []domain.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Player(nil), s.players...)
}

// Quests returns the quest board with deadline-expired quests reported
// as expired.
func (s *Store) Quests() []domain.Quest {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	quests := make([]domain.Quest, len(s.quests))
	for i, q := range s.quests {
		q.Status = engine.EffectiveStatus(q, now)
		quests[i] = q
	}
	return quests
}

// Quest returns a single quest by id.
func (s *Store) Quest(questID string) (domain.Quest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.questIndexLocked(questID); i >= 0 {
		q := s.quests[i]
		q.Status = engine.EffectiveStatus(q, s.now())
		return q, true
	}
	return domain.Quest{}, false
}

// Achievements returns the achievement catalog.
func (s *Store) Achievements() []domain.Achievement {
	return s.achievements
}

// Classes returns the RPG class catalog.
func (s *Store) Classes() []domain.RPGClass {
	return s.classes
}

// Leaderboard returns the current standings.
func (s *Store) Leaderboard() []domain.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.LeaderboardEntry(nil), s.leaderboard...)
}

// Messages returns the chat log in append order.
func (s *Store) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatMessage(nil), s.messages...)
}

// Events returns the domain event log in append order.
func (s *Store) Events() []domain.GameEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.GameEvent(nil), s.events...)
}

type ctxKey struct{}

// NewContext attaches a Store to a context.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the Store attached to the context. Reading game
// state without an attached store is a programming error, not a runtime
// condition, so it panics rather than returning stale defaults.
func FromContext(ctx context.Context) *Store {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	if !ok {
		panic("store: FromContext called outside an initialized store context")
	}
	return s
}
