// Package mirror publishes the committed leaderboard to a Redis sorted
// set so external readers (ops dashboards, other services) can rank
// players without touching the in-process store. The mirror is
// best-effort and never authoritative.
package mirror

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/defi-rpg/engine/internal/config"
	"github.com/defi-rpg/engine/internal/domain"
)

// Mirror pushes leaderboard standings into Redis
type Mirror struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// New creates a Redis-backed leaderboard mirror
func New(cfg *config.RedisConfig, logger *slog.Logger) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Mirror{
		client: client,
		key:    cfg.MirrorKey,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (m *Mirror) Close() error {
	return m.client.Close()
}

// usernameKey returns the Redis key for a player's cached display name
func (m *Mirror) usernameKey(address string) string {
	return fmt.Sprintf("player:%s:info", address)
}

// Publish replaces the mirrored standings with the given entries using
// a single pipeline.
func (m *Mirror) Publish(ctx context.Context, entries []domain.LeaderboardEntry) error {
	pipe := m.client.Pipeline()
	pipe.Del(ctx, m.key)
	for _, entry := range entries {
		pipe.ZAdd(ctx, m.key, redis.Z{
			Score:  float64(entry.Score),
			Member: entry.Player.Address,
		})
		pipe.HSet(ctx, m.usernameKey(entry.Player.Address),
			"username", entry.Player.Username,
			"level", entry.Player.Level,
		)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing leaderboard: %w", err)
	}
	return nil
}

// Top returns the top N mirrored players (descending by XP).
func (m *Mirror) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	results, err := m.client.ZRevRangeWithScores(ctx, m.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, len(results))
	for i, result := range results {
		entries[i] = domain.LeaderboardEntry{
			Rank:   i + 1,
			Player: domain.Player{Address: result.Member.(string)},
			Score:  int(result.Score),
		}
	}
	return entries, nil
}

// Count returns the number of mirrored players.
func (m *Mirror) Count(ctx context.Context) (int64, error) {
	count, err := m.client.ZCard(ctx, m.key).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}
