// Package archive persists the append-only domain event and chat logs
// to PostgreSQL. The archive sits behind the store's commit boundary as
// a best-effort observer: the in-memory core never depends on it.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/defi-rpg/engine/internal/config"
	"github.com/defi-rpg/engine/internal/domain"
)

// Repository provides PostgreSQL-based archival of game logs
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS game_events (
			id VARCHAR(64) PRIMARY KEY,
			event_type VARCHAR(32) NOT NULL,
			player VARCHAR(64) NOT NULL,
			data JSONB,
			occurred_at TIMESTAMP NOT NULL,
			archived_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id VARCHAR(64) PRIMARY KEY,
			sender VARCHAR(64) NOT NULL,
			content TEXT NOT NULL,
			message_type VARCHAR(16) NOT NULL,
			metadata JSONB,
			sent_at TIMESTAMP NOT NULL,
			archived_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_events_player ON game_events(player, occurred_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_sender ON chat_messages(sender, sent_at DESC)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// ArchiveEvents stores a batch of domain events. Events already
// archived are skipped, so re-archiving a log prefix is safe.
func (r *Repository) ArchiveEvents(ctx context.Context, events []domain.GameEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, event := range events {
		data, err := json.Marshal(event.Data)
		if err != nil {
			return fmt.Errorf("marshaling event data: %w", err)
		}
		batch.Queue(
			`INSERT INTO game_events (id, event_type, player, data, occurred_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO NOTHING`,
			event.ID, string(event.Type), event.Player, data, event.Timestamp,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("archiving events: %w", err)
		}
	}
	return nil
}

// ArchiveMessages stores a batch of chat messages, skipping duplicates.
func (r *Repository) ArchiveMessages(ctx context.Context, messages []domain.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, message := range messages {
		var metadata []byte
		if message.Metadata != nil {
			var err error
			metadata, err = json.Marshal(message.Metadata)
			if err != nil {
				return fmt.Errorf("marshaling message metadata: %w", err)
			}
		}
		batch.Queue(
			`INSERT INTO chat_messages (id, sender, content, message_type, metadata, sent_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO NOTHING`,
			message.ID, message.Sender, message.Content, string(message.Type), metadata, message.Timestamp,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range messages {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("archiving messages: %w", err)
		}
	}
	return nil
}

// EventCount returns the number of archived domain events.
func (r *Repository) EventCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return count, nil
}

// RecentEvents returns the most recently archived events for a player.
func (r *Repository) RecentEvents(ctx context.Context, player string, limit int) ([]domain.GameEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_type, player, data, occurred_at
		 FROM game_events
		 WHERE player = $1
		 ORDER BY occurred_at DESC
		 LIMIT $2`,
		player, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []domain.GameEvent
	for rows.Next() {
		var event domain.GameEvent
		var eventType string
		var data []byte
		if err := rows.Scan(&event.ID, &eventType, &event.Player, &data, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		event.Type = domain.EventType(eventType)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &event.Data); err != nil {
				return nil, fmt.Errorf("unmarshaling event data: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
