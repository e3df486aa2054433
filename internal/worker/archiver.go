package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/defi-rpg/engine/internal/archive"
	"github.com/defi-rpg/engine/internal/config"
	"github.com/defi-rpg/engine/internal/store"
)

// Archiver periodically drains the store's append-only logs into the
// PostgreSQL archive. Both logs are append-only and the archive skips
// duplicate ids, so the worker only tracks how far it has drained.
type Archiver struct {
	store   *store.Store
	archive *archive.Repository
	config  *config.ArchiveConfig
	logger  *slog.Logger

	eventsDone   int
	messagesDone int

	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewArchiver creates a new archive worker
func NewArchiver(s *store.Store, repo *archive.Repository, cfg *config.ArchiveConfig, logger *slog.Logger) *Archiver {
	return &Archiver{
		store:   s,
		archive: repo,
		config:  cfg,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins the background archive process
func (w *Archiver) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("archive worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background archive process
func (w *Archiver) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("archive worker stopped")
	return nil
}

// IsRunning returns whether the worker is currently running
func (w *Archiver) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// run is the main worker loop
func (w *Archiver) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			// Final drain before shutdown
			w.RunOnce(context.Background())
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce archives everything appended since the previous cycle.
func (w *Archiver) RunOnce(ctx context.Context) {
	startTime := time.Now()

	events := w.store.Events()
	archivedEvents := 0
	for w.eventsDone < len(events) {
		end := w.eventsDone + w.config.BatchSize
		if end > len(events) {
			end = len(events)
		}
		if err := w.archive.ArchiveEvents(ctx, events[w.eventsDone:end]); err != nil {
			w.logger.Warn("failed to archive events", "error", err)
			break
		}
		archivedEvents += end - w.eventsDone
		w.eventsDone = end
	}

	messages := w.store.Messages()
	archivedMessages := 0
	for w.messagesDone < len(messages) {
		end := w.messagesDone + w.config.BatchSize
		if end > len(messages) {
			end = len(messages)
		}
		if err := w.archive.ArchiveMessages(ctx, messages[w.messagesDone:end]); err != nil {
			w.logger.Warn("failed to archive messages", "error", err)
			break
		}
		archivedMessages += end - w.messagesDone
		w.messagesDone = end
	}

	if archivedEvents > 0 || archivedMessages > 0 {
		w.logger.Debug("archive cycle completed",
			"duration", time.Since(startTime),
			"events", archivedEvents,
			"messages", archivedMessages,
		)
	}
}
