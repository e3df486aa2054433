package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/defi-rpg/engine/internal/archive"
	"github.com/defi-rpg/engine/internal/config"
	"github.com/defi-rpg/engine/internal/handler"
	"github.com/defi-rpg/engine/internal/kafka"
	"github.com/defi-rpg/engine/internal/mirror"
	"github.com/defi-rpg/engine/internal/store"
	"github.com/defi-rpg/engine/internal/transport"
	"github.com/defi-rpg/engine/internal/websocket"
	"github.com/defi-rpg/engine/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the outbound chat relay
	var chatRelay transport.Transport = transport.Nop{}
	var kafkaRelay *transport.Kafka
	if cfg.Kafka.Enabled {
		kafkaRelay, err = transport.NewKafka(&cfg.Kafka, logger)
		if err != nil {
			logger.Warn("failed to create chat relay, continuing in local mode", "error", err)
		} else {
			chatRelay = kafkaRelay
			defer kafkaRelay.Close()
		}
	}

	// Initialize the game store
	gameStore := store.New(&cfg.Game, logger,
		store.WithTransport(chatRelay, cfg.Kafka.ChatTopic),
	)
	logger.Info("game store initialized",
		"players", len(gameStore.Players()),
		"quests", len(gameStore.Quests()),
	)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	// Initialize Redis leaderboard mirror
	var lbMirror *mirror.Mirror
	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
		lbMirror, err = mirror.New(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("failed to connect to Redis, continuing without mirror", "error", err)
		} else {
			defer lbMirror.Close()
			logger.Info("connected to Redis")
		}
	}

	// Fan committed snapshots out to WebSocket clients and the mirror
	snapshots, cancelSub := gameStore.Subscribe()
	defer cancelSub()
	go func() {
		for snap := range snapshots {
			wsHub.BroadcastSnapshot(snap)
			if lbMirror != nil {
				if err := lbMirror.Publish(ctx, snap.Leaderboard); err != nil {
					logger.Warn("failed to publish leaderboard mirror", "error", err)
				}
			}
		}
	}()

	// Seed the mirror with the initial standings
	if lbMirror != nil {
		if err := lbMirror.Publish(ctx, gameStore.Leaderboard()); err != nil {
			logger.Warn("failed to seed leaderboard mirror", "error", err)
		}
	}

	// Initialize PostgreSQL event archive
	var archiveWorker *worker.Archiver
	if cfg.Postgres.Enabled {
		logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		archiveRepo, err := archive.NewRepository(&cfg.Postgres, logger)
		if err != nil {
			logger.Warn("failed to connect to PostgreSQL, continuing without archive", "error", err)
		} else {
			defer archiveRepo.Close()
			logger.Info("connected to PostgreSQL")

			if err := archiveRepo.RunMigrations(ctx); err != nil {
				logger.Error("failed to run migrations", "error", err)
				os.Exit(1)
			}

			archiveWorker = worker.NewArchiver(gameStore, archiveRepo, &cfg.Archive, logger)
			if err := archiveWorker.Start(ctx); err != nil {
				logger.Error("failed to start archive worker", "error", err)
				os.Exit(1)
			}
		}
	}

	// Initialize Kafka consumer for DeFi activity ingestion
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.ActivityTopic,
		)
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, gameStore, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else {
			if err := kafkaConsumer.Start(); err != nil {
				logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
				kafkaConsumer = nil
			} else {
				logger.Info("Kafka consumer started successfully")
			}
		}
	}

	// Initialize HTTP handler with WebSocket hub
	httpHandler := handler.NewHandler(gameStore, wsHub, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		logger.Info("WebSocket endpoint available at /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop WebSocket hub
	wsHub.Stop()

	// Stop Kafka consumer
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	// Stop archive worker (drains remaining log entries)
	if archiveWorker != nil {
		if err := archiveWorker.Stop(); err != nil {
			logger.Error("failed to stop archive worker", "error", err)
		}
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
