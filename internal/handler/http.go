package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/defi-rpg/engine/internal/domain"
	"github.com/defi-rpg/engine/internal/store"
	"github.com/defi-rpg/engine/internal/websocket"
)

// Handler provides HTTP handlers for the game API
type Handler struct {
	store  *store.Store
	hub    *websocket.Hub
	logger *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(s *store.Store, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		store:  s,
		hub:    hub,
		logger: logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)
	r.Use(h.withStore)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/players", func(r chi.Router) {
			r.Post("/", h.InitializePlayer)
			r.Get("/", h.ListPlayers)
			r.Get("/current", h.GetCurrentPlayer)
			r.Put("/current", h.SetCurrentPlayer)

			r.Route("/{address}", func(r chi.Router) {
				r.Get("/", h.GetPlayer)
				r.Post("/xp", h.AwardXP)
				r.Post("/achievements/{achievementID}", h.UnlockAchievement)
			})
		})

		r.Route("/quests", func(r chi.Router) {
			r.Get("/", h.ListQuests)
			r.Route("/{questID}", func(r chi.Router) {
				r.Get("/", h.GetQuest)
				r.Post("/join", h.JoinQuest)
				r.Post("/progress", h.UpdateQuestProgress)
				r.Post("/complete", h.CompleteQuest)
			})
		})

		r.Get("/achievements", h.ListAchievements)
		r.Get("/classes", h.ListClasses)
		r.Get("/leaderboard", h.GetLeaderboard)
		r.Get("/messages", h.ListMessages)
		r.Get("/events", h.ListEvents)

		r.Post("/activity", h.RecordActivity)
		r.Post("/chat", h.SendChat)

		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// withStore attaches the store to the request context. Handlers read it
// back through store.FromContext, which fails fast when the middleware
// is missing.
func (h *Handler) withStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(store.NewContext(r.Context(), h.store)))
	})
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data any) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]any{
		"total_connections": h.hub.GetTotalConnections(),
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

type initializePlayerRequest struct {
	Address string `json:"address"`
}

// InitializePlayer creates or selects the player for an address
func (h *Handler) InitializePlayer(w http.ResponseWriter, r *http.Request) {
	var req initializePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	s := store.FromContext(r.Context())
	s.InitializePlayer(req.Address)

	player, ok := s.Player(req.Address)
	if !ok {
		h.logger.Error("player missing after initialization", "address", req.Address)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}
	h.writeSuccess(w, player)
}

// ListPlayers returns all players
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, store.FromContext(r.Context()).Players())
}

// GetCurrentPlayer returns the selected player
func (h *Handler) GetCurrentPlayer(w http.ResponseWriter, r *http.Request) {
	player, ok := store.FromContext(r.Context()).CurrentPlayer()
	if !ok {
		h.writeError(w, http.StatusNotFound, domain.ErrPlayerNotFound)
		return
	}
	h.writeSuccess(w, player)
}

// SetCurrentPlayer selects an existing player as current
func (h *Handler) SetCurrentPlayer(w http.ResponseWriter, r *http.Request) {
	var req initializePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	s := store.FromContext(r.Context())
	if _, ok := s.Player(req.Address); !ok {
		h.writeError(w, http.StatusNotFound, domain.ErrPlayerNotFound)
		return
	}
	s.SetCurrentPlayer(req.Address)
	h.writeSuccess(w, map[string]string{"status": "selected"})
}

// GetPlayer returns the player at an address
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	player, ok := store.FromContext(r.Context()).Player(address)
	if !ok {
		h.writeError(w, http.StatusNotFound, domain.ErrPlayerNotFound)
		return
	}
	h.writeSuccess(w, player)
}

type awardXPRequest struct {
	Amount int `json:"amount"`
}

// AwardXP grants XP to a player
func (h *Handler) AwardXP(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	var req awardXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount < 0 {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	store.FromContext(r.Context()).AwardXP(address, req.Amount)
	h.writeSuccess(w, map[string]string{"status": "accepted"})
}

// UnlockAchievement unlocks a catalog achievement for a player
func (h *Handler) UnlockAchievement(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	achievementID := chi.URLParam(r, "achievementID")

	store.FromContext(r.Context()).UnlockAchievement(achievementID, address)
	h.writeSuccess(w, map[string]string{"status": "accepted"})
}

// ListQuests returns the quest board
func (h *Handler) ListQuests(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, store.FromContext(r.Context()).Quests())
}

// GetQuest returns a quest by id
func (h *Handler) GetQuest(w http.ResponseWriter, r *http.Request) {
	questID := chi.URLParam(r, "questID")
	quest, ok := store.FromContext(r.Context()).Quest(questID)
	if !ok {
		h.writeError(w, http.StatusNotFound, domain.ErrQuestNotFound)
		return
	}
	h.writeSuccess(w, quest)
}

type questActionRequest struct {
	Address string  `json:"address"`
	Delta   float64 `json:"delta,omitempty"`
}

// JoinQuest adds a player to a quest
func (h *Handler) JoinQuest(w http.ResponseWriter, r *http.Request) {
	questID := chi.URLParam(r, "questID")

	var req questActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	store.FromContext(r.Context()).JoinQuest(questID, req.Address)
	h.writeSuccess(w, map[string]string{"status": "accepted"})
}

// UpdateQuestProgress advances quest progress
func (h *Handler) UpdateQuestProgress(w http.ResponseWriter, r *http.Request) {
	questID := chi.URLParam(r, "questID")

	var req questActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	store.FromContext(r.Context()).UpdateQuestProgress(questID, req.Address, req.Delta)
	h.writeSuccess(w, map[string]string{"status": "accepted"})
}

// CompleteQuest records a quest completion for a player
func (h *Handler) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	questID := chi.URLParam(r, "questID")

	var req questActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	store.FromContext(r.Context()).CompleteQuest(questID, req.Address)
	h.writeSuccess(w, map[string]string{"status": "accepted"})
}

// ListAchievements returns the achievement catalog
func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, store.FromContext(r.Context()).Achievements())
}

// ListClasses returns the RPG class catalog
func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, store.FromContext(r.Context()).Classes())
}

// GetLeaderboard returns the current standings
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries := store.FromContext(r.Context()).Leaderboard()

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(entries) {
			entries = entries[:limit]
		}
	}
	h.writeSuccess(w, entries)
}

// ListMessages returns the chat log
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, store.FromContext(r.Context()).Messages())
}

// ListEvents returns the domain event log
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, store.FromContext(r.Context()).Events())
}

type activityRequest struct {
	PlayerAddress string `json:"player_address"`
	Action        string `json:"action"`
	Amount        int    `json:"amount"`
}

// RecordActivity converts a DeFi action into progression state
func (h *Handler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerAddress == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}
	action := domain.ActivityType(req.Action)
	if !domain.ValidActivity(action) {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	store.FromContext(r.Context()).RecordActivity(req.PlayerAddress, action, req.Amount)
	h.writeSuccess(w, map[string]string{"status": "accepted"})
}

type chatRequest struct {
	Address string `json:"address"`
	Content string `json:"content"`
}

// SendChat appends a user message and relays it outward best-effort
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" || req.Content == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	store.FromContext(r.Context()).SendChat(r.Context(), req.Address, req.Content)
	h.writeSuccess(w, map[string]string{"status": "sent"})
}
