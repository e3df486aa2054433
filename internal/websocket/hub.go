package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/defi-rpg/engine/internal/store"
)

// Message types
const (
	MessageTypeLeaderboardUpdate = "leaderboard_update"
	MessageTypePlayersUpdate     = "players_update"
	MessageTypeQuestsUpdate      = "quests_update"
	MessageTypeChatUpdate        = "chat_update"
	MessageTypeEventsUpdate      = "events_update"
	MessageTypeSubscribe         = "subscribe"
	MessageTypeUnsubscribe       = "unsubscribe"
	MessageTypePing              = "ping"
	MessageTypePong              = "pong"
	MessageTypeError             = "error"
)

// Channel names clients can subscribe to
const (
	ChannelLeaderboard = "leaderboard"
	ChannelPlayers     = "players"
	ChannelQuests      = "quests"
	ChannelChat        = "chat"
	ChannelEvents      = "events"
)

// Message represents a WebSocket message
type Message struct {
	Type      string    `json:"type"`
	Channel   string    `json:"channel,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub maintains the set of active clients and pushes committed game
// state out to them, one channel per state slice.
type Hub struct {
	// Registered clients by channel
	clients map[string]map[*Client]bool

	// All connected clients
	allClients map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	broadcast   chan *Message
	subscribe   chan *subscriptionRequest
	unsubscribe chan *subscriptionRequest

	mu sync.RWMutex

	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

type subscriptionRequest struct {
	client  *Client
	channel string
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		allClients:  make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Message, 256),
		subscribe:   make(chan *subscriptionRequest, 64),
		unsubscribe: make(chan *subscriptionRequest, 64),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")
	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("WebSocket hub stopping")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.allClients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.allClients[client]; ok {
				delete(h.allClients, client)
				for channel, clients := range h.clients {
					if _, ok := clients[client]; ok {
						delete(clients, client)
						if len(clients) == 0 {
							delete(h.clients, channel)
						}
					}
				}
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "client_id", client.id)

		case req := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.clients[req.channel]; !ok {
				h.clients[req.channel] = make(map[*Client]bool)
			}
			h.clients[req.channel][req.client] = true
			h.mu.Unlock()
			h.logger.Debug("client subscribed", "client_id", req.client.id, "channel", req.channel)

		case req := <-h.unsubscribe:
			h.mu.Lock()
			if clients, ok := h.clients[req.channel]; ok {
				delete(clients, req.client)
				if len(clients) == 0 {
					delete(h.clients, req.channel)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("client unsubscribed", "client_id", req.client.id, "channel", req.channel)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Stop stops the hub
func (h *Hub) Stop() {
	h.cancel()
}

// broadcastMessage sends a message to clients subscribed to its channel,
// or to everyone when the message has no channel.
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", "error", err)
		return
	}

	if message.Channel != "" {
		if clients, ok := h.clients[message.Channel]; ok {
			for client := range clients {
				select {
				case client.send <- data:
				default:
					h.logger.Warn("client buffer full, skipping", "client_id", client.id)
				}
			}
		}
	} else {
		for client := range h.allClients {
			select {
			case client.send <- data:
			default:
				h.logger.Warn("client buffer full, skipping", "client_id", client.id)
			}
		}
	}
}

// BroadcastSnapshot fans a committed snapshot out as one message per
// state channel. Snapshots arrive post-commit only, so clients never
// observe a partial transition.
func (h *Hub) BroadcastSnapshot(snap store.Snapshot) {
	now := time.Now()
	messages := []*Message{
		{Type: MessageTypeLeaderboardUpdate, Channel: ChannelLeaderboard, Data: snap.Leaderboard, Timestamp: now},
		{Type: MessageTypePlayersUpdate, Channel: ChannelPlayers, Data: snap.Players, Timestamp: now},
		{Type: MessageTypeQuestsUpdate, Channel: ChannelQuests, Data: snap.Quests, Timestamp: now},
		{Type: MessageTypeChatUpdate, Channel: ChannelChat, Data: snap.Messages, Timestamp: now},
		{Type: MessageTypeEventsUpdate, Channel: ChannelEvents, Data: snap.Events, Timestamp: now},
	}
	for _, msg := range messages {
		select {
		case h.broadcast <- msg:
		default:
			h.logger.Warn("broadcast channel full, dropping message", "type", msg.Type)
		}
	}
}

// GetSubscriberCount returns the number of subscribers for a channel
func (h *Hub) GetSubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.clients[channel]; ok {
		return len(clients)
	}
	return 0
}

// GetTotalConnections returns the total number of connected clients
func (h *Hub) GetTotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.allClients)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe adds a client to a channel subscription
func (h *Hub) Subscribe(client *Client, channel string) {
	h.subscribe <- &subscriptionRequest{client: client, channel: channel}
}

// Unsubscribe removes a client from a channel subscription
func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.unsubscribe <- &subscriptionRequest{client: client, channel: channel}
}
