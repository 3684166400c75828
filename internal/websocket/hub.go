package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypePing        MessageType = "ping"
	MessageTypePong        MessageType = "pong"
	MessageTypeError       MessageType = "error"

	EventVoicemailCreated  MessageType = "voicemail_created"
	EventVoicemailReturned MessageType = "voicemail_returned"
	EventVoicemailDeleted  MessageType = "voicemail_deleted"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type        MessageType `json:"type"`
	AccountID   string      `json:"account_id,omitempty"`
	VoicemailID string      `json:"voicemail_id,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Hub tracks connected clients per account and fans out voicemail events
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Account subscriptions: accountID -> set of clients
	subscriptions map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan *Client
	unsubscribe chan *Client

	// Broadcast to account subscribers
	broadcast chan *broadcastMessage

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	logger *slog.Logger
}

type broadcastMessage struct {
	accountID string
	message   []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan *Client),
		unsubscribe:   make(chan *Client),
		broadcast:     make(chan *broadcastMessage, 256),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Run processes hub requests until ctx is cancelled.
// On shutdown every client send channel is closed and later
// Register, Unregister, Subscribe and Unsubscribe calls return immediately.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.subscriptions = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.addSubscriber(client)
			h.mu.Unlock()
			h.debug("client registered", client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.removeSubscriber(client)
			}
			h.mu.Unlock()
			h.debug("client unregistered", client)

		case client := <-h.subscribe:
			h.mu.Lock()
			if h.clients[client] {
				h.addSubscriber(client)
			}
			h.mu.Unlock()
			h.debug("client subscribed", client)

		case client := <-h.unsubscribe:
			h.mu.Lock()
			h.removeSubscriber(client)
			h.mu.Unlock()
			h.debug("client unsubscribed", client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.subscriptions[msg.accountID] {
				select {
				case client.send <- msg.message:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// addSubscriber must be called with mu held
func (h *Hub) addSubscriber(client *Client) {
	if h.subscriptions[client.accountID] == nil {
		h.subscriptions[client.accountID] = make(map[*Client]bool)
	}
	h.subscriptions[client.accountID][client] = true
}

// removeSubscriber must be called with mu held
func (h *Hub) removeSubscriber(client *Client) {
	subscribers, ok := h.subscriptions[client.accountID]
	if !ok {
		return
	}
	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.subscriptions, client.accountID)
	}
}

func (h *Hub) debug(msg string, client *Client) {
	if h.logger != nil {
		h.logger.Debug(msg, slog.String("account", shortID(client.accountID)))
	}
}

// Register adds a client to the hub and subscribes it to its account.
// After shutdown the client's send channel is closed instead, so its
// WritePump ends the connection.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe resumes delivery of the client's account events
func (h *Hub) Subscribe(client *Client) {
	select {
	case h.subscribe <- client:
	case <-h.done:
	}
}

// Unsubscribe pauses delivery of the client's account events
func (h *Hub) Unsubscribe(client *Client) {
	select {
	case h.unsubscribe <- client:
	case <-h.done:
	}
}

// SubscriberCount returns how many clients receive events for accountID
func (h *Hub) SubscriberCount(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[accountID])
}

// BroadcastVoicemailEvent tells an account's clients that its voicemail list changed
func (h *Hub) BroadcastVoicemailEvent(accountID string, event MessageType, voicemailID string) {
	msg := WSMessage{
		Type:        event,
		AccountID:   accountID,
		VoicemailID: voicemailID,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{accountID: accountID, message: data}:
	default:
		if h.logger != nil {
			h.logger.Warn("websocket broadcast queue full, dropping event", slog.String("event", string(event)))
		}
	}
}

// shortID keeps log lines from carrying full account identifiers
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
