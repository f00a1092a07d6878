package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/welldanyogia/folio-backend/internal/metrics"
	"github.com/welldanyogia/folio-backend/internal/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeNewMessage  MessageType = "new_message"
	MessageTypeError       MessageType = "error"
)

// TopicInbox carries new-message notifications for the admin inbox
const TopicInbox = "inbox"

// ErrRelayBusy is returned when the broadcast queue is full
var ErrRelayBusy = errors.New("notification relay queue is full")

// ErrRelayStopped is returned once the hub has shut down
var ErrRelayStopped = errors.New("notification relay stopped")

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    MessageType `json:"type"`
	Topic   string      `json:"topic,omitempty"`
	Message interface{} `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewMessagePayload represents the payload for new message notifications.
// The body is left out; admins fetch it through the API.
type NewMessagePayload struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	CreatedAt models.Timestamp `json:"createdAt"`
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Topic subscriptions: topic -> set of clients
	subscriptions map[string]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Subscribe to topic
	subscribe chan *subscriptionRequest

	// Unsubscribe from topic
	unsubscribeTopic chan *subscriptionRequest

	// Broadcast to topic subscribers
	broadcast chan *broadcastMessage

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger
	logger *slog.Logger
}

type subscriptionRequest struct {
	client *Client
	topic  string
}

type broadcastMessage struct {
	topic   string
	message []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:          make(map[*Client]bool),
		subscriptions:    make(map[string]map[*Client]bool),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		subscribe:        make(chan *subscriptionRequest),
		unsubscribeTopic: make(chan *subscriptionRequest),
		broadcast:        make(chan *broadcastMessage, 256),
		done:             make(chan struct{}),
		logger:           logger,
	}
}

// Run starts the hub's main loop. It returns when ctx is cancelled,
// after closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.closeSend()
				delete(h.clients, client)
			}
			h.subscriptions = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(count))
			if h.logger != nil {
				h.logger.Debug("client registered")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				// Remove from all subscriptions
				for topic, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, topic)
					}
				}
			}
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(count))
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case req := <-h.subscribe:
			h.mu.Lock()
			if _, registered := h.clients[req.client]; registered {
				if h.subscriptions[req.topic] == nil {
					h.subscriptions[req.topic] = make(map[*Client]bool)
				}
				h.subscriptions[req.topic][req.client] = true
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client subscribed to topic", slog.String("topic", req.topic))
			}

		case req := <-h.unsubscribeTopic:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.topic]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.topic)
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unsubscribed from topic", slog.String("topic", req.topic))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			subscribers := h.subscriptions[msg.topic]
			for client := range subscribers {
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

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe subscribes a client to a topic
func (h *Hub) Subscribe(client *Client, topic string) {
	select {
	case h.subscribe <- &subscriptionRequest{client: client, topic: topic}:
	case <-h.done:
	}
}

// Unsubscribe unsubscribes a client from a topic
func (h *Hub) Unsubscribe(client *Client, topic string) {
	select {
	case h.unsubscribeTopic <- &subscriptionRequest{client: client, topic: topic}:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscriberCount returns the number of clients subscribed to topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[topic])
}

// NotifyNewMessage queues a new-message event for inbox subscribers.
// It never blocks: a full queue yields ErrRelayBusy.
func (h *Hub) NotifyNewMessage(_ context.Context, message *models.Message) error {
	return h.BroadcastNewMessage(TopicInbox, &NewMessagePayload{
		ID:        message.ID,
		Name:      message.Name,
		Email:     message.Email,
		CreatedAt: models.NewTimestamp(message.CreatedAt),
	})
}

// BroadcastNewMessage broadcasts a new message notification to topic subscribers
func (h *Hub) BroadcastNewMessage(topic string, payload *NewMessagePayload) error {
	msg := WSMessage{
		Type:    MessageTypeNewMessage,
		Topic:   topic,
		Message: payload,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return err
	}

	select {
	case <-h.done:
		return ErrRelayStopped
	default:
	}

	select {
	case h.broadcast <- &broadcastMessage{topic: topic, message: data}:
		return nil
	default:
		return ErrRelayBusy
	}
}
