package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-scribe-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans live scribe events (note chunks, completion, suggestion updates)
// out to a clinician's connected devices. Chunk events for one session pass
// through a single Send channel per client, so arrival order is preserved.
type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// instanceID marks relay payloads published by this instance, so the
	// shared-channel subscriber can drop its own echo. Without it every
	// event would reach local clients twice: once directly, once via
	// Redis. Chunk events are appended, not keyed, so a duplicate is
	// visible garbage.
	instanceID string

	// Dedicated Logger
	logger logger.ILogger
}

// relayEnvelope is the cross-instance wire format on the shared channel.
type relayEnvelope struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes one typed event to all of a user's connected devices, and
// relays it over Redis so devices attached to other instances get it too.
// Local clients receive the event exactly once: the relay subscriber skips
// payloads this instance published itself.
func (h *Hub) Send(userID uuid.UUID, eventType string, data interface{}) {
	payload, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal event", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}

	h.deliverLocal(userID, payload)

	if h.rdb != nil {
		relayPayload, _ := json.Marshal(relayEnvelope{
			Origin:       h.instanceID,
			TargetUserID: userID.String(),
			Message:      payload,
		})
		h.rdb.Publish(context.Background(), "scribe_cluster_events", relayPayload)
	}
}

// deliverLocal pushes a marshalled payload to the user's locally connected
// clients. A client whose buffer is full is queued for unregistration; the
// Run loop owns channel closure, so the drop path must never close Send
// itself (a second close panics).
func (h *Hub) deliverLocal(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}
}

// subscribeToRedis delivers events relayed by other instances to locally
// connected clients. Every instance subscribes to the shared channel and
// filters on local membership and on origin.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "scribe_cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		h.handleRelay([]byte(msg.Payload))
	}
}

// handleRelay applies one relayed payload. Payloads this instance published
// were already delivered locally by Send and are dropped here.
func (h *Hub) handleRelay(raw []byte) {
	var envelope relayEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Printf("Redis msg parse error: %v", err)
		return
	}

	if envelope.Origin == h.instanceID {
		return
	}

	uid, err := uuid.Parse(envelope.TargetUserID)
	if err != nil {
		return
	}

	h.deliverLocal(uid, envelope.Message)
}
