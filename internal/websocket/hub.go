package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"collab-docs-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub owns the registry of active sessions, keyed by document. It is the
// single writer of its session map; all mutation goes through Register and
// Unregister under the lock, so porting to more readPump goroutines stays
// race-free.
type Hub struct {
	// documentId -> sessions subscribed to that document
	sessions map[uuid.UUID][]*Client

	mu sync.RWMutex

	// dispatchMu serializes Broadcast calls so every recipient observes
	// messages in the order Broadcast was called for its document.
	dispatchMu sync.Mutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	// instanceId filters out our own Redis publications.
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		sessions:   make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

// Run starts the cross-instance subscriber. Safe to skip when Redis is
// not configured; the hub then serves this process only.
func (h *Hub) Run() {
	if h.rdb != nil {
		h.subscribeToRedis()
	}
}

// Register inserts the session tuple and returns the roster as it stood
// before the insert (the new participant is told who was already there).
func (h *Hub) Register(c *Client) []Participant {
	h.mu.Lock()
	defer h.mu.Unlock()

	existing := make([]Participant, 0, len(h.sessions[c.documentId]))
	for _, other := range h.sessions[c.documentId] {
		existing = append(existing, other.identity)
	}

	h.sessions[c.documentId] = append(h.sessions[c.documentId], c)
	h.logger.Info("Hub", "Session registered", map[string]interface{}{
		"user_id":     c.userId,
		"document_id": c.documentId,
	})
	return existing
}

// Unregister removes every tuple for the connection. Idempotent: calling
// it twice for the same client is a no-op the second time.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessions[c.documentId]
	if !ok {
		return
	}
	for i, other := range clients {
		if other == c {
			h.sessions[c.documentId] = append(clients[:i], clients[i+1:]...)
			close(c.Send)
			break
		}
	}
	if len(h.sessions[c.documentId]) == 0 {
		delete(h.sessions, c.documentId)
	}
	h.logger.Info("Hub", "Session unregistered", map[string]interface{}{
		"user_id":     c.userId,
		"document_id": c.documentId,
	})
}

// ListActive returns the participants currently registered for a document.
func (h *Hub) ListActive(documentId uuid.UUID) []Participant {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.sessions[documentId]
	participants := make([]Participant, 0, len(clients))
	for _, c := range clients {
		participants = append(participants, c.identity)
	}
	return participants
}

// Broadcast delivers a message to every session on the document except the
// excluded sender. Delivery is best-effort and fire-and-forget: a session
// whose send buffer is full is silently skipped, never retried or queued.
func (h *Hub) Broadcast(documentId uuid.UUID, message []byte, exclude *Client) {
	h.dispatchMu.Lock()
	defer h.dispatchMu.Unlock()

	h.deliverLocal(documentId, message, exclude)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"document_id": documentId.String(),
			"origin":      h.instanceId,
			"message":     json.RawMessage(message),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "collab_events", jsonPayload)
	}
}

func (h *Hub) deliverLocal(documentId uuid.UUID, message []byte, exclude *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.sessions[documentId] {
		if c == exclude {
			continue
		}
		select {
		case c.Send <- message:
		default:
			h.logger.Warn("Hub", "Send buffer full, dropping message", map[string]interface{}{
				"user_id":     c.userId,
				"document_id": documentId,
			})
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "collab_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			DocumentId string          `json:"document_id"`
			Origin     string          `json:"origin"`
			Message    json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		// Our own publications already went out locally.
		if payload.Origin == h.instanceId {
			continue
		}

		documentId, err := uuid.Parse(payload.DocumentId)
		if err != nil {
			continue
		}

		h.deliverLocal(documentId, payload.Message, nil)
	}
}
