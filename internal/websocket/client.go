package websocket

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // full document snapshots travel in edit frames
)

// ConnState tracks where a connection sits in its lifecycle. State only
// moves forward: Unauthenticated -> Authenticated -> Closed.
type ConnState int

const (
	StateUnauthenticated ConnState = iota
	StateAuthenticated
	StateClosed
)

// Client is a middleman between the websocket connection and the hub.
// Its mutable fields are touched only from the readPump goroutine, so no
// lock guards them.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	state      ConnState
	userId     uuid.UUID
	documentId uuid.UUID
	identity   Participant

	// canEdit is fixed at auth time from the caller's role; role changes
	// take effect on the next connection.
	canEdit bool
}

// readPump pumps messages from the websocket connection to the handler.
func (c *Client) readPump(h *Handler) {
	defer func() {
		h.HandleDisconnect(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error for user %s: %v", c.userId, err)
			}
			break
		}
		h.HandleMessage(context.Background(), c, raw)
	}
}

// writePump pumps messages from the hub to the websocket connection.
// Every queued message goes out as its own text frame so recipients always
// see one JSON envelope per frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
