package websocket

import (
	"context"
	"encoding/json"

	"collab-docs-be/internal/pkg/logger"
	"collab-docs-be/internal/pkg/serverutils"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Handler drives the synchronization protocol for one server instance.
// It is stateless per message; everything a message needs lives either on
// the Client or behind the store.
type Handler struct {
	hub        *Hub
	store      DocumentStore
	identities IdentityResolver
	logger     logger.ILogger
}

func NewHandler(hub *Hub, store DocumentStore, identities IdentityResolver, log logger.ILogger) *Handler {
	return &Handler{
		hub:        hub,
		store:      store,
		identities: identities,
		logger:     log,
	}
}

// ServeWs handles websocket requests from the peer. The connection starts
// unauthenticated; the first frame must be an auth message.
func (h *Handler) ServeWs(conn *websocket.Conn) {
	client := &Client{
		Hub:   h.hub,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		state: StateUnauthenticated,
	}

	go client.writePump()
	client.readPump(h) // run readPump in current goroutine (handler)
}

// HandleMessage dispatches one inbound frame. It runs on the connection's
// read goroutine, so per-connection state needs no locking and messages
// from one client are processed strictly in arrival order.
func (h *Handler) HandleMessage(ctx context.Context, c *Client, raw []byte) {
	if c.state == StateClosed {
		return
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
		h.sendError(c, serverutils.NewMalformedMessageError("invalid message frame"))
		return
	}

	if c.state == StateUnauthenticated && env.Type != TypeAuth {
		h.sendError(c, serverutils.NewProtocolError("authentication required"))
		return
	}

	switch env.Type {
	case TypeAuth:
		h.handleAuth(ctx, c, env.Data)
	case TypeDocumentEdit:
		h.handleEdit(ctx, c, env.Data)
	case TypeCursorPosition:
		h.handleCursor(ctx, c, env.Data)
	default:
		h.sendError(c, serverutils.NewProtocolError("unknown message type: "+string(env.Type)))
	}
}

// handleAuth validates the caller against the document, registers the
// session, replies with the current snapshot and roster, and announces
// the join to everyone else. A failed attempt only replies with an error
// frame; the connection stays open and unauthenticated so the client may
// try again.
func (h *Handler) handleAuth(ctx context.Context, c *Client, data json.RawMessage) {
	if c.state == StateAuthenticated {
		h.sendError(c, serverutils.NewProtocolError("already authenticated"))
		return
	}

	var payload AuthPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserId == uuid.Nil || payload.DocumentId == uuid.Nil {
		h.sendError(c, serverutils.NewMalformedMessageError("auth requires userId and documentId"))
		return
	}

	identity, err := h.identities.Resolve(ctx, payload.UserId)
	if err != nil {
		h.sendError(c, err)
		return
	}
	if identity == nil {
		h.sendError(c, serverutils.NewPermissionError("unknown user"))
		return
	}

	doc, err := h.store.GetDocument(ctx, payload.DocumentId)
	if err != nil {
		h.sendError(c, err)
		return
	}
	if doc == nil {
		h.sendError(c, serverutils.NewNotFoundError("document"))
		return
	}

	canEdit := false
	if doc.OwnerId == payload.UserId {
		canEdit = true
	} else {
		grants, err := h.store.GetCollaborators(ctx, payload.DocumentId)
		if err != nil {
			h.sendError(c, err)
			return
		}
		granted := false
		for _, grant := range grants {
			if grant.UserId == payload.UserId {
				granted = true
				canEdit = grant.Role.CanEdit()
				break
			}
		}
		if !granted {
			h.sendError(c, serverutils.NewPermissionError("you do not have access to this document"))
			return
		}
	}

	c.userId = payload.UserId
	c.documentId = payload.DocumentId
	c.identity = Participant{
		UserId:   identity.UserId,
		Username: identity.Username,
		Name:     identity.Name,
	}
	c.canEdit = canEdit
	c.state = StateAuthenticated

	// Register hands back the roster as it stood before this session was
	// inserted; appending ourselves gives the reply without re-reading the
	// hub, so a join racing in between cannot skew it.
	roster := append(h.hub.Register(c), c.identity)

	h.send(c, MarshalEnvelope(TypeDocumentData, DocumentDataPayload{
		DocumentId: doc.Id,
		Content:    doc.Content,
	}))
	h.send(c, MarshalEnvelope(TypeActiveUsers, ActiveUsersPayload{
		Users: roster,
	}))

	h.hub.Broadcast(c.documentId, MarshalEnvelope(TypeUserJoined, PresencePayload{
		UserId:   c.identity.UserId,
		Username: c.identity.Username,
		Name:     c.identity.Name,
	}), c)
}

// handleEdit persists the full snapshot, then fans it out. Persist comes
// first: a recipient must never render content the store would not return
// on reconnect.
func (h *Handler) handleEdit(ctx context.Context, c *Client, data json.RawMessage) {
	var payload DocumentEditPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(c, serverutils.NewMalformedMessageError("invalid edit payload"))
		return
	}

	if payload.DocumentId != c.documentId {
		h.sendError(c, serverutils.NewProtocolError("edit targets a different document"))
		return
	}

	if !c.canEdit {
		h.sendError(c, serverutils.NewPermissionError("your role does not allow editing"))
		return
	}

	if err := h.store.UpdateDocumentContent(ctx, c.documentId, payload.Content, c.userId); err != nil {
		h.logger.Error("Collab", "Failed to persist document edit", map[string]interface{}{
			"error":       err.Error(),
			"document_id": c.documentId,
			"user_id":     c.userId,
		})
		h.sendError(c, err)
		return
	}

	h.hub.Broadcast(c.documentId, MarshalEnvelope(TypeDocumentUpdate, DocumentUpdatePayload{
		DocumentId: c.documentId,
		Content:    payload.Content,
		UpdatedBy:  c.userId,
	}), c)
}

// handleCursor relays a cursor position to the other participants. The
// position blob is never validated or stored.
func (h *Handler) handleCursor(ctx context.Context, c *Client, data json.RawMessage) {
	var payload CursorPositionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(c, serverutils.NewMalformedMessageError("invalid cursor payload"))
		return
	}

	h.hub.Broadcast(c.documentId, MarshalEnvelope(TypeCursorUpdate, CursorUpdatePayload{
		UserId:   c.identity.UserId,
		Username: c.identity.Username,
		Name:     c.identity.Name,
		Position: payload.Position,
	}), c)
}

// HandleDisconnect tears the session down. Called exactly once per
// connection from readPump's defer; presence is announced only for
// sessions that made it past auth.
func (h *Handler) HandleDisconnect(c *Client) {
	switch c.state {
	case StateAuthenticated:
		h.hub.Unregister(c)
		h.hub.Broadcast(c.documentId, MarshalEnvelope(TypeUserLeft, PresencePayload{
			UserId:   c.identity.UserId,
			Username: c.identity.Username,
			Name:     c.identity.Name,
		}), nil)
	case StateUnauthenticated:
		close(c.Send)
	}
	c.state = StateClosed
}

func (h *Handler) send(c *Client, message []byte) {
	select {
	case c.Send <- message:
	default:
	}
}

func (h *Handler) sendError(c *Client, err error) {
	h.send(c, MarshalEnvelope(TypeError, ErrorPayload{Message: err.Error()}))
}
