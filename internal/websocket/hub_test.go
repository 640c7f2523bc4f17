package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registeredClient(hub *Hub, documentId uuid.UUID, username string) *Client {
	c := &Client{
		Hub:        hub,
		Send:       make(chan []byte, 16),
		state:      StateAuthenticated,
		userId:     uuid.New(),
		documentId: documentId,
	}
	c.identity = Participant{UserId: c.userId, Username: username, Name: username}
	hub.Register(c)
	return c
}

func TestRegisterReturnsPriorRoster(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	docId := uuid.New()

	a := registeredClient(hub, docId, "a")

	b := &Client{
		Hub:        hub,
		Send:       make(chan []byte, 16),
		state:      StateAuthenticated,
		userId:     uuid.New(),
		documentId: docId,
	}
	prior := hub.Register(b)

	require.Len(t, prior, 1)
	assert.Equal(t, a.userId, prior[0].UserId)
	assert.Len(t, hub.ListActive(docId), 2)
}

func TestSameUserTwiceIsTwoSessions(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	docId := uuid.New()

	a := registeredClient(hub, docId, "a")
	// Same user on a second tab.
	second := &Client{
		Hub:        hub,
		Send:       make(chan []byte, 16),
		state:      StateAuthenticated,
		userId:     a.userId,
		documentId: docId,
		identity:   a.identity,
	}
	hub.Register(second)

	assert.Len(t, hub.ListActive(docId), 2)

	hub.Unregister(second)
	assert.Len(t, hub.ListActive(docId), 1)
}

func TestBroadcastExcludesSender(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	docId := uuid.New()

	a := registeredClient(hub, docId, "a")
	b := registeredClient(hub, docId, "b")
	other := registeredClient(hub, uuid.New(), "other-doc")

	hub.Broadcast(docId, []byte("payload"), a)

	assert.Empty(t, a.Send)
	require.Len(t, b.Send, 1)
	assert.Equal(t, []byte("payload"), <-b.Send)
	// Scoped to the document.
	assert.Empty(t, other.Send)
}

func TestBroadcastSkipsFullBuffers(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	docId := uuid.New()

	stuck := &Client{
		Hub:        hub,
		Send:       make(chan []byte), // no buffer, no reader
		state:      StateAuthenticated,
		userId:     uuid.New(),
		documentId: docId,
	}
	hub.Register(stuck)
	healthy := registeredClient(hub, docId, "healthy")

	// Must not block or panic; the stuck client is silently skipped.
	hub.Broadcast(docId, []byte("payload"), nil)

	require.Len(t, healthy.Send, 1)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	docId := uuid.New()

	a := registeredClient(hub, docId, "a")
	hub.Unregister(a)
	hub.Unregister(a) // second call must not close the channel again

	assert.Empty(t, hub.ListActive(docId))

	_, open := <-a.Send
	assert.False(t, open)
}
