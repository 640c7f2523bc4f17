package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"collab-docs-be/internal/entity"
	"collab-docs-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeStore struct {
	documents     map[uuid.UUID]*entity.Document
	collaborators map[uuid.UUID][]*entity.Collaborator
	updates       []fakeUpdate
}

type fakeUpdate struct {
	documentId uuid.UUID
	content    string
	editedBy   uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		documents:     make(map[uuid.UUID]*entity.Document),
		collaborators: make(map[uuid.UUID][]*entity.Collaborator),
	}
}

func (s *fakeStore) GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	return s.documents[id], nil
}

func (s *fakeStore) UpdateDocumentContent(ctx context.Context, id uuid.UUID, content string, editedBy uuid.UUID) error {
	s.documents[id].Content = content
	s.updates = append(s.updates, fakeUpdate{documentId: id, content: content, editedBy: editedBy})
	return nil
}

func (s *fakeStore) GetCollaborators(ctx context.Context, documentId uuid.UUID) ([]*entity.Collaborator, error) {
	return s.collaborators[documentId], nil
}

type fakeIdentities struct {
	users map[uuid.UUID]*memory.Identity
}

func (f *fakeIdentities) Resolve(ctx context.Context, userId uuid.UUID) (*memory.Identity, error) {
	return f.users[userId], nil
}

type fixture struct {
	handler    *Handler
	hub        *Hub
	store      *fakeStore
	identities *fakeIdentities
}

func newFixture() *fixture {
	hub := NewHub(nil, nopLogger{})
	store := newFakeStore()
	identities := &fakeIdentities{users: make(map[uuid.UUID]*memory.Identity)}
	return &fixture{
		handler:    NewHandler(hub, store, identities, nopLogger{}),
		hub:        hub,
		store:      store,
		identities: identities,
	}
}

func (f *fixture) addUser(username string) uuid.UUID {
	id := uuid.New()
	f.identities.users[id] = &memory.Identity{UserId: id, Username: username, Name: username}
	return id
}

func (f *fixture) addDocument(ownerId uuid.UUID, content string) uuid.UUID {
	id := uuid.New()
	f.store.documents[id] = &entity.Document{Id: id, OwnerId: ownerId, Title: "doc", Content: content}
	return id
}

func (f *fixture) grant(documentId, userId uuid.UUID, role entity.CollaboratorRole) {
	f.store.collaborators[documentId] = append(f.store.collaborators[documentId], &entity.Collaborator{
		Id:         uuid.New(),
		DocumentId: documentId,
		UserId:     userId,
		Role:       role,
	})
}

func newTestClient(hub *Hub) *Client {
	return &Client{Hub: hub, Send: make(chan []byte, 16), state: StateUnauthenticated}
}

func frame(t *testing.T, msgType MessageType, payload interface{}) []byte {
	t.Helper()
	return MarshalEnvelope(msgType, payload)
}

// drain pops every frame currently buffered for the client.
func drain(c *Client) []Envelope {
	var out []Envelope
	for {
		select {
		case raw := <-c.Send:
			var env Envelope
			if err := json.Unmarshal(raw, &env); err == nil {
				out = append(out, env)
			}
		default:
			return out
		}
	}
}

func authenticate(t *testing.T, f *fixture, c *Client, userId, documentId uuid.UUID) []Envelope {
	t.Helper()
	f.handler.HandleMessage(context.Background(), c, frame(t, TypeAuth, AuthPayload{
		UserId:     userId,
		DocumentId: documentId,
	}))
	return drain(c)
}

func TestAuthHappyPath(t *testing.T) {
	f := newFixture()
	owner := f.addUser("owner")
	docId := f.addDocument(owner, "initial content")

	c := newTestClient(f.hub)
	frames := authenticate(t, f, c, owner, docId)

	require.Len(t, frames, 2)
	assert.Equal(t, TypeDocumentData, frames[0].Type)
	assert.Equal(t, TypeActiveUsers, frames[1].Type)

	var data DocumentDataPayload
	require.NoError(t, json.Unmarshal(frames[0].Data, &data))
	assert.Equal(t, docId, data.DocumentId)
	assert.Equal(t, "initial content", data.Content)

	var roster ActiveUsersPayload
	require.NoError(t, json.Unmarshal(frames[1].Data, &roster))
	require.Len(t, roster.Users, 1)
	assert.Equal(t, owner, roster.Users[0].UserId)

	assert.Equal(t, StateAuthenticated, c.state)
}

func TestAuthUnknownUserGetsNoRosterEntry(t *testing.T) {
	f := newFixture()
	owner := f.addUser("owner")
	docId := f.addDocument(owner, "")

	c := newTestClient(f.hub)
	frames := authenticate(t, f, c, uuid.New(), docId)

	require.Len(t, frames, 1)
	assert.Equal(t, TypeError, frames[0].Type)
	assert.Equal(t, StateUnauthenticated, c.state)
	assert.Empty(t, f.hub.ListActive(docId))
}

func TestFailedAuthAllowsRetryOnSameConnection(t *testing.T) {
	f := newFixture()
	owner := f.addUser("owner")
	docId := f.addDocument(owner, "draft")

	c := newTestClient(f.hub)

	// First attempt with an unknown user only earns an error frame.
	frames := authenticate(t, f, c, uuid.New(), docId)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeError, frames[0].Type)
	assert.Equal(t, StateUnauthenticated, c.state)

	// The same connection may retry and succeed.
	frames = authenticate(t, f, c, owner, docId)
	require.Len(t, frames, 2)
	assert.Equal(t, TypeDocumentData, frames[0].Type)
	assert.Equal(t, TypeActiveUsers, frames[1].Type)
	assert.Equal(t, StateAuthenticated, c.state)
	assert.Len(t, f.hub.ListActive(docId), 1)
}

func TestAuthWithoutGrantIsDenied(t *testing.T) {
	f := newFixture()
	owner := f.addUser("owner")
	stranger := f.addUser("stranger")
	docId := f.addDocument(owner, "")

	c := newTestClient(f.hub)
	frames := authenticate(t, f, c, stranger, docId)

	require.Len(t, frames, 1)
	assert.Equal(t, TypeError, frames[0].Type)
	assert.Empty(t, f.hub.ListActive(docId))
}

func TestAuthMissingDocument(t *testing.T) {
	f := newFixture()
	user := f.addUser("user")

	c := newTestClient(f.hub)
	frames := authenticate(t, f, c, user, uuid.New())

	require.Len(t, frames, 1)
	assert.Equal(t, TypeError, frames[0].Type)
}

func TestMessageBeforeAuthIsRejected(t *testing.T) {
	f := newFixture()
	c := newTestClient(f.hub)

	f.handler.HandleMessage(context.Background(), c, frame(t, TypeDocumentEdit, DocumentEditPayload{
		DocumentId: uuid.New(),
		Content:    "sneaky",
	}))

	frames := drain(c)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeError, frames[0].Type)
	assert.Empty(t, f.store.updates)
}

func TestMalformedMessageKeepsConnectionUsable(t *testing.T) {
	f := newFixture()
	owner := f.addUser("owner")
	docId := f.addDocument(owner, "")

	c := newTestClient(f.hub)
	authenticate(t, f, c, owner, docId)

	f.handler.HandleMessage(context.Background(), c, []byte("{not json"))
	frames := drain(c)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeError, frames[0].Type)

	// The same connection still accepts valid traffic.
	f.handler.HandleMessage(context.Background(), c, frame(t, TypeDocumentEdit, DocumentEditPayload{
		DocumentId: docId,
		Content:    "still works",
	}))
	require.Len(t, f.store.updates, 1)
	assert.Equal(t, "still works", f.store.documents[docId].Content)
}

func TestEditIsPersistedAndBroadcastToOthersOnly(t *testing.T) {
	f := newFixture()
	owner := f.addUser("alice")
	editor := f.addUser("bob")
	docId := f.addDocument(owner, "")
	f.grant(docId, editor, entity.RoleEditor)

	alice := newTestClient(f.hub)
	authenticate(t, f, alice, owner, docId)

	bob := newTestClient(f.hub)
	authenticate(t, f, bob, editor, docId)
	drain(alice) // alice saw bob join

	f.handler.HandleMessage(context.Background(), alice, frame(t, TypeDocumentEdit, DocumentEditPayload{
		DocumentId: docId,
		Content:    "hello world",
	}))

	// Persisted before broadcast.
	require.Len(t, f.store.updates, 1)
	assert.Equal(t, owner, f.store.updates[0].editedBy)

	bobFrames := drain(bob)
	require.Len(t, bobFrames, 1)
	assert.Equal(t, TypeDocumentUpdate, bobFrames[0].Type)

	var update DocumentUpdatePayload
	require.NoError(t, json.Unmarshal(bobFrames[0].Data, &update))
	assert.Equal(t, "hello world", update.Content)
	assert.Equal(t, owner, update.UpdatedBy)

	// The sender never receives its own edit back.
	assert.Empty(t, drain(alice))
}

func TestViewerCannotEdit(t *testing.T) {
	f := newFixture()
	owner := f.addUser("owner")
	viewer := f.addUser("viewer")
	docId := f.addDocument(owner, "original")
	f.grant(docId, viewer, entity.RoleViewer)

	c := newTestClient(f.hub)
	authenticate(t, f, c, viewer, docId)

	f.handler.HandleMessage(context.Background(), c, frame(t, TypeDocumentEdit, DocumentEditPayload{
		DocumentId: docId,
		Content:    "vandalism",
	}))

	frames := drain(c)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeError, frames[0].Type)
	assert.Empty(t, f.store.updates)
	assert.Equal(t, "original", f.store.documents[docId].Content)
}

func TestEditForDifferentDocumentIsRejected(t *testing.T) {
	f := newFixture()
	owner := f.addUser("owner")
	docId := f.addDocument(owner, "")
	otherDocId := f.addDocument(owner, "")

	c := newTestClient(f.hub)
	authenticate(t, f, c, owner, docId)

	other := newTestClient(f.hub)
	authenticate(t, f, other, owner, otherDocId)

	f.handler.HandleMessage(context.Background(), c, frame(t, TypeDocumentEdit, DocumentEditPayload{
		DocumentId: otherDocId,
		Content:    "cross-document write",
	}))

	frames := drain(c)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeError, frames[0].Type)
	assert.Empty(t, f.store.updates)
	assert.Empty(t, drain(other))
}

func TestCursorIsRelayedNotPersisted(t *testing.T) {
	f := newFixture()
	owner := f.addUser("alice")
	viewer := f.addUser("bob")
	docId := f.addDocument(owner, "")
	f.grant(docId, viewer, entity.RoleViewer)

	alice := newTestClient(f.hub)
	authenticate(t, f, alice, owner, docId)
	bob := newTestClient(f.hub)
	authenticate(t, f, bob, viewer, docId)
	drain(alice)

	// Viewers may move their cursor even though they cannot edit.
	f.handler.HandleMessage(context.Background(), bob, frame(t, TypeCursorPosition, CursorPositionPayload{
		Position: json.RawMessage(`{"block":2,"offset":14}`),
	}))

	frames := drain(alice)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeCursorUpdate, frames[0].Type)

	var cursor CursorUpdatePayload
	require.NoError(t, json.Unmarshal(frames[0].Data, &cursor))
	assert.Equal(t, viewer, cursor.UserId)
	assert.Equal(t, "bob", cursor.Username)
	assert.JSONEq(t, `{"block":2,"offset":14}`, string(cursor.Position))

	assert.Empty(t, f.store.updates)
	assert.Empty(t, drain(bob))
}

func TestDisconnectAnnouncesUserLeftOnce(t *testing.T) {
	f := newFixture()
	owner := f.addUser("alice")
	editor := f.addUser("bob")
	docId := f.addDocument(owner, "")
	f.grant(docId, editor, entity.RoleEditor)

	alice := newTestClient(f.hub)
	authenticate(t, f, alice, owner, docId)
	bob := newTestClient(f.hub)
	authenticate(t, f, bob, editor, docId)
	drain(alice)

	f.handler.HandleDisconnect(bob)
	f.handler.HandleDisconnect(bob) // double disconnect must be harmless

	frames := drain(alice)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeUserLeft, frames[0].Type)

	var left PresencePayload
	require.NoError(t, json.Unmarshal(frames[0].Data, &left))
	assert.Equal(t, editor, left.UserId)

	roster := f.hub.ListActive(docId)
	require.Len(t, roster, 1)
	assert.Equal(t, owner, roster[0].UserId)
}

func TestJoinAnnouncedToExistingParticipants(t *testing.T) {
	f := newFixture()
	owner := f.addUser("alice")
	editor := f.addUser("bob")
	docId := f.addDocument(owner, "")
	f.grant(docId, editor, entity.RoleEditor)

	alice := newTestClient(f.hub)
	authenticate(t, f, alice, owner, docId)

	bob := newTestClient(f.hub)
	bobFrames := authenticate(t, f, bob, editor, docId)

	// Bob's roster includes both participants.
	var roster ActiveUsersPayload
	require.Equal(t, TypeActiveUsers, bobFrames[1].Type)
	require.NoError(t, json.Unmarshal(bobFrames[1].Data, &roster))
	assert.Len(t, roster.Users, 2)

	// Alice is told exactly once that bob joined.
	aliceFrames := drain(alice)
	require.Len(t, aliceFrames, 1)
	assert.Equal(t, TypeUserJoined, aliceFrames[0].Type)
}

func TestDoubleAuthIsRejected(t *testing.T) {
	f := newFixture()
	owner := f.addUser("owner")
	docId := f.addDocument(owner, "")

	c := newTestClient(f.hub)
	authenticate(t, f, c, owner, docId)

	frames := authenticate(t, f, c, owner, docId)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeError, frames[0].Type)

	// Still registered exactly once.
	assert.Len(t, f.hub.ListActive(docId), 1)
}
