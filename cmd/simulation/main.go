package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	ws "collab-docs-be/internal/websocket"
	"collab-docs-be/pkg/client"
	"collab-docs-be/pkg/richtext"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

const (
	baseURL = "http://localhost:3000/api"
	wsURL   = "ws://localhost:3000/api/collab/v1/ws"
)

// Simplified DTOs for the script
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type loginData struct {
	Token string `json:"token"`
	User  struct {
		Id uuid.UUID `json:"id"`
	} `json:"user"`
}

type createDocumentData struct {
	Id uuid.UUID `json:"id"`
}

type account struct {
	email  string
	token  string
	userId uuid.UUID
}

func main() {
	banner := color.New(color.FgCyan, color.Bold)
	banner.Println("=== Collaborative Editing Simulation ===")

	suffix := time.Now().UnixNano()

	alice := setupAccount(fmt.Sprintf("alice-%d@example.com", suffix), "Alice Editor")
	bob := setupAccount(fmt.Sprintf("bob-%d@example.com", suffix), "Bob Editor")

	documentId := createDocument(alice, "Simulation Document")
	color.Green("Document created: %s", documentId)

	grantEditor(alice, documentId, bob.email)
	color.Green("Granted editor role to %s", bob.email)

	// Bob's session just observes.
	bobUpdates := make(chan string, 16)
	bobSession := connect(bob, documentId, client.Handlers{
		OnDocumentUpdate: func(content string, updatedBy uuid.UUID) {
			color.Yellow("BOB <- update from %s", updatedBy)
			bobUpdates <- content
		},
		OnUserJoined: func(user ws.PresencePayload) {
			color.Yellow("BOB <- %s joined", user.Username)
		},
		OnError: func(message string) {
			color.Red("BOB <- error: %s", message)
		},
	})
	defer bobSession.Close()

	aliceSession := connect(alice, documentId, client.Handlers{
		OnError: func(message string) {
			color.Red("ALICE <- error: %s", message)
		},
	})
	defer aliceSession.Close()

	// Give the joins a moment to settle.
	time.Sleep(500 * time.Millisecond)

	// 1. Alice types a paragraph.
	root := &richtext.Node{Type: richtext.NodeRoot, Children: []*richtext.Node{
		richtext.NewParagraph(richtext.NewText("Hello from the simulation.")),
	}}
	snapshot, err := richtext.Serialize(root)
	if err != nil {
		log.Fatalf("Failed to build snapshot: %v", err)
	}
	aliceSession.Edit(snapshot)
	aliceSession.Flush()
	color.Cyan("ALICE -> typed a paragraph")
	waitForUpdate(bobUpdates)

	// 2. Alice bolds the first word.
	sel := richtext.Selection{StartBlock: 0, StartOffset: 0, EndBlock: 0, EndOffset: 5}
	if err := aliceSession.Command(richtext.CmdBold, sel, nil); err != nil {
		log.Fatalf("Bold command failed: %v", err)
	}
	aliceSession.Flush()
	color.Cyan("ALICE -> bolded the first word")
	waitForUpdate(bobUpdates)

	// 3. Alice undoes the bold.
	if !aliceSession.Undo() {
		log.Fatal("Expected undo to be available")
	}
	aliceSession.Flush()
	color.Cyan("ALICE -> undo")
	waitForUpdate(bobUpdates)

	if aliceSession.Content() == bobSession.Content() {
		color.Green("✅ Snapshots converged on both sessions")
	} else {
		color.Red("Snapshots diverged:\n  alice: %s\n  bob:   %s",
			aliceSession.Content(), bobSession.Content())
	}
}

func setupAccount(email, fullName string) account {
	register := map[string]string{
		"username":  email[:8],
		"email":     email,
		"password":  "simulation-pass",
		"full_name": fullName,
	}
	if _, err := post("/auth/v1/register", "", register); err != nil {
		log.Fatalf("Failed to register %s: %v", email, err)
	}

	raw, err := post("/auth/v1/login", "", map[string]string{
		"email":    email,
		"password": "simulation-pass",
	})
	if err != nil {
		log.Fatalf("Failed to login %s: %v", email, err)
	}

	var data loginData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Fatalf("Failed to parse login response: %v", err)
	}
	color.Green("Logged in as %s (%s)", email, data.User.Id)
	return account{email: email, token: data.Token, userId: data.User.Id}
}

func createDocument(a account, title string) uuid.UUID {
	raw, err := post("/document/v1", a.token, map[string]string{"title": title})
	if err != nil {
		log.Fatalf("Failed to create document: %v", err)
	}
	var data createDocumentData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Fatalf("Failed to parse create response: %v", err)
	}
	return data.Id
}

func grantEditor(a account, documentId uuid.UUID, email string) {
	path := fmt.Sprintf("/document/v1/%s/collaborator", documentId)
	if _, err := post(path, a.token, map[string]string{
		"email": email,
		"role":  "editor",
	}); err != nil {
		log.Fatalf("Failed to grant collaborator: %v", err)
	}
}

func connect(a account, documentId uuid.UUID, handlers client.Handlers) *client.Session {
	session, err := client.Dial(wsURL, handlers)
	if err != nil {
		log.Fatalf("Failed to dial websocket: %v", err)
	}
	if err := session.Authenticate(a.userId, documentId); err != nil {
		log.Fatalf("Failed to authenticate: %v", err)
	}
	return session
}

func waitForUpdate(updates <-chan string) {
	select {
	case <-updates:
	case <-time.After(5 * time.Second):
		log.Fatal("Timed out waiting for a broadcast update")
	}
}

func post(path, token string, body interface{}) (json.RawMessage, error) {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", baseURL+path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, raw)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
