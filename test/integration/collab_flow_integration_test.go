package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"collab-docs-be/internal/config"
	"collab-docs-be/internal/dto"
	"collab-docs-be/internal/repository/unitofwork"
	"collab-docs-be/internal/service"
	"collab-docs-be/pkg/database"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the full edit path against a real database: register users,
// create a document, grant a role, persist an edit, and wait for the
// asynchronous revision archiver to catch up.
func TestCollaborativeEditFlow(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	cfg := config.Load()
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	require.NoError(t, err)

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	topic := "document.revision.archive.test"
	publisher := service.NewPublisherService(topic, pubSub)
	consumer := service.NewConsumerService(pubSub, topic, uowFactory)

	ctx := context.Background()
	require.NoError(t, consumer.Consume(ctx))

	authService := service.NewAuthService(uowFactory, cfg)
	documentService := service.NewDocumentService(uowFactory, publisher, nil)
	collaboratorService := service.NewCollaboratorService(uowFactory, nil)

	suffix := uuid.NewString()[:8]

	owner, err := authService.Register(ctx, &dto.RegisterRequest{
		Username: "owner-" + suffix,
		Email:    fmt.Sprintf("owner-%s@example.com", suffix),
		Password: "integration-pass",
		FullName: "Integration Owner",
	})
	require.NoError(t, err)

	viewerEmail := fmt.Sprintf("viewer-%s@example.com", suffix)
	viewer, err := authService.Register(ctx, &dto.RegisterRequest{
		Username: "viewer-" + suffix,
		Email:    viewerEmail,
		Password: "integration-pass",
		FullName: "Integration Viewer",
	})
	require.NoError(t, err)

	created, err := documentService.Create(ctx, owner.Id, &dto.CreateDocumentRequest{
		Title: "Integration Doc " + suffix,
	})
	require.NoError(t, err)

	_, err = collaboratorService.Grant(ctx, owner.Id, &dto.GrantCollaboratorRequest{
		DocumentId: created.Id,
		Email:      viewerEmail,
		Role:       "viewer",
	})
	require.NoError(t, err)

	// The protocol's persistence surface.
	content := `{"type":"root","children":[{"type":"paragraph","children":[{"type":"text","text":"edited"}]}]}`
	require.NoError(t, documentService.UpdateDocumentContent(ctx, created.Id, content, owner.Id))

	doc, err := documentService.GetDocument(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, content, doc.Content)

	// A viewer cannot edit through the REST surface either.
	vandalism := "overwritten"
	_, err = documentService.Update(ctx, viewer.Id, &dto.UpdateDocumentRequest{
		Id:      created.Id,
		Content: &vandalism,
	})
	assert.Error(t, err)

	// But the viewer can read.
	shown, err := documentService.Show(ctx, viewer.Id, created.Id)
	require.NoError(t, err)
	assert.Equal(t, content, shown.Content)
	assert.Equal(t, "viewer", shown.Role)

	// The revision archiver runs asynchronously; poll briefly.
	deadline := time.Now().Add(5 * time.Second)
	for {
		revs, err := documentService.Revisions(ctx, owner.Id, created.Id)
		require.NoError(t, err)
		if len(revs) > 0 {
			assert.Equal(t, owner.Id, revs[0].EditedBy)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("revision was never archived")
		}
		time.Sleep(100 * time.Millisecond)
	}
}
