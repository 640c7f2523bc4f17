package mapper

import (
	"testing"
	"time"

	"collab-docs-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentContentRoundTripsThroughJSONColumn(t *testing.T) {
	m := NewDocumentMapper()
	content := `{"type":"root","children":[{"type":"paragraph","children":[{"type":"text","text":"hi"}]}]}`

	doc := &entity.Document{
		Id:        uuid.New(),
		Title:     "notes",
		Content:   content,
		OwnerId:   uuid.New(),
		CreatedAt: time.Now(),
	}

	model := m.ToModel(doc)
	assert.JSONEq(t, content, string(model.Content))

	back := m.ToEntity(model)
	require.NotNil(t, back)
	assert.Equal(t, content, back.Content)
}

func TestRevisionContentRoundTripsThroughJSONColumn(t *testing.T) {
	m := NewDocumentRevisionMapper()
	content := `{"type":"root","children":[]}`

	rev := &entity.DocumentRevision{
		Id:         uuid.New(),
		DocumentId: uuid.New(),
		Content:    content,
		EditedBy:   uuid.New(),
		CreatedAt:  time.Now(),
	}

	model := m.ToModel(rev)
	assert.JSONEq(t, content, string(model.Content))

	back := m.ToEntity(model)
	require.NotNil(t, back)
	assert.Equal(t, content, back.Content)
}
