package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"collab-docs-be/internal/dto"
	"collab-docs-be/internal/entity"
	"collab-docs-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the revision-archive topic and persists one
// DocumentRevision row per accepted edit. Archiving is asynchronous so a
// slow insert never delays the edit round-trip.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ArchiveRevisionMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal revision message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	rev := entity.DocumentRevision{
		Id:         uuid.New(),
		DocumentId: payload.DocumentId,
		Content:    payload.Content,
		EditedBy:   payload.EditedBy,
		CreatedAt:  time.Now(),
	}

	if err := uow.DocumentRevisionRepository().Create(ctx, &rev); err != nil {
		log.Printf("[ERROR] Failed to archive revision for document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}

	msg.Ack()
}
