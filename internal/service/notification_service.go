package service

import (
	"context"
	"fmt"

	"collab-docs-be/internal/pkg/logger"
	"collab-docs-be/internal/pkg/mailer"
	"collab-docs-be/pkg/events"
	pktNats "collab-docs-be/pkg/nats"
)

type INotificationService interface {
	Start() error
}

// notificationService consumes domain events off NATS and turns the ones
// with a user-facing side effect into emails.
type notificationService struct {
	subscriber   *pktNats.Subscriber
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewNotificationService(subscriber *pktNats.Subscriber, emailService mailer.IEmailService, log logger.ILogger) INotificationService {
	return &notificationService{
		subscriber:   subscriber,
		emailService: emailService,
		logger:       log,
	}
}

func (s *notificationService) Start() error {
	if s.subscriber == nil {
		return fmt.Errorf("nats subscriber not available")
	}

	return s.subscriber.Subscribe(
		"events."+events.TypeDocumentShared,
		"share-invite-mailer",
		s.handleDocumentShared,
	)
}

func (s *notificationService) handleDocumentShared(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	targetEmail, _ := payload["target_email"].(string)
	title, _ := payload["document_title"].(string)
	role, _ := payload["role"].(string)
	ownerName, _ := payload["owner_name"].(string)
	if ownerName == "" {
		ownerName = "A collaborator"
	}

	if targetEmail == "" {
		s.logger.Warn("Notification", "DOCUMENT_SHARED event missing target email", map[string]interface{}{"payload": payload})
		return nil // nothing to retry
	}

	if err := s.emailService.SendShareInvite(targetEmail, ownerName, title, role); err != nil {
		s.logger.Error("Notification", "Failed to send share invite", map[string]interface{}{
			"error": err.Error(),
			"email": targetEmail,
		})
		return err
	}

	return nil
}
