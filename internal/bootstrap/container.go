package bootstrap

import (
	"context"
	"log"

	"collab-docs-be/internal/config"
	"collab-docs-be/internal/controller"
	"collab-docs-be/internal/handler"
	"collab-docs-be/internal/pkg/logger"
	"collab-docs-be/internal/pkg/mailer"
	"collab-docs-be/internal/repository/memory"
	"collab-docs-be/internal/repository/unitofwork"
	"collab-docs-be/internal/service"
	"collab-docs-be/internal/websocket"

	pktNats "collab-docs-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const revisionArchiveTopic = "document.revision.archive"

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	DocumentController     controller.IDocumentController
	CollaboratorController controller.ICollaboratorController
	CommentController      controller.ICommentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Collaboration
	CollabHandler    *handler.CollabHandler
	WebSocketHub     *websocket.Hub
	WebSocketHandler *websocket.Handler
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.App.ClientURL,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 3. Services
	publisherService := service.NewPublisherService(revisionArchiveTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, revisionArchiveTopic, uowFactory)

	authService := service.NewAuthService(uowFactory, cfg)
	documentService := service.NewDocumentService(uowFactory, publisherService, natsPub)
	collaboratorService := service.NewCollaboratorService(uowFactory, natsPub)
	commentService := service.NewCommentService(uowFactory)

	identityCache := memory.NewIdentityCache()
	identityService := service.NewIdentityService(uowFactory, identityCache)

	// Share invites go out asynchronously off the NATS event stream.
	notifService := service.NewNotificationService(natsSub, emailService, sysLogger)
	if natsSub != nil {
		go func() {
			if err := notifService.Start(); err != nil {
				sysLogger.Error("Bootstrap", "Notification worker failed to start", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	// 3.5 Collaboration Hub
	collabLogger := logger.NewIsolatedLogger(cfg.App.CollabLogFilePath)
	wsHub := websocket.NewHub(rdb, collabLogger)
	go wsHub.Run()

	wsHandler := websocket.NewHandler(wsHub, documentService, identityService, collabLogger)
	collabHandler := handler.NewCollabHandler(wsHandler, collabLogger)

	// 4. Controllers
	return &Container{
		AuthController:         controller.NewAuthController(authService),
		DocumentController:     controller.NewDocumentController(documentService),
		CollaboratorController: controller.NewCollaboratorController(collaboratorService),
		CommentController:      controller.NewCommentController(commentService),

		ConsumerService: consumerService,

		CollabHandler:    collabHandler,
		WebSocketHub:     wsHub,
		WebSocketHandler: wsHandler,
	}
}
