package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"aegis-review-be/internal/catalog"
	"aegis-review-be/internal/config"
	"aegis-review-be/internal/controller"
	"aegis-review-be/internal/handler"
	"aegis-review-be/internal/pkg/logger"
	"aegis-review-be/internal/repository"
	"aegis-review-be/internal/repository/implementation"
	"aegis-review-be/internal/repository/memory"
	"aegis-review-be/internal/service"
	"aegis-review-be/internal/websocket"
	"aegis-review-be/pkg/llm/factory"

	pktNats "aegis-review-be/pkg/nats"
)

// SessionFeedTopic is the in-process topic carrying feed messages from the
// mutation path to the websocket fan-out.
const SessionFeedTopic = "SESSION_FEED"

type Container struct {
	// Controllers
	CaseController    controller.ICaseController
	SessionController controller.ISessionController
	ChatController    controller.IChatController
	AuditController   controller.IAuditController

	// Background Services (Exposed for main.go to run)
	FeedConsumerService service.IFeedConsumerService

	// WebSockets
	FeedHandler  *handler.FeedHandler
	WebSocketHub *websocket.Hub

	// Shared facades (Exposed for shutdown and tooling)
	Logger  logger.ILogger
	Catalog *catalog.Catalog
	NatsPub *pktNats.Publisher
	NatsSub *pktNats.Subscriber
}

// NewContainer wires every component. Both db and the broker connections are
// optional: without a database the audit trail is disabled, without NATS the
// audit bus stays local, without Redis the feed is single-instance.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load case catalog: %v", err)
	}
	log.Printf("[INFO] Case catalog loaded (%d cases)", cat.Len())

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize LLM Provider based on Config
	providerBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "groq" {
		providerBaseURL = cfg.Ai.GroqBaseURL
	}
	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		providerBaseURL,
		cfg.Ai.GroqAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

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
	var rdb *redis.Client
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb = redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Feed stays single-instance", err)
		rdb = nil
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.FeedLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(SessionFeedTopic, pubSub)
	feedConsumerService := service.NewFeedConsumerService(
		pubSub,
		SessionFeedTopic,
		wsHub,
		wsLogger,
	)

	sessionService := service.NewSessionService(sessionRepo, cat, publisherService, natsPub, sysLogger)
	chatService := service.NewChatService(sessionRepo, cat, llmProvider, publisherService, natsPub, sysLogger)
	caseService := service.NewCaseService(cat)

	// 3.5 Audit trail (optional, needs both a database and NATS)
	var auditRepo repository.AuditRecordRepository
	if db != nil {
		auditRepo = implementation.NewAuditRecordRepository(db)
		if natsSub != nil {
			auditService := service.NewAuditService(auditRepo, natsSub, sysLogger)
			go auditService.Start()
		}
	} else {
		log.Printf("[WARN] No database configured, audit records disabled")
	}

	// Handler
	feedHandler := handler.NewFeedHandler(wsHub, sessionRepo, wsLogger)

	// 4. Controllers
	return &Container{
		CaseController:    controller.NewCaseController(caseService),
		SessionController: controller.NewSessionController(sessionService),
		ChatController:    controller.NewChatController(chatService, sysLogger),
		AuditController:   controller.NewAuditController(auditRepo),

		FeedConsumerService: feedConsumerService,

		FeedHandler:  feedHandler,
		WebSocketHub: wsHub,

		Logger:  sysLogger,
		Catalog: cat,
		NatsPub: natsPub,
		NatsSub: natsSub,
	}
}
