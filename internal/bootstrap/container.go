package bootstrap

import (
	"context"
	"log"

	"ai-scribe-be/internal/config"
	"ai-scribe-be/internal/controller"
	"ai-scribe-be/internal/handler"
	"ai-scribe-be/internal/pkg/logger"
	"ai-scribe-be/internal/repository/implementation"
	"ai-scribe-be/internal/repository/memory"
	"ai-scribe-be/internal/service"
	"ai-scribe-be/internal/websocket"
	"ai-scribe-be/pkg/llm/factory"

	pktNats "ai-scribe-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ScribeController  controller.IScribeController
	HistoryController controller.IHistoryController

	// Background Services (Exposed for main.go to run)
	SuggestionService service.ISuggestionService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Repositories
	historyRepo := implementation.NewHistoryRepository(db)
	sessionRepo := memory.NewSessionRepository()

	// 2.5 Infrastructure
	// NATS, best-effort: the scribe works without the report bus.
	var reports service.ReportPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		reports = natsPub
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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Scribe.TranscriptChangedTopicName, pubSub)

	scribeService := service.NewScribeService(
		historyRepo,
		sessionRepo,
		llmProvider,
		wsHub,
		reports,
		sysLogger,
		cfg.Scribe,
	)
	suggestionService := service.NewSuggestionService(
		sessionRepo,
		llmProvider,
		publisherService,
		pubSub,
		wsHub,
		sysLogger,
		cfg.Scribe,
	)
	historyService := service.NewHistoryService(historyRepo, sysLogger)

	streamHandler := handler.NewStreamHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		ScribeController:  controller.NewScribeController(scribeService, suggestionService),
		HistoryController: controller.NewHistoryController(historyService),
		SuggestionService: suggestionService,
		StreamHandler:     streamHandler,
		WebSocketHub:      wsHub,
	}
}
