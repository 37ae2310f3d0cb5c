package bootstrap

import (
	"context"
	"log"

	"ai-jobagent-be/internal/config"
	"ai-jobagent-be/internal/controller"
	"ai-jobagent-be/internal/handler"
	"ai-jobagent-be/internal/pkg/logger"
	"ai-jobagent-be/internal/pkg/mailer"
	"ai-jobagent-be/internal/repository/unitofwork"
	"ai-jobagent-be/internal/service"
	"ai-jobagent-be/internal/websocket"
	"ai-jobagent-be/pkg/agent"
	"ai-jobagent-be/pkg/agent/checkpoint"
	"ai-jobagent-be/pkg/agent/orchestrator"
	"ai-jobagent-be/pkg/agent/session"
	"ai-jobagent-be/pkg/agent/stream"
	"ai-jobagent-be/pkg/embedding"
	"ai-jobagent-be/pkg/embedding/jina"
	"ai-jobagent-be/pkg/llm/factory"
	"ai-jobagent-be/pkg/tools"

	pktNats "ai-jobagent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const notificationTopic = "agent_notifications"

type Container struct {
	// Controllers
	AuthController        controller.IAuthController
	UserController        controller.IUserController
	ProfileController     controller.IProfileController
	PreferencesController controller.IPreferencesController
	BookmarkController    controller.IBookmarkController
	ChatController        controller.IChatController

	// Background services, main.go runs these
	ConsumerService service.IConsumerService

	// WebSockets
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Local event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Keys.DeepSeek,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

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

	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Agent runtime
	toolRegistry := tools.NewRegistry(
		tools.NewTavilySearch(cfg.Keys.Tavily),
		tools.NewBraveSearch(cfg.Keys.Brave),
		tools.NewFirecrawlScrape(cfg.Keys.Firecrawl),
	)

	checkpointStore := checkpoint.NewGormStore(db)
	agentLogger := logger.NewIsolatedLogger("logs/agent.log")

	registry := session.NewRegistry(func(threadID string) (agent.Runtime, error) {
		return orchestrator.New(llmProvider, toolRegistry, checkpointStore, agentLogger), nil
	}, cfg.Agent.RegistrySize, cfg.Agent.RegistryTTL)

	approvalStore := stream.NewMemoryApprovalStore()
	streamController := stream.NewController(approvalStore, agentLogger)

	// 6. Services
	authService := service.NewAuthService(uowFactory, natsPub, sysLogger)
	userService := service.NewUserService(uowFactory)
	profileService := service.NewProfileService(uowFactory, llmProvider, tools.PlainTextExtractor{}, sysLogger)
	preferencesService := service.NewPreferencesService(uowFactory)
	bookmarkService := service.NewBookmarkService(uowFactory, embeddingProvider, sysLogger)
	chatService := service.NewChatService(
		uowFactory,
		registry,
		streamController,
		approvalStore,
		natsPub,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		natsSub,
		pubSub,
		notificationTopic,
		uowFactory,
		wsHub,
		emailService,
	)

	notifHandler := handler.NewNotificationHandler(natsPub, wsHub, wsLogger)

	// 7. Controllers
	return &Container{
		NotificationHandler:   notifHandler,
		WebSocketHub:          wsHub,
		AuthController:        controller.NewAuthController(authService),
		UserController:        controller.NewUserController(userService),
		ProfileController:     controller.NewProfileController(profileService),
		PreferencesController: controller.NewPreferencesController(preferencesService),
		BookmarkController:    controller.NewBookmarkController(bookmarkService),
		ChatController:        controller.NewChatController(chatService),

		ConsumerService: consumerService,
	}
}
