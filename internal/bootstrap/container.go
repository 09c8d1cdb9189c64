package bootstrap

import (
	"context"
	"log"
	"time"

	"esperit-be/internal/config"
	"esperit-be/internal/controller"
	"esperit-be/internal/pkg/logger"
	"esperit-be/internal/repository/unitofwork"
	"esperit-be/internal/service"
	"esperit-be/pkg/llm/factory"
	"esperit-be/pkg/ratelimit"

	pktNats "esperit-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	OAuthController        controller.IOAuthController
	GuestController        controller.IGuestController
	PersonaController      controller.IPersonaController
	ChatController         controller.IChatController
	ConversationController controller.IConversationController

	// Background Services (Exposed for main.go to run)
	TelemetryConsumerService service.ITelemetryConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

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

	// Redis
	var limiter *ratelimit.Limiter
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, rate limiting disabled: %v", err)
	} else {
		limiter = ratelimit.NewLimiter(rdb, "chat", cfg.Guest.ChatRatePerHour, time.Hour)
	}

	// LLM Provider
	llmProvider, moderator, err := factory.NewProvider(
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Keys.GoogleGemini,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	// 3. Services
	eventPublisher := service.NewEventPublisher(service.LedgerEventsTopic, pubSub, sysLogger)
	telemetryConsumer := service.NewTelemetryConsumerService(service.LedgerEventsTopic, pubSub, natsPub, sysLogger)

	identityService := service.NewIdentityService(service.NewJWTVerifier(cfg.OAuth.JWTSecret))
	ledgerService := service.NewGuestLedgerService(uowFactory, eventPublisher, sysLogger, cfg.Guest.MessageLimit)
	personaService := service.NewPersonaService(uowFactory)
	conversationService := service.NewConversationService(uowFactory, sysLogger)
	oauthService := service.NewOAuthService(uowFactory, ledgerService, cfg.OAuth, sysLogger)

	chatService := service.NewChatService(
		uowFactory,
		personaService,
		ledgerService,
		llmProvider,
		moderator,
		eventPublisher,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		OAuthController:        controller.NewOAuthController(oauthService, cfg.App.ClientURL, sysLogger),
		GuestController:        controller.NewGuestController(ledgerService, identityService),
		PersonaController:      controller.NewPersonaController(personaService, cfg.OAuth.JWTSecret),
		ChatController:         controller.NewChatController(chatService, identityService, limiter, sysLogger),
		ConversationController: controller.NewConversationController(conversationService, identityService),

		TelemetryConsumerService: telemetryConsumer,
	}
}
