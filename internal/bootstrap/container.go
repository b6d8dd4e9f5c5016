package bootstrap

import (
	"log"

	"ai-scorestudio/internal/config"
	"ai-scorestudio/internal/controller"
	"ai-scorestudio/internal/events"
	"ai-scorestudio/internal/pkg/logger"
	"ai-scorestudio/internal/service"
	"ai-scorestudio/internal/websocket"
	"ai-scorestudio/pkg/llm/factory"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	ScoreController controller.IScoreController

	// WebSockets & Events
	Hub *websocket.Hub
	Bus *events.Bus

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	bus := events.NewBus()

	// 2. LLM Provider
	provider, err := factory.NewLLMProvider(cfg.Ai.Provider, cfg.Ai.Model, cfg.Ai.OllamaBaseURL, cfg.Ai.AnthropicAPIKey)
	if err != nil {
		log.Panicf("Unable to initialize LLM provider: %v", err)
	}

	// 3. Services
	var engravingService service.IEngravingService
	if cfg.Engraving.Enabled {
		engravingService = service.NewEngravingService(provider, cfg.Engraving.Model, cfg.Ai.MaxTokens)
	}
	chatService := service.NewChatService(provider, engravingService, bus, appLogger, cfg.Ai.MaxTokens)
	scoreService := service.NewScoreService()

	// 4. Controllers
	chatController := controller.NewChatController(chatService, appLogger)
	scoreController := controller.NewScoreController(scoreService)

	// 5. WebSocket Hub (consumes bus events, main.go runs it)
	hub := websocket.NewHub(bus, appLogger)

	return &Container{
		ChatController:  chatController,
		ScoreController: scoreController,
		Hub:             hub,
		Bus:             bus,
		Logger:          appLogger,
	}
}
