package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/trutalk/voice-server/adapters"
	mongodb "github.com/trutalk/voice-server/adapters/mongo"
	"github.com/trutalk/voice-server/adapters/stt"
	"github.com/trutalk/voice-server/adapters/translation"
	"github.com/trutalk/voice-server/adapters/tts"
	"github.com/trutalk/voice-server/domain/repositories"
	"github.com/trutalk/voice-server/internal/api"
	"github.com/trutalk/voice-server/internal/auth"
	"github.com/trutalk/voice-server/internal/config"
	"github.com/trutalk/voice-server/internal/websocket"
	"github.com/trutalk/voice-server/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// .env is optional; real deployments configure through the environment
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded configuration from .env file")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize provider adapters
	speechToText, primary, fallback, textToSpeech := buildProviders(ctx, cfg, logger)

	// Transcript storage: MongoDB when configured, in-memory otherwise
	var transcripts repositories.TranscriptRepository
	if cfg.MongoURI != "" {
		client, err := mongodb.NewClient(cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Close(closeCtx)
		}()
		transcripts = mongodb.NewTranscriptRepository(client.Database)
	} else {
		logger.Info("MONGODB_URI not set, using in-memory transcript storage")
		transcripts = adapters.NewMemoryTranscriptRepository()
	}

	// Initialize usecase services
	translationService := usecase.NewVoiceTranslationService(speechToText, primary, fallback, textToSpeech, logger)

	authManager := auth.NewManager(cfg.JWTSecret, 0)

	// Initialize WebSocket hub with the translation service
	hub := websocket.NewHub(translationService, transcripts, cfg.RequestTimeout, logger)
	go hub.Run()

	cleanup := websocket.NewCleanupService(hub, logger)
	cleanup.Start()
	defer cleanup.Stop()

	// Initialize API routes
	api.InitRoutes(e, hub, translationService, transcripts, authManager, translation.SupportedLanguages(), logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Voice translation server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildProviders wires the speech and translation providers, or their
// local mocks when USE_MOCK_PROVIDERS=true.
func buildProviders(ctx context.Context, cfg config.Config, logger *zap.Logger) (
	repositories.SpeechToText,
	repositories.Translator,
	repositories.Translator,
	repositories.TextToSpeech,
) {
	if cfg.UseMockProviders {
		logger.Warn("Using mock providers, translations are not real")
		return stt.NewMockSpeechToText(logger),
			translation.NewMockTranslator(logger),
			translation.NewMockTranslator(logger),
			tts.NewMockTextToSpeech(logger)
	}

	speechToText, err := stt.NewGoogleSpeechToText(ctx, nil, logger)
	if err != nil {
		logger.Fatal("Failed to create speech-to-text client", zap.Error(err))
	}

	primary, err := translation.NewDeepLTranslator(translation.DeepLConfig{
		APIKey:     cfg.DeepLAPIKey,
		APIBaseURL: cfg.DeepLAPIBaseURL,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create DeepL translator", zap.Error(err))
	}

	fallback, err := translation.NewGoogleTranslator(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to create fallback translator", zap.Error(err))
	}

	textToSpeech, err := tts.NewGoogleTextToSpeech(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to create text-to-speech client", zap.Error(err))
	}

	return speechToText, primary, fallback, textToSpeech
}
