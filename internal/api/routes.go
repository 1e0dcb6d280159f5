package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/trutalk/voice-server/domain/entities"
	"github.com/trutalk/voice-server/domain/repositories"
	"github.com/trutalk/voice-server/internal/auth"
	"github.com/trutalk/voice-server/internal/websocket"
	"github.com/trutalk/voice-server/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(
	e *echo.Echo,
	hub *websocket.Hub,
	service *usecase.VoiceTranslationService,
	transcripts repositories.TranscriptRepository,
	authManager *auth.Manager,
	supportedLanguages []string,
	logger *zap.Logger,
) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "trutalk-voice-server",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/translate/voice", func(c echo.Context) error {
		return translateVoice(c, service, transcripts, logger)
	})

	v1.GET("/languages", func(c echo.Context) error {
		return c.JSON(http.StatusOK, LanguagesResponse{Languages: supportedLanguages})
	})

	v1.POST("/sessions/token", func(c echo.Context) error {
		return issueSessionToken(c, authManager, logger)
	})

	v1.GET("/sessions/:id", func(c echo.Context) error {
		return getSession(c, transcripts, logger)
	})

	v1.GET("/sessions", func(c echo.Context) error {
		return listSessions(c, transcripts, logger)
	})

	// WebSocket endpoint with JWT validation
	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(hub, c, authManager, logger)
	})
}

// translateVoice runs the one-shot voice-to-voice pipeline over HTTP.
func translateVoice(
	c echo.Context,
	service *usecase.VoiceTranslationService,
	transcripts repositories.TranscriptRepository,
	logger *zap.Logger,
) error {
	var req VoiceTranslateRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind translate request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if req.Audio == "" || req.TargetLanguage == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Audio and target language are required",
		})
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: "Audio must be base64 encoded",
		})
	}

	// Emotion preservation is on unless explicitly disabled
	preserveEmotion := true
	if req.PreserveEmotion != nil {
		preserveEmotion = *req.PreserveEmotion
	}
	var pitch float64
	if req.Pitch != nil {
		pitch = *req.Pitch
	}

	result, err := service.TranslateVoice(c.Request().Context(), usecase.VoiceTranslationOptions{
		Audio:           audio,
		SourceLanguage:  req.SourceLanguage,
		TargetLanguage:  req.TargetLanguage,
		PreserveEmotion: preserveEmotion,
		SpeakingRate:    req.SpeakingRate,
		Pitch:           pitch,
		SampleRate:      req.SampleRate,
		Encoding:        req.Encoding,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrVoiceTranslationFailed) {
			return c.JSON(http.StatusBadGateway, ErrorResponse{
				Error:   "translation_failed",
				Message: "Voice translation failed",
			})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Unexpected error",
		})
	}

	// Persist the exchange when the caller supplied a call session. Failure
	// to persist never fails the translation itself.
	if req.SessionID != "" {
		entry := entities.TranscriptEntry{
			ID:             uuid.New().String(),
			Speaker:        "caller",
			OriginalText:   result.OriginalText,
			TranslatedText: result.TranslatedText,
			SourceLanguage: result.SourceLanguage,
			TargetLanguage: result.TargetLanguage,
			Confidence:     result.Confidence,
			CreatedAt:      time.Now(),
		}
		if err := transcripts.AppendEntry(c.Request().Context(), req.SessionID, entry); err != nil {
			logger.Warn("Failed to append transcript entry",
				zap.String("session_id", req.SessionID),
				zap.Error(err))
		}
	}

	return c.JSON(http.StatusOK, VoiceTranslateResponse{
		OriginalText:    result.OriginalText,
		TranslatedText:  result.TranslatedText,
		TranslatedAudio: base64.StdEncoding.EncodeToString(result.TranslatedAudio),
		SourceLanguage:  result.SourceLanguage,
		TargetLanguage:  result.TargetLanguage,
		Confidence:      result.Confidence,
	})
}

// getSession returns one call session with its transcript.
func getSession(c echo.Context, transcripts repositories.TranscriptRepository, logger *zap.Logger) error {
	session, err := transcripts.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		logger.Error("Failed to load call session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load call session",
		})
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Call session not found",
		})
	}
	return c.JSON(http.StatusOK, session)
}

// listSessions returns the call history for one caller.
func listSessions(c echo.Context, transcripts repositories.TranscriptRepository, logger *zap.Logger) error {
	callerID := c.QueryParam("caller_id")
	if callerID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "caller_id query parameter is required",
		})
	}

	sessions, err := transcripts.GetByCallerID(c.Request().Context(), callerID)
	if err != nil {
		logger.Error("Failed to list call sessions",
			zap.String("caller_id", callerID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list call sessions",
		})
	}
	return c.JSON(http.StatusOK, sessions)
}

// issueSessionToken mints a JWT for one call session.
func issueSessionToken(c echo.Context, authManager *auth.Manager, logger *zap.Logger) error {
	var req SessionTokenRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind session token request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "User ID is required",
		})
	}

	sessionID := uuid.New().String()
	token, err := authManager.GenerateSessionToken(req.UserID, sessionID)
	if err != nil {
		logger.Error("Failed to generate session token",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	logger.Info("Session token issued",
		zap.String("user_id", req.UserID),
		zap.String("session_id", sessionID))

	return c.JSON(http.StatusOK, SessionTokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(authManager.TTL()),
		SessionID: sessionID,
	})
}

// websocketWithAuth handles WebSocket connections with JWT authentication
func websocketWithAuth(hub *websocket.Hub, c echo.Context, authManager *auth.Manager, logger *zap.Logger) error {
	// Extract JWT token from Authorization header only
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" && len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		token = authHeader[7:]
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required in Authorization header",
		})
	}

	claims, err := authManager.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		})
	}

	if claims.UserID == "" {
		logger.Error("WebSocket connection rejected: missing user ID in token")
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_token_claims",
			Message: "User ID not found in token",
		})
	}

	logger.Info("WebSocket connection authenticated",
		zap.String("user_id", claims.UserID))

	return websocket.HandleWebSocket(hub, c, claims.UserID, logger)
}
