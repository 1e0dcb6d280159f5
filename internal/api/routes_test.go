package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/trutalk/voice-server/adapters"
	"github.com/trutalk/voice-server/adapters/stt"
	"github.com/trutalk/voice-server/adapters/translation"
	"github.com/trutalk/voice-server/adapters/tts"
	"github.com/trutalk/voice-server/domain/entities"
	"github.com/trutalk/voice-server/internal/auth"
	"github.com/trutalk/voice-server/internal/websocket"
	"github.com/trutalk/voice-server/usecase"
)

func setupTestServer(t *testing.T) (*echo.Echo, *adapters.MemoryTranscriptRepository, *auth.Manager) {
	t.Helper()
	logger := zap.NewNop()

	service := usecase.NewVoiceTranslationService(
		stt.NewMockSpeechToText(logger),
		translation.NewMockTranslator(logger),
		translation.NewMockTranslator(logger),
		tts.NewMockTextToSpeech(logger),
		logger,
	)
	transcripts := adapters.NewMemoryTranscriptRepository()
	authManager := auth.NewManager("test-secret", time.Hour)
	hub := websocket.NewHub(service, transcripts, time.Second, logger)

	e := echo.New()
	InitRoutes(e, hub, service, transcripts, authManager, []string{"en", "es", "fr"}, logger)

	return e, transcripts, authManager
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	e, _, _ := setupTestServer(t)

	rec := doJSON(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestTranslateVoice_Success(t *testing.T) {
	e, _, _ := setupTestServer(t)

	audio := base64.StdEncoding.EncodeToString([]byte("some spoken audio payload"))
	payload, _ := json.Marshal(map[string]interface{}{
		"audio":           audio,
		"source_language": "en",
		"target_language": "es",
	})

	rec := doJSON(e, http.MethodPost, "/api/v1/translate/voice", string(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp VoiceTranslateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.OriginalText == "" {
		t.Error("expected non-empty original text")
	}
	if resp.TranslatedText == "" {
		t.Error("expected non-empty translated text")
	}
	if resp.TargetLanguage != "es" {
		t.Errorf("expected target language es, got %q", resp.TargetLanguage)
	}
	if _, err := base64.StdEncoding.DecodeString(resp.TranslatedAudio); err != nil {
		t.Errorf("translated audio is not valid base64: %v", err)
	}
}

func TestTranslateVoice_MissingFields(t *testing.T) {
	e, _, _ := setupTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/translate/voice", `{"source_language":"en"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != "missing_fields" {
		t.Errorf("expected error missing_fields, got %q", resp.Error)
	}
}

func TestTranslateVoice_InvalidBase64(t *testing.T) {
	e, _, _ := setupTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/translate/voice",
		`{"audio":"%%% not base64 %%%","target_language":"es"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != "invalid_audio" {
		t.Errorf("expected error invalid_audio, got %q", resp.Error)
	}
}

func TestTranslateVoice_AppendsTranscriptEntry(t *testing.T) {
	e, transcripts, _ := setupTestServer(t)

	session := entities.NewCallSession("user-1", "en", "es")
	if err := transcripts.Create(context.Background(), session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	audio := base64.StdEncoding.EncodeToString([]byte("some spoken audio payload"))
	payload, _ := json.Marshal(map[string]interface{}{
		"audio":           audio,
		"source_language": "en",
		"target_language": "es",
		"session_id":      session.ID,
	})

	rec := doJSON(e, http.MethodPost, "/api/v1/translate/voice", string(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := transcripts.GetByID(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if len(stored.Transcript) != 1 {
		t.Fatalf("expected 1 transcript entry, got %d", len(stored.Transcript))
	}
	if stored.Transcript[0].TargetLanguage != "es" {
		t.Errorf("expected entry target language es, got %q", stored.Transcript[0].TargetLanguage)
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	e, _, _ := setupTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/languages", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp LanguagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Languages) != 3 {
		t.Errorf("expected 3 languages, got %d", len(resp.Languages))
	}
}

func TestSessionToken_Issue(t *testing.T) {
	e, _, authManager := setupTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/sessions/token", `{"user_id":"user-42"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp SessionTokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.SessionID == "" {
		t.Error("expected a session ID")
	}

	claims, err := authManager.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.UserID != "user-42" {
		t.Errorf("expected user ID user-42, got %q", claims.UserID)
	}
	if claims.SessionID != resp.SessionID {
		t.Errorf("expected session ID %s in claims, got %q", resp.SessionID, claims.SessionID)
	}
}

func TestGetSession(t *testing.T) {
	e, transcripts, _ := setupTestServer(t)

	session := entities.NewCallSession("user-7", "en", "fr")
	if err := transcripts.Create(context.Background(), session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	rec := doJSON(e, http.MethodGet, "/api/v1/sessions/"+session.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var stored entities.CallSession
	if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if stored.ID != session.ID {
		t.Errorf("expected session ID %s, got %s", session.ID, stored.ID)
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/sessions/no-such-session", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown session, got %d", rec.Code)
	}
}

func TestListSessions(t *testing.T) {
	e, transcripts, _ := setupTestServer(t)

	for i := 0; i < 2; i++ {
		session := entities.NewCallSession("user-7", "en", "fr")
		if err := transcripts.Create(context.Background(), session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
	}

	rec := doJSON(e, http.MethodGet, "/api/v1/sessions?caller_id=user-7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var sessions []entities.CallSession
	if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(sessions))
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/sessions", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 without caller_id, got %d", rec.Code)
	}
}

func TestSessionToken_MissingUserID(t *testing.T) {
	e, _, _ := setupTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/sessions/token", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWebSocket_MissingToken(t *testing.T) {
	e, _, _ := setupTestServer(t)

	rec := doJSON(e, http.MethodGet, "/ws", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestWebSocket_InvalidToken(t *testing.T) {
	e, _, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}
