package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/trutalk/voice-server/adapters"
	"github.com/trutalk/voice-server/adapters/stt"
	"github.com/trutalk/voice-server/adapters/translation"
	"github.com/trutalk/voice-server/adapters/tts"
	"github.com/trutalk/voice-server/domain/entities"
	"github.com/trutalk/voice-server/usecase"
)

func setupTestHub(t testing.TB) (*Hub, *adapters.MemoryTranscriptRepository) {
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
	hub := NewHub(service, transcripts, time.Second, logger)

	return hub, transcripts
}

func newTestClient(hub *Hub, userID string) *Client {
	return &Client{
		hub:        hub,
		userID:     userID,
		send:       make(chan WriteData, 256),
		logger:     zap.NewNop(),
		validator:  NewMessageValidator(),
		lastActive: time.Now(),
	}
}

func receiveJSON(t *testing.T, client *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-client.send:
		var decoded map[string]interface{}
		if err := json.Unmarshal(data.Payload, &decoded); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		return decoded
	case <-time.After(time.Second):
		t.Fatal("no response received within timeout")
		return nil
	}
}

func TestHub_NewHub(t *testing.T) {
	hub, _ := setupTestHub(t)

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}
	if hub.clients == nil {
		t.Error("Hub clients map not initialized")
	}
	if hub.register == nil {
		t.Error("Hub register channel not initialized")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel not initialized")
	}
}

func TestHub_DefaultRequestTimeout(t *testing.T) {
	logger := zap.NewNop()
	service := usecase.NewVoiceTranslationService(
		stt.NewMockSpeechToText(logger),
		translation.NewMockTranslator(logger),
		translation.NewMockTranslator(logger),
		tts.NewMockTextToSpeech(logger),
		logger,
	)
	hub := NewHub(service, adapters.NewMemoryTranscriptRepository(), 0, logger)

	if hub.requestTimeout != 30*time.Second {
		t.Errorf("expected default request timeout 30s, got %v", hub.requestTimeout)
	}
}

func TestClient_SessionStartCreatesSession(t *testing.T) {
	hub, transcripts := setupTestHub(t)
	client := newTestClient(hub, "caller-1")

	client.processMessage([]byte(`{"type":"session_start","target_language":"es","source_language":"en"}`))

	response := receiveJSON(t, client)
	if response["type"] != "session_started" {
		t.Fatalf("expected session_started, got %v", response["type"])
	}
	sessionID, _ := response["session_id"].(string)
	if sessionID == "" {
		t.Fatal("expected session_id in response")
	}

	if client.session == nil || client.translator == nil {
		t.Fatal("expected client session and translator to be set")
	}

	stored, err := transcripts.GetByID(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("failed to load stored session: %v", err)
	}
	if stored == nil {
		t.Fatal("expected session to be persisted")
	}
	if stored.TargetLanguage != "es" {
		t.Errorf("expected target language es, got %q", stored.TargetLanguage)
	}
}

func TestClient_AudioChunkWithoutSession(t *testing.T) {
	hub, _ := setupTestHub(t)
	client := newTestClient(hub, "caller-1")

	audio := base64.StdEncoding.EncodeToString([]byte("hello there"))
	client.processMessage([]byte(fmt.Sprintf(`{"type":"audio_chunk","audio_data":"%s"}`, audio)))

	response := receiveJSON(t, client)
	if response["type"] != "error" {
		t.Fatalf("expected error, got %v", response["type"])
	}
	if response["error_code"] != "no_session" {
		t.Errorf("expected error code no_session, got %v", response["error_code"])
	}
}

func TestClient_AudioChunkReturnsTranslatedAudio(t *testing.T) {
	hub, transcripts := setupTestHub(t)
	client := newTestClient(hub, "caller-1")

	client.processMessage([]byte(`{"type":"session_start","target_language":"es","source_language":"en"}`))
	started := receiveJSON(t, client)
	sessionID := started["session_id"].(string)

	audio := base64.StdEncoding.EncodeToString([]byte("hello there my friend"))
	client.processMessage([]byte(fmt.Sprintf(`{"type":"audio_chunk","audio_data":"%s","chunk_sequence":7}`, audio)))

	response := receiveJSON(t, client)
	if response["type"] != "translated_audio" {
		t.Fatalf("expected translated_audio, got %v", response["type"])
	}
	if response["session_id"] != sessionID {
		t.Errorf("expected session_id %s, got %v", sessionID, response["session_id"])
	}
	if response["target_language"] != "es" {
		t.Errorf("expected target_language es, got %v", response["target_language"])
	}
	if seq, _ := response["chunk_sequence"].(float64); int(seq) != 7 {
		t.Errorf("expected chunk_sequence 7, got %v", response["chunk_sequence"])
	}

	payload, err := base64.StdEncoding.DecodeString(response["audio_data"].(string))
	if err != nil {
		t.Fatalf("audio_data is not valid base64: %v", err)
	}
	if len(payload) == 0 {
		t.Error("expected non-empty translated audio")
	}

	stored, err := transcripts.GetByID(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if len(stored.Transcript) != 1 {
		t.Fatalf("expected 1 transcript entry, got %d", len(stored.Transcript))
	}
	if stored.Transcript[0].OriginalText == "" || stored.Transcript[0].TranslatedText == "" {
		t.Error("expected transcript entry to carry both text sides")
	}
}

func TestClient_InvalidAudioDataRejected(t *testing.T) {
	hub, _ := setupTestHub(t)
	client := newTestClient(hub, "caller-1")

	client.processMessage([]byte(`{"type":"session_start","target_language":"es"}`))
	receiveJSON(t, client)

	client.processMessage([]byte(`{"type":"audio_chunk","audio_data":"%%% not base64 %%%"}`))

	response := receiveJSON(t, client)
	if response["type"] != "error" {
		t.Fatalf("expected error, got %v", response["type"])
	}
	if response["error_code"] != "invalid_audio" {
		t.Errorf("expected error code invalid_audio, got %v", response["error_code"])
	}
}

func TestClient_PingPong(t *testing.T) {
	hub, _ := setupTestHub(t)
	client := newTestClient(hub, "caller-1")

	client.processMessage([]byte(`{"type":"ping","data":"hi"}`))

	response := receiveJSON(t, client)
	if response["type"] != "pong" {
		t.Fatalf("expected pong, got %v", response["type"])
	}
	if response["data"] != "hi" {
		t.Errorf("expected data hi, got %v", response["data"])
	}
}

func TestClient_InvalidMessageReturnsError(t *testing.T) {
	hub, _ := setupTestHub(t)
	client := newTestClient(hub, "caller-1")

	client.processMessage([]byte(`{invalid json}`))

	response := receiveJSON(t, client)
	if response["type"] != "error" {
		t.Fatalf("expected error, got %v", response["type"])
	}
}

func TestClient_EndSessionMarksEnded(t *testing.T) {
	hub, transcripts := setupTestHub(t)
	client := newTestClient(hub, "caller-1")

	client.processMessage([]byte(`{"type":"session_start","target_language":"fr"}`))
	started := receiveJSON(t, client)
	sessionID := started["session_id"].(string)

	client.endSession()

	stored, err := transcripts.GetByID(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("failed to load stored session: %v", err)
	}
	if stored.Status != entities.CallStatusEnded {
		t.Errorf("expected session status ended, got %q", stored.Status)
	}
	if client.session != nil || client.translator != nil {
		t.Error("expected client session state to be cleared")
	}
}

func TestClient_SessionRestartEndsPrevious(t *testing.T) {
	hub, transcripts := setupTestHub(t)
	client := newTestClient(hub, "caller-1")

	client.processMessage([]byte(`{"type":"session_start","target_language":"de"}`))
	first := receiveJSON(t, client)
	firstID := first["session_id"].(string)

	client.processMessage([]byte(`{"type":"session_start","target_language":"it"}`))
	second := receiveJSON(t, client)
	secondID := second["session_id"].(string)

	if firstID == secondID {
		t.Fatal("expected a new session ID on restart")
	}

	stored, err := transcripts.GetByID(context.Background(), firstID)
	if err != nil {
		t.Fatalf("failed to load first session: %v", err)
	}
	if stored.Status != entities.CallStatusEnded {
		t.Errorf("expected first session to be ended, got %q", stored.Status)
	}
}

func TestConcurrentClientHandling(t *testing.T) {
	hub, _ := setupTestHub(t)
	go hub.Run()

	numClients := 10
	clients := make([]*Client, numClients)
	for i := 0; i < numClients; i++ {
		clients[i] = newTestClient(hub, fmt.Sprintf("caller-%d", i))
		hub.register <- clients[i]
	}

	time.Sleep(100 * time.Millisecond)

	if got := hub.ClientCount(); got != numClients {
		t.Errorf("expected %d clients, got %d", numClients, got)
	}

	for _, client := range clients {
		hub.unregister <- client
	}

	time.Sleep(100 * time.Millisecond)

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients, got %d", got)
	}
}
