package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/trutalk/voice-server/domain/entities"
	"github.com/trutalk/voice-server/domain/repositories"
	"github.com/trutalk/voice-server/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio chunks
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the client domains are final
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active call clients.
type Hub struct {
	// Registered clients keyed by user ID.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	translationService *usecase.VoiceTranslationService
	transcripts        repositories.TranscriptRepository
	requestTimeout     time.Duration

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(
	translationService *usecase.VoiceTranslationService,
	transcripts repositories.TranscriptRepository,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *Hub {
	if requestTimeout == 0 {
		requestTimeout = 30 * time.Second
	}
	return &Hub{
		clients:            make(map[string]*Client),
		register:           make(chan *Client),
		unregister:         make(chan *Client),
		translationService: translationService,
		transcripts:        transcripts,
		requestTimeout:     requestTimeout,
		logger:             logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("userID", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.mu.Unlock()
			client.endSession()
			h.logger.Info("Client unregistered", zap.String("userID", client.userID))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
// Incoming messages are processed sequentially on the read pump, so the
// per-session realtime translator never sees concurrent chunks.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Authenticated user for this connection
	userID string

	// Logger
	logger *zap.Logger

	validator *MessageValidator

	// Call session state, set by the session_start message
	session    *entities.CallSession
	translator *usecase.RealtimeVoiceTranslator
	chunkCount int

	// lastActive guards against stale connections, see CleanupService
	mu         sync.Mutex
	lastActive time.Time
}

// HandleWebSocket handles websocket requests from a pre-authenticated user.
func HandleWebSocket(hub *Hub, c echo.Context, userID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan WriteData, 256),
		userID:     userID,
		logger:     logger,
		validator:  NewMessageValidator(),
		lastActive: time.Now(),
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		c.touch()

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			// Raw binary frames carry audio without the JSON envelope
			c.handleChunk(message, 0)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage processes incoming JSON messages from the client
func (c *Client) processMessage(message []byte) {
	parsed, err := c.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Invalid message", zap.Error(err))
		c.sendJSON(CreateErrorMessage("invalid_message", err.Error(), ""))
		return
	}

	switch msg := parsed.(type) {
	case *SessionStartMessage:
		c.handleSessionStart(msg)
	case *AudioChunkMessage:
		audioData, err := base64.StdEncoding.DecodeString(msg.AudioData)
		if err != nil {
			c.logger.Warn("Failed to decode audio data", zap.Error(err))
			c.sendJSON(CreateErrorMessage("invalid_audio", "audio_data must be base64", ""))
			return
		}
		c.handleChunk(audioData, msg.ChunkSeq)
	case *ResetContextMessage:
		c.handleReset()
	case *PingMessage:
		c.sendJSON(CreatePongMessage(msg.Data))
	}
}

// handleSessionStart creates the call session and its dedicated realtime
// translator. Starting again on an open connection replaces the session.
func (c *Client) handleSessionStart(msg *SessionStartMessage) {
	c.endSession()

	session := entities.NewCallSession(c.userID, msg.SourceLanguage, msg.TargetLanguage)
	ctx, cancel := context.WithTimeout(context.Background(), c.hub.requestTimeout)
	defer cancel()

	if err := c.hub.transcripts.Create(ctx, session); err != nil {
		c.logger.Error("Failed to create call session", zap.Error(err))
		c.sendJSON(CreateErrorMessage("session_failed", "failed to create call session", ""))
		return
	}

	c.session = session
	c.translator = c.hub.translationService.NewRealtimeTranslator(msg.SampleRate, msg.Encoding)
	c.chunkCount = 0

	c.logger.Info("Call session started",
		zap.String("userID", c.userID),
		zap.String("sessionID", session.ID),
		zap.String("targetLanguage", session.TargetLanguage))

	c.sendJSON(&SessionStartedMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeSessionStarted,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		SessionID: session.ID,
	})
}

// handleChunk translates one audio chunk and sends back the synthesized
// translation. Unusable chunks come back as an empty payload; the call is
// never interrupted by a chunk failure.
func (c *Client) handleChunk(audioData []byte, seq int) {
	if c.session == nil || c.translator == nil {
		c.sendJSON(CreateErrorMessage("no_session", "send session_start first", ""))
		return
	}

	c.chunkCount++

	ctx, cancel := context.WithTimeout(context.Background(), c.hub.requestTimeout)
	defer cancel()

	translated := c.translator.TranslateChunk(ctx, audioData, c.session.TargetLanguage, c.session.SourceLanguage)

	if exchange := c.translator.LastExchange(); exchange != nil {
		c.recordExchange(ctx, exchange)
	}

	c.sendJSON(&TranslatedAudioMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeTranslatedAudio,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		SessionID:      c.session.ID,
		AudioData:      base64.StdEncoding.EncodeToString(translated),
		TargetLanguage: c.session.TargetLanguage,
		ChunkSeq:       seq,
	})

	c.logger.Debug("Processed audio chunk",
		zap.String("sessionID", c.session.ID),
		zap.Int("chunkCount", c.chunkCount),
		zap.Int("translatedBytes", len(translated)))
}

// recordExchange persists one translated utterance to the call transcript.
// Persistence failures never interrupt the call.
func (c *Client) recordExchange(ctx context.Context, exchange *usecase.ChunkExchange) {
	entry := entities.TranscriptEntry{
		ID:             uuid.New().String(),
		Speaker:        "caller",
		OriginalText:   exchange.OriginalText,
		TranslatedText: exchange.TranslatedText,
		SourceLanguage: exchange.SourceLanguage,
		TargetLanguage: exchange.TargetLanguage,
		Confidence:     exchange.Confidence,
		CreatedAt:      time.Now(),
	}
	if err := c.hub.transcripts.AppendEntry(ctx, c.session.ID, entry); err != nil {
		c.logger.Warn("Failed to append transcript entry",
			zap.String("sessionID", c.session.ID),
			zap.Error(err))
	}
}

// handleReset clears the translator's rolling context
func (c *Client) handleReset() {
	if c.translator == nil {
		return
	}
	c.translator.Reset()
	c.logger.Info("Translation context reset", zap.String("userID", c.userID))
}

// endSession marks the current call session ended, if any.
func (c *Client) endSession() {
	if c.session == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.hub.requestTimeout)
	defer cancel()

	if err := c.hub.transcripts.End(ctx, c.session.ID); err != nil {
		c.logger.Error("Failed to end call session",
			zap.String("sessionID", c.session.ID),
			zap.Error(err))
	}

	c.session = nil
	c.translator = nil
}

func (c *Client) sendJSON(message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}

	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Send buffer full, dropping message", zap.String("userID", c.userID))
	}
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastActive = time.Now()
	c.mu.Unlock()
}

func (c *Client) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}
