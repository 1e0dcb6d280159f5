package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeSessionStart    MessageType = "session_start"
	MessageTypeSessionStarted  MessageType = "session_started"
	MessageTypeAudioChunk      MessageType = "audio_chunk"
	MessageTypeTranslatedAudio MessageType = "translated_audio"
	MessageTypeResetContext    MessageType = "reset_context"
	MessageTypePing            MessageType = "ping"
	MessageTypePong            MessageType = "pong"
	MessageTypeError           MessageType = "error"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// SessionStartMessage opens a translated call session on this connection.
// SourceLanguage empty means auto-detect per chunk.
type SessionStartMessage struct {
	BaseMessage
	TargetLanguage string `json:"target_language"`
	SourceLanguage string `json:"source_language,omitempty"`
	SampleRate     int    `json:"sample_rate,omitempty"`
	Encoding       string `json:"encoding,omitempty"`
}

// SessionStartedMessage acknowledges session creation
type SessionStartedMessage struct {
	BaseMessage
	SessionID string `json:"session_id"`
}

// AudioChunkMessage carries one base64-encoded audio chunk from the caller
type AudioChunkMessage struct {
	BaseMessage
	AudioData string `json:"audio_data"`
	ChunkSeq  int    `json:"chunk_sequence,omitempty"`
}

// TranslatedAudioMessage carries the synthesized translation of one chunk.
// AudioData is empty for silent or unusable chunks.
type TranslatedAudioMessage struct {
	BaseMessage
	SessionID      string `json:"session_id"`
	AudioData      string `json:"audio_data"`
	TargetLanguage string `json:"target_language"`
	ChunkSeq       int    `json:"chunk_sequence,omitempty"`
}

// ResetContextMessage clears the rolling translation context, e.g. when
// the speaker changes
type ResetContextMessage struct {
	BaseMessage
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage validates an incoming message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	// First parse as base message to get type
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeSessionStart:
		var msg SessionStartMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid session start message: %w", err)
		}
		if err := v.validateSessionStart(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypeAudioChunk:
		var msg AudioChunkMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid audio chunk message: %w", err)
		}
		if msg.AudioData == "" {
			return nil, fmt.Errorf("audio_data is required")
		}
		return &msg, nil

	case MessageTypeResetContext:
		var msg ResetContextMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid reset context message: %w", err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

func (v *MessageValidator) validateSessionStart(msg *SessionStartMessage) error {
	if msg.TargetLanguage == "" {
		return fmt.Errorf("target_language is required")
	}
	if msg.SampleRate != 0 && (msg.SampleRate < 8000 || msg.SampleRate > 48000) {
		return fmt.Errorf("sample_rate must be between 8000 and 48000")
	}
	return nil
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message, details string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
		Details: details,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Data: data,
	}
}
