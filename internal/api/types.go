package api

import "time"

// VoiceTranslateRequest represents the request payload for one-shot voice
// translation. Audio is base64 encoded. PreserveEmotion defaults to true
// when omitted.
type VoiceTranslateRequest struct {
	Audio           string   `json:"audio" validate:"required"`
	SourceLanguage  string   `json:"source_language,omitempty"`
	TargetLanguage  string   `json:"target_language" validate:"required"`
	PreserveEmotion *bool    `json:"preserve_emotion,omitempty"`
	SpeakingRate    float64  `json:"speaking_rate,omitempty"`
	Pitch           *float64 `json:"pitch,omitempty"`
	SampleRate      int      `json:"sample_rate,omitempty"`
	Encoding        string   `json:"encoding,omitempty"`
	SessionID       string   `json:"session_id,omitempty"`
}

// VoiceTranslateResponse represents the response payload for one-shot
// voice translation. TranslatedAudio is base64 encoded.
type VoiceTranslateResponse struct {
	OriginalText    string  `json:"original_text"`
	TranslatedText  string  `json:"translated_text"`
	TranslatedAudio string  `json:"translated_audio"`
	SourceLanguage  string  `json:"source_language"`
	TargetLanguage  string  `json:"target_language"`
	Confidence      float64 `json:"confidence"`
}

// LanguagesResponse lists the language codes covered by the primary
// translation provider
type LanguagesResponse struct {
	Languages []string `json:"languages"`
}

// SessionTokenRequest represents the request payload for issuing a call
// session token
type SessionTokenRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// SessionTokenResponse represents the response payload for a call session
// token
type SessionTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	SessionID string    `json:"session_id"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
