package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CallStatus represents the status of a translated call session
type CallStatus string

const (
	CallStatusActive CallStatus = "active"
	CallStatusEnded  CallStatus = "ended"
)

// TranscriptEntry is one translated utterance within a call: the original
// text as spoken, the translation delivered to the other side, and the
// transcription confidence reported by the speech provider.
type TranscriptEntry struct {
	ID             string    `json:"id" bson:"id"`
	Speaker        string    `json:"speaker" bson:"speaker"`
	OriginalText   string    `json:"original_text" bson:"original_text"`
	TranslatedText string    `json:"translated_text" bson:"translated_text"`
	SourceLanguage string    `json:"source_language" bson:"source_language"`
	TargetLanguage string    `json:"target_language" bson:"target_language"`
	Confidence     float64   `json:"confidence" bson:"confidence"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// CallSession represents one live translated call between two speakers.
type CallSession struct {
	ID             string            `json:"id" bson:"_id,omitempty"`
	CallerID       string            `json:"caller_id" bson:"caller_id"`
	SourceLanguage string            `json:"source_language" bson:"source_language"`
	TargetLanguage string            `json:"target_language" bson:"target_language"`
	Status         CallStatus        `json:"status" bson:"status"`
	StartedAt      time.Time         `json:"started_at" bson:"started_at"`
	EndedAt        *time.Time        `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
	Transcript     []TranscriptEntry `json:"transcript" bson:"transcript"`
}

// NewCallSession creates a new active call session. Language codes are
// normalized to lowercase ISO 639-1.
func NewCallSession(callerID, sourceLanguage, targetLanguage string) *CallSession {
	return &CallSession{
		ID:             uuid.NewString(),
		CallerID:       callerID,
		SourceLanguage: strings.ToLower(sourceLanguage),
		TargetLanguage: strings.ToLower(targetLanguage),
		Status:         CallStatusActive,
		StartedAt:      time.Now(),
		Transcript:     make([]TranscriptEntry, 0),
	}
}

// AddEntry appends a translated utterance to the call transcript and
// returns the stored entry.
func (c *CallSession) AddEntry(speaker, originalText, translatedText, sourceLanguage, targetLanguage string, confidence float64) TranscriptEntry {
	entry := TranscriptEntry{
		ID:             uuid.NewString(),
		Speaker:        speaker,
		OriginalText:   originalText,
		TranslatedText: translatedText,
		SourceLanguage: strings.ToLower(sourceLanguage),
		TargetLanguage: strings.ToLower(targetLanguage),
		Confidence:     confidence,
		CreatedAt:      time.Now(),
	}
	c.Transcript = append(c.Transcript, entry)
	return entry
}

// End marks the session as ended.
func (c *CallSession) End() {
	now := time.Now()
	c.Status = CallStatusEnded
	c.EndedAt = &now
}

// Duration returns how long the call has been running, or its total
// length once ended.
func (c *CallSession) Duration() time.Duration {
	if c.EndedAt != nil {
		return c.EndedAt.Sub(c.StartedAt)
	}
	return time.Since(c.StartedAt)
}

// Validate validates the session data
func (c *CallSession) Validate() error {
	if c.CallerID == "" {
		return errors.New("caller_id is required")
	}
	if c.TargetLanguage == "" {
		return errors.New("target_language is required")
	}
	if c.Status != CallStatusActive && c.Status != CallStatusEnded {
		return errors.New("invalid call status")
	}
	return nil
}
