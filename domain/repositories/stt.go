package repositories

import (
	"context"
	"errors"
)

// ErrEmptyTranscription is returned when the speech provider produced no
// results or alternatives for the given audio. Callers must treat this as
// non-retryable for that audio (silence or garbage input).
var ErrEmptyTranscription = errors.New("no transcription results")

// ErrTranscriptionFailed wraps any provider error raised during a
// transcription call.
var ErrTranscriptionFailed = errors.New("transcription failed")

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// Transcribe converts one utterance of audio into text with
	// word-level timing and a confidence score
	Transcribe(ctx context.Context, audioData []byte, config AudioConfig) (*TranscriptionResult, error)
	// InitTranscribeStreaming initializes a streaming transcription session
	InitTranscribeStreaming(ctx context.Context, config AudioConfig) (SpeechToTextStreaming, error)
}

// AudioConfig represents audio configuration for speech recognition.
// Language is an ISO 639-1 code or "auto"; with "auto" the adapter asks
// the provider to detect among a configured candidate list instead of
// leaving detection unconstrained.
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// WordTiming is the provider-reported timing of a single recognized word.
// Times are seconds from the start of the utterance, StartTime <= EndTime.
type WordTiming struct {
	Word      string  `json:"word"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// TranscriptionResult is the outcome of a single Transcribe call.
type TranscriptionResult struct {
	Text       string       `json:"text"`
	Language   string       `json:"language"`
	Confidence float64      `json:"confidence"`
	Words      []WordTiming `json:"words"`
}

// SpeechToTextStreaming is an open transcription stream for a live call.
// Transcripts delivers interim and final transcript strings in order and
// is closed when the provider stream ends or fails; there is no automatic
// reconnect. Close stops the stream from the caller's side.
type SpeechToTextStreaming interface {
	Stream(data []byte) error
	Transcripts() <-chan string
	Close() error
}
