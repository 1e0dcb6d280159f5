package stt

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/trutalk/voice-server/domain/repositories"
)

// MockSpeechToText is a placeholder implementation for speech recognition,
// used for local development without Google Cloud credentials.
type MockSpeechToText struct {
	logger *zap.Logger
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger) repositories.SpeechToText {
	return &MockSpeechToText{
		logger: logger,
	}
}

// Transcribe implements repositories.SpeechToText
func (s *MockSpeechToText) Transcribe(ctx context.Context, audioData []byte, config repositories.AudioConfig) (*repositories.TranscriptionResult, error) {
	s.logger.Info("Processing mock speech-to-text",
		zap.Int("audioSize", len(audioData)),
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding))

	if len(audioData) == 0 {
		return nil, repositories.ErrEmptyTranscription
	}

	// Mock transcription based on audio size
	var text string
	switch {
	case len(audioData) > 10000:
		text = "Hello, how has your day been so far? I would love to hear about it."
	case len(audioData) > 5000:
		text = "Thank you for listening to me."
	case len(audioData) > 1000:
		text = "Hello there!"
	default:
		text = "Hi"
	}

	lang := config.Language
	if lang == "" || lang == "auto" {
		lang = "en"
	}

	words := make([]repositories.WordTiming, 0)
	for i, word := range strings.Fields(text) {
		words = append(words, repositories.WordTiming{
			Word:      word,
			StartTime: float64(i) * 0.4,
			EndTime:   float64(i)*0.4 + 0.4,
		})
	}

	return &repositories.TranscriptionResult{
		Text:       text,
		Language:   lang,
		Confidence: 0.95,
		Words:      words,
	}, nil
}

// InitTranscribeStreaming creates a new mock streaming session
func (s *MockSpeechToText) InitTranscribeStreaming(ctx context.Context, config repositories.AudioConfig) (repositories.SpeechToTextStreaming, error) {
	s.logger.Info("Initializing mock streaming transcription",
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding),
		zap.String("language", config.Language))

	return &MockSpeechToTextStream{
		logger:      s.logger,
		transcripts: make(chan string, 16),
	}, nil
}

// MockSpeechToTextStream is a mock implementation of streaming speech
// recognition. Every chunk yields one interim transcript.
type MockSpeechToTextStream struct {
	logger      *zap.Logger
	transcripts chan string
}

// Stream implements mock streaming audio processing
func (m *MockSpeechToTextStream) Stream(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	select {
	case m.transcripts <- "mock transcript":
	default:
		m.logger.Warn("Mock transcript channel full, dropping result")
	}

	return nil
}

// Transcripts returns the mock transcript channel
func (m *MockSpeechToTextStream) Transcripts() <-chan string {
	return m.transcripts
}

// Close ends the mock stream
func (m *MockSpeechToTextStream) Close() error {
	close(m.transcripts)
	return nil
}
