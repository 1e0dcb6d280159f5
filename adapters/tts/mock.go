package tts

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/trutalk/voice-server/domain/repositories"
)

// MockTextToSpeech is a placeholder implementation used for local
// development without Google Cloud credentials.
type MockTextToSpeech struct {
	logger *zap.Logger
}

// NewMockTextToSpeech creates a new mock text-to-speech service
func NewMockTextToSpeech(logger *zap.Logger) repositories.TextToSpeech {
	return &MockTextToSpeech{logger: logger}
}

// Synthesize implements repositories.TextToSpeech
func (m *MockTextToSpeech) Synthesize(ctx context.Context, options repositories.SynthesisOptions) ([]byte, error) {
	m.logger.Info("Processing mock text-to-speech",
		zap.String("languageCode", options.LanguageCode),
		zap.Float64("speakingRate", options.SpeakingRate))

	if strings.TrimSpace(options.Text) == "" {
		return nil, repositories.ErrNoAudioContent
	}

	// Simulate audio sized proportionally to the text
	mockAudio := make([]byte, len(options.Text)*100)
	for i := range mockAudio {
		mockAudio[i] = byte(i % 256)
	}

	return mockAudio, nil
}
