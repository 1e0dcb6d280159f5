package stt

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/trutalk/voice-server/domain/repositories"
)

func TestGetAudioEncoding(t *testing.T) {
	cases := []struct {
		encoding string
		wantErr  bool
	}{
		{"LINEAR16", false},
		{"WAV", false},
		{"MP3", false},
		{"WEBM_OPUS", false},
		{"OGG_OPUS", false},
		{"VORBIS", true},
		{"", true},
	}

	for _, tc := range cases {
		_, err := getAudioEncoding(tc.encoding)
		if tc.wantErr && err == nil {
			t.Errorf("getAudioEncoding(%q): expected error, got nil", tc.encoding)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("getAudioEncoding(%q): unexpected error: %v", tc.encoding, err)
		}
	}
}

func TestBuildRecognitionConfig_AutoDetect(t *testing.T) {
	g := &GoogleSpeechToText{
		alternativeLanguages: defaultAlternativeLanguages,
		logger:               zaptest.NewLogger(t),
	}

	cfg, err := g.buildRecognitionConfig(repositories.AudioConfig{
		SampleRate: 48000,
		Encoding:   "MP3",
		Language:   "auto",
	})
	if err != nil {
		t.Fatalf("buildRecognitionConfig failed: %v", err)
	}

	if cfg.LanguageCode != "en-US" {
		t.Errorf("Expected primary language en-US, got %s", cfg.LanguageCode)
	}
	if len(cfg.AlternativeLanguageCodes) == 0 {
		t.Error("Expected alternative language candidates for auto-detect")
	}
	if !cfg.EnableWordTimeOffsets {
		t.Error("Expected word time offsets to be enabled")
	}
	if !cfg.EnableAutomaticPunctuation {
		t.Error("Expected automatic punctuation to be enabled")
	}
}

func TestBuildRecognitionConfig_ExplicitLanguage(t *testing.T) {
	g := &GoogleSpeechToText{
		alternativeLanguages: defaultAlternativeLanguages,
		logger:               zaptest.NewLogger(t),
	}

	cfg, err := g.buildRecognitionConfig(repositories.AudioConfig{
		SampleRate: 16000,
		Encoding:   "LINEAR16",
		Language:   "es",
	})
	if err != nil {
		t.Fatalf("buildRecognitionConfig failed: %v", err)
	}

	if cfg.LanguageCode != "es-ES" {
		t.Errorf("Expected es-ES, got %s", cfg.LanguageCode)
	}
	if len(cfg.AlternativeLanguageCodes) != 0 {
		t.Error("Expected no alternatives when language is explicit")
	}
}

func TestMockSpeechToText_EmptyAudio(t *testing.T) {
	mock := NewMockSpeechToText(zaptest.NewLogger(t))

	_, err := mock.Transcribe(context.Background(), nil, repositories.AudioConfig{})
	if !errors.Is(err, repositories.ErrEmptyTranscription) {
		t.Errorf("Expected ErrEmptyTranscription, got %v", err)
	}
}

// Compile-time interface compliance
var (
	_ repositories.SpeechToText          = (*GoogleSpeechToText)(nil)
	_ repositories.SpeechToTextStreaming = (*GoogleSpeechToTextStream)(nil)
)
