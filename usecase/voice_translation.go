package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/trutalk/voice-server/domain/repositories"
	"github.com/trutalk/voice-server/internal/language"
)

// ErrVoiceTranslationFailed wraps any stage failure in the one-shot
// voice-to-voice pipeline. Callers see one error type regardless of which
// stage failed; partial results are never returned.
var ErrVoiceTranslationFailed = errors.New("failed to translate voice")

const (
	defaultAudioEncoding = "MP3"
	defaultSampleRate    = 48000

	// Average word duration thresholds used as a proxy for hurried or
	// deliberate speech when deriving the synthesis speaking rate.
	fastWordDuration = 0.3
	slowWordDuration = 0.6
)

// VoiceTranslationOptions carries one voice-to-voice translation request.
// SourceLanguage empty means auto-detect. SpeakingRate zero means 1.0.
type VoiceTranslationOptions struct {
	Audio           []byte
	SourceLanguage  string
	TargetLanguage  string
	PreserveEmotion bool
	SpeakingRate    float64
	Pitch           float64
	SampleRate      int
	Encoding        string
}

// VoiceTranslationResult is the outcome of one voice-to-voice translation.
type VoiceTranslationResult struct {
	OriginalText    string  `json:"original_text"`
	TranslatedText  string  `json:"translated_text"`
	TranslatedAudio []byte  `json:"translated_audio"`
	SourceLanguage  string  `json:"source_language"`
	TargetLanguage  string  `json:"target_language"`
	Confidence      float64 `json:"confidence"`
}

// VoiceTranslationService orchestrates the voice translation pipeline:
// speech-to-text, primary/fallback machine translation, and prosody-aware
// speech synthesis.
type VoiceTranslationService struct {
	speechToText repositories.SpeechToText
	primary      repositories.Translator
	fallback     repositories.Translator
	textToSpeech repositories.TextToSpeech
	logger       *zap.Logger

	// pitchJitter supplies the pitch perturbation applied when emotion
	// preservation is on. The default draws from [-2, +2] semitones as a
	// coarse stand-in for prosody analysis; replace it when a real
	// analysis component exists.
	pitchJitter func() float64
}

// NewVoiceTranslationService creates a new voice translation service
func NewVoiceTranslationService(
	stt repositories.SpeechToText,
	primary repositories.Translator,
	fallback repositories.Translator,
	tts repositories.TextToSpeech,
	logger *zap.Logger,
) *VoiceTranslationService {
	return &VoiceTranslationService{
		speechToText: stt,
		primary:      primary,
		fallback:     fallback,
		textToSpeech: tts,
		logger:       logger,
		pitchJitter: func() float64 {
			return rand.Float64()*4 - 2
		},
	}
}

// SetPitchJitter replaces the pitch perturbation hook.
func (s *VoiceTranslationService) SetPitchJitter(jitter func() float64) {
	s.pitchJitter = jitter
}

// TranslateVoice runs the complete voice-to-voice pipeline. Any stage
// error is logged and surfaced as ErrVoiceTranslationFailed with no
// partial output.
func (s *VoiceTranslationService) TranslateVoice(ctx context.Context, options VoiceTranslationOptions) (*VoiceTranslationResult, error) {
	result, err := s.translateVoice(ctx, options)
	if err != nil {
		s.logger.Error("Voice translation failed",
			zap.String("targetLanguage", options.TargetLanguage),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrVoiceTranslationFailed, err)
	}
	return result, nil
}

func (s *VoiceTranslationService) translateVoice(ctx context.Context, options VoiceTranslationOptions) (*VoiceTranslationResult, error) {
	audioConfig := repositories.AudioConfig{
		SampleRate: options.SampleRate,
		Encoding:   options.Encoding,
		Language:   "auto",
	}
	if audioConfig.SampleRate == 0 {
		audioConfig.SampleRate = defaultSampleRate
	}
	if audioConfig.Encoding == "" {
		audioConfig.Encoding = defaultAudioEncoding
	}
	if options.SourceLanguage != "" {
		audioConfig.Language = language.Normalize(options.SourceLanguage)
	}

	transcription, err := s.speechToText.Transcribe(ctx, options.Audio, audioConfig)
	if err != nil {
		return nil, err
	}

	detectedLanguage := language.Normalize(options.SourceLanguage)
	if detectedLanguage == "" {
		detectedLanguage = language.Normalize(transcription.Language)
	}
	targetLanguage := language.Normalize(options.TargetLanguage)

	if detectedLanguage == targetLanguage {
		// Same language: skip translation and synthesis entirely and
		// hand back the caller's audio untouched.
		return &VoiceTranslationResult{
			OriginalText:    transcription.Text,
			TranslatedText:  transcription.Text,
			TranslatedAudio: options.Audio,
			SourceLanguage:  detectedLanguage,
			TargetLanguage:  targetLanguage,
			Confidence:      transcription.Confidence,
		}, nil
	}

	translator := s.route(detectedLanguage, targetLanguage)
	translation, err := translator.Translate(ctx, transcription.Text, targetLanguage, detectedLanguage,
		repositories.DefaultTranslateOptions())
	if err != nil {
		return nil, err
	}

	speakingRate := options.SpeakingRate
	if speakingRate == 0 {
		speakingRate = 1.0
	}
	pitch := options.Pitch

	if options.PreserveEmotion {
		speakingRate = speakingRateFromTiming(transcription.Words)
		pitch = s.pitchJitter()
	}

	translatedAudio, err := s.textToSpeech.Synthesize(ctx, repositories.SynthesisOptions{
		Text:         translation.Text,
		LanguageCode: language.ToLocale(targetLanguage),
		SpeakingRate: speakingRate,
		Pitch:        pitch,
	})
	if err != nil {
		return nil, err
	}

	return &VoiceTranslationResult{
		OriginalText:    transcription.Text,
		TranslatedText:  translation.Text,
		TranslatedAudio: translatedAudio,
		SourceLanguage:  detectedLanguage,
		TargetLanguage:  targetLanguage,
		Confidence:      transcription.Confidence,
	}, nil
}

// route picks the primary translator when it supports both codes, and the
// fallback otherwise. Evaluated fresh on every call.
func (s *VoiceTranslationService) route(source, target string) repositories.Translator {
	if s.primary.IsSupported(source) && s.primary.IsSupported(target) {
		return s.primary
	}
	return s.fallback
}

// speakingRateFromTiming derives the synthesis rate from the average word
// duration of the original speech: short words read as hurried or
// energetic speech and speed up the synthesis, long words slow it down.
func speakingRateFromTiming(words []repositories.WordTiming) float64 {
	if len(words) == 0 {
		return 1.0
	}

	var total float64
	for _, w := range words {
		total += w.EndTime - w.StartTime
	}
	avg := total / float64(len(words))

	switch {
	case avg < fastWordDuration:
		return 1.2
	case avg > slowWordDuration:
		return 0.8
	default:
		return 1.0
	}
}
