package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/trutalk/voice-server/domain/repositories"
	"github.com/trutalk/voice-server/internal/language"
)

// maxContextSegments bounds the rolling window of recent source-language
// utterances kept to disambiguate the newest one.
const maxContextSegments = 5

// RealtimeVoiceTranslator translates a live call chunk by chunk, keeping a
// short rolling context of recent utterances for better translation
// accuracy. One instance serves one call session; chunks must be delivered
// sequentially (the context window is not guarded for concurrent use).
// Instances are independent and arbitrarily many may run in parallel.
type RealtimeVoiceTranslator struct {
	speechToText repositories.SpeechToText
	primary      repositories.Translator
	fallback     repositories.Translator
	textToSpeech repositories.TextToSpeech
	sampleRate   int
	encoding     string
	logger       *zap.Logger

	context      []string
	lastExchange *ChunkExchange
}

// ChunkExchange describes the text pair behind the most recent successful
// chunk translation, for transcript persistence.
type ChunkExchange struct {
	OriginalText   string
	TranslatedText string
	SourceLanguage string
	TargetLanguage string
	Confidence     float64
}

// NewRealtimeTranslator creates a streaming translator bound to one call
// session, sharing the service's provider adapters.
func (s *VoiceTranslationService) NewRealtimeTranslator(sampleRate int, encoding string) *RealtimeVoiceTranslator {
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}
	if encoding == "" {
		encoding = defaultAudioEncoding
	}
	return &RealtimeVoiceTranslator{
		speechToText: s.speechToText,
		primary:      s.primary,
		fallback:     s.fallback,
		textToSpeech: s.textToSpeech,
		sampleRate:   sampleRate,
		encoding:     encoding,
		logger:       s.logger,
		context:      make([]string, 0, maxContextSegments),
	}
}

// TranslateChunk translates one audio chunk and returns the synthesized
// translation. It never fails: silence and unusable chunks come back as an
// empty buffer, and any stage error is logged and degraded to silence so a
// live call keeps flowing.
func (r *RealtimeVoiceTranslator) TranslateChunk(ctx context.Context, chunk []byte, targetLanguage, sourceLanguage string) []byte {
	audioConfig := repositories.AudioConfig{
		SampleRate: r.sampleRate,
		Encoding:   r.encoding,
		Language:   "auto",
	}
	if sourceLanguage != "" {
		audioConfig.Language = language.Normalize(sourceLanguage)
	}

	transcription, err := r.speechToText.Transcribe(ctx, chunk, audioConfig)
	if err != nil {
		r.logger.Warn("Chunk transcription failed, returning silence", zap.Error(err))
		return []byte{}
	}

	if strings.TrimSpace(transcription.Text) == "" {
		// Silence or no speech detected
		return []byte{}
	}

	source := language.Normalize(sourceLanguage)
	if source == "" {
		source = language.Normalize(transcription.Language)
	}
	target := language.Normalize(targetLanguage)

	translated, err := r.translateSegment(ctx, transcription.Text, target, source)
	if err != nil {
		r.logger.Warn("Chunk translation failed, returning silence", zap.Error(err))
		return []byte{}
	}

	audio, err := r.textToSpeech.Synthesize(ctx, repositories.SynthesisOptions{
		Text:         translated,
		LanguageCode: language.ToLocale(target),
		SpeakingRate: 1.0,
	})
	if err != nil {
		r.logger.Warn("Chunk synthesis failed, returning silence", zap.Error(err))
		return []byte{}
	}

	r.lastExchange = &ChunkExchange{
		OriginalText:   transcription.Text,
		TranslatedText: translated,
		SourceLanguage: source,
		TargetLanguage: target,
		Confidence:     transcription.Confidence,
	}

	return audio
}

// LastExchange returns the text pair behind the most recent successful
// chunk, or nil when the last chunk produced silence. The returned value
// is consumed: a second call before the next chunk returns nil.
func (r *RealtimeVoiceTranslator) LastExchange() *ChunkExchange {
	exchange := r.lastExchange
	r.lastExchange = nil
	return exchange
}

// translateSegment pushes the new text into the context window, translates
// the whole window, and extracts only the newest translated segment. The
// earlier context is there to disambiguate the latest utterance, not to be
// re-emitted.
func (r *RealtimeVoiceTranslator) translateSegment(ctx context.Context, text, target, source string) (string, error) {
	r.context = append(r.context, text)
	if len(r.context) > maxContextSegments {
		r.context = r.context[1:]
	}

	contextualText := strings.Join(r.context, " ")

	translator := r.fallback
	if r.primary.IsSupported(source) && r.primary.IsSupported(target) {
		translator = r.primary
	}

	result, err := translator.Translate(ctx, contextualText, target, source,
		repositories.DefaultTranslateOptions())
	if err != nil {
		return "", err
	}

	return lastSegment(result.Text), nil
}

// Reset clears the context window, e.g. when a call restarts or the
// speaker changes. The next chunk behaves as if no prior chunks were seen.
func (r *RealtimeVoiceTranslator) Reset() {
	r.context = r.context[:0]
}

// lastSegment returns the final sentence-like segment of the text, split
// on sentence punctuation. Falls back to the whole text when no non-empty
// segment exists.
func lastSegment(text string) string {
	segments := strings.FieldsFunc(text, func(ch rune) bool {
		return ch == '.' || ch == '!' || ch == '?'
	})

	for i := len(segments) - 1; i >= 0; i-- {
		if segment := strings.TrimSpace(segments[i]); segment != "" {
			return segment
		}
	}

	return strings.TrimSpace(text)
}
