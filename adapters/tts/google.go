package tts

import (
	"context"
	"fmt"
	"html"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"

	"github.com/trutalk/voice-server/domain/repositories"
)

const (
	minSpeakingRate = 0.25
	maxSpeakingRate = 4.0
	minPitch        = -20.0
	maxPitch        = 20.0

	// telephonyProfile tunes the output for voice-call playback rather
	// than music or broadcast audio.
	telephonyProfile = "telephony-class-application"
)

// GoogleTextToSpeech implements TextToSpeech using Google Cloud
// Text-to-Speech. Speaking rate and pitch are carried through an SSML
// prosody wrapper; they are the only prosody channels modeled.
type GoogleTextToSpeech struct {
	client *texttospeech.Client
	logger *zap.Logger
}

var _ repositories.TextToSpeech = (*GoogleTextToSpeech)(nil)

// NewGoogleTextToSpeech creates the adapter with a single shared client.
func NewGoogleTextToSpeech(ctx context.Context, logger *zap.Logger) (*GoogleTextToSpeech, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}

	return &GoogleTextToSpeech{
		client: client,
		logger: logger,
	}, nil
}

// Close releases the underlying client connection.
func (g *GoogleTextToSpeech) Close() error {
	return g.client.Close()
}

// Synthesize converts text into telephony-optimized MP3 audio.
func (g *GoogleTextToSpeech) Synthesize(ctx context.Context, options repositories.SynthesisOptions) ([]byte, error) {
	if strings.TrimSpace(options.Text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	rate := clamp(defaultFloat(options.SpeakingRate, 1.0), minSpeakingRate, maxSpeakingRate)
	pitch := clamp(options.Pitch, minPitch, maxPitch)

	request := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Ssml{
				Ssml: buildProsodySSML(options.Text, rate, pitch),
			},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: options.LanguageCode,
			SsmlGender:   ssmlGender(options.VoiceGender),
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:    texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:     rate,
			Pitch:            pitch,
			EffectsProfileId: []string{telephonyProfile},
		},
	}

	resp, err := g.client.SynthesizeSpeech(ctx, request)
	if err != nil {
		g.logger.Error("Speech synthesis request failed", zap.Error(err))
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if len(resp.AudioContent) == 0 {
		return nil, repositories.ErrNoAudioContent
	}

	return resp.AudioContent, nil
}

// buildProsodySSML wraps text in a prosody block carrying the speaking
// rate and pitch adjustment in semitones.
func buildProsodySSML(text string, rate, pitch float64) string {
	return fmt.Sprintf(`<speak><prosody rate="%g" pitch="%gst">%s</prosody></speak>`,
		rate, pitch, html.EscapeString(text))
}

func ssmlGender(gender repositories.VoiceGender) texttospeechpb.SsmlVoiceGender {
	switch gender {
	case repositories.VoiceGenderMale:
		return texttospeechpb.SsmlVoiceGender_MALE
	case repositories.VoiceGenderFemale:
		return texttospeechpb.SsmlVoiceGender_FEMALE
	default:
		return texttospeechpb.SsmlVoiceGender_NEUTRAL
	}
}

func defaultFloat(value, fallback float64) float64 {
	if value == 0 {
		return fallback
	}
	return value
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
