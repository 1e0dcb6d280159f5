package repositories

import (
	"context"
	"errors"
)

// ErrNoAudioContent is returned when the speech provider replied without
// any synthesized audio. Fatal for that request; retry policy belongs to
// the caller.
var ErrNoAudioContent = errors.New("no audio content generated")

// VoiceGender selects the synthesized voice's gender.
type VoiceGender string

const (
	VoiceGenderMale    VoiceGender = "MALE"
	VoiceGenderFemale  VoiceGender = "FEMALE"
	VoiceGenderNeutral VoiceGender = "NEUTRAL"
)

// SynthesisOptions carries one text-to-speech request.
// SpeakingRate and Pitch are the only prosody channels: rate in
// [0.25, 4.0] (1.0 neutral) and pitch in [-20.0, 20.0] semitones.
type SynthesisOptions struct {
	Text         string      `json:"text"`
	LanguageCode string      `json:"language_code"`
	VoiceGender  VoiceGender `json:"voice_gender,omitempty"`
	SpeakingRate float64     `json:"speaking_rate,omitempty"`
	Pitch        float64     `json:"pitch,omitempty"`
}

type TextToSpeech interface {
	Synthesize(ctx context.Context, options SynthesisOptions) ([]byte, error)
}
