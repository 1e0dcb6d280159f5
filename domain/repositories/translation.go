package repositories

import (
	"context"
	"errors"
)

// ErrTranslationFailed wraps any provider error raised during a
// translation call. No partial results accompany it.
var ErrTranslationFailed = errors.New("translation failed")

// Translator abstracts machine translation services
type Translator interface {
	// Translate translates text into the target language. source may be
	// empty to let the provider detect it. Codes are ISO 639-1.
	Translate(ctx context.Context, text, target, source string, opts TranslateOptions) (*TranslationResult, error)
	// TranslateBatch translates texts in order; the result slice has the
	// same length and ordering as the input
	TranslateBatch(ctx context.Context, texts []string, target, source string) ([]TranslationResult, error)
	// DetectLanguage returns the ISO 639-1 code of the text's language
	DetectLanguage(ctx context.Context, text string) (string, error)
	// IsSupported reports whether the provider covers the given code
	IsSupported(code string) bool
}

// TranslateOptions carries per-call translation controls.
type TranslateOptions struct {
	// PreserveFormatting keeps embedded markup and punctuation structure
	// intact through translation
	PreserveFormatting bool
}

// DefaultTranslateOptions returns the options used when the caller has no
// preference: formatting preservation on.
func DefaultTranslateOptions() TranslateOptions {
	return TranslateOptions{PreserveFormatting: true}
}

// TranslationResult is the outcome of a single translation. Detected is
// set when the provider reported the source language it detected.
type TranslationResult struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Detected       string `json:"detected_language,omitempty"`
}
