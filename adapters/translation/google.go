package translation

import (
	"context"
	"fmt"

	"cloud.google.com/go/translate"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/trutalk/voice-server/domain/repositories"
	langcodes "github.com/trutalk/voice-server/internal/language"
)

// GoogleTranslator implements Translator using the Google Translate v2
// API. It is the broad-coverage fallback used when a language pair falls
// outside DeepL's supported set.
type GoogleTranslator struct {
	client *translate.Client
	logger *zap.Logger
}

var _ repositories.Translator = (*GoogleTranslator)(nil)

// NewGoogleTranslator creates the adapter with a single shared client.
func NewGoogleTranslator(ctx context.Context, logger *zap.Logger) (*GoogleTranslator, error) {
	client, err := translate.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}

	return &GoogleTranslator{
		client: client,
		logger: logger,
	}, nil
}

// Close releases the underlying client connection.
func (g *GoogleTranslator) Close() error {
	return g.client.Close()
}

// IsSupported always reports true: the fallback provider's coverage is
// broad enough that routing never excludes it.
func (g *GoogleTranslator) IsSupported(code string) bool {
	return true
}

// Translate translates a single text into the target language.
func (g *GoogleTranslator) Translate(ctx context.Context, text, target, source string, opts repositories.TranslateOptions) (*repositories.TranslationResult, error) {
	results, err := g.TranslateBatch(ctx, []string{text}, target, source)
	if err != nil {
		return nil, err
	}
	result := results[0]
	if !opts.PreserveFormatting {
		// v2 has no formatting toggle; HTML format is the closest knob
		// and the default Text format already keeps structure intact.
		g.logger.Debug("PreserveFormatting disabled has no effect on the fallback provider")
	}
	return &result, nil
}

// TranslateBatch translates texts in order, one result per input.
func (g *GoogleTranslator) TranslateBatch(ctx context.Context, texts []string, target, source string) ([]repositories.TranslationResult, error) {
	if len(texts) == 0 {
		return []repositories.TranslationResult{}, nil
	}

	targetTag, err := language.Parse(langcodes.Normalize(target))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid target language %q: %v", repositories.ErrTranslationFailed, target, err)
	}

	options := &translate.Options{Format: translate.Text}
	if source != "" {
		sourceTag, err := language.Parse(langcodes.Normalize(source))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid source language %q: %v", repositories.ErrTranslationFailed, source, err)
		}
		options.Source = sourceTag
	}

	translations, err := g.client.Translate(ctx, texts, targetTag, options)
	if err != nil {
		g.logger.Error("Google Translate request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", repositories.ErrTranslationFailed, err)
	}

	if len(translations) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d translations, got %d",
			repositories.ErrTranslationFailed, len(texts), len(translations))
	}

	targetCode := langcodes.Normalize(target)
	results := make([]repositories.TranslationResult, 0, len(translations))
	for _, t := range translations {
		detected := ""
		if !t.Source.IsRoot() {
			detected = langcodes.Normalize(t.Source.String())
		}
		sourceCode := detected
		if sourceCode == "" {
			sourceCode = langcodes.Normalize(source)
		}
		results = append(results, repositories.TranslationResult{
			Text:           t.Text,
			SourceLanguage: sourceCode,
			TargetLanguage: targetCode,
			Detected:       detected,
		})
	}

	return results, nil
}

// DetectLanguage uses the provider's native detection endpoint.
func (g *GoogleTranslator) DetectLanguage(ctx context.Context, text string) (string, error) {
	detections, err := g.client.DetectLanguage(ctx, []string{text})
	if err != nil {
		g.logger.Warn("Language detection fell back to en", zap.Error(err))
		return "en", nil
	}

	if len(detections) == 0 || len(detections[0]) == 0 {
		return "en", nil
	}

	return langcodes.Normalize(detections[0][0].Language.String()), nil
}
