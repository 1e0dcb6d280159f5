package translation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/trutalk/voice-server/domain/repositories"
	langcodes "github.com/trutalk/voice-server/internal/language"
)

// MockTranslator is a placeholder implementation used for local
// development without provider credentials. It echoes the input tagged
// with the target language.
type MockTranslator struct {
	logger *zap.Logger
}

// NewMockTranslator creates a new mock translator
func NewMockTranslator(logger *zap.Logger) repositories.Translator {
	return &MockTranslator{logger: logger}
}

// Translate implements repositories.Translator
func (m *MockTranslator) Translate(ctx context.Context, text, target, source string, opts repositories.TranslateOptions) (*repositories.TranslationResult, error) {
	m.logger.Info("Processing mock translation",
		zap.String("target", target),
		zap.String("source", source))

	return &repositories.TranslationResult{
		Text:           fmt.Sprintf("[%s] %s", langcodes.Normalize(target), text),
		SourceLanguage: langcodes.Normalize(source),
		TargetLanguage: langcodes.Normalize(target),
	}, nil
}

// TranslateBatch implements repositories.Translator
func (m *MockTranslator) TranslateBatch(ctx context.Context, texts []string, target, source string) ([]repositories.TranslationResult, error) {
	results := make([]repositories.TranslationResult, 0, len(texts))
	for _, text := range texts {
		result, err := m.Translate(ctx, text, target, source, repositories.DefaultTranslateOptions())
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// DetectLanguage implements repositories.Translator
func (m *MockTranslator) DetectLanguage(ctx context.Context, text string) (string, error) {
	return "en", nil
}

// IsSupported implements repositories.Translator
func (m *MockTranslator) IsSupported(code string) bool {
	return true
}
