package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/trutalk/voice-server/domain/repositories"
	"github.com/trutalk/voice-server/internal/language"
)

const (
	defaultDeepLBaseURL = "https://api.deepl.com/v2"
	defaultFormality    = "default"
	defaultHTTPTimeout  = 30 * time.Second

	// detectPivotTarget is the pivot language used for language
	// detection. DeepL has no dedicated detection endpoint, so we
	// translate into the pivot and read back the detected source.
	detectPivotTarget = "en-US"
)

// supportedLanguages is the closed set of ISO 639-1 codes DeepL covers.
// It is the single source of truth the orchestrator uses to route between
// DeepL and the fallback translator.
var supportedLanguages = map[string]struct{}{
	"ar": {}, "bg": {}, "cs": {}, "da": {}, "de": {}, "el": {}, "en": {},
	"es": {}, "et": {}, "fi": {}, "fr": {}, "hu": {}, "id": {}, "it": {},
	"ja": {}, "ko": {}, "lt": {}, "lv": {}, "nb": {}, "nl": {}, "pl": {},
	"pt": {}, "ro": {}, "ru": {}, "sk": {}, "sl": {}, "sv": {}, "tr": {},
	"uk": {}, "zh": {},
}

// DeepLConfig holds configuration for the DeepL translator adapter.
// Required fields:
// - APIKey: Your DeepL API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the DeepL API (default: "https://api.deepl.com/v2")
// - Formality: Formality preference for supported targets (default: "default")
// - Timeout: HTTP request timeout (default: 30s)
type DeepLConfig struct {
	APIKey     string
	APIBaseURL string
	Formality  string
	Timeout    time.Duration
}

// DeepLTranslator implements Translator using the DeepL REST API
type DeepLTranslator struct {
	apiKey     string
	apiBaseURL string
	formality  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure DeepLTranslator implements the Translator interface
var _ repositories.Translator = (*DeepLTranslator)(nil)

type deepLRequest struct {
	Text               []string `json:"text"`
	TargetLang         string   `json:"target_lang"`
	SourceLang         string   `json:"source_lang,omitempty"`
	PreserveFormatting bool     `json:"preserve_formatting"`
	Formality          string   `json:"formality,omitempty"`
}

type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// ValidateDeepLConfig validates the DeepLConfig
func ValidateDeepLConfig(config DeepLConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("deepl API key is required")
	}
	if config.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %v", config.Timeout)
	}
	return nil
}

// NewDeepLTranslator creates a new DeepL translator instance
func NewDeepLTranslator(config DeepLConfig, logger *zap.Logger) (*DeepLTranslator, error) {
	if err := ValidateDeepLConfig(config); err != nil {
		return nil, err
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultDeepLBaseURL
		logger.Info("Using default API base URL", zap.String("apiBaseURL", apiBaseURL))
	}

	formality := config.Formality
	if formality == "" {
		formality = defaultFormality
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}

	return &DeepLTranslator{
		apiKey:     config.APIKey,
		apiBaseURL: apiBaseURL,
		formality:  formality,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// IsSupported reports whether the code is in DeepL's fixed language set.
func (d *DeepLTranslator) IsSupported(code string) bool {
	_, ok := supportedLanguages[language.Normalize(code)]
	return ok
}

// SupportedLanguages returns the ISO 639-1 codes DeepL covers, for
// surfacing through the languages endpoint.
func (d *DeepLTranslator) SupportedLanguages() []string {
	return SupportedLanguages()
}

// SupportedLanguages returns DeepL's sorted language code set without
// requiring a constructed translator.
func SupportedLanguages() []string {
	codes := make([]string, 0, len(supportedLanguages))
	for code := range supportedLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Translate translates a single text into the target language.
func (d *DeepLTranslator) Translate(ctx context.Context, text, target, source string, opts repositories.TranslateOptions) (*repositories.TranslationResult, error) {
	results, err := d.request(ctx, []string{text}, target, source, opts)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// TranslateBatch translates texts in order, one result per input.
func (d *DeepLTranslator) TranslateBatch(ctx context.Context, texts []string, target, source string) ([]repositories.TranslationResult, error) {
	if len(texts) == 0 {
		return []repositories.TranslationResult{}, nil
	}
	return d.request(ctx, texts, target, source, repositories.DefaultTranslateOptions())
}

// DetectLanguage detects the text's language by translating it into the
// pivot language and reading the provider's detected source. This is a
// heuristic, not a dedicated detector; it answers "en" on any error.
func (d *DeepLTranslator) DetectLanguage(ctx context.Context, text string) (string, error) {
	results, err := d.request(ctx, []string{text}, detectPivotTarget, "", repositories.DefaultTranslateOptions())
	if err != nil {
		d.logger.Warn("Language detection fell back to en", zap.Error(err))
		return "en", nil
	}
	if results[0].Detected == "" {
		return "en", nil
	}
	return results[0].Detected, nil
}

func (d *DeepLTranslator) request(ctx context.Context, texts []string, target, source string, opts repositories.TranslateOptions) ([]repositories.TranslationResult, error) {
	request := deepLRequest{
		Text:               texts,
		TargetLang:         deepLTargetCode(target),
		PreserveFormatting: opts.PreserveFormatting,
		Formality:          d.formality,
	}
	if source != "" {
		request.SourceLang = strings.ToUpper(language.Normalize(source))
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", repositories.ErrTranslationFailed, err)
	}

	url := d.apiBaseURL + "/translate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create HTTP request: %v", repositories.ErrTranslationFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		d.logger.Error("DeepL request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", repositories.ErrTranslationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		d.logger.Error("DeepL API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return nil, fmt.Errorf("%w: unexpected status %d", repositories.ErrTranslationFailed, resp.StatusCode)
	}

	var decoded deepLResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", repositories.ErrTranslationFailed, err)
	}

	if len(decoded.Translations) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d translations, got %d",
			repositories.ErrTranslationFailed, len(texts), len(decoded.Translations))
	}

	targetCode := language.Normalize(target)
	results := make([]repositories.TranslationResult, 0, len(decoded.Translations))
	for _, t := range decoded.Translations {
		detected := language.Normalize(t.DetectedSourceLanguage)
		sourceCode := detected
		if sourceCode == "" {
			sourceCode = language.Normalize(source)
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

// deepLTargetCode maps an ISO 639-1 target to DeepL's target code. A few
// targets require a regional variant.
func deepLTargetCode(target string) string {
	if strings.Contains(target, "-") {
		return strings.ToUpper(target[:2]) + target[2:]
	}
	switch code := language.Normalize(target); code {
	case "en":
		return "EN-US"
	case "pt":
		return "PT-BR"
	default:
		return strings.ToUpper(code)
	}
}
