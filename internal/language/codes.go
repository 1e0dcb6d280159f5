package language

import "strings"

// locales maps ISO 639-1 codes to the provider locale used for speech
// recognition and synthesis. Codes outside the table fall back to the
// xx-XX convention.
var locales = map[string]string{
	"en": "en-US",
	"es": "es-ES",
	"fr": "fr-FR",
	"de": "de-DE",
	"it": "it-IT",
	"pt": "pt-BR",
	"ru": "ru-RU",
	"ja": "ja-JP",
	"ko": "ko-KR",
	"zh": "zh-CN",
	"ar": "ar-SA",
	"hi": "hi-IN",
	"tr": "tr-TR",
	"nl": "nl-NL",
	"pl": "pl-PL",
	"sv": "sv-SE",
}

// Normalize lowercases an ISO 639-1 code, stripping any region subtag.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(code, "-_"); idx >= 0 {
		code = code[:idx]
	}
	return code
}

// ToLocale converts an ISO 639-1 code to the provider locale form.
func ToLocale(code string) string {
	code = Normalize(code)
	if locale, ok := locales[code]; ok {
		return locale
	}
	return code + "-" + strings.ToUpper(code)
}

// FromLocale extracts the ISO 639-1 code from a provider locale.
func FromLocale(locale string) string {
	return Normalize(locale)
}
