package entity

import "strings"

// Language represents supported language codes using ISO-style abbreviations.
type Language string

const (
	LanguageUnspecified Language = ""
	LanguageKorean      Language = "ko"
	LanguageVietnamese  Language = "vi"
	LanguageEnglish     Language = "en"
)

// Code returns the lowercase language code (without defaulting).
func (l Language) Code() string {
	return strings.ToLower(strings.TrimSpace(string(l)))
}

// CodeOrDefault returns the language code, falling back to Korean when unspecified.
func (l Language) CodeOrDefault() string {
	if l.Code() == "" {
		return string(LanguageKorean)
	}
	return l.Code()
}

// NormalizeLanguage ensures the language falls back to a supported value (defaults to Korean).
func NormalizeLanguage(lang Language) Language {
	switch Language(lang.Code()) {
	case LanguageKorean, LanguageVietnamese, LanguageEnglish:
		return Language(lang.Code())
	default:
		return LanguageKorean
	}
}

// ParseLanguage converts an arbitrary string into a supported Language value.
func ParseLanguage(code string) Language {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "ko":
		return LanguageKorean
	case "vi":
		return LanguageVietnamese
	case "en":
		return LanguageEnglish
	default:
		return LanguageUnspecified
	}
}

// NormalizeWordToken trims surrounding whitespace and lower-cases the word.
// Inner whitespace is preserved.
func NormalizeWordToken(word string) string {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return ""
	}
	return strings.ToLower(trimmed)
}
