package schema

import "strings"

type Language string

const (
	Romanian Language = "ro"
	Russian  Language = "ru"
	English  Language = "en"
)

// ParseLanguage accepts a language code and defaults to English.
func ParseLanguage(s string) Language {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case Romanian, Russian, English:
		return l
	default:
		return English
	}
}

// Name returns the English name of the language as used in prompts.
func (l Language) Name() string {
	switch l {
	case Romanian:
		return "Romanian"
	case Russian:
		return "Russian"
	default:
		return "English"
	}
}
