package model

import (
	"fmt"
	"strings"
)

// Difficulty is the user's self-reported familiarity level.
type Difficulty string

const (
	DifficultyNewbie Difficulty = "newbie"
	DifficultyExpert Difficulty = "expert"

	// legacy default of the session store; treated as newbie.
	difficultyBeginner Difficulty = "beginner"
)

// IsValid reports whether d is one of the selectable levels.
func (d Difficulty) IsValid() bool {
	return d == DifficultyNewbie || d == DifficultyExpert
}

// ParseDifficulty converts user input to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if d == difficultyBeginner {
		return DifficultyNewbie, nil
	}
	if !d.IsValid() {
		return "", fmt.Errorf("unsupported level: %q (want newbie or expert)", s)
	}
	return d, nil
}

// Difficulties returns the selectable levels in menu order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyNewbie, DifficultyExpert}
}

// Label returns the display name.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyNewbie:
		return "Newbie"
	case DifficultyExpert:
		return "Expert"
	default:
		return string(d)
	}
}

// Language is a supported programming language.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageCSharp     Language = "csharp"
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
	LanguagePHP        Language = "php"
	LanguageRuby       Language = "ruby"
	LanguageSwift      Language = "swift"
)

var languageLabels = map[Language]string{
	LanguagePython:     "Python",
	LanguageJavaScript: "JavaScript",
	LanguageJava:       "Java",
	LanguageCPP:        "C++",
	LanguageCSharp:     "C#",
	LanguageGo:         "Go",
	LanguageRust:       "Rust",
	LanguagePHP:        "PHP",
	LanguageRuby:       "Ruby",
	LanguageSwift:      "Swift",
}

// SupportedLanguages returns every language in menu order.
func SupportedLanguages() []Language {
	return []Language{
		LanguagePython,
		LanguageJavaScript,
		LanguageJava,
		LanguageCPP,
		LanguageCSharp,
		LanguageGo,
		LanguageRust,
		LanguagePHP,
		LanguageRuby,
		LanguageSwift,
	}
}

// IsValid checks if the language is supported.
func (l Language) IsValid() bool {
	_, ok := languageLabels[l]
	return ok
}

// Label returns the display name, or the raw value for unknown languages.
func (l Language) Label() string {
	if label, ok := languageLabels[l]; ok {
		return label
	}
	return string(l)
}

// ParseLanguage converts a string to a Language.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if !lang.IsValid() {
		return "", fmt.Errorf("unsupported language: %s", s)
	}
	return lang, nil
}
