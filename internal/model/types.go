// Package model defines shared data structures.
package model

import "time"

// Config defines resolved runtime settings.
type Config struct {
	BackendURL  string
	Timeout     time.Duration
	Difficulty  Difficulty
	Language    Language
	LogPath     string
	LogLevel    string
	HistoryPath string
	Breaker     BreakerConfig
}

// BreakerConfig controls the backend circuit breaker.
type BreakerConfig struct {
	Enabled  bool
	Failures int
	Cooldown time.Duration
}

// Session is the user's working state for one pass through the app.
type Session struct {
	TaskDescription string
	Difficulty      Difficulty
	Language        Language
	CurrentCode     string
	Output          string
	Error           string
}

// Question is a single multiple-choice quiz question.
type Question struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	CodeSnippet string   `json:"code_snippet,omitempty"`
	Options     []string `json:"options"`
}

// WrongAnswer describes a question the user answered incorrectly.
type WrongAnswer struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	CodeSnippet   string `json:"code_snippet,omitempty"`
}

// QuestionResult is the per-question grading outcome.
type QuestionResult struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	CodeSnippet   string `json:"code_snippet,omitempty"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// GradingResult is produced once by the grading call.
type GradingResult struct {
	Score           int
	WrongAnswers    []WrongAnswer
	QuestionResults []QuestionResult
	CorrectAnswers  []string
}

// Section is one block of learning content.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Code    string `json:"code,omitempty"`
}

// Visual is an optional text diagram attached to an explanation.
type Visual struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Explanation explains one wrong answer.
type Explanation struct {
	Explanation     string   `json:"explanation"`
	Visual          Visual   `json:"visual_explanation"`
	ConceptKeywords []string `json:"concept_keywords"`
}

// LearningContent is the personalized material shown before coding.
// Explanations align positionally with the wrong answers that produced them.
type LearningContent struct {
	Sections        []Section
	Explanations    []Explanation
	ConceptKeywords []string
}

// Scaffolding is the starter code returned for a task.
type Scaffolding struct {
	Code              string
	Hints             []string
	Dependencies      []string
	SetupInstructions string
}

// Attempt is one recorded pass through the app.
type Attempt struct {
	ID         string
	StartedAt  time.Time
	Task       string
	Difficulty Difficulty
	Language   Language
	Route      string
	QuizScore  int
	QuizTotal  int
	Runs       int
	Completed  bool
}

// HistoryFilter narrows attempt listings.
type HistoryFilter struct {
	Language Language
	Last     int
}
