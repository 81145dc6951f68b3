package session

import (
	"strings"

	"github.com/verte-zerg/codetutor/internal/model"
)

// NavState is the transient payload carried from one screen to the next.
// A nil *NavState means the screen was opened without one.
type NavState struct {
	Task     string
	Language model.Language

	// quiz -> editor
	PerfectScore bool

	// quiz -> learning
	WrongAnswers   []model.WrongAnswer
	Score          int
	TotalQuestions int
	SessionID      string

	// learning -> editor
	FromLearning    bool
	ConceptKeywords []string
}

// Context is the merged view a screen works from.
type Context struct {
	Task            string
	Difficulty      model.Difficulty
	Language        model.Language
	PerfectScore    bool
	FromLearning    bool
	WrongAnswers    []model.WrongAnswer
	ConceptKeywords []string
	Score           int
	TotalQuestions  int
	SessionID       string
}

// Resolve merges the navigation payload over the store.
// Non-empty payload task and language win; otherwise the store values apply.
// Wrong answers and concept keywords come only from the payload and default to empty.
func Resolve(st *Store, nav *NavState) Context {
	snap := st.Snapshot()
	ctx := Context{
		Task:            snap.TaskDescription,
		Difficulty:      snap.Difficulty,
		Language:        snap.Language,
		WrongAnswers:    []model.WrongAnswer{},
		ConceptKeywords: []string{},
	}
	if nav == nil {
		return ctx
	}
	if strings.TrimSpace(nav.Task) != "" {
		ctx.Task = nav.Task
	}
	if nav.Language != "" {
		ctx.Language = nav.Language
	}
	ctx.PerfectScore = nav.PerfectScore
	ctx.FromLearning = nav.FromLearning
	ctx.Score = nav.Score
	ctx.TotalQuestions = nav.TotalQuestions
	ctx.SessionID = nav.SessionID
	if nav.WrongAnswers != nil {
		ctx.WrongAnswers = append(ctx.WrongAnswers, nav.WrongAnswers...)
	}
	if nav.ConceptKeywords != nil {
		ctx.ConceptKeywords = append(ctx.ConceptKeywords, nav.ConceptKeywords...)
	}
	return ctx
}

// Ready reports whether the context carries what every post-task screen needs.
func (c Context) Ready() bool {
	return strings.TrimSpace(c.Task) != "" && c.Language != ""
}
