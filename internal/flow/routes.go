// Package flow is the navigation state machine: task, quiz, learning and editor.
// Controllers here hold screen state and decide transitions; they never do I/O.
// Each backend call is split into a request builder and an apply method so the
// call itself can run off the UI goroutine.
package flow

import (
	"context"
	"errors"

	"github.com/verte-zerg/codetutor/internal/backend"
	"github.com/verte-zerg/codetutor/internal/model"
	"github.com/verte-zerg/codetutor/internal/session"
)

// Route identifies a screen.
type Route int

const (
	RouteTask Route = iota
	RouteQuiz
	RouteLearning
	RouteEditor
)

func (r Route) String() string {
	switch r {
	case RouteTask:
		return "task"
	case RouteQuiz:
		return "quiz"
	case RouteLearning:
		return "learning"
	case RouteEditor:
		return "editor"
	default:
		return "unknown"
	}
}

// Transition is a route plus the payload handed to the next screen.
type Transition struct {
	Route Route
	Nav   *session.NavState
}

var (
	// ErrIncompleteQuiz is returned when submitting before every question is answered.
	ErrIncompleteQuiz = errors.New("answer every question before submitting")
	// ErrWrongState is returned when an action does not apply to the current state.
	ErrWrongState = errors.New("action not allowed in current state")
	// ErrUnknownQuestion is returned when answering a question that is not in the quiz.
	ErrUnknownQuestion = errors.New("unknown question")
)

// API is the subset of the backend client the screens call.
type API interface {
	GenerateScaffolding(ctx context.Context, req backend.ScaffoldingRequest) (model.Scaffolding, error)
	RunCode(ctx context.Context, req backend.RunRequest) (string, error)
	AnalyzeCode(ctx context.Context, req backend.AnalyzeRequest) (string, error)
	GenerateQuiz(ctx context.Context, req backend.QuizRequest) (backend.Quiz, error)
	CheckQuiz(ctx context.Context, req backend.CheckRequest) (model.GradingResult, error)
	GenerateLearning(ctx context.Context, req backend.LearningRequest) (model.LearningContent, error)
}

var _ API = (*backend.Client)(nil)

// Guard redirects post-task routes to the task screen when the resolved
// context has no task or language.
func Guard(route Route, ctx session.Context) Route {
	if route == RouteTask || ctx.Ready() {
		return route
	}
	return RouteTask
}

// Home resets the session and returns to the task screen.
func Home(st *session.Store) Transition {
	st.Reset()
	return Transition{Route: RouteTask}
}
