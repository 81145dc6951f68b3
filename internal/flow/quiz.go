package flow

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/codetutor/internal/backend"
	"github.com/verte-zerg/codetutor/internal/model"
	"github.com/verte-zerg/codetutor/internal/session"
)

// MaxScore is the score that counts as perfect. It does not depend on the
// number of questions returned.
const MaxScore = 10

// QuizState is the macro state of the quiz screen.
type QuizState int

const (
	QuizLoading QuizState = iota
	QuizError
	QuizInProgress
	QuizShowingResults
)

func (s QuizState) String() string {
	switch s {
	case QuizLoading:
		return "loading"
	case QuizError:
		return "error"
	case QuizInProgress:
		return "in progress"
	case QuizShowingResults:
		return "results"
	default:
		return "unknown"
	}
}

// Quiz drives one quiz screen from load to results.
type Quiz struct {
	ctx        session.Context
	state      QuizState
	sessionID  string
	questions  []model.Question
	answers    map[string]string
	result     model.GradingResult
	err        string
	submitting bool
}

// NewQuiz starts a quiz in the loading state.
func NewQuiz(ctx session.Context) *Quiz {
	return &Quiz{
		ctx:     ctx,
		state:   QuizLoading,
		answers: make(map[string]string),
	}
}

// Request builds the quiz generation call.
func (q *Quiz) Request() backend.QuizRequest {
	return backend.QuizRequest{
		TaskDescription: q.ctx.Task,
		Language:        q.ctx.Language,
	}
}

// Loaded moves a loading quiz to in progress.
// A quiz with no questions or no session id fails the screen.
func (q *Quiz) Loaded(quiz backend.Quiz) error {
	if q.state != QuizLoading {
		return ErrWrongState
	}
	if len(quiz.Questions) == 0 || strings.TrimSpace(quiz.SessionID) == "" {
		err := fmt.Errorf("generate_quiz: empty quiz: %w", backend.ErrInvalidResponse)
		q.Failed(err)
		return err
	}
	q.questions = quiz.Questions
	q.sessionID = quiz.SessionID
	q.state = QuizInProgress
	q.err = ""
	return nil
}

// Failed moves a loading quiz to the terminal error state.
func (q *Quiz) Failed(err error) {
	if q.state != QuizLoading {
		return
	}
	q.state = QuizError
	q.err = backend.Message(err)
}

// Answer records the chosen option for a question.
func (q *Quiz) Answer(id, option string) error {
	if q.state != QuizInProgress || q.submitting {
		return ErrWrongState
	}
	if _, ok := q.question(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	q.answers[id] = option
	return nil
}

func (q *Quiz) question(id string) (model.Question, bool) {
	for _, question := range q.questions {
		if question.ID == id {
			return question, true
		}
	}
	return model.Question{}, false
}

// Selected returns the recorded answer for a question.
func (q *Quiz) Selected(id string) (string, bool) {
	answer, ok := q.answers[id]
	return answer, ok
}

// CanSubmit reports whether every question has an answer.
func (q *Quiz) CanSubmit() bool {
	return q.state == QuizInProgress && !q.submitting && len(q.answers) == len(q.questions)
}

// SubmitRequest builds the grading call and marks the quiz as submitting.
// Only the session id and the answers are sent.
func (q *Quiz) SubmitRequest() (backend.CheckRequest, error) {
	if q.state != QuizInProgress || q.submitting {
		return backend.CheckRequest{}, ErrWrongState
	}
	if len(q.answers) != len(q.questions) {
		return backend.CheckRequest{}, ErrIncompleteQuiz
	}
	answers := make(map[string]string, len(q.answers))
	for id, answer := range q.answers {
		answers[id] = answer
	}
	q.submitting = true
	q.err = ""
	return backend.CheckRequest{SessionID: q.sessionID, Answers: answers}, nil
}

// Graded shows the results.
func (q *Quiz) Graded(result model.GradingResult) error {
	if q.state != QuizInProgress {
		return ErrWrongState
	}
	if result.WrongAnswers == nil {
		result.WrongAnswers = []model.WrongAnswer{}
	}
	q.result = result
	q.submitting = false
	q.state = QuizShowingResults
	return nil
}

// GradeFailed keeps the quiz in progress so the user can submit again.
func (q *Quiz) GradeFailed(err error) {
	q.submitting = false
	q.err = backend.Message(err)
}

// Continue leaves the results: a perfect score goes to the editor,
// anything else to the learning screen with the wrong answers.
func (q *Quiz) Continue() (Transition, error) {
	if q.state != QuizShowingResults {
		return Transition{}, ErrWrongState
	}
	if q.result.Score == MaxScore {
		return Transition{
			Route: RouteEditor,
			Nav: &session.NavState{
				Task:         q.ctx.Task,
				Language:     q.ctx.Language,
				PerfectScore: true,
			},
		}, nil
	}
	return Transition{
		Route: RouteLearning,
		Nav: &session.NavState{
			Task:           q.ctx.Task,
			Language:       q.ctx.Language,
			WrongAnswers:   q.result.WrongAnswers,
			Score:          q.result.Score,
			TotalQuestions: len(q.questions),
			SessionID:      q.sessionID,
		},
	}, nil
}

// Percent is the score as a percentage of MaxScore.
func (q *Quiz) Percent() float64 {
	return float64(q.result.Score) / MaxScore * 100
}

func (q *Quiz) State() QuizState { return q.state }
func (q *Quiz) Questions() []model.Question { return q.questions }
func (q *Quiz) Result() model.GradingResult { return q.result }
func (q *Quiz) SessionID() string { return q.sessionID }
func (q *Quiz) Submitting() bool { return q.submitting }
func (q *Quiz) Answered() int { return len(q.answers) }
func (q *Quiz) Err() string { return q.err }
func (q *Quiz) Context() session.Context { return q.ctx }
