package flow

import (
	"github.com/verte-zerg/codetutor/internal/backend"
	"github.com/verte-zerg/codetutor/internal/model"
	"github.com/verte-zerg/codetutor/internal/session"
)

// LearningState is the state of the learning screen.
type LearningState int

const (
	LearningLoading LearningState = iota
	LearningReady
	LearningError
)

// Learning holds the personalized content shown after an imperfect quiz.
type Learning struct {
	ctx     session.Context
	state   LearningState
	content model.LearningContent
	err     string
}

// NewLearning starts the screen in the loading state.
func NewLearning(ctx session.Context) *Learning {
	return &Learning{ctx: ctx, state: LearningLoading}
}

// Request builds the content call from the resolved context.
func (l *Learning) Request() backend.LearningRequest {
	return backend.LearningRequest{
		TaskDescription: l.ctx.Task,
		Language:        l.ctx.Language,
		WrongAnswers:    l.ctx.WrongAnswers,
	}
}

// Loaded shows the content.
func (l *Learning) Loaded(content model.LearningContent) error {
	if l.state != LearningLoading {
		return ErrWrongState
	}
	if content.Sections == nil {
		content.Sections = []model.Section{}
	}
	if content.Explanations == nil {
		content.Explanations = []model.Explanation{}
	}
	if content.ConceptKeywords == nil {
		content.ConceptKeywords = []string{}
	}
	l.content = content
	l.state = LearningReady
	return nil
}

// Failed shows the error screen. No partial content is kept.
func (l *Learning) Failed(err error) {
	if l.state != LearningLoading {
		return
	}
	l.content = model.LearningContent{}
	l.err = backend.Message(err)
	l.state = LearningError
}

// Retry reloads the screen from scratch.
func (l *Learning) Retry() (backend.LearningRequest, error) {
	if l.state != LearningError {
		return backend.LearningRequest{}, ErrWrongState
	}
	l.state = LearningLoading
	l.err = ""
	return l.Request(), nil
}

// StartCoding moves on to the editor carrying the concepts covered.
func (l *Learning) StartCoding() (Transition, error) {
	if l.state != LearningReady {
		return Transition{}, ErrWrongState
	}
	keywords := make([]string, len(l.content.ConceptKeywords))
	copy(keywords, l.content.ConceptKeywords)
	return Transition{
		Route: RouteEditor,
		Nav: &session.NavState{
			Task:            l.ctx.Task,
			Language:        l.ctx.Language,
			PerfectScore:    false,
			FromLearning:    true,
			ConceptKeywords: keywords,
		},
	}, nil
}

// WrongAnswer returns the wrong answer an explanation refers to.
// Explanations align with wrong answers by position.
func (l *Learning) WrongAnswer(i int) (model.WrongAnswer, bool) {
	if i < 0 || i >= len(l.ctx.WrongAnswers) {
		return model.WrongAnswer{}, false
	}
	return l.ctx.WrongAnswers[i], true
}

func (l *Learning) State() LearningState { return l.state }
func (l *Learning) Content() model.LearningContent { return l.content }
func (l *Learning) Err() string { return l.err }
func (l *Learning) Context() session.Context { return l.ctx }
