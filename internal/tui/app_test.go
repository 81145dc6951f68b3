package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/codetutor/internal/backend"
	"github.com/verte-zerg/codetutor/internal/flow"
	"github.com/verte-zerg/codetutor/internal/model"
	"github.com/verte-zerg/codetutor/internal/session"
	"github.com/verte-zerg/codetutor/internal/templates"
)

type fakeAPI struct {
	quiz      backend.Quiz
	scaffold  model.Scaffolding
	scaffErr  error
	runOutput string
	quizCalls int
}

func (f *fakeAPI) GenerateScaffolding(context.Context, backend.ScaffoldingRequest) (model.Scaffolding, error) {
	return f.scaffold, f.scaffErr
}

func (f *fakeAPI) RunCode(context.Context, backend.RunRequest) (string, error) {
	return f.runOutput, nil
}

func (f *fakeAPI) AnalyzeCode(context.Context, backend.AnalyzeRequest) (string, error) {
	return "Great job", nil
}

func (f *fakeAPI) GenerateQuiz(context.Context, backend.QuizRequest) (backend.Quiz, error) {
	f.quizCalls++
	return f.quiz, nil
}

func (f *fakeAPI) CheckQuiz(context.Context, backend.CheckRequest) (model.GradingResult, error) {
	return model.GradingResult{Score: 10}, nil
}

func (f *fakeAPI) GenerateLearning(context.Context, backend.LearningRequest) (model.LearningContent, error) {
	return model.LearningContent{}, nil
}

type fakeRecorder struct {
	routes []string
	runs   int
}

func (r *fakeRecorder) StartAttempt(_ context.Context, a model.Attempt) (model.Attempt, error) {
	a.ID = "attempt-1"
	return a, nil
}

func (r *fakeRecorder) RecordQuiz(context.Context, string, int, int) error { return nil }

func (r *fakeRecorder) RecordRoute(_ context.Context, _ string, route string) error {
	r.routes = append(r.routes, route)
	return nil
}

func (r *fakeRecorder) IncrementRuns(context.Context, string) error {
	r.runs++
	return nil
}

func newTestModel(api *fakeAPI, rec *fakeRecorder) *Model {
	m := New(Deps{
		Store:      session.New(),
		API:        api,
		History:    rec,
		Logger:     zerolog.Nop(),
		Difficulty: model.DifficultyNewbie,
		Language:   model.LanguagePython,
	})
	m.Init()
	return m
}

func TestInitShowsTaskScreen(t *testing.T) {
	m := newTestModel(&fakeAPI{}, &fakeRecorder{})
	defer m.Close()
	if m.Route() != flow.RouteTask || m.task == nil {
		t.Fatalf("expected task screen, got %v", m.Route())
	}
}

func TestNavigateWithoutTaskRedirects(t *testing.T) {
	m := newTestModel(&fakeAPI{}, &fakeRecorder{})
	defer m.Close()
	m.navigate(flow.Transition{Route: flow.RouteEditor})
	if m.Route() != flow.RouteTask {
		t.Fatalf("expected redirect to task, got %v", m.Route())
	}
	if m.editor != nil {
		t.Fatalf("editor should not be mounted")
	}
}

func TestExpertSubmitOpensQuizAndDropsStaleResults(t *testing.T) {
	api := &fakeAPI{quiz: backend.Quiz{
		SessionID: "s1",
		Questions: []model.Question{{ID: "q1", Question: "?", Options: []string{"a", "b"}}},
	}}
	rec := &fakeRecorder{}
	m := newTestModel(api, rec)
	defer m.Close()

	m.task.input.SetValue("Reverse a string")
	m.task.level = indexOf(m.task.levels, model.DifficultyExpert)
	m.submitTask()

	if m.Route() != flow.RouteQuiz {
		t.Fatalf("expected quiz route, got %v", m.Route())
	}
	if m.attemptID != "attempt-1" {
		t.Fatalf("expected attempt to be started, got %q", m.attemptID)
	}
	if len(rec.routes) != 1 || rec.routes[0] != "quiz" {
		t.Fatalf("unexpected routes %v", rec.routes)
	}

	msg := m.fetchQuiz(m.quiz.quiz.Request())()
	if api.quizCalls != 1 {
		t.Fatalf("expected one quiz call, got %d", api.quizCalls)
	}

	stale := msg.(quizLoadedMsg)
	stale.seq--
	m.Update(stale)
	if m.quiz.quiz.State() != flow.QuizLoading {
		t.Fatalf("stale result applied, state %v", m.quiz.quiz.State())
	}

	m.Update(msg)
	if m.quiz.quiz.State() != flow.QuizInProgress {
		t.Fatalf("expected in progress, got %v", m.quiz.quiz.State())
	}
}

func TestEditorFallsBackToTemplateAndRuns(t *testing.T) {
	api := &fakeAPI{scaffErr: errors.New("backend down"), runOutput: "olleh"}
	rec := &fakeRecorder{}
	m := newTestModel(api, rec)
	defer m.Close()

	m.task.input.SetValue("Reverse a string")
	m.submitTask()
	if m.Route() != flow.RouteEditor {
		t.Fatalf("expected editor route, got %v", m.Route())
	}

	m.Update(m.fetchScaffold(m.editor.editor.ScaffoldRequest())())
	want := templates.Default(model.LanguagePython)
	if got := m.editor.editor.Code(); got != want {
		t.Fatalf("expected template code %q, got %q", want, got)
	}
	if m.deps.Store.Snapshot().CurrentCode != want {
		t.Fatalf("store code not mirrored")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if !m.editor.editor.Running() {
		t.Fatalf("expected run to start")
	}
	if rec.runs != 1 {
		t.Fatalf("expected run to be recorded, got %d", rec.runs)
	}

	m.Update(m.runCode(backend.RunRequest{Code: want, Language: model.LanguagePython})())
	if got := m.editor.editor.Output(); got != "olleh" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEscapeFromEditorResetsSession(t *testing.T) {
	m := newTestModel(&fakeAPI{}, &fakeRecorder{})
	defer m.Close()

	m.task.input.SetValue("Reverse a string")
	m.submitTask()
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.Route() != flow.RouteTask {
		t.Fatalf("expected task route, got %v", m.Route())
	}
	if snap := m.deps.Store.Snapshot(); snap.TaskDescription != "" {
		t.Fatalf("expected reset session, got %+v", snap)
	}
}

func TestEditorLanguageLockedWhileScaffolding(t *testing.T) {
	api := &fakeAPI{scaffold: model.Scaffolding{Code: "def f(): pass"}}
	m := newTestModel(api, &fakeRecorder{})
	defer m.Close()

	m.task.input.SetValue("Reverse a string")
	m.submitTask()
	pending := m.fetchScaffold(m.editor.editor.ScaffoldRequest())

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if lang := m.editor.editor.Context().Language; lang != model.LanguagePython {
		t.Fatalf("language changed while loading: %s", lang)
	}

	m.Update(pending())
	if got := m.editor.editor.Code(); got != "def f(): pass" {
		t.Fatalf("unexpected code %q", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if lang := m.editor.editor.Context().Language; lang == model.LanguagePython {
		t.Fatalf("expected language to change after loading")
	}
	if m.editor.editor.Code() != "" || m.editor.code.Value() != "" {
		t.Fatalf("expected cleared buffer after language change")
	}
}
