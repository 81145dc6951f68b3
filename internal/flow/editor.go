package flow

import (
	"strings"

	"github.com/verte-zerg/codetutor/internal/backend"
	"github.com/verte-zerg/codetutor/internal/model"
	"github.com/verte-zerg/codetutor/internal/session"
	"github.com/verte-zerg/codetutor/internal/templates"
)

// Tone classifies analysis feedback.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
)

var positivePhrases = []string{"Great job", "well done", "correct"}

// ToneOf guesses the tone of analysis text from a few literal phrases.
func ToneOf(analysis string) Tone {
	for _, phrase := range positivePhrases {
		if strings.Contains(analysis, phrase) {
			return TonePositive
		}
	}
	return ToneNeutral
}

// Action is the label of the button closing the analysis dialog.
func (t Tone) Action() string {
	if t == TonePositive {
		return "Awesome!"
	}
	return "Got it, I'll improve"
}

// UseBoilerplate decides whether scaffolding should contain placeholders
// instead of a full solution. Only an expert with a perfect quiz goes without.
func UseBoilerplate(difficulty model.Difficulty, fromLearning, perfectScore bool) bool {
	switch {
	case difficulty == model.DifficultyNewbie:
		return true
	case fromLearning:
		return true
	case difficulty == model.DifficultyExpert && !perfectScore:
		return true
	default:
		return false
	}
}

// Editor holds the code screen state. Every code, output and error write is
// mirrored into the session store.
type Editor struct {
	st        *session.Store
	tmpl      *templates.Set
	ctx       session.Context
	code      string
	output    string
	err       string
	hints     []string
	deps      []string
	setup     string
	loading   bool
	running   bool
	analyzing bool
	analysis  string
	tone      Tone
	modal     bool
}

// NewEditor starts the editor waiting for scaffolding. tmpl may be nil.
func NewEditor(st *session.Store, ctx session.Context, tmpl *templates.Set) *Editor {
	return &Editor{
		st:      st,
		tmpl:    tmpl,
		ctx:     ctx,
		hints:   []string{},
		deps:    []string{},
		loading: true,
	}
}

// UseBoilerplate applies the boilerplate rule to the editor's context.
func (e *Editor) UseBoilerplate() bool {
	return UseBoilerplate(e.ctx.Difficulty, e.ctx.FromLearning, e.ctx.PerfectScore)
}

// ScaffoldRequest builds the scaffolding call.
func (e *Editor) ScaffoldRequest() backend.ScaffoldingRequest {
	req := backend.ScaffoldingRequest{
		TaskDescription: e.ctx.Task,
		DifficultyLevel: e.ctx.Difficulty,
		Language:        e.ctx.Language,
		UseBoilerplate:  e.UseBoilerplate(),
	}
	if len(e.ctx.ConceptKeywords) > 0 {
		req.ConceptKeywords = e.ctx.ConceptKeywords
	}
	return req
}

// ScaffoldLoaded fills the editor. Hints are kept for newbies only.
func (e *Editor) ScaffoldLoaded(s model.Scaffolding) {
	e.loading = false
	e.setCode(s.Code)
	e.setError("")
	e.hints = []string{}
	if e.ctx.Difficulty == model.DifficultyNewbie && s.Hints != nil {
		e.hints = s.Hints
	}
	e.deps = []string{}
	if s.Dependencies != nil {
		e.deps = s.Dependencies
	}
	e.setup = s.SetupInstructions
}

// ScaffoldFailed falls back to the local template so the editor is never empty.
func (e *Editor) ScaffoldFailed(err error) {
	e.loading = false
	e.setCode(e.tmpl.For(e.ctx.Language))
	e.setError(backend.Message(err))
}

// SetCode replaces the code buffer.
func (e *Editor) SetCode(code string) {
	e.setCode(code)
}

// CanRun reports whether a run may start.
func (e *Editor) CanRun() bool {
	return !e.loading && !e.running
}

// StartRun clears output and error and builds the execution call.
func (e *Editor) StartRun() (backend.RunRequest, error) {
	if !e.CanRun() {
		return backend.RunRequest{}, ErrWrongState
	}
	e.running = true
	e.setOutput("")
	e.setError("")
	return backend.RunRequest{Code: e.code, Language: e.ctx.Language}, nil
}

// RunDone shows the program output.
func (e *Editor) RunDone(output string) {
	e.running = false
	e.setOutput(output)
}

// RunFailed shows the failure in both the output and the error line.
func (e *Editor) RunFailed(err error) {
	e.running = false
	msg := backend.Message(err)
	e.setOutput(msg)
	e.setError(msg)
}

// CanAnalyze reports whether an analysis may start.
func (e *Editor) CanAnalyze() bool {
	return !e.loading && !e.analyzing && strings.TrimSpace(e.code) != ""
}

// StartAnalyze builds the analysis call.
func (e *Editor) StartAnalyze() (backend.AnalyzeRequest, error) {
	if !e.CanAnalyze() {
		return backend.AnalyzeRequest{}, ErrWrongState
	}
	e.analyzing = true
	e.setError("")
	return backend.AnalyzeRequest{
		Code:            e.code,
		Language:        e.ctx.Language,
		TaskDescription: e.ctx.Task,
	}, nil
}

// AnalyzeDone opens the analysis dialog.
func (e *Editor) AnalyzeDone(analysis string) {
	e.analyzing = false
	e.analysis = analysis
	e.tone = ToneOf(analysis)
	e.modal = true
}

// AnalyzeFailed shows the failure on the error line.
func (e *Editor) AnalyzeFailed(err error) {
	e.analyzing = false
	e.setError(backend.Message(err))
}

// CloseAnalysis dismisses the analysis dialog.
func (e *Editor) CloseAnalysis() {
	e.modal = false
}

// ChangeLanguage switches the target language and clears code, output and error.
// Scaffolding is not fetched again. Not allowed until scaffolding has loaded.
func (e *Editor) ChangeLanguage(lang model.Language) error {
	if e.loading {
		return ErrWrongState
	}
	e.ctx.Language = lang
	e.st.SetLanguage(lang)
	e.setCode("")
	e.setOutput("")
	e.setError("")
	return nil
}

// BackToHome resets the session and returns to the task screen.
func (e *Editor) BackToHome() Transition {
	return Home(e.st)
}

func (e *Editor) setCode(code string) {
	e.code = code
	e.st.SetCurrentCode(code)
}

func (e *Editor) setOutput(output string) {
	e.output = output
	e.st.SetOutput(output)
}

func (e *Editor) setError(msg string) {
	e.err = msg
	if msg == "" {
		e.st.ClearError()
		return
	}
	e.st.SetError(msg)
}

func (e *Editor) Code() string { return e.code }
func (e *Editor) Output() string { return e.output }
func (e *Editor) Err() string { return e.err }
func (e *Editor) Hints() []string { return e.hints }
func (e *Editor) Dependencies() []string { return e.deps }
func (e *Editor) Setup() string { return e.setup }
func (e *Editor) Loading() bool { return e.loading }
func (e *Editor) Running() bool { return e.running }
func (e *Editor) Analyzing() bool { return e.analyzing }
func (e *Editor) Analysis() string { return e.analysis }
func (e *Editor) Tone() Tone { return e.tone }
func (e *Editor) ModalOpen() bool { return e.modal }
func (e *Editor) Context() session.Context { return e.ctx }
