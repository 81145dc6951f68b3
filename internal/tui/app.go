// Package tui provides the Bubble Tea interface: task, quiz, learning and editor screens.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/codetutor/internal/backend"
	"github.com/verte-zerg/codetutor/internal/flow"
	"github.com/verte-zerg/codetutor/internal/model"
	"github.com/verte-zerg/codetutor/internal/session"
	"github.com/verte-zerg/codetutor/internal/templates"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	maxBodyWidth  = 100
)

// Recorder keeps the attempt history. Implemented by *store.Store.
type Recorder interface {
	StartAttempt(ctx context.Context, attempt model.Attempt) (model.Attempt, error)
	RecordQuiz(ctx context.Context, id string, score, total int) error
	RecordRoute(ctx context.Context, id, route string) error
	IncrementRuns(ctx context.Context, id string) error
}

// Deps are the collaborators shared by every screen.
type Deps struct {
	Store     *session.Store
	API       flow.API
	History   Recorder
	Templates *templates.Set
	Logger    zerolog.Logger

	// Initial selections of the task form.
	Difficulty model.Difficulty
	Language   model.Language
}

// Model is the root Bubble Tea model. It owns the active screen and
// performs route transitions.
type Model struct {
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc

	route     flow.Route
	seq       int
	attemptID string

	width  int
	height int

	task     *taskScreen
	quiz     *quizScreen
	learning *learningScreen
	editor   *editorScreen
}

// Async results carry the screen generation that issued them; stale ones are dropped.
type (
	quizLoadedMsg struct {
		seq  int
		quiz backend.Quiz
		err  error
	}
	quizGradedMsg struct {
		seq    int
		result model.GradingResult
		err    error
	}
	learningLoadedMsg struct {
		seq     int
		content model.LearningContent
		err     error
	}
	scaffoldMsg struct {
		seq      int
		scaffold model.Scaffolding
		err      error
	}
	runMsg struct {
		seq    int
		output string
		err    error
	}
	analyzeMsg struct {
		seq      int
		analysis string
		err      error
	}
)

// New constructs the root model.
func New(deps Deps) *Model {
	if deps.Store == nil {
		deps.Store = session.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		width:  defaultWidth,
		height: defaultHeight,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.navigate(flow.Transition{Route: flow.RouteTask})
}

// Route returns the active screen.
func (m *Model) Route() flow.Route {
	return m.route
}

// Close cancels in-flight backend calls.
func (m *Model) Close() {
	m.cancel()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
			return m, tea.Quit
		}
	case spinner.TickMsg:
		return m, m.tickSpinner(msg)
	case quizLoadedMsg:
		if msg.seq != m.seq || m.quiz == nil {
			return m, nil
		}
		return m, m.quizLoaded(msg)
	case quizGradedMsg:
		if msg.seq != m.seq || m.quiz == nil {
			return m, nil
		}
		return m, m.quizGraded(msg)
	case learningLoadedMsg:
		if msg.seq != m.seq || m.learning == nil {
			return m, nil
		}
		return m, m.learningLoaded(msg)
	case scaffoldMsg:
		if msg.seq != m.seq || m.editor == nil {
			return m, nil
		}
		return m, m.scaffoldLoaded(msg)
	case runMsg:
		if msg.seq != m.seq || m.editor == nil {
			return m, nil
		}
		return m, m.runDone(msg)
	case analyzeMsg:
		if msg.seq != m.seq || m.editor == nil {
			return m, nil
		}
		return m, m.analyzeDone(msg)
	}

	switch m.route {
	case flow.RouteQuiz:
		return m, m.updateQuiz(msg)
	case flow.RouteLearning:
		return m, m.updateLearning(msg)
	case flow.RouteEditor:
		return m, m.updateEditor(msg)
	default:
		return m, m.updateTask(msg)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.bodyWidth()
	var body, help string
	switch m.route {
	case flow.RouteQuiz:
		body, help = m.viewQuiz(width)
	case flow.RouteLearning:
		body, help = m.viewLearning(width)
	case flow.RouteEditor:
		if m.editor != nil && m.editor.editor.ModalOpen() {
			return m.viewAnalysis(width)
		}
		body, help = m.viewEditor(width)
	default:
		body, help = m.viewTask(width)
	}
	header := titleStyle.Render("codetutor") + mutedStyle.Render("  "+breadcrumb(m.route))
	page := lipgloss.JoinVertical(lipgloss.Left, header, "", body)
	page = lipgloss.NewStyle().Width(width).Render(page)
	footer := footerStyle.Render(help)
	if m.height < 3 {
		return page
	}
	bodyHeight := m.height - 1
	top := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Top, page)
	return top + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func breadcrumb(route flow.Route) string {
	steps := []flow.Route{flow.RouteTask, flow.RouteQuiz, flow.RouteLearning, flow.RouteEditor}
	parts := make([]string, 0, len(steps))
	for _, step := range steps {
		name := step.String()
		if step == route {
			name = "[" + name + "]"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " > ")
}

func (m *Model) bodyWidth() int {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	width -= 4
	if width > maxBodyWidth {
		width = maxBodyWidth
	}
	return max(width, 20)
}

func (m *Model) resize() {
	width := m.bodyWidth()
	if m.task != nil {
		m.task.resize(width)
	}
	if m.learning != nil {
		m.learning.resize(width, m.height)
	}
	if m.quiz != nil {
		m.quiz.resize(width, m.height)
	}
	if m.editor != nil {
		m.editor.resize(width, m.height)
	}
}

// navigate resolves the payload, applies the guard and mounts the target screen.
func (m *Model) navigate(t flow.Transition) tea.Cmd {
	ctx := session.Resolve(m.deps.Store, t.Nav)
	route := flow.Guard(t.Route, ctx)
	if route != t.Route {
		m.deps.Logger.Warn().
			Str("requested", t.Route.String()).
			Msg("missing task or language, redirecting to task screen")
	}

	m.seq++
	m.task, m.quiz, m.learning, m.editor = nil, nil, nil, nil
	m.route = route
	width := m.bodyWidth()

	switch route {
	case flow.RouteQuiz:
		m.recordRoute(route)
		m.quiz = newQuizScreen(flow.NewQuiz(ctx), width, m.height)
		return tea.Batch(m.quiz.spinner.Tick, m.fetchQuiz(m.quiz.quiz.Request()))
	case flow.RouteLearning:
		m.recordRoute(route)
		m.learning = newLearningScreen(flow.NewLearning(ctx), width, m.height)
		return tea.Batch(m.learning.spinner.Tick, m.fetchLearning(m.learning.learning.Request()))
	case flow.RouteEditor:
		m.recordRoute(route)
		m.editor = newEditorScreen(flow.NewEditor(m.deps.Store, ctx, m.deps.Templates), width, m.height)
		return tea.Batch(m.editor.spinner.Tick, m.fetchScaffold(m.editor.editor.ScaffoldRequest()))
	default:
		if t.Route == flow.RouteTask {
			m.attemptID = ""
		}
		m.task = newTaskScreen(m.deps.Store.Snapshot(), m.deps.Difficulty, m.deps.Language, width)
		return m.task.input.Focus()
	}
}

func (m *Model) home() tea.Cmd {
	return m.navigate(flow.Home(m.deps.Store))
}

func (m *Model) tickSpinner(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.quiz != nil && m.quiz.busy():
		m.quiz.spinner, cmd = m.quiz.spinner.Update(msg)
	case m.learning != nil && m.learning.learning.State() == flow.LearningLoading:
		m.learning.spinner, cmd = m.learning.spinner.Update(msg)
	case m.editor != nil && m.editor.busy():
		m.editor.spinner, cmd = m.editor.spinner.Update(msg)
	}
	return cmd
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle
	return s
}
