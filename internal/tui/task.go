package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/codetutor/internal/flow"
	"github.com/verte-zerg/codetutor/internal/model"
)

const (
	fieldTask = iota
	fieldLevel
	fieldLanguage
	fieldSubmit
	fieldCount
)

type taskScreen struct {
	input  textarea.Model
	focus  int
	levels []model.Difficulty
	level  int
	langs  []model.Language
	lang   int
	err    string
}

func newTaskScreen(snap model.Session, difficulty model.Difficulty, lang model.Language, width int) *taskScreen {
	input := textarea.New()
	input.Placeholder = "Describe what you want to build, e.g. Reverse a string"
	input.ShowLineNumbers = false
	input.CharLimit = 2000
	input.SetHeight(4)
	input.SetValue(snap.TaskDescription)

	s := &taskScreen{
		input:  input,
		levels: model.Difficulties(),
		langs:  model.SupportedLanguages(),
	}
	if snap.TaskDescription != "" || !difficulty.IsValid() {
		difficulty = snap.Difficulty
	}
	if snap.TaskDescription != "" || !lang.IsValid() {
		lang = snap.Language
	}
	s.level = indexOf(s.levels, difficulty)
	s.lang = indexOf(s.langs, lang)
	s.resize(width)
	return s
}

func indexOf[T comparable](items []T, want T) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return 0
}

func (s *taskScreen) resize(width int) {
	s.input.SetWidth(width)
}

func (s *taskScreen) form() flow.TaskForm {
	return flow.TaskForm{
		Task:       s.input.Value(),
		Difficulty: s.levels[s.level],
		Language:   s.langs[s.lang],
	}
}

func (s *taskScreen) setFocus(field int) tea.Cmd {
	s.focus = (field + fieldCount) % fieldCount
	if s.focus == fieldTask {
		return s.input.Focus()
	}
	s.input.Blur()
	return nil
}

func (m *Model) updateTask(msg tea.Msg) tea.Cmd {
	s := m.task
	if s == nil {
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}
	switch key.String() {
	case "tab":
		return s.setFocus(s.focus + 1)
	case "shift+tab":
		return s.setFocus(s.focus - 1)
	case "ctrl+s":
		return m.submitTask()
	}
	switch s.focus {
	case fieldTask:
		if key.String() == "esc" {
			return s.setFocus(fieldLevel)
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	case fieldLevel:
		s.level = cycle(s.level, len(s.levels), key.String())
	case fieldLanguage:
		s.lang = cycle(s.lang, len(s.langs), key.String())
	case fieldSubmit:
		if key.String() == "enter" {
			return m.submitTask()
		}
	}
	switch key.String() {
	case "up", "k":
		return s.setFocus(s.focus - 1)
	case "down", "j", "enter":
		return s.setFocus(s.focus + 1)
	}
	return nil
}

func cycle(index, n int, key string) int {
	switch key {
	case "left", "h":
		return (index - 1 + n) % n
	case "right", "l", " ":
		return (index + 1) % n
	default:
		return index
	}
}

func (m *Model) submitTask() tea.Cmd {
	s := m.task
	route, err := flow.SubmitTask(m.deps.Store, s.form())
	if err != nil {
		s.err = err.Error()
		var formErr *flow.FormError
		if errors.As(err, &formErr) && formErr.Field == "Task" {
			return s.setFocus(fieldTask)
		}
		return nil
	}
	snap := m.deps.Store.Snapshot()
	m.startAttempt(snap)
	m.deps.Logger.Info().
		Str("difficulty", string(snap.Difficulty)).
		Str("language", string(snap.Language)).
		Str("next", route.String()).
		Msg("task submitted")
	return m.navigate(flow.Transition{Route: route})
}

func (m *Model) viewTask(width int) (string, string) {
	s := m.task
	if s == nil {
		return "", ""
	}
	label := func(field int, text string) string {
		if s.focus == field {
			return focusStyle.Render("> " + text)
		}
		return mutedStyle.Render("  " + text)
	}

	var b strings.Builder
	b.WriteString(label(fieldTask, "What do you want to practice?"))
	b.WriteString("\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")
	b.WriteString(label(fieldLevel, "Familiarity: "))
	b.WriteString(selector(levelLabels(s.levels), s.level, s.focus == fieldLevel))
	b.WriteString("\n\n")
	b.WriteString(label(fieldLanguage, "Language:    "))
	b.WriteString(selector(langLabels(s.langs), s.lang, s.focus == fieldLanguage))
	b.WriteString("\n\n")
	submit := "[ Start ]"
	if s.focus == fieldSubmit {
		b.WriteString(focusStyle.Render("> " + submit))
	} else {
		b.WriteString(mutedStyle.Render("  " + submit))
	}
	if s.err != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(wrapText(s.err, width)))
	}
	help := "tab next field · ←/→ change · enter on Start or ctrl+s submit · ctrl+c quit"
	return lipgloss.NewStyle().Width(width).Render(b.String()), help
}

func selector(options []string, selected int, focused bool) string {
	parts := make([]string, len(options))
	for i, opt := range options {
		switch {
		case i == selected && focused:
			parts[i] = chipStyle.Render(opt)
		case i == selected:
			parts[i] = textStyle.Render("[" + opt + "]")
		default:
			parts[i] = mutedStyle.Render(opt)
		}
	}
	if !focused {
		return parts[selected]
	}
	return strings.Join(parts, " ")
}

func levelLabels(levels []model.Difficulty) []string {
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = l.Label()
	}
	return out
}

func langLabels(langs []model.Language) []string {
	out := make([]string, len(langs))
	for i, l := range langs {
		out[i] = l.Label()
	}
	return out
}
