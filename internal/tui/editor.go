package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/codetutor/internal/backend"
	"github.com/verte-zerg/codetutor/internal/flow"
	"github.com/verte-zerg/codetutor/internal/model"
)

const outputHeight = 6

type editorScreen struct {
	editor  *flow.Editor
	spinner spinner.Model
	code    textarea.Model
	output  viewport.Model
	width   int
}

func newEditorScreen(e *flow.Editor, width, height int) *editorScreen {
	code := textarea.New()
	code.ShowLineNumbers = true
	code.CharLimit = 0
	code.Prompt = ""
	s := &editorScreen{
		editor:  e,
		spinner: newSpinner(),
		code:    code,
		output:  viewport.New(width, outputHeight),
	}
	s.resize(width, height)
	return s
}

func (s *editorScreen) resize(width, height int) {
	s.width = width
	s.code.SetWidth(width)
	s.code.SetHeight(max(5, height-14-len(s.editor.Hints())))
	s.output.Width = width
	s.syncOutput()
}

func (s *editorScreen) busy() bool {
	return s.editor.Loading() || s.editor.Running() || s.editor.Analyzing()
}

func (s *editorScreen) syncOutput() {
	out := s.editor.Output()
	if out == "" {
		s.output.SetContent(mutedStyle.Render("Run your code to see the output here."))
		return
	}
	s.output.SetContent(hardWrap(out, s.width))
	s.output.GotoBottom()
}

func (m *Model) fetchScaffold(req backend.ScaffoldingRequest) tea.Cmd {
	api, ctx, seq := m.deps.API, m.ctx, m.seq
	return func() tea.Msg {
		scaffold, err := api.GenerateScaffolding(ctx, req)
		return scaffoldMsg{seq: seq, scaffold: scaffold, err: err}
	}
}

func (m *Model) runCode(req backend.RunRequest) tea.Cmd {
	api, ctx, seq := m.deps.API, m.ctx, m.seq
	return func() tea.Msg {
		output, err := api.RunCode(ctx, req)
		return runMsg{seq: seq, output: output, err: err}
	}
}

func (m *Model) analyzeCode(req backend.AnalyzeRequest) tea.Cmd {
	api, ctx, seq := m.deps.API, m.ctx, m.seq
	return func() tea.Msg {
		analysis, err := api.AnalyzeCode(ctx, req)
		return analyzeMsg{seq: seq, analysis: analysis, err: err}
	}
}

func (m *Model) scaffoldLoaded(msg scaffoldMsg) tea.Cmd {
	s := m.editor
	if msg.err != nil {
		m.deps.Logger.Error().Err(msg.err).Msg("scaffolding failed, using local template")
		s.editor.ScaffoldFailed(msg.err)
	} else {
		s.editor.ScaffoldLoaded(msg.scaffold)
	}
	s.code.SetValue(s.editor.Code())
	s.resize(s.width, m.height)
	return s.code.Focus()
}

func (m *Model) runDone(msg runMsg) tea.Cmd {
	s := m.editor
	if msg.err != nil {
		m.deps.Logger.Warn().Err(msg.err).Msg("code run failed")
		s.editor.RunFailed(msg.err)
	} else {
		s.editor.RunDone(msg.output)
	}
	s.syncOutput()
	return nil
}

func (m *Model) analyzeDone(msg analyzeMsg) tea.Cmd {
	s := m.editor
	if msg.err != nil {
		m.deps.Logger.Warn().Err(msg.err).Msg("code analysis failed")
		s.editor.AnalyzeFailed(msg.err)
		return nil
	}
	s.editor.AnalyzeDone(msg.analysis)
	s.code.Blur()
	return nil
}

func (m *Model) updateEditor(msg tea.Msg) tea.Cmd {
	s := m.editor
	if s == nil {
		return nil
	}
	key, isKey := msg.(tea.KeyMsg)
	if isKey && s.editor.ModalOpen() {
		if key.String() == "enter" || key.String() == "esc" {
			s.editor.CloseAnalysis()
			return s.code.Focus()
		}
		return nil
	}
	if isKey {
		switch key.String() {
		case "esc":
			return m.navigate(s.editor.BackToHome())
		case "ctrl+r":
			req, err := s.editor.StartRun()
			if err != nil {
				return nil
			}
			m.recordRun()
			s.syncOutput()
			return tea.Batch(s.spinner.Tick, m.runCode(req))
		case "ctrl+a":
			req, err := s.editor.StartAnalyze()
			if err != nil {
				return nil
			}
			return tea.Batch(s.spinner.Tick, m.analyzeCode(req))
		case "ctrl+l":
			if err := s.editor.ChangeLanguage(nextLanguage(s.editor.Context().Language)); err != nil {
				return nil
			}
			s.code.SetValue("")
			s.syncOutput()
			return nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			s.output, cmd = s.output.Update(msg)
			return cmd
		}
	}
	if s.editor.Loading() {
		return nil
	}
	var cmd tea.Cmd
	s.code, cmd = s.code.Update(msg)
	if value := s.code.Value(); value != s.editor.Code() {
		s.editor.SetCode(value)
	}
	return cmd
}

func nextLanguage(current model.Language) model.Language {
	langs := model.SupportedLanguages()
	return langs[(indexOf(langs, current)+1)%len(langs)]
}

func (m *Model) viewEditor(width int) (string, string) {
	s := m.editor
	if s == nil {
		return "", ""
	}
	ctx := s.editor.Context()
	meta := chipStyle.Render(ctx.Difficulty.Label()) + " " + chipStyle.Render(ctx.Language.Label())
	if s.editor.UseBoilerplate() {
		meta += " " + mutedStyle.Render("boilerplate")
	}
	card := cardStyle.Width(width - 2).Render(textStyle.Render(wrapText(ctx.Task, width-6)) + "\n" + meta)

	var b strings.Builder
	b.WriteString(card)
	b.WriteString("\n")
	if s.editor.Loading() {
		b.WriteString("\n" + s.spinner.View() + " Generating starter code...")
		return b.String(), "esc home · ctrl+c quit"
	}
	if hints := s.editor.Hints(); len(hints) > 0 {
		b.WriteString(titleStyle.Render("Hints") + "\n")
		for _, hint := range hints {
			b.WriteString(mutedStyle.Render(wrapText("• "+hint, width)) + "\n")
		}
	}
	if deps := s.editor.Dependencies(); len(deps) > 0 {
		b.WriteString(mutedStyle.Render(wrapText("Dependencies: "+strings.Join(deps, ", "), width)) + "\n")
	}
	if setup := strings.TrimSpace(s.editor.Setup()); setup != "" {
		b.WriteString(mutedStyle.Render(wrapText("Setup: "+setup, width)) + "\n")
	}
	b.WriteString(s.code.View())
	b.WriteString("\n")

	status := titleStyle.Render("Output")
	if s.editor.Running() {
		status += " " + s.spinner.View() + mutedStyle.Render(" running")
	}
	if s.editor.Analyzing() {
		status += " " + s.spinner.View() + mutedStyle.Render(" analyzing")
	}
	b.WriteString(status + "\n")
	b.WriteString(s.output.View())
	if msg := s.editor.Err(); msg != "" {
		b.WriteString("\n" + errorStyle.Render(wrapText(msg, width)))
	}

	help := []string{"ctrl+r run"}
	if s.editor.CanAnalyze() {
		help = append(help, "ctrl+a analyze")
	}
	help = append(help, "ctrl+l language", "pgup/pgdn output", "esc home")
	return b.String(), strings.Join(help, " · ")
}

func (m *Model) viewAnalysis(width int) string {
	s := m.editor
	tone := s.editor.Tone()
	border := neutralColor
	if tone == flow.TonePositive {
		border = positiveColor
	}
	boxWidth := min(width, 80)
	body := titleStyle.Render("Code analysis") + "\n\n" +
		textStyle.Render(hardWrap(s.editor.Analysis(), boxWidth-6)) + "\n\n" +
		lipgloss.NewStyle().Foreground(border).Bold(true).Render("[enter] "+tone.Action())
	box := modalStyle.BorderForeground(border).Width(boxWidth).Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
