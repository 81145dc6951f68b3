package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/codetutor/internal/backend"
	"github.com/verte-zerg/codetutor/internal/flow"
)

type learningScreen struct {
	learning *flow.Learning
	spinner  spinner.Model
	content  viewport.Model
	width    int
}

func newLearningScreen(l *flow.Learning, width, height int) *learningScreen {
	s := &learningScreen{
		learning: l,
		spinner:  newSpinner(),
		content:  viewport.New(width, 1),
	}
	s.resize(width, height)
	return s
}

func (s *learningScreen) resize(width, height int) {
	s.width = width
	s.content.Width = width
	s.content.Height = max(3, height-8)
	if s.learning.State() == flow.LearningReady {
		s.content.SetContent(renderLearning(s.learning, width))
	}
}

func (m *Model) fetchLearning(req backend.LearningRequest) tea.Cmd {
	api, ctx, seq := m.deps.API, m.ctx, m.seq
	return func() tea.Msg {
		content, err := api.GenerateLearning(ctx, req)
		return learningLoadedMsg{seq: seq, content: content, err: err}
	}
}

func (m *Model) learningLoaded(msg learningLoadedMsg) tea.Cmd {
	s := m.learning
	if msg.err != nil {
		m.deps.Logger.Error().Err(msg.err).Msg("learning content failed")
		s.learning.Failed(msg.err)
		return nil
	}
	if err := s.learning.Loaded(msg.content); err != nil {
		return nil
	}
	s.content.SetContent(renderLearning(s.learning, s.width))
	s.content.GotoTop()
	return nil
}

func (m *Model) updateLearning(msg tea.Msg) tea.Cmd {
	s := m.learning
	if s == nil {
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch s.learning.State() {
	case flow.LearningError:
		switch key.String() {
		case "r":
			req, err := s.learning.Retry()
			if err != nil {
				return nil
			}
			m.seq++
			return tea.Batch(s.spinner.Tick, m.fetchLearning(req))
		case "esc", "h":
			return m.home()
		}
	case flow.LearningReady:
		switch key.String() {
		case "enter":
			next, err := s.learning.StartCoding()
			if err != nil {
				return nil
			}
			return m.navigate(next)
		case "esc":
			return m.home()
		}
		var cmd tea.Cmd
		s.content, cmd = s.content.Update(msg)
		return cmd
	default:
		if key.String() == "esc" {
			return m.home()
		}
	}
	return nil
}

func (m *Model) viewLearning(width int) (string, string) {
	s := m.learning
	if s == nil {
		return "", ""
	}
	ctx := s.learning.Context()
	header := textStyle.Render(wrapText("Learning: "+ctx.Task, width))
	if ctx.TotalQuestions > 0 {
		header += "\n" + mutedStyle.Render(fmt.Sprintf("Quiz score %d/%d, %d questions", ctx.Score, flow.MaxScore, ctx.TotalQuestions))
	}
	switch s.learning.State() {
	case flow.LearningLoading:
		return header + "\n\n" + s.spinner.View() + " Preparing material for you...", "esc home · ctrl+c quit"
	case flow.LearningError:
		body := errorStyle.Render(wrapText("Could not load learning material: "+s.learning.Err(), width))
		return header + "\n\n" + body, "r retry · esc home · ctrl+c quit"
	}
	return header + "\n\n" + s.content.View(), "enter start coding · ↑/↓ scroll · esc home"
}

func renderLearning(l *flow.Learning, width int) string {
	content := l.Content()
	var b strings.Builder
	for _, section := range content.Sections {
		if section.Title != "" {
			b.WriteString(titleStyle.Render(wrapText(section.Title, width)) + "\n")
		}
		if section.Content != "" {
			b.WriteString(textStyle.Render(wrapText(section.Content, width)) + "\n")
		}
		if section.Code != "" {
			b.WriteString(cardStyle.Render(codeStyle.Render(section.Code)) + "\n")
		}
		b.WriteString("\n")
	}
	if len(content.Explanations) > 0 {
		b.WriteString(titleStyle.Render("About your answers") + "\n")
		for i, exp := range content.Explanations {
			if wrong, ok := l.WrongAnswer(i); ok {
				b.WriteString(focusStyle.Render(wrapText(fmt.Sprintf("%d. %s", i+1, wrong.Question), width)) + "\n")
				b.WriteString(mutedStyle.Render(wrapText("you answered "+wrong.UserAnswer+", correct is "+wrong.CorrectAnswer, width)) + "\n")
			} else {
				b.WriteString(focusStyle.Render(fmt.Sprintf("%d.", i+1)) + "\n")
			}
			if exp.Explanation != "" {
				b.WriteString(textStyle.Render(wrapText(exp.Explanation, width)) + "\n")
			}
			if exp.Visual.Content != "" && exp.Visual.Type != "none" {
				b.WriteString(cardStyle.Render(codeStyle.Render(exp.Visual.Content)) + "\n")
			}
			if len(exp.ConceptKeywords) > 0 {
				b.WriteString(renderChips(exp.ConceptKeywords, width) + "\n")
			}
			b.WriteString("\n")
		}
	}
	if len(content.ConceptKeywords) > 0 {
		b.WriteString(titleStyle.Render("Key concepts") + "\n")
		b.WriteString(renderChips(content.ConceptKeywords, width) + "\n")
	}
	if b.Len() == 0 {
		return mutedStyle.Render("No material was generated. Press enter to start coding.")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderChips(words []string, width int) string {
	var lines []string
	line := ""
	lineWidth := 0
	for _, w := range words {
		chip := chipStyle.Render(w)
		chipWidth := runewidth.StringWidth(w) + 2
		if lineWidth > 0 && lineWidth+1+chipWidth > width {
			lines = append(lines, line)
			line, lineWidth = "", 0
		}
		if lineWidth > 0 {
			line += " "
			lineWidth++
		}
		line += chip
		lineWidth += chipWidth
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
