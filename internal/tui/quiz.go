package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/codetutor/internal/backend"
	"github.com/verte-zerg/codetutor/internal/flow"
	"github.com/verte-zerg/codetutor/internal/model"
)

type quizScreen struct {
	quiz    *flow.Quiz
	spinner spinner.Model
	results viewport.Model
	current int
	cursor  int
	notice  string
	width   int
}

func newQuizScreen(q *flow.Quiz, width, height int) *quizScreen {
	s := &quizScreen{
		quiz:    q,
		spinner: newSpinner(),
		results: viewport.New(width, 1),
	}
	s.resize(width, height)
	return s
}

func (s *quizScreen) resize(width, height int) {
	s.width = width
	s.results.Width = width
	s.results.Height = max(3, height-12)
	if s.quiz.State() == flow.QuizShowingResults {
		s.results.SetContent(renderQuestionResults(s.quiz.Result(), width))
	}
}

func (s *quizScreen) busy() bool {
	return s.quiz.State() == flow.QuizLoading || s.quiz.Submitting()
}

func (s *quizScreen) question() (model.Question, bool) {
	qs := s.quiz.Questions()
	if s.current < 0 || s.current >= len(qs) {
		return model.Question{}, false
	}
	return qs[s.current], true
}

// show moves to question i and puts the cursor on its recorded answer.
func (s *quizScreen) show(i int) {
	qs := s.quiz.Questions()
	if len(qs) == 0 {
		return
	}
	s.current = (i + len(qs)) % len(qs)
	s.cursor = 0
	q := qs[s.current]
	if answer, ok := s.quiz.Selected(q.ID); ok {
		for j, opt := range q.Options {
			if opt == answer {
				s.cursor = j
			}
		}
	}
}

func (m *Model) fetchQuiz(req backend.QuizRequest) tea.Cmd {
	api, ctx, seq := m.deps.API, m.ctx, m.seq
	return func() tea.Msg {
		quiz, err := api.GenerateQuiz(ctx, req)
		return quizLoadedMsg{seq: seq, quiz: quiz, err: err}
	}
}

func (m *Model) gradeQuiz(req backend.CheckRequest) tea.Cmd {
	api, ctx, seq := m.deps.API, m.ctx, m.seq
	return func() tea.Msg {
		result, err := api.CheckQuiz(ctx, req)
		return quizGradedMsg{seq: seq, result: result, err: err}
	}
}

func (m *Model) quizLoaded(msg quizLoadedMsg) tea.Cmd {
	s := m.quiz
	if msg.err != nil {
		m.deps.Logger.Error().Err(msg.err).Msg("quiz generation failed")
		s.quiz.Failed(msg.err)
		return nil
	}
	if err := s.quiz.Loaded(msg.quiz); err != nil {
		m.deps.Logger.Error().Err(err).Msg("quiz rejected")
		return nil
	}
	s.show(0)
	return nil
}

func (m *Model) quizGraded(msg quizGradedMsg) tea.Cmd {
	s := m.quiz
	if msg.err != nil {
		m.deps.Logger.Error().Err(msg.err).Msg("quiz grading failed")
		s.quiz.GradeFailed(msg.err)
		return nil
	}
	if err := s.quiz.Graded(msg.result); err != nil {
		return nil
	}
	m.recordQuiz(msg.result.Score, len(s.quiz.Questions()))
	s.results.SetContent(renderQuestionResults(msg.result, s.width))
	s.results.GotoTop()
	return nil
}

func (m *Model) updateQuiz(msg tea.Msg) tea.Cmd {
	s := m.quiz
	if s == nil {
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if key.String() == "esc" {
		return m.home()
	}

	switch s.quiz.State() {
	case flow.QuizShowingResults:
		if key.String() == "enter" {
			next, err := s.quiz.Continue()
			if err != nil {
				return nil
			}
			return m.navigate(next)
		}
		var cmd tea.Cmd
		s.results, cmd = s.results.Update(msg)
		return cmd
	case flow.QuizInProgress:
		return m.answerKeys(key)
	}
	return nil
}

func (m *Model) answerKeys(key tea.KeyMsg) tea.Cmd {
	s := m.quiz
	q, ok := s.question()
	if !ok {
		return nil
	}
	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(q.Options)-1 {
			s.cursor++
		}
	case "left", "h", "shift+tab":
		s.show(s.current - 1)
	case "right", "l", "tab":
		s.show(s.current + 1)
	case "enter", " ":
		if len(q.Options) == 0 {
			return nil
		}
		if err := s.quiz.Answer(q.ID, q.Options[s.cursor]); err != nil {
			return nil
		}
		s.notice = ""
		if s.current < len(s.quiz.Questions())-1 {
			s.show(s.current + 1)
		}
	case "ctrl+s", "s":
		req, err := s.quiz.SubmitRequest()
		if err != nil {
			s.notice = err.Error()
			return nil
		}
		s.notice = ""
		return tea.Batch(s.spinner.Tick, m.gradeQuiz(req))
	}
	return nil
}

func (m *Model) viewQuiz(width int) (string, string) {
	s := m.quiz
	if s == nil {
		return "", ""
	}
	task := s.quiz.Context().Task
	header := textStyle.Render(wrapText("Quiz: "+task, width))

	switch s.quiz.State() {
	case flow.QuizLoading:
		return header + "\n\n" + s.spinner.View() + " Generating questions...", "esc home · ctrl+c quit"
	case flow.QuizError:
		body := errorStyle.Render(wrapText(s.quiz.Err(), width))
		return header + "\n\n" + body, "esc home · ctrl+c quit"
	case flow.QuizShowingResults:
		result := s.quiz.Result()
		scoreStyle := errorStyle
		if result.Score == flow.MaxScore {
			scoreStyle = successStyle
		}
		summary := scoreStyle.Render(fmt.Sprintf("Score: %d/%d (%.0f%%)", result.Score, flow.MaxScore, s.quiz.Percent()))
		next := "Continue to learning material"
		if result.Score == flow.MaxScore {
			next = "Perfect! Continue to the editor"
		}
		body := header + "\n\n" + summary + "\n\n" + s.results.View() + "\n\n" + focusStyle.Render("> "+next)
		return body, "enter continue · ↑/↓ scroll · esc home"
	}

	q, _ := s.question()
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Question %d of %d · answered %d", s.current+1, len(s.quiz.Questions()), s.quiz.Answered())))
	b.WriteString("\n")
	b.WriteString(textStyle.Render(wrapText(q.Question, width)))
	b.WriteString("\n")
	if q.CodeSnippet != "" {
		b.WriteString("\n")
		b.WriteString(cardStyle.Render(codeStyle.Render(q.CodeSnippet)))
		b.WriteString("\n")
	}
	selected, _ := s.quiz.Selected(q.ID)
	for i, opt := range q.Options {
		mark := "( )"
		if opt == selected {
			mark = "(•)"
		}
		line := wrapText(mark+" "+opt, width-2)
		if i == s.cursor {
			b.WriteString(focusStyle.Render("> " + line))
		} else {
			b.WriteString(mutedStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case s.quiz.Submitting():
		b.WriteString(s.spinner.View() + " Checking answers...")
	case s.quiz.CanSubmit():
		b.WriteString(successStyle.Render("All questions answered. Press s to submit."))
	default:
		b.WriteString(mutedStyle.Render("Submit is available once every question is answered."))
	}
	if s.notice != "" {
		b.WriteString("\n" + errorStyle.Render(s.notice))
	}
	if s.quiz.Err() != "" {
		b.WriteString("\n" + errorStyle.Render(wrapText(s.quiz.Err(), width)))
	}
	return b.String(), "↑/↓ choose · enter select · ←/→ question · s submit · esc home"
}

func renderQuestionResults(result model.GradingResult, width int) string {
	var b strings.Builder
	if len(result.QuestionResults) > 0 {
		for _, r := range result.QuestionResults {
			mark := successStyle.Render("✓")
			if !r.IsCorrect {
				mark = errorStyle.Render("✗")
			}
			b.WriteString(mark + " " + textStyle.Render(wrapText(r.Question, width-2)) + "\n")
			if !r.IsCorrect {
				b.WriteString(indent(mutedStyle.Render(wrapText("your answer: "+r.UserAnswer, width-4)), "    ") + "\n")
				b.WriteString(indent(mutedStyle.Render(wrapText("correct: "+r.CorrectAnswer, width-4)), "    ") + "\n")
			}
		}
		return b.String()
	}
	if len(result.WrongAnswers) == 0 {
		return successStyle.Render("Every answer was correct.")
	}
	b.WriteString(mutedStyle.Render("Questions to review:") + "\n")
	for _, w := range result.WrongAnswers {
		b.WriteString(errorStyle.Render("✗") + " " + textStyle.Render(wrapText(w.Question, width-2)) + "\n")
		b.WriteString(indent(mutedStyle.Render(wrapText("your answer: "+w.UserAnswer, width-4)), "    ") + "\n")
		b.WriteString(indent(mutedStyle.Render(wrapText("correct: "+w.CorrectAnswer, width-4)), "    ") + "\n")
	}
	return b.String()
}
