// Package stats summarizes the practice history.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/codetutor/internal/flow"
	"github.com/verte-zerg/codetutor/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates attempts by the path they took.
type Summary struct {
	Attempts       int
	Completed      int
	QuizTaken      int
	Perfect        int
	Learning       int
	Direct         int
	Runs           int
	AvgQuizPercent float64
	ByLanguage     map[model.Language]int
}

// Summarize counts attempts per route.
func Summarize(attempts []model.Attempt) Summary {
	s := Summary{ByLanguage: map[model.Language]int{}}
	var quizSum float64
	for _, a := range attempts {
		s.Attempts++
		s.Runs += a.Runs
		s.ByLanguage[a.Language]++
		if a.Completed {
			s.Completed++
		}
		steps := routeSteps(a.Route)
		if len(steps) > 0 && steps[0] == flow.RouteEditor.String() {
			s.Direct++
		}
		if contains(steps, flow.RouteLearning.String()) {
			s.Learning++
		}
		if a.QuizTotal > 0 {
			s.QuizTaken++
			quizSum += QuizPercent(a.QuizScore)
			if a.QuizScore == flow.MaxScore {
				s.Perfect++
			}
		}
	}
	if s.QuizTaken > 0 {
		s.AvgQuizPercent = quizSum / float64(s.QuizTaken)
	}
	return s
}

// QuizPercent converts a score to a percentage of the maximum score.
func QuizPercent(score int) float64 {
	return float64(score) / flow.MaxScore * 100
}

func routeSteps(route string) []string {
	if route == "" {
		return nil
	}
	return strings.Split(route, ">")
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// QuizTrend returns the quiz percentages of attempts that took a quiz, oldest first.
func QuizTrend(attempts []model.Attempt) []float64 {
	var out []float64
	for _, a := range attempts {
		if a.QuizTotal > 0 {
			out = append(out, QuizPercent(a.QuizScore))
		}
	}
	return out
}

// RenderSummary prints the summary block.
func RenderSummary(w io.Writer, attempts []model.Attempt, window int) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	s := Summarize(attempts)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d (%d reached the editor)", s.Attempts, s.Completed),
		fmt.Sprintf("Straight to editor: %d", s.Direct),
		fmt.Sprintf("Quizzes: %d (%d perfect, %d sent to learning)", s.QuizTaken, s.Perfect, s.Learning),
		fmt.Sprintf("Avg quiz score: %.1f%%", s.AvgQuizPercent),
		fmt.Sprintf("Code runs: %d", s.Runs),
		"Languages: " + languageBreakdown(s.ByLanguage),
	}
	if trend := QuizTrend(attempts); len(trend) > 1 {
		lines = append(lines, "Quiz trend: "+Sparkline(MovingAverage(trend, window)))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func languageBreakdown(counts map[model.Language]int) string {
	langs := make([]model.Language, 0, len(counts))
	for lang := range counts {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if counts[langs[i]] == counts[langs[j]] {
			return langs[i] < langs[j]
		}
		return counts[langs[i]] > counts[langs[j]]
	})
	parts := make([]string, 0, len(langs))
	for _, lang := range langs {
		parts = append(parts, fmt.Sprintf("%s %d", lang.Label(), counts[lang]))
	}
	return strings.Join(parts, ", ")
}
