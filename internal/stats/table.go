package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/codetutor/internal/model"
)

const (
	terminalWidthBackup = 80
	minTaskWidth        = 12
	taskColumn          = 1
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// TerminalWidth returns the width of w when it is a terminal.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldStyle(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// RenderTable prints attempts as an aligned table no wider than width.
// The task column is truncated to fit. width <= 0 disables truncation.
func RenderTable(w io.Writer, attempts []model.Attempt, width int) error {
	if len(attempts) == 0 {
		return nil
	}
	headers := []string{"Started", "Task", "Level", "Lang", "Route", "Quiz", "Runs"}
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		quiz := "-"
		if a.QuizTotal > 0 {
			quiz = fmt.Sprintf("%d/%d", a.QuizScore, a.QuizTotal)
		}
		route := a.Route
		if route == "" {
			route = "-"
		}
		rows = append(rows, []string{
			a.StartedAt.Local().Format("2006-01-02 15:04"),
			strings.Join(strings.Fields(a.Task), " "),
			a.Difficulty.Label(),
			a.Language.Label(),
			route,
			quiz,
			fmt.Sprintf("%d", a.Runs),
		})
	}
	if width > 0 {
		fitColumn(headers, rows, taskColumn, width)
	}

	rightAlign := map[int]bool{5: true, 6: true}
	lines := formatTable(headers, rows, rightAlign)
	for i, line := range lines {
		if i == 0 && shouldStyle(w) {
			line = headerStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// fitColumn truncates one column so the formatted table fits in width.
func fitColumn(headers []string, rows [][]string, col, width int) {
	widths := columnWidths(headers, rows)
	total := len(widths) - 1
	for _, cw := range widths {
		total += cw
	}
	if total <= width {
		return
	}
	target := max(widths[col]-(total-width), minTaskWidth)
	for _, row := range rows {
		if col < len(row) {
			row[col] = runewidth.Truncate(row[col], target, "…")
		}
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	colCount := len(headers)
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}
	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}
	return widths
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	widths := columnWidths(headers, rows)
	if len(widths) == 0 {
		return nil
	}
	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := strings.Repeat(" ", width-valueWidth)
	if rightAlign {
		return padding + value
	}
	return value + padding
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
