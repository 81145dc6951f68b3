package tui

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// lipgloss renders a tab as this many spaces.
const styledTabWidth = 4

// terminalTabStop is where a raw tab advances to when printed unstyled.
const terminalTabStop = 8

// wrapText word-wraps s to width display cells. Existing newlines, leading
// indentation and runs of whitespace between words are kept; only the
// whitespace at a break point is dropped. Words wider than a line are broken.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	paragraphs := strings.Split(s, "\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		out = append(out, wrapLine(p, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	var (
		lines   []string
		current strings.Builder
		col     int
		pending string
	)
	flush := func() {
		lines = append(lines, current.String())
		current.Reset()
		col = 0
	}
	for _, tok := range splitSpaces(line) {
		if isSpace(tok) {
			if col == 0 && current.Len() == 0 && len(lines) == 0 {
				current.WriteString(tok)
				col = advance(tok, 0, styledTabWidth)
				continue
			}
			pending = tok
			continue
		}
		gap := advance(pending, col, styledTabWidth) - col
		wordWidth := runewidth.StringWidth(tok)
		if col > 0 {
			if col+gap+wordWidth > width {
				flush()
			} else {
				current.WriteString(pending)
				col += gap
			}
		}
		pending = ""
		for col+wordWidth > width {
			head := runewidth.Truncate(tok, width-col, "")
			if head == "" {
				if col > 0 {
					flush()
					continue
				}
				head = string([]rune(tok)[:1])
			}
			current.WriteString(head)
			flush()
			tok = tok[len(head):]
			wordWidth = runewidth.StringWidth(tok)
		}
		if tok == "" {
			continue
		}
		current.WriteString(tok)
		col += wordWidth
	}
	if col > 0 {
		current.WriteString(pending)
	}
	if current.Len() > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// hardWrap breaks s at width display cells without touching whitespace, for
// program output and other preformatted text. Tabs advance to terminal tab stops.
func hardWrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var (
		b   strings.Builder
		col int
	)
	for _, r := range s {
		if r == '\n' {
			b.WriteRune(r)
			col = 0
			continue
		}
		w := runewidth.RuneWidth(r)
		if r == '\t' {
			w = terminalTabStop - col%terminalTabStop
		}
		if col > 0 && col+w > width {
			b.WriteByte('\n')
			col = 0
			if r == '\t' {
				w = terminalTabStop
			}
		}
		b.WriteRune(r)
		col += w
	}
	return b.String()
}

// splitSpaces cuts line into alternating runs of whitespace and non-whitespace.
func splitSpaces(line string) []string {
	var (
		toks  []string
		start int
		space bool
	)
	for i, r := range line {
		s := unicode.IsSpace(r)
		if i > start && s != space {
			toks = append(toks, line[start:i])
			start = i
		}
		space = s
	}
	if start < len(line) {
		toks = append(toks, line[start:])
	}
	return toks
}

func isSpace(tok string) bool {
	for _, r := range tok {
		return unicode.IsSpace(r)
	}
	return false
}

// advance returns the column after printing whitespace ws from col.
func advance(ws string, col, tab int) int {
	for _, r := range ws {
		if r == '\t' {
			col += tab
			continue
		}
		col += runewidth.RuneWidth(r)
	}
	return col
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
