package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cssColors translates the named colors used by the tier table and error
// text into terminal colors. Anything else is handed to lipgloss as is, so
// hex values and ANSI codes work too.
var cssColors = map[string]string{
	"red":        "#FF0000",
	"lightgreen": "#90EE90",
	"khaki":      "#F0E68C",
	"lightcoral": "#F08080",
}

func terminalColor(name string) lipgloss.Color {
	if hex, ok := cssColors[strings.ToLower(name)]; ok {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(name)
}

// Terminal is a Target that prints the panel to a writer. Writes are
// buffered in the Terminal until Flush.
type Terminal struct {
	w       io.Writer
	content Content
	style   Style
}

// NewTerminal returns a Terminal writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Set(c Content, s Style) {
	t.content = c
	t.style = s
}

// View returns the styled panel.
func (t *Terminal) View() string {
	st := lipgloss.NewStyle()
	if t.content.Color != "" {
		st = st.Foreground(terminalColor(t.content.Color))
	}
	if t.content.Bold {
		st = st.Bold(true)
	}
	if t.style.Background != "" {
		st = st.Background(terminalColor(t.style.Background)).
			Foreground(lipgloss.Color("#000000"))
	}
	if t.style.Padding != "" {
		st = st.Padding(1, 2)
	}
	if t.style.BorderRadius != "" {
		st = st.Border(lipgloss.RoundedBorder())
	}
	if t.style.MarginTop != "" {
		st = st.MarginTop(1)
	}
	return st.Render(strings.Join(t.content.Lines, "\n"))
}

// Flush writes the panel followed by a newline.
func (t *Terminal) Flush() error {
	_, err := fmt.Fprintln(t.w, t.View())
	return err
}
