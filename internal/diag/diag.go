// Package diag renders errors and source for the terminal.
package diag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/yorlang/yorlang/internal/config"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/interp"
)

const tabWidth = 4

type Styles struct {
	Label    lipgloss.Style
	Message  lipgloss.Style
	Gutter   lipgloss.Style
	Source   lipgloss.Style
	Caret    lipgloss.Style
	Frame    lipgloss.Style
	Colorful bool
}

// NewRenderer returns a lipgloss renderer for w honouring mode. Auto
// detects the profile from the terminal and environment.
func NewRenderer(w io.Writer, mode config.ColorMode) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case config.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case config.ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	default:
		if f, ok := w.(*os.File); ok {
			r.SetColorProfile(termenv.NewOutput(f).EnvColorProfile())
		} else {
			r.SetColorProfile(termenv.Ascii)
		}
	}
	return r
}

func NewStyles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Styles{
		Label:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		Message:  r.NewStyle().Bold(true),
		Gutter:   r.NewStyle().Foreground(lipgloss.Color("244")),
		Source:   r.NewStyle().TabWidth(tabWidth),
		Caret:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		Frame:    r.NewStyle().Foreground(lipgloss.Color("244")),
		Colorful: r.ColorProfile() != termenv.Ascii,
	}
}

// PlainStyles renders without any escape sequences.
func PlainStyles() Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return NewStyles(r)
}

// Format renders err as a one-line header followed, when err carries a
// position inside src, by the offending line with a caret under the
// column. Routine frames from a stack error are listed last.
func Format(err error, src []byte, st Styles) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(st.Label.Render(label(err)))
	b.WriteString(" ")
	b.WriteString(st.Message.Render(err.Error()))
	b.WriteString("\n")

	if pos, ok := errdef.PosOf(err); ok {
		if line, ok := sourceLine(src, pos.Line); ok {
			num := fmt.Sprintf("%d", pos.Line)
			gutter := strings.Repeat(" ", len(num))
			b.WriteString(st.Gutter.Render(num + " | "))
			b.WriteString(st.Source.Render(line))
			b.WriteString("\n")
			b.WriteString(st.Gutter.Render(gutter + " | "))
			b.WriteString(caretPad(line, pos.Col))
			b.WriteString(st.Caret.Render("^"))
			b.WriteString("\n")
		}
	}

	var se *interp.StackError
	if errors.As(err, &se) {
		for i := len(se.Frames) - 1; i >= 0; i-- {
			f := se.Frames[i]
			b.WriteString(st.Frame.Render(fmt.Sprintf("  at %s in %s", f.Pos, f.Name)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func label(err error) string {
	code := errdef.CodeOf(err)
	if code == errdef.CodeUnknown {
		return "error:"
	}
	return fmt.Sprintf("error[%s]:", code)
}

func sourceLine(src []byte, n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	lines := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
	if n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

// caretPad reproduces the display width of the first col-1 bytes of line
// as rendered by the Source style.
func caretPad(line string, col int) string {
	end := min(max(col-1, 0), len(line))
	var b strings.Builder
	for _, r := range line[:end] {
		if r == '\t' {
			b.WriteString(strings.Repeat(" ", tabWidth))
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}
