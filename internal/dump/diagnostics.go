package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gopkg.keel-lang.org/keelc/internal/exc"
)

var (
	colorError   = lipgloss.Color("#EF4444")
	colorAccent  = lipgloss.Color("#06B6D4")
	colorMuted   = lipgloss.Color("#6B7280")
	colorWarning = lipgloss.Color("#F59E0B")
)

type styles struct {
	prefix   lipgloss.Style
	location lipgloss.Style
	context  lipgloss.Style
	code     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		prefix:   r.NewStyle().Foreground(colorError).Bold(true),
		location: r.NewStyle().Foreground(colorAccent),
		context:  r.NewStyle().Foreground(colorMuted),
		code:     r.NewStyle().Foreground(colorWarning),
	}
}

// Diagnostics writes each exception on its own line followed by a count. With
// color the parts of each line are styled for terminals that support it.
func Diagnostics(w io.Writer, errs []exc.Exception, color bool) error {
	if len(errs) == 0 {
		return nil
	}
	var st *styles
	if color {
		s := newStyles(w)
		st = &s
	}
	for _, e := range errs {
		line := e.Error()
		if st != nil {
			line = styled(e, *st)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	noun := "errors"
	if len(errs) == 1 {
		noun = "error"
	}
	_, err := fmt.Fprintf(w, "%d %s\n", len(errs), noun)
	return err
}

func styled(e exc.Exception, st styles) string {
	var b strings.Builder
	b.WriteString(st.prefix.Render("error:"))
	b.WriteString(" ")
	b.WriteString(e.Message())
	if loc := e.Location(); loc.Span.IsPresent() || loc.URI != "" {
		b.WriteString(" at ")
		b.WriteString(st.location.Render(loc.String()))
	}
	for _, label := range e.Context() {
		b.WriteString(st.context.Render(", while parsing " + label))
	}
	b.WriteString(" ")
	b.WriteString(st.code.Render("[" + e.Code() + "]"))
	return b.String()
}
