// Package console renders operator-facing messages and collects input for the
// provisioning session.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Console writes styled messages to the operator.
type Console struct {
	out   io.Writer
	plain bool
}

// New creates a console writing to out. With plain set no styling is applied.
func New(out io.Writer, plain bool) *Console {
	return &Console{out: out, plain: plain}
}

// Title prints a bold heading.
func (c *Console) Title(text string) {
	fmt.Fprintln(c.out, c.render(titleStyle, text))
}

// Info prints an informational line.
func (c *Console) Info(format string, args ...any) {
	fmt.Fprintln(c.out, c.render(infoStyle, checkMark+" "+fmt.Sprintf(format, args...)))
}

// Warn prints a non-fatal problem.
func (c *Console) Warn(format string, args ...any) {
	fmt.Fprintln(c.out, c.render(warningStyle, warnMark+" "+fmt.Sprintf(format, args...)))
}

// Error prints a failure the operator has to act on.
func (c *Console) Error(format string, args ...any) {
	fmt.Fprintln(c.out, c.render(errorStyle, crossMark+" "+fmt.Sprintf(format, args...)))
}

// Field is one row of a parameter listing.
type Field struct {
	Key   string
	Value string
}

// Fields prints a titled key/value listing.
func (c *Console) Fields(title string, fields []Field) {
	var b strings.Builder
	b.WriteString(c.render(sectionStyle, title))
	b.WriteByte('\n')
	for _, f := range fields {
		value := f.Value
		if value == "" {
			value = "-"
		}
		if c.plain {
			fmt.Fprintf(&b, "  %s: %s\n", f.Key, value)
			continue
		}
		b.WriteString("  " + lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(f.Key), value) + "\n")
	}
	fmt.Fprint(c.out, b.String())
}

func (c *Console) render(style lipgloss.Style, text string) string {
	if c.plain {
		return text
	}
	return style.Render(text)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
