// Package ui prints user-facing messages with terminal colors.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Shared colors.
var (
	GreenColor  = lipgloss.AdaptiveColor{Light: "#2E9F4E", Dark: "#73F59F"}
	YellowColor = lipgloss.AdaptiveColor{Light: "#B58900", Dark: "#FFD866"}
	RedColor    = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"}
	CyanColor   = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#5FD7FF"}
	DimColor    = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
)

// Printer writes styled lines to an output stream. Colors are dropped when
// the stream is not a terminal.
type Printer struct {
	out     io.Writer
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	heading lipgloss.Style
	hint    lipgloss.Style
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:     out,
		success: r.NewStyle().Foreground(GreenColor),
		warn:    r.NewStyle().Foreground(YellowColor),
		err:     r.NewStyle().Foreground(RedColor).Bold(true),
		heading: r.NewStyle().Foreground(CyanColor),
		hint:    r.NewStyle().Foreground(DimColor),
	}
}

// Writer returns the underlying stream.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// render styles each line separately so multi-line text is not padded.
func render(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (p *Printer) line(style lipgloss.Style, format string, a ...any) {
	_, _ = fmt.Fprintln(p.out, render(style, fmt.Sprintf(format, a...)))
}

// Println writes an unstyled line.
func (p *Printer) Println(a ...any) {
	_, _ = fmt.Fprintln(p.out, a...)
}

// Printf writes unstyled formatted text.
func (p *Printer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.out, format, a...)
}

// Success writes a green line.
func (p *Printer) Success(format string, a ...any) { p.line(p.success, format, a...) }

// Warn writes a yellow line.
func (p *Printer) Warn(format string, a ...any) { p.line(p.warn, format, a...) }

// Error writes a red line.
func (p *Printer) Error(format string, a ...any) { p.line(p.err, format, a...) }

// Heading writes a cyan line.
func (p *Printer) Heading(format string, a ...any) { p.line(p.heading, format, a...) }

// Hint writes a dimmed line.
func (p *Printer) Hint(format string, a ...any) { p.line(p.hint, format, a...) }

// Highlight returns s styled green for inline use.
func (p *Printer) Highlight(s string) string {
	return render(p.success, s)
}
