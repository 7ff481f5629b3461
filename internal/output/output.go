// Package output provides consistent CLI output formatting with status glyphs.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Glyphs for the three outcome severities.
const (
	GlyphPass = "✅"
	GlyphWarn = "⚠️ "
	GlyphFail = "❌"
)

// Style renders a string. lipgloss.Style satisfies it.
type Style interface {
	Render(strs ...string) string
}

// plain renders text unchanged.
type plain struct{}

func (plain) Render(strs ...string) string { return strings.Join(strs, " ") }

// Theme styles the parts of a report line.
type Theme struct {
	Pass   Style
	Warn   Style
	Fail   Style
	Header Style
	Dim    Style
}

// PlainTheme returns a theme that renders text unchanged.
func PlainTheme() Theme {
	return Theme{Pass: plain{}, Warn: plain{}, Fail: plain{}, Header: plain{}, Dim: plain{}}
}

// Writer provides formatted output for CLI.
//
// Text passed to Writer may come from subprocesses and the filesystem; every
// line is sanitised before it reaches the terminal.
type Writer struct {
	out   io.Writer
	theme Theme
}

// Option configures a Writer.
type Option func(*Writer)

// WithTheme sets the styles used for glyphs and headers.
func WithTheme(t Theme) Option {
	return func(w *Writer) {
		w.theme = t
	}
}

// New creates a new output Writer.
func New(out io.Writer, opts ...Option) *Writer {
	w := &Writer{
		out:   out,
		theme: PlainTheme(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	msg = SanitizeLine(msg)
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status(w.theme.Pass.Render(GlyphPass), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.theme.Warn.Render(GlyphWarn), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.theme.Fail.Render(GlyphFail), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Detail prints an indented, dimmed supplementary line.
func (w *Writer) Detail(msg string) {
	msg = SanitizeLine(msg)
	if msg == "" {
		return
	}
	_, _ = fmt.Fprintf(w.out, "      %s\n", w.theme.Dim.Render(msg))
}

// Header prints a section title.
func (w *Writer) Header(title string) {
	_, _ = fmt.Fprintln(w.out, w.theme.Header.Render(SanitizeLine(title)))
}

// Rule prints a title underlined with '='.
func (w *Writer) Rule(title string) {
	title = SanitizeLine(title)
	_, _ = fmt.Fprintln(w.out, w.theme.Header.Render(title))
	_, _ = fmt.Fprintln(w.out, strings.Repeat("=", len([]rune(title))))
}

// Item prints an enumerated list entry.
func (w *Writer) Item(n int, msg string) {
	_, _ = fmt.Fprintf(w.out, "  %d. %s\n", n, SanitizeLine(msg))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
