// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Writer handles CLI output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	title  *color.Color
	dim    *color.Color
}

// New creates a new Writer with default settings.
func New() *Writer {
	return NewWithWriters(os.Stdout, os.Stderr, !color.NoColor)
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, useColor bool) *Writer {
	w := &Writer{out: out, err: err}
	w.green = color.New(color.FgGreen)
	w.red = color.New(color.FgRed)
	w.yellow = color.New(color.FgYellow)
	w.cyan = color.New(color.FgCyan)
	w.title = color.New(color.Bold, color.FgCyan)
	w.dim = color.New(color.Faint)
	w.SetColor(useColor)
	return w
}

// SetColor forces colored output on or off.
func (w *Writer) SetColor(enabled bool) {
	w.color = enabled
	for _, c := range []*color.Color{w.green, w.red, w.yellow, w.cyan, w.title, w.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// Out returns the stdout writer.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s", w.green.Sprintf(format, args...))
}

// Warning prints a warning message to stderr.
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Errorln("%s %s", w.yellow.Sprint("warning:"), fmt.Sprintf(format, args...))
}

// ErrorPrefix prints an error message with the testrig prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	w.Errorln("%s %s", w.red.Sprint("testrig:"), fmt.Sprintf(format, args...))
}

// Title prints a bold banner line.
func (w *Writer) Title(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println("")
	w.Println("%s", w.title.Sprintf(format, args...))
	w.Println("")
}

// Section prints a section header.
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	w.Println("%s", w.title.Sprintf("=== %s ===", title))
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// Step prints a numbered step message.
func (w *Writer) Step(num int, format string, args ...interface{}) {
	w.Println("%s %s", w.cyan.Sprintf("%d.", num), fmt.Sprintf(format, args...))
}

// Action prints what the CLI is doing.
func (w *Writer) Action(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println("%s", w.cyan.Sprintf(format, args...))
}

// Done prints a completed action with a check mark.
func (w *Writer) Done(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println("%s %s", w.green.Sprint("✓"), fmt.Sprintf(format, args...))
}

// Check prints a pass/fail line with an optional hint for failures.
func (w *Writer) Check(name string, passed bool, hint string) {
	if passed {
		w.Println("  %s %s", w.green.Sprint("✓"), name)
		return
	}
	if hint != "" {
		w.Println("  %s %s %s", w.red.Sprint("✗"), name, w.dim.Sprintf("(%s)", hint))
		return
	}
	w.Println("  %s %s", w.red.Sprint("✗"), name)
}

// CheckWarning prints a non-fatal check line.
func (w *Writer) CheckWarning(name, detail string) {
	w.Println("  %s %s %s", w.yellow.Sprint("!"), name, w.dim.Sprintf("(%s)", detail))
}

// Hint prints a dimmed hint for the user.
func (w *Writer) Hint(format string, args ...interface{}) {
	w.Println("%s", w.dim.Sprintf(format, args...))
}

// SummaryItem prints a labeled summary item with value.
func (w *Writer) SummaryItem(label, value string) {
	w.Println("  %s %s", w.dim.Sprintf("%s:", label), value)
}

// SummaryPassed prints a passed/success items summary.
func (w *Writer) SummaryPassed(label, value string) {
	w.Println("  %s %s", w.dim.Sprintf("%s:", label), w.green.Sprint(value))
}

// SummaryFailed prints a failed items summary.
func (w *Writer) SummaryFailed(label, value string) {
	w.Println("  %s %s", w.dim.Sprintf("%s:", label), w.red.Sprint(value))
}

// SummaryWarning prints a skipped/attention items summary.
func (w *Writer) SummaryWarning(label, value string) {
	w.Println("  %s %s", w.dim.Sprintf("%s:", label), w.yellow.Sprint(value))
}

// FinalSuccess prints a final success message.
func (w *Writer) FinalSuccess(format string, args ...interface{}) {
	w.Println("")
	w.Println("%s", w.green.Sprintf(format, args...))
}

// FinalFailure prints a final failure message.
func (w *Writer) FinalFailure(format string, args ...interface{}) {
	w.Println("")
	w.Println("%s", w.red.Sprintf(format, args...))
}
