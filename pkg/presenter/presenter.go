// Package presenter renders user-facing console output for the converter:
// step headers, success and warning lines, fatal errors, and the closing
// run summary. Library packages log; only the CLI presents.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Item is one labelled line of a summary block.
type Item struct {
	Label string
	Value string
}

// Presenter defines the console output surface used by the CLI.
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Summary(items ...Item)
	Separator()
	Writer() io.Writer
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// TerminalPresenter implements Presenter for terminal output.
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	colorMode   ColorMode
	quiet       bool
}

// ColorMode selects whether ANSI colour is emitted.
type ColorMode int

const (
	// ColorAuto lets fatih/color detect terminal support.
	ColorAuto ColorMode = iota
	// ColorAlways forces colour.
	ColorAlways
	// ColorNever disables colour.
	ColorNever
)

// New creates a TerminalPresenter writing to stdout/stderr.
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom writers.
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
	}

	return &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		colorMode:   colorMode,
	}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv("GSD_CONVERTER_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error writes an error to stderr. Errors are printed even in quiet mode.
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success writes a success line.
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning writes a warning line.
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info writes a plain line.
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", message)
}

// Section writes an underlined header.
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}

	headerColor := color.New(color.Bold)
	headerColor.Fprintf(p.output, "%s\n", title)
	headerColor.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Summary writes label/value pairs with the values aligned in one column.
func (p *TerminalPresenter) Summary(items ...Item) {
	if p.quiet || len(items) == 0 {
		return
	}

	width := 0
	for _, item := range items {
		if len(item.Label) > width {
			width = len(item.Label)
		}
	}

	labelColor := color.New(color.FgCyan, color.Bold)
	for _, item := range items {
		labelColor.Fprintf(p.output, "%-*s", width+1, item.Label+":")
		fmt.Fprintf(p.output, " %s\n", item.Value)
	}
}

// Separator writes a horizontal rule.
func (p *TerminalPresenter) Separator() {
	if p.quiet {
		return
	}
	color.New(color.Faint).Fprintf(p.output, "%s\n", strings.Repeat("-", 60))
}

// Writer exposes the standard output writer for tabular listings.
func (p *TerminalPresenter) Writer() io.Writer {
	return p.output
}

// SetQuiet enables or disables quiet mode.
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet reports whether quiet mode is enabled.
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

var defaultPresenter Presenter = New()

// Default returns the process-wide presenter.
func Default() Presenter {
	return defaultPresenter
}

// Error writes an error using the default presenter.
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success writes a success line using the default presenter.
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning writes a warning line using the default presenter.
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info writes a plain line using the default presenter.
func Info(message string) {
	defaultPresenter.Info(message)
}

// Section writes a header using the default presenter.
func Section(title string) {
	defaultPresenter.Section(title)
}

// Summary writes label/value pairs using the default presenter.
func Summary(items ...Item) {
	defaultPresenter.Summary(items...)
}

// Separator writes a rule using the default presenter.
func Separator() {
	defaultPresenter.Separator()
}

// SetQuiet toggles quiet mode on the default presenter.
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}

// IsQuiet reports quiet mode of the default presenter.
func IsQuiet() bool {
	return defaultPresenter.IsQuiet()
}
