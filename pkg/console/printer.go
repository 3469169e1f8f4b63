// Package console renders human-readable cycle progress on stdout.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level represents the output verbosity level
type Level int

const (
	// LevelQuiet shows only warnings, errors and the final summary
	LevelQuiet Level = iota
	// LevelNormal shows standard cycle progress (default)
	LevelNormal
	// LevelVerbose shows per-source and per-entity details
	LevelVerbose
	// LevelDebug shows all internal details for debugging
	LevelDebug
)

// ParseLevel converts a verbosity name to a Level. Unknown names map to
// LevelNormal and ok is false.
func ParseLevel(level string) (lvl Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "quiet":
		return LevelQuiet, true
	case "normal", "":
		return LevelNormal, true
	case "verbose":
		return LevelVerbose, true
	case "debug":
		return LevelDebug, true
	default:
		return LevelNormal, false
	}
}

type styles struct {
	header  lipgloss.Style
	section lipgloss.Style
	rule    lipgloss.Style
	success lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		section: r.NewStyle().Foreground(lipgloss.Color("6")),
		rule:    r.NewStyle().Foreground(lipgloss.Color("8")),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		info:    r.NewStyle().Foreground(lipgloss.Color("#FFB3BA")),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		err:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Printer writes styled progress lines filtered by verbosity.
type Printer struct {
	level  Level
	writer io.Writer
	styles styles

	startTime time.Time
	stepCount int
}

// NewPrinter creates a printer writing to stdout.
func NewPrinter(level Level) *Printer {
	return NewPrinterTo(os.Stdout, level)
}

// NewPrinterTo creates a printer writing to w. Colors are dropped when w is
// not a terminal.
func NewPrinterTo(w io.Writer, level Level) *Printer {
	return &Printer{
		level:     level,
		writer:    w,
		styles:    newStyles(lipgloss.NewRenderer(w)),
		startTime: time.Now(),
	}
}

// Level returns the configured verbosity.
func (p *Printer) Level() Level {
	return p.level
}

func (p *Printer) line(style lipgloss.Style, text string) {
	fmt.Fprintln(p.writer, style.Render(text))
}

// Header prints a prominent header message
func (p *Printer) Header(message string) {
	if p.level >= LevelNormal {
		rule := strings.Repeat("=", 70)
		fmt.Fprintln(p.writer)
		p.line(p.styles.header, rule)
		p.line(p.styles.header, "  "+message)
		p.line(p.styles.header, rule)
	}
}

// Section prints a section divider
func (p *Printer) Section(title string) {
	if p.level >= LevelNormal {
		fmt.Fprintln(p.writer)
		p.line(p.styles.section, "▶ "+title)
		p.line(p.styles.rule, strings.Repeat("─", 50))
	}
}

// Step prints a numbered step
func (p *Printer) Step(message string) {
	if p.level >= LevelNormal {
		p.stepCount++
		p.line(p.styles.section, fmt.Sprintf("[%d] %s", p.stepCount, message))
	}
}

// Successf prints a success message with checkmark
func (p *Printer) Successf(format string, args ...interface{}) {
	if p.level >= LevelNormal {
		p.line(p.styles.success, "✓ "+fmt.Sprintf(format, args...))
	}
}

// Infof prints an informational message
func (p *Printer) Infof(format string, args ...interface{}) {
	if p.level >= LevelNormal {
		p.line(p.styles.info, "  "+fmt.Sprintf(format, args...))
	}
}

// Warningf prints a warning message
func (p *Printer) Warningf(format string, args ...interface{}) {
	p.line(p.styles.warning, "⚠ Warning: "+fmt.Sprintf(format, args...))
}

// Errorf prints an error message
func (p *Printer) Errorf(format string, args ...interface{}) {
	p.line(p.styles.err, "✗ Error: "+fmt.Sprintf(format, args...))
}

// Verbosef prints detailed information (only in verbose mode)
func (p *Printer) Verbosef(format string, args ...interface{}) {
	if p.level >= LevelVerbose {
		p.line(p.styles.muted, "→ "+fmt.Sprintf(format, args...))
	}
}

// Debugf prints debug information (only in debug mode)
func (p *Printer) Debugf(format string, args ...interface{}) {
	if p.level >= LevelDebug {
		p.line(p.styles.muted, "[DEBUG] "+fmt.Sprintf(format, args...))
	}
}

// Newline adds a blank line (respects level)
func (p *Printer) Newline() {
	if p.level >= LevelNormal {
		fmt.Fprintln(p.writer)
	}
}
