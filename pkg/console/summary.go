package console

import (
	"fmt"
	"strings"
	"time"
)

// Cycle statuses shown in the summary.
const (
	StatusNew       = "new"
	StatusUnchanged = "unchanged"
	StatusEmpty     = "empty"
	StatusLocked    = "locked"
	StatusFailed    = "failed"
)

// CycleSummary is what the final summary block shows.
type CycleSummary struct {
	RunID          string
	Status         string
	Duration       time.Duration
	Documents      int
	CorpusChars    int
	Fingerprint    string
	Candidates     int
	Inserted       []string
	Summary        string
	TasksCompleted int
	TokensUsed     int64
	MonthlyCost    float64
	Degraded       []string
	Error          string
}

// Summary prints the final cycle summary. It is shown at every level.
func (p *Printer) Summary(s CycleSummary) {
	p.printSummaryHeader()
	p.printStatus(s.Status, len(s.Degraded) > 0)
	p.printCounts(s)
	p.printInserted(s)
	p.printDegraded(s)
	p.printError(s)
	p.printSummaryFooter()
}

func (p *Printer) printSummaryHeader() {
	fmt.Fprintln(p.writer)
	p.line(p.styles.header, strings.Repeat("=", 70))
	p.line(p.styles.header, "  SYNC SUMMARY")
	p.line(p.styles.header, strings.Repeat("=", 70))
}

func (p *Printer) printStatus(status string, degraded bool) {
	fmt.Fprint(p.writer, "  Status: ")
	switch {
	case status == StatusFailed:
		p.line(p.styles.err, "✗ FAILED")
	case status == StatusLocked:
		p.line(p.styles.warning, "⚠ SKIPPED (another cycle is running)")
	case degraded:
		p.line(p.styles.warning, "⚠ PARTIAL ("+status+")")
	case status == StatusNew:
		p.line(p.styles.success, "✓ SYNCED")
	case status == StatusUnchanged:
		p.line(p.styles.success, "✓ UNCHANGED")
	case status == StatusEmpty:
		p.line(p.styles.success, "✓ NOTHING TO SYNC")
	default:
		fmt.Fprintln(p.writer, status)
	}
}

func (p *Printer) printCounts(s CycleSummary) {
	if s.RunID != "" {
		fmt.Fprintf(p.writer, "  Run: %s\n", s.RunID)
	}
	fmt.Fprintf(p.writer, "  Duration: %s\n", s.Duration.Round(time.Millisecond))
	if s.Status == StatusLocked {
		return
	}

	fmt.Fprintf(p.writer, "  Documents: %d (%s chars)\n", s.Documents, formatNumber(s.CorpusChars))
	if s.Fingerprint != "" && p.level >= LevelVerbose {
		fmt.Fprintf(p.writer, "  Fingerprint: %s\n", s.Fingerprint)
	}
	if s.Status == StatusNew {
		fmt.Fprintf(p.writer, "  People found: %d, stored: %d\n", s.Candidates, len(s.Inserted))
	}
	if s.Summary != "" {
		fmt.Fprintf(p.writer, "  Summary: %s\n", truncate(s.Summary, 100))
		fmt.Fprintf(p.writer, "  Tasks: %d\n", s.TasksCompleted)
	}
	if s.TokensUsed > 0 {
		fmt.Fprintf(p.writer, "  Tokens used (total): %s, est. cost $%.4f\n", formatNumber(int(s.TokensUsed)), s.MonthlyCost)
	}
}

func (p *Printer) printInserted(s CycleSummary) {
	if p.level < LevelVerbose || len(s.Inserted) == 0 {
		return
	}
	fmt.Fprintf(p.writer, "\n  New people:\n")
	for _, name := range s.Inserted {
		fmt.Fprintf(p.writer, "    • %s\n", name)
	}
}

func (p *Printer) printDegraded(s CycleSummary) {
	if len(s.Degraded) == 0 {
		return
	}
	fmt.Fprintf(p.writer, "\n  Degraded:\n")
	for _, op := range s.Degraded {
		p.line(p.styles.warning, "    ⚠ "+op)
	}
}

func (p *Printer) printError(s CycleSummary) {
	if s.Error == "" {
		return
	}
	fmt.Fprintln(p.writer)
	p.line(p.styles.err, "  Error Details:")
	p.line(p.styles.err, "    "+s.Error)
}

func (p *Printer) printSummaryFooter() {
	p.line(p.styles.header, strings.Repeat("=", 70))
	fmt.Fprintln(p.writer)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// formatNumber formats large numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
