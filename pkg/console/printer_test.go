package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{"quiet", LevelQuiet, true},
		{"normal", LevelNormal, true},
		{"", LevelNormal, true},
		{"VERBOSE", LevelVerbose, true},
		{"debug", LevelDebug, true},
		{"loud", LevelNormal, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestPrinter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterTo(&buf, LevelQuiet)

	p.Section("Collecting")
	p.Infof("found %d files", 2)
	p.Verbosef("detail")
	p.Warningf("source %s unreadable", "chat")
	p.Errorf("boom")

	out := buf.String()
	assert.NotContains(t, out, "Collecting")
	assert.NotContains(t, out, "found 2 files")
	assert.NotContains(t, out, "detail")
	assert.Contains(t, out, "⚠ Warning: source chat unreadable")
	assert.Contains(t, out, "✗ Error: boom")
}

func TestPrinter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterTo(&buf, LevelVerbose)

	p.Step("Reading memory files")
	p.Step("Extracting people")
	p.Successf("stored %d", 3)
	p.Verbosef("Bob (friend)")
	p.Debugf("hidden")

	out := buf.String()
	assert.Contains(t, out, "[1] Reading memory files")
	assert.Contains(t, out, "[2] Extracting people")
	assert.Contains(t, out, "✓ stored 3")
	assert.Contains(t, out, "→ Bob (friend)")
	assert.NotContains(t, out, "hidden")
}

func TestPrinter_NoColorOnPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	NewPrinterTo(&buf, LevelNormal).Successf("done")

	assert.False(t, strings.Contains(buf.String(), "\x1b["), "expected no ANSI escapes: %q", buf.String())
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterTo(&buf, LevelVerbose)

	p.Summary(CycleSummary{
		RunID:          "run-1",
		Status:         StatusNew,
		Duration:       1500 * time.Millisecond,
		Documents:      4,
		CorpusChars:    12345,
		Fingerprint:    "abc123",
		Candidates:     2,
		Inserted:       []string{"Bob"},
		Summary:        "Planned the week",
		TasksCompleted: 3,
		TokensUsed:     2000,
		MonthlyCost:    0.06,
	})

	out := buf.String()
	assert.Contains(t, out, "SYNC SUMMARY")
	assert.Contains(t, out, "✓ SYNCED")
	assert.Contains(t, out, "Documents: 4 (12,345 chars)")
	assert.Contains(t, out, "Fingerprint: abc123")
	assert.Contains(t, out, "People found: 2, stored: 1")
	assert.Contains(t, out, "• Bob")
	assert.Contains(t, out, "Tasks: 3")
}

func TestSummary_DegradedAndFailed(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterTo(&buf, LevelQuiet)

	p.Summary(CycleSummary{Status: StatusUnchanged, Degraded: []string{"summarize"}})
	assert.Contains(t, buf.String(), "⚠ PARTIAL (unchanged)")
	assert.Contains(t, buf.String(), "⚠ summarize")

	buf.Reset()
	p.Summary(CycleSummary{Status: StatusFailed, Error: "state: save: disk full"})
	assert.Contains(t, buf.String(), "✗ FAILED")
	assert.Contains(t, buf.String(), "state: save: disk full")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}
