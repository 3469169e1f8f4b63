package parser

import (
	"strings"
	"testing"
)

// TestThinkingParserWithLessThanGreaterThan checks that < and > inside a
// reasoning block do not prevent the closing tag from being detected.
func TestThinkingParserWithLessThanGreaterThan(t *testing.T) {
	parser := NewThinkingParser()

	chunks := []string{
		"<thinking>",
		"Counting people:\n",
		"1. if mentions>3 keep\n",
		"2. for i<10 names\n",
		"</thinking>",
		"\n\n[{\"name\":\"Bob\"}]",
	}

	var thinkingContent, messageContent string
	for _, chunk := range chunks {
		thinking, message := parser.Parse(chunk)
		thinkingContent += thinking
		messageContent += message
	}
	thinking, message := parser.Flush()
	thinkingContent += thinking
	messageContent += message

	if parser.IsInThinking() {
		t.Error("Parser is still in thinking mode after </thinking>")
	}
	if !strings.Contains(messageContent, `[{"name":"Bob"}]`) {
		t.Errorf("JSON payload should be message content, got %q", messageContent)
	}
	if !strings.Contains(thinkingContent, "i<10") || !strings.Contains(thinkingContent, "mentions>3") {
		t.Errorf("Thinking content should preserve < and > characters. Got: %q", thinkingContent)
	}
}

func TestThinkingParserSplitTag(t *testing.T) {
	parser := NewThinkingParser()

	var messageContent string
	for _, chunk := range []string{"<thi", "nk>secret</th", "ink>", "visible"} {
		_, message := parser.Parse(chunk)
		messageContent += message
	}
	_, message := parser.Flush()
	messageContent += message

	if messageContent != "visible" {
		t.Errorf("Expected only visible text, got %q", messageContent)
	}
}

func TestThinkingParserLessThanOnly(t *testing.T) {
	parser := NewThinkingParser()

	for _, chunk := range []string{"<thinking>", "Code: x < 5", "</thinking>", "Done"} {
		parser.Parse(chunk)
	}
	parser.Flush()

	if parser.IsInThinking() {
		t.Error("Parser should not be in thinking mode after </thinking> - even with < in content")
	}
}

func TestThinkingParserReset(t *testing.T) {
	parser := NewThinkingParser()
	parser.Parse("<think>half")
	if !parser.IsInThinking() {
		t.Fatal("Expected parser to be in thinking mode")
	}

	parser.Reset()
	if parser.IsInThinking() {
		t.Error("Reset should leave thinking mode")
	}
}

func TestStripThinking(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no tags",
			input: `Sure! [ {"name":"Bob"} ] Hope that helps`,
			want:  `Sure! [ {"name":"Bob"} ] Hope that helps`,
		},
		{
			name:  "think block removed",
			input: "<think>Bob seems to be a friend</think>[{\"name\":\"Bob\"}]",
			want:  `[{"name":"Bob"}]`,
		},
		{
			name:  "thinking block removed",
			input: "<thinking>plan</thinking>{\"summary\":\"ok\"}",
			want:  `{"summary":"ok"}`,
		},
		{
			name:  "other tags kept",
			input: "<b>bold</b> text",
			want:  "<b>bold</b> text",
		},
		{
			name:  "dangling less-than kept",
			input: "a < b",
			want:  "a < b",
		},
		{
			name:  "unterminated block swallows rest",
			input: "before<think>never closed",
			want:  "before",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThinking(tt.input); got != tt.want {
				t.Errorf("StripThinking(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
