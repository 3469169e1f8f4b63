// Package parser provides utilities for cleaning up raw LLM output before
// structured content is pulled out of it.
package parser

import (
	"strings"
)

// thinkingTags lists the opening tags reasoning models wrap their scratch work in.
var thinkingTags = map[string]string{
	"<thinking>": "</thinking>",
	"<think>":    "</think>",
}

// ThinkingParser separates reasoning blocks (<thinking> or <think>) from
// regular content. It keeps state across calls so tags split over several
// pieces of input are still recognised.
type ThinkingParser struct {
	buffer     strings.Builder
	tagBuffer  strings.Builder // Buffer for potential tag content between < and >
	closingTag string          // closing tag that ends the current thinking block
	inTag      bool            // true when we're buffering a potential tag (saw '<' but not yet '>')
}

// NewThinkingParser creates a new thinking parser.
func NewThinkingParser() *ThinkingParser {
	return &ThinkingParser{}
}

// Parse processes a piece of content and returns the thinking and message
// text found in it. Text that may belong to an unfinished tag is held back
// until the next call or Flush.
func (p *ThinkingParser) Parse(content string) (thinking, message string) {
	var thinkingOut, messageOut strings.Builder

	emit := func(text string) {
		if text == "" {
			return
		}
		if p.IsInThinking() {
			thinkingOut.WriteString(text)
		} else {
			messageOut.WriteString(text)
		}
	}

	for _, ch := range content {
		if ch == '<' {
			// If we're already in a tag, the previous < wasn't a real tag
			if p.inTag {
				emit(p.tagBuffer.String())
				p.tagBuffer.Reset()
			}

			if p.buffer.Len() > 0 {
				emit(p.buffer.String())
				p.buffer.Reset()
			}

			p.inTag = true
			p.tagBuffer.Reset()
			p.tagBuffer.WriteRune(ch)
			continue
		}

		if ch == '>' && p.inTag {
			p.tagBuffer.WriteRune(ch)
			tag := p.tagBuffer.String()
			p.tagBuffer.Reset()
			p.inTag = false

			if closing, ok := thinkingTags[tag]; ok && !p.IsInThinking() {
				p.closingTag = closing
				continue
			}
			if p.IsInThinking() && tag == p.closingTag {
				p.closingTag = ""
				continue
			}

			emit(tag)
			continue
		}

		if p.inTag {
			p.tagBuffer.WriteRune(ch)
		} else {
			p.buffer.WriteRune(ch)
		}
	}

	if p.buffer.Len() > 0 {
		emit(p.buffer.String())
		p.buffer.Reset()
	}

	return thinkingOut.String(), messageOut.String()
}

// IsInThinking returns true if currently parsing thinking content.
func (p *ThinkingParser) IsInThinking() bool {
	return p.closingTag != ""
}

// Flush returns any buffered content that hasn't been emitted yet.
func (p *ThinkingParser) Flush() (thinking, message string) {
	var pending string
	if p.inTag {
		pending = p.tagBuffer.String()
		p.tagBuffer.Reset()
		p.inTag = false
	}
	pending += p.buffer.String()
	p.buffer.Reset()

	if p.IsInThinking() {
		return pending, ""
	}
	return "", pending
}

// Reset resets the parser state for a new response.
func (p *ThinkingParser) Reset() {
	p.buffer.Reset()
	p.tagBuffer.Reset()
	p.closingTag = ""
	p.inTag = false
}

// StripThinking returns content with every reasoning block removed. An
// unterminated block swallows the rest of the content.
func StripThinking(content string) string {
	p := NewThinkingParser()
	_, message := p.Parse(content)
	_, rest := p.Flush()
	return message + rest
}
