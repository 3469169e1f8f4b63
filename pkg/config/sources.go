package config

import "sync"

// SectionIDSources is the identifier for the sources section.
const SectionIDSources = "sources"

// SourcesSection locates the inputs a cycle reads. Empty values fall back to
// the defaults chosen by Resolve.
type SourcesSection struct {
	MemoryDir      string
	LongTermMemory string
	SessionsFile   string
	ChatDir        string
	ChatPatterns   []string
	mu             sync.RWMutex
}

// NewSourcesSection creates an empty sources section.
func NewSourcesSection() *SourcesSection {
	return &SourcesSection{}
}

func (s *SourcesSection) ID() string    { return SectionIDSources }
func (s *SourcesSection) Title() string { return "Sources" }
func (s *SourcesSection) Description() string {
	return "Memory notes, session log and chat history locations."
}

func (s *SourcesSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patterns := make([]any, 0, len(s.ChatPatterns))
	for _, p := range s.ChatPatterns {
		patterns = append(patterns, p)
	}
	return map[string]any{
		"memory_dir":       s.MemoryDir,
		"long_term_memory": s.LongTermMemory,
		"sessions_file":    s.SessionsFile,
		"chat_dir":         s.ChatDir,
		"chat_patterns":    patterns,
	}
}

func (s *SourcesSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := data["memory_dir"].(string); ok {
		s.MemoryDir = v
	}
	if v, ok := data["long_term_memory"].(string); ok {
		s.LongTermMemory = v
	}
	if v, ok := data["sessions_file"].(string); ok {
		s.SessionsFile = v
	}
	if v, ok := data["chat_dir"].(string); ok {
		s.ChatDir = v
	}
	if v, ok := asStringSlice(data["chat_patterns"]); ok {
		s.ChatPatterns = v
	}
	return nil
}

func (s *SourcesSection) Validate() error { return nil }

func (s *SourcesSection) applyTo(out *Settings) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	setIfNotEmpty(&out.MemoryDir, s.MemoryDir)
	setIfNotEmpty(&out.LongTermMemory, s.LongTermMemory)
	setIfNotEmpty(&out.SessionsFile, s.SessionsFile)
	setIfNotEmpty(&out.ChatDir, s.ChatDir)
	if len(s.ChatPatterns) > 0 {
		out.ChatPatterns = append([]string(nil), s.ChatPatterns...)
	}
}
