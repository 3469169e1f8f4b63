package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Built-in defaults.
const (
	DefaultBaseURL  = "https://api.deepseek.com/v1"
	DefaultModel    = "deepseek-chat"
	DefaultTimeout  = 30 * time.Second
	DefaultUnitCost = 0.00003
)

// Environment variables consulted by Resolve.
const (
	EnvAPIKey         = "HARVEST_API_KEY"
	EnvDeepSeekAPIKey = "DEEPSEEK_API_KEY"
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvBaseURL        = "HARVEST_BASE_URL"
	EnvModel          = "HARVEST_MODEL"
	EnvDataDir        = "HARVEST_DATA_DIR"
	EnvStateFile      = "HARVEST_STATE_FILE"
	EnvMemoryDir      = "HARVEST_MEMORY_DIR"
	EnvLongTermMemory = "HARVEST_LONG_TERM_MEMORY"
	EnvSessionsFile   = "HARVEST_SESSIONS_FILE"
	EnvChatDir        = "HARVEST_CHAT_DIR"
	EnvMetricsFile    = "HARVEST_METRICS_FILE"
	EnvUnitCost       = "HARVEST_UNIT_COST"
	EnvVerbosity      = "HARVEST_VERBOSITY"
)

// Settings is the fully resolved configuration for one run.
type Settings struct {
	APIKey             string
	APIKeyFile         string
	BaseURL            string
	Model              string
	SummarizationModel string
	Timeout            time.Duration

	// MaxOutputTokens and Temperature tune extraction requests. Zero and nil
	// keep the extraction client's defaults.
	MaxOutputTokens int
	Temperature     *float64

	DataDir      string
	StateFile    string
	EntitiesFile string
	AuditFile    string
	StatsFile    string
	LockFile     string

	MemoryDir      string
	LongTermMemory string
	SessionsFile   string
	ChatDir        string
	ChatPatterns   []string

	UnitCost    float64
	MetricsFile string
	Verbosity   string
}

// Defaults returns the settings used when nothing else is configured.
// home is the user's home directory.
func Defaults(home string) Settings {
	return Settings{
		APIKeyFile: filepath.Join(home, ".config", "deepseek", "api_key"),
		BaseURL:    DefaultBaseURL,
		Model:      DefaultModel,
		Timeout:    DefaultTimeout,

		DataDir:      filepath.Join(home, ".harvest", "data"),
		StateFile:    DefaultStateFile,
		EntitiesFile: DefaultEntitiesFile,
		AuditFile:    DefaultAuditFile,
		StatsFile:    DefaultStatsFile,
		LockFile:     DefaultLockFile,

		MemoryDir:      filepath.Join(home, "clawd", "memory"),
		LongTermMemory: filepath.Join(home, "clawd", "MEMORY.md"),
		SessionsFile:   filepath.Join(home, ".clawdbot", "agents", "main", "sessions", "sessions.json"),
		ChatDir:        filepath.Join(home, ".clawdbot", "telegram"),

		UnitCost:  DefaultUnitCost,
		Verbosity: "normal",
	}
}

// Resolve layers defaults, the registered config sections and the
// environment, in increasing order of precedence. Command-line flags are
// applied by the caller on top of the result. getenv is usually os.Getenv.
func Resolve(m *Manager, getenv func(string) string, home string) (Settings, error) {
	s := Defaults(home)

	if m != nil {
		for _, section := range m.GetSections() {
			if a, ok := section.(interface{ applyTo(*Settings) }); ok {
				a.applyTo(&s)
			}
		}
	}

	// Errors are collected so the returned paths are always fully resolved.
	var errs []error
	if err := applyEnv(&s, getenv); err != nil {
		errs = append(errs, err)
	}

	if s.APIKey == "" {
		key, err := readKeyFile(expandHome(s.APIKeyFile, home))
		if err != nil {
			errs = append(errs, err)
		}
		s.APIKey = key
	}

	s.DataDir = expandHome(s.DataDir, home)
	s.StateFile = resolveIn(s.DataDir, expandHome(s.StateFile, home))
	s.EntitiesFile = resolveIn(s.DataDir, expandHome(s.EntitiesFile, home))
	s.AuditFile = resolveIn(s.DataDir, expandHome(s.AuditFile, home))
	s.StatsFile = resolveIn(s.DataDir, expandHome(s.StatsFile, home))
	s.LockFile = resolveIn(s.DataDir, expandHome(s.LockFile, home))

	s.MemoryDir = expandHome(s.MemoryDir, home)
	s.LongTermMemory = expandHome(s.LongTermMemory, home)
	s.SessionsFile = expandHome(s.SessionsFile, home)
	s.ChatDir = expandHome(s.ChatDir, home)
	s.MetricsFile = expandHome(s.MetricsFile, home)

	return s, errors.Join(errs...)
}

func applyEnv(s *Settings, getenv func(string) string) error {
	for _, name := range []string{EnvAPIKey, EnvDeepSeekAPIKey, EnvOpenAIAPIKey} {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			s.APIKey = v
			break
		}
	}

	setIfNotEmpty(&s.BaseURL, getenv(EnvBaseURL))
	setIfNotEmpty(&s.Model, getenv(EnvModel))
	setIfNotEmpty(&s.DataDir, getenv(EnvDataDir))
	setIfNotEmpty(&s.StateFile, getenv(EnvStateFile))
	setIfNotEmpty(&s.MemoryDir, getenv(EnvMemoryDir))
	setIfNotEmpty(&s.LongTermMemory, getenv(EnvLongTermMemory))
	setIfNotEmpty(&s.SessionsFile, getenv(EnvSessionsFile))
	setIfNotEmpty(&s.ChatDir, getenv(EnvChatDir))
	setIfNotEmpty(&s.MetricsFile, getenv(EnvMetricsFile))
	setIfNotEmpty(&s.Verbosity, getenv(EnvVerbosity))

	if v := getenv(EnvUnitCost); v != "" {
		cost, err := strconv.ParseFloat(v, 64)
		if err != nil || cost < 0 {
			return fmt.Errorf("invalid %s %q", EnvUnitCost, v)
		}
		s.UnitCost = cost
	}
	return nil
}

// readKeyFile returns the trimmed contents of path, or "" if it is missing.
func readKeyFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read API key file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// SetDataDir moves the data directory to dir. Store files that lived in the
// previous data directory move with it; files configured elsewhere stay.
func (s *Settings) SetDataDir(dir string) {
	old := s.DataDir
	for _, path := range []*string{&s.StateFile, &s.EntitiesFile, &s.AuditFile, &s.StatsFile, &s.LockFile} {
		if *path == "" {
			continue
		}
		if !filepath.IsAbs(*path) || filepath.Dir(*path) == old {
			*path = filepath.Join(dir, filepath.Base(*path))
		}
	}
	s.DataDir = dir
}
