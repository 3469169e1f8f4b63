// Package main provides the harvest command: one synchronization cycle that
// turns local notes, session logs and chat exports into entity records, an
// audit entry and usage statistics. It is meant to be run periodically by
// cron or a systemd timer.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/harvest/pkg/audit"
	"github.com/entrhq/harvest/pkg/config"
	"github.com/entrhq/harvest/pkg/console"
	"github.com/entrhq/harvest/pkg/entity"
	"github.com/entrhq/harvest/pkg/extract"
	"github.com/entrhq/harvest/pkg/llm"
	"github.com/entrhq/harvest/pkg/llm/tokenizer"
	"github.com/entrhq/harvest/pkg/lock"
	"github.com/entrhq/harvest/pkg/logging"
	"github.com/entrhq/harvest/pkg/metrics"
	"github.com/entrhq/harvest/pkg/source"
	"github.com/entrhq/harvest/pkg/state"
	"github.com/entrhq/harvest/pkg/stats"
	"github.com/entrhq/harvest/pkg/syncer"
	"github.com/spf13/pflag"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration. Empty values leave the
// configured setting in place.
type CLIConfig struct {
	ConfigFile  string
	Verbosity   string
	DataDir     string
	Model       string
	BaseURL     string
	MetricsFile string
	InitConfig  bool
	ShowVersion bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "harvest: %v\n", err)
		}
		return
	}
	if cli.ShowVersion {
		fmt.Printf("harvest v%s\n", version)
		return
	}
	if cli.InitConfig {
		if err := initConfig(cli, os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}

	// A scheduler re-runs the cycle; failures are reported, never fatal.
	_ = run(ctx, cli, os.Stdout)
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cli := &CLIConfig{}

	flagSet := pflag.NewFlagSet("harvest", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&cli.ConfigFile, "config", "c", "", "path to config file (default: ~/.harvest/config.json)")
	flagSet.StringVarP(&cli.Verbosity, "verbosity", "v", "", "output level: quiet, normal, verbose or debug")
	flagSet.StringVar(&cli.DataDir, "data-dir", "", "directory holding state, entities, audit log and stats")
	flagSet.StringVar(&cli.Model, "model", "", "LLM model used for extraction")
	flagSet.StringVar(&cli.BaseURL, "base-url", "", "OpenAI-compatible API base URL")
	flagSet.StringVar(&cli.MetricsFile, "metrics-file", "", "write Prometheus metrics in textfile format to this path")
	flagSet.BoolVar(&cli.InitConfig, "init-config", false, "write a config file with default settings and exit")
	flagSet.BoolVar(&cli.ShowVersion, "version", false, "show version and exit")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "harvest - collect local activity into people, audit and usage records\n\n")
		fmt.Fprintf(stderr, "Usage: harvest [options]\n\nOptions:\n")
		flagSet.PrintDefaults()
		fmt.Fprintf(stderr, "\nEnvironment:\n")
		fmt.Fprintf(stderr, "  %s, %s  API key\n", config.EnvAPIKey, config.EnvDeepSeekAPIKey)
		fmt.Fprintf(stderr, "  %s  data directory\n", config.EnvDataDir)
	}

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	return cli, nil
}

// applyFlags lays command-line values over the resolved settings.
func applyFlags(s *config.Settings, cli *CLIConfig) error {
	if cli.Verbosity != "" {
		if _, ok := console.ParseLevel(cli.Verbosity); !ok {
			return fmt.Errorf("invalid verbosity %q", cli.Verbosity)
		}
		s.Verbosity = cli.Verbosity
	}
	if cli.DataDir != "" {
		s.SetDataDir(cli.DataDir)
	}
	if cli.Model != "" {
		s.Model = cli.Model
	}
	if cli.BaseURL != "" {
		s.BaseURL = cli.BaseURL
	}
	if cli.MetricsFile != "" {
		s.MetricsFile = cli.MetricsFile
	}
	return nil
}

// initConfig writes a default config file to the --config path.
func initConfig(cli *CLIConfig, out io.Writer) error {
	printer := console.NewPrinterTo(out, console.LevelNormal)
	path, err := config.InitFile(cli.ConfigFile)
	if err != nil {
		printer.Errorf("%v", err)
		return err
	}
	printer.Successf("Wrote %s", path)
	return nil
}

// clientOptions maps the extraction settings onto client options.
func clientOptions(s config.Settings) []extract.Option {
	opts := []extract.Option{extract.WithSummaryModel(s.SummarizationModel)}
	if s.MaxOutputTokens > 0 {
		opts = append(opts, extract.WithMaxOutputTokens(s.MaxOutputTokens))
	}
	if s.Temperature != nil {
		opts = append(opts, extract.WithTemperature(*s.Temperature))
	}
	return opts
}

// run executes one cycle and prints its summary to out. The returned error
// is informational; main never turns it into a failing exit status.
//
// A configuration error stops the run before any store is touched.
//
//nolint:gocyclo
func run(ctx context.Context, cli *CLIConfig, out io.Writer) error {
	printer := console.NewPrinterTo(out, console.LevelNormal)

	if err := config.Initialize(cli.ConfigFile); err != nil {
		printer.Errorf("Config not loaded: %v", err)
		return fmt.Errorf("load config: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		printer.Errorf("Cannot determine home directory: %v", err)
		return err
	}
	settings, err := config.Resolve(config.Global(), os.Getenv, home)
	if err != nil {
		printer.Errorf("Configuration problem: %v", err)
		return fmt.Errorf("resolve config: %w", err)
	}
	if err := applyFlags(&settings, cli); err != nil {
		printer.Errorf("%v", err)
		return err
	}

	level, _ := console.ParseLevel(settings.Verbosity)
	printer = console.NewPrinterTo(out, level)
	if level >= console.LevelDebug {
		logging.SetLevel(logging.LevelDebug)
	}

	logger, _ := logging.NewLogger("harvest")
	defer logger.Close()
	logger.InstallSlog()
	logger.Infof("harvest v%s session %s", version, logger.SessionID())
	printer.Header(fmt.Sprintf("Harvest v%s", version))
	printer.Debugf("Log file: %s", logger.LogPath())

	var provider llm.Provider
	if p, buildErr := config.BuildProvider(settings); buildErr != nil {
		printer.Warningf("LLM disabled: %v", buildErr)
		logger.Warnf("LLM disabled: %v", buildErr)
	} else {
		provider = p
		printer.Verbosef("Model: %s at %s", p.GetModel(), p.GetBaseURL())
	}

	clientOpts := clientOptions(settings)
	if tk, tkErr := tokenizer.New(); tkErr != nil {
		logger.Warnf("tokenizer unavailable, estimating prompt tokens: %v", tkErr)
	} else {
		clientOpts = append(clientOpts, extract.WithTokenizer(tk))
	}

	m := metrics.New()
	orchestrator, err := syncer.New(syncer.Config{
		Collectors: collectors(settings),
		Extractor:  extract.NewClient(provider, clientOpts...),
		State:      state.NewFileStore(settings.StateFile),
		Entities:   entity.NewFileStore(settings.EntitiesFile),
		Audit:      audit.NewFileLog(settings.AuditFile),
		Stats:      stats.NewAggregator(stats.NewFileStore(settings.StatsFile), settings.UnitCost),
		Lock:       lock.New(settings.LockFile),
		Telemetry:  m,
		Progress:   printer,
		Logger:     logger,
	})
	if err != nil {
		printer.Errorf("%v", err)
		return err
	}

	report, runErr := orchestrator.Run(ctx)
	if runErr != nil {
		logger.Errorf("cycle failed: %v", runErr)
	}

	printer.Summary(cycleSummary(report, runErr))

	if settings.MetricsFile != "" {
		if err := m.WriteTextfile(settings.MetricsFile); err != nil {
			printer.Warningf("Metrics not written: %v", err)
			logger.Warnf("write metrics textfile: %v", err)
		}
	}
	return runErr
}

func collectors(s config.Settings) []source.Collector {
	return []source.Collector{
		&source.MemoryNotes{Dir: s.MemoryDir, LongTermPath: s.LongTermMemory},
		&source.SessionLog{Path: s.SessionsFile},
		&source.ChatHistory{Dir: s.ChatDir, Patterns: s.ChatPatterns},
	}
}

func cycleSummary(r *syncer.Report, runErr error) console.CycleSummary {
	s := console.CycleSummary{Status: console.StatusFailed}
	if r != nil {
		inserted := make([]string, 0, len(r.Inserted))
		for _, rec := range r.Inserted {
			inserted = append(inserted, rec.Name)
		}
		s = console.CycleSummary{
			RunID:          r.RunID,
			Status:         r.Status,
			Duration:       r.Duration,
			Documents:      r.Documents,
			CorpusChars:    r.CorpusBytes,
			Fingerprint:    r.Fingerprint,
			Candidates:     r.Candidates,
			Inserted:       inserted,
			Summary:        r.Summary.Summary,
			TasksCompleted: r.Summary.TasksCompleted,
			TokensUsed:     r.Stats.TokensUsed,
			MonthlyCost:    r.Stats.MonthlyCost,
			Degraded:       r.Degraded,
		}
	}
	if runErr != nil {
		s.Error = runErr.Error()
		if !errors.Is(runErr, syncer.ErrCycleInProgress) {
			s.Status = console.StatusFailed
		}
	}
	return s
}
