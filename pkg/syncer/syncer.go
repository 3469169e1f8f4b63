// Package syncer runs one synchronization cycle: collect local content,
// skip it if already seen, extract entities, summarize, and persist every
// store.
//
// A cycle always runs to completion. Failures of individual steps are logged,
// counted and listed in the Report, and the step falls back to an empty or
// default result. Only a failure to persist the sync state at the very end is
// returned as an error.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/harvest/pkg/audit"
	"github.com/entrhq/harvest/pkg/entity"
	"github.com/entrhq/harvest/pkg/extract"
	"github.com/entrhq/harvest/pkg/lock"
	"github.com/entrhq/harvest/pkg/source"
	"github.com/entrhq/harvest/pkg/state"
	"github.com/entrhq/harvest/pkg/stats"
	"github.com/google/uuid"
)

// ErrCycleInProgress is returned by Run when another cycle holds the lock.
var ErrCycleInProgress = errors.New("syncer: another sync cycle is in progress")

// Input caps applied to the corpus.
const (
	EntityInputChars  = 10000
	SummaryInputChars = 8000
)

// Phase is the step a cycle has reached.
type Phase string

const (
	PhaseCollecting     Phase = "COLLECTING"
	PhaseFingerprinting Phase = "FINGERPRINTING"
	PhaseDedupHit       Phase = "DEDUP_HIT"
	PhaseExtracting     Phase = "EXTRACTING"
	PhaseSummarizing    Phase = "SUMMARIZING"
	PhasePersisting     Phase = "PERSISTING"
	PhaseDone           Phase = "DONE"
)

// Cycle statuses, also written to the audit record.
const (
	StatusNew       = "new"
	StatusUnchanged = "unchanged"
	StatusEmpty     = "empty"
	StatusLocked    = "locked"
	StatusFailed    = "failed"
)

// Operations reported when they degrade.
const (
	OpCollect         = "collect"
	OpExtractEntities = "extract_entities"
	OpMergeEntities   = "merge_entities"
	OpSummarize       = "summarize"
	OpAudit           = "audit"
	OpStats           = "stats"
)

// AuditSource is the source tag written to every audit record.
const AuditSource = "sync"

// Extractor turns corpus text into entity candidates and a summary.
// *extract.Client implements it.
type Extractor interface {
	ExtractEntities(ctx context.Context, text string) ([]extract.Candidate, error)
	Summarize(ctx context.Context, text string) (extract.ActivitySummary, error)
}

// StatsUpdater applies a cycle's usage to the running totals.
// *stats.Aggregator implements it.
type StatsUpdater interface {
	Update(ctx context.Context, d stats.Delta) (stats.Snapshot, error)
}

// Locker guards a cycle against concurrent runs. *lock.FileLock implements it.
type Locker interface {
	TryAcquire() error
	Release() error
}

// Telemetry receives cycle counters. *metrics.Metrics implements it.
type Telemetry interface {
	ObserveCycle(outcome string, d time.Duration)
	Degraded(operation string)
	EntitiesInserted(n int)
	DedupHit()
	PromptTokens(n int64)
	Succeeded(at time.Time)
}

// Progress receives human-readable progress. *console.Printer implements it.
type Progress interface {
	Section(title string)
	Infof(format string, args ...interface{})
	Successf(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Verbosef(format string, args ...interface{})
}

// Logger receives diagnostic logs. *logging.Logger implements it.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// promptTokenCounter is implemented by extractors that track prompt usage.
type promptTokenCounter interface {
	PromptTokens() int64
}

// Config wires an Orchestrator. State, Entities, Audit, Stats and Extractor
// are required.
type Config struct {
	Collectors []source.Collector
	Extractor  Extractor
	State      state.Store
	Entities   entity.Store
	Audit      audit.Log
	Stats      StatsUpdater

	Lock      Locker
	Telemetry Telemetry
	Progress  Progress
	Logger    Logger

	// Now defaults to time.Now.
	Now func() time.Time
	// NewRunID defaults to a random UUID.
	NewRunID func() string
}

// Orchestrator drives sync cycles.
type Orchestrator struct {
	collectors []source.Collector
	extractor  Extractor
	state      state.Store
	entities   entity.Store
	audit      audit.Log
	stats      StatsUpdater

	lock      Locker
	telemetry Telemetry
	progress  Progress
	logger    Logger

	now      func() time.Time
	newRunID func() string
}

// New validates cfg and returns an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	switch {
	case cfg.Extractor == nil:
		return nil, errors.New("syncer: extractor is required")
	case cfg.State == nil:
		return nil, errors.New("syncer: state store is required")
	case cfg.Entities == nil:
		return nil, errors.New("syncer: entity store is required")
	case cfg.Audit == nil:
		return nil, errors.New("syncer: audit log is required")
	case cfg.Stats == nil:
		return nil, errors.New("syncer: stats updater is required")
	}

	o := &Orchestrator{
		collectors: cfg.Collectors,
		extractor:  cfg.Extractor,
		state:      cfg.State,
		entities:   cfg.Entities,
		audit:      cfg.Audit,
		stats:      cfg.Stats,
		lock:       cfg.Lock,
		telemetry:  cfg.Telemetry,
		progress:   cfg.Progress,
		logger:     cfg.Logger,
		now:        cfg.Now,
		newRunID:   cfg.NewRunID,
	}
	if o.telemetry == nil {
		o.telemetry = nopTelemetry{}
	}
	if o.progress == nil {
		o.progress = nopProgress{}
	}
	if o.logger == nil {
		o.logger = nopLogger{}
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newRunID == nil {
		o.newRunID = uuid.NewString
	}
	return o, nil
}

// Report describes one cycle.
type Report struct {
	RunID       string
	Status      string
	Phase       Phase
	StartedAt   time.Time
	Duration    time.Duration
	Documents   int
	CorpusBytes int
	Fingerprint string
	DedupHit    bool
	Candidates  int
	Inserted    []entity.Record
	Summary     extract.ActivitySummary
	Stats       stats.Snapshot

	// Degraded lists operations that failed and fell back to defaults,
	// in the order they happened.
	Degraded []string
	// Errors holds the cause for each degraded operation.
	Errors map[string]error
}

func (r *Report) degrade(op string, err error) {
	r.Degraded = append(r.Degraded, op)
	if r.Errors == nil {
		r.Errors = make(map[string]error)
	}
	r.Errors[op] = errors.Join(r.Errors[op], err)
}

// Run executes one cycle. It returns ErrCycleInProgress without touching any
// store when another cycle holds the lock, and a wrapped error when the
// final state save fails. Every other failure is reported in the Report.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	started := o.now()
	report := &Report{
		RunID:     o.newRunID(),
		Phase:     PhaseCollecting,
		StartedAt: started,
	}

	if o.lock != nil {
		if err := o.lock.TryAcquire(); err != nil {
			report.Status = StatusLocked
			report.Duration = o.now().Sub(started)
			o.telemetry.ObserveCycle(StatusLocked, report.Duration)
			if errors.Is(err, lock.ErrLocked) {
				o.logger.Warnf("run %s: skipped, another cycle holds the lock", report.RunID)
				return report, ErrCycleInProgress
			}
			o.logger.Errorf("run %s: acquire lock: %v", report.RunID, err)
			return report, fmt.Errorf("syncer: acquire lock: %w", err)
		}
		defer func() {
			if err := o.lock.Release(); err != nil {
				o.logger.Warnf("run %s: release lock: %v", report.RunID, err)
			}
		}()
	}

	o.logger.Infof("run %s: starting cycle", report.RunID)
	var tokensBefore int64
	counter, countsTokens := o.extractor.(promptTokenCounter)
	if countsTokens {
		tokensBefore = counter.PromptTokens()
	}

	docs := o.collect(ctx, report)
	corpus := BuildCorpus(docs)
	report.Documents = len(docs)
	report.CorpusBytes = len(corpus)

	report.Phase = PhaseFingerprinting
	st := o.state.Load(ctx)
	now := o.now()

	switch {
	case len(docs) == 0:
		report.Status = StatusEmpty
		o.progress.Infof("Nothing to process")
		o.logger.Infof("run %s: empty corpus", report.RunID)

	default:
		report.Fingerprint = Fingerprint(corpus)
		if st.Contains(report.Fingerprint) {
			report.Phase = PhaseDedupHit
			report.Status = StatusUnchanged
			report.DedupHit = true
			o.telemetry.DedupHit()
			o.progress.Infof("Content unchanged, skipping extraction")
			o.logger.Infof("run %s: fingerprint %s already processed", report.RunID, report.Fingerprint)
			break
		}

		report.Phase = PhaseExtracting
		report.Status = StatusNew
		o.extractEntities(ctx, report, corpus, now)
		st.Record(report.Fingerprint)
	}

	report.Phase = PhaseSummarizing
	o.summarize(ctx, report, corpus)
	o.appendAudit(ctx, report, now)
	o.updateStats(ctx, report, len(corpus))

	if countsTokens {
		o.telemetry.PromptTokens(counter.PromptTokens() - tokensBefore)
	}

	report.Phase = PhasePersisting
	st.Touch(o.now())
	if err := o.state.Save(ctx, st); err != nil {
		report.Duration = o.now().Sub(started)
		o.telemetry.ObserveCycle(StatusFailed, report.Duration)
		o.logger.Errorf("run %s: save state: %v", report.RunID, err)
		return report, fmt.Errorf("syncer: save state: %w", err)
	}

	report.Phase = PhaseDone
	report.Duration = o.now().Sub(started)
	o.telemetry.ObserveCycle(report.Status, report.Duration)
	o.telemetry.Succeeded(o.now())
	o.logger.Infof("run %s: done status=%s degraded=%v in %s", report.RunID, report.Status, report.Degraded, report.Duration)
	return report, nil
}

func (o *Orchestrator) collect(ctx context.Context, report *Report) []source.Document {
	o.progress.Section("Collecting")

	var docs []source.Document
	for _, c := range o.collectors {
		found, err := c.Collect(ctx)
		if err != nil {
			o.degrade(report, OpCollect, fmt.Errorf("%s: %w", c.Name(), err))
		}
		o.progress.Infof("%s: %d documents", c.Name(), len(found))
		for _, d := range found {
			o.progress.Verbosef("%s %s (%d chars)", d.Source, d.Label, len(d.Text))
		}
		docs = append(docs, found...)
	}
	return docs
}

func (o *Orchestrator) extractEntities(ctx context.Context, report *Report, corpus string, now time.Time) {
	o.progress.Section("Extracting people")

	candidates, err := o.extractor.ExtractEntities(ctx, extract.Truncate(corpus, EntityInputChars))
	if err != nil {
		o.degrade(report, OpExtractEntities, err)
	}
	report.Candidates = len(candidates)
	o.progress.Infof("Found %d people mentioned", len(candidates))
	for _, c := range candidates {
		o.progress.Verbosef("%s (%s)", c.Name, c.Relationship)
	}

	inserted, err := entity.MergeInto(ctx, o.entities, extract.Entities(candidates), now)
	if err != nil {
		o.degrade(report, OpMergeEntities, err)
		return
	}
	report.Inserted = inserted
	o.telemetry.EntitiesInserted(len(inserted))
	if len(inserted) > 0 {
		o.progress.Successf("Stored %d new people", len(inserted))
	}
}

func (o *Orchestrator) summarize(ctx context.Context, report *Report, corpus string) {
	o.progress.Section("Summarizing")

	if report.Status == StatusEmpty {
		report.Summary = extract.DefaultSummary()
		return
	}

	summary, err := o.extractor.Summarize(ctx, extract.Truncate(corpus, SummaryInputChars))
	if err != nil {
		o.degrade(report, OpSummarize, err)
	}
	report.Summary = summary
	o.progress.Infof("Summary: %s", summary.Summary)
	o.progress.Infof("Tasks: %d", summary.TasksCompleted)
}

func (o *Orchestrator) appendAudit(ctx context.Context, report *Report, now time.Time) {
	meta := map[string]any{
		"tasks_completed":   report.Summary.TasksCompleted,
		"key_actions":       report.Summary.KeyActions,
		"tokens_estimate":   report.Summary.TokensEstimate,
		"source":            AuditSource,
		"status":            report.Status,
		"fingerprint":       report.Fingerprint,
		"entities_inserted": len(report.Inserted),
		"run_id":            report.RunID,
	}
	if report.Status == StatusUnchanged {
		// Stats still count this corpus's tokens.
		meta["tokens_counted_while_unchanged"] = true
	}
	// Degradations up to this point; audit and stats failures come after.
	if len(report.Degraded) > 0 {
		meta["degraded"] = append([]string(nil), report.Degraded...)
	}

	if err := o.audit.Append(ctx, audit.NewRecord(report.Summary.Summary, meta, now)); err != nil {
		o.degrade(report, OpAudit, err)
		return
	}
	o.progress.Successf("Stored in audit log")
}

func (o *Orchestrator) updateStats(ctx context.Context, report *Report, corpusBytes int) {
	snapshot, err := o.stats.Update(ctx, stats.Delta{
		MessagesProcessed: int64(report.Documents),
		TokensEstimate:    int64(corpusBytes / 4),
	})
	if err != nil {
		o.degrade(report, OpStats, err)
	}
	report.Stats = snapshot
}

func (o *Orchestrator) degrade(report *Report, op string, err error) {
	report.degrade(op, err)
	o.telemetry.Degraded(op)
	o.logger.Warnf("run %s: %s degraded: %v", report.RunID, op, err)
	o.progress.Warningf("%s failed: %v", op, err)
}

type nopTelemetry struct{}

func (nopTelemetry) ObserveCycle(string, time.Duration) {}
func (nopTelemetry) Degraded(string)                    {}
func (nopTelemetry) EntitiesInserted(int)               {}
func (nopTelemetry) DedupHit()                          {}
func (nopTelemetry) PromptTokens(int64)                 {}
func (nopTelemetry) Succeeded(time.Time)                {}

type nopProgress struct{}

func (nopProgress) Section(string)                  {}
func (nopProgress) Infof(string, ...interface{})    {}
func (nopProgress) Successf(string, ...interface{}) {}
func (nopProgress) Warningf(string, ...interface{}) {}
func (nopProgress) Verbosef(string, ...interface{}) {}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
