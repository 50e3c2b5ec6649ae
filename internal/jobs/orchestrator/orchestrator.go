// Package orchestrator drives the report and ingestion steps on a cadence,
// gated on snapshot freshness.
//
// One control loop polls at a fixed interval and dispatches at most one due
// cycle per tick. Steps within a cycle run sequentially, each under its own
// deadline, and a failure in one never prevents the other from running.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/ainews-backend/internal/domain/jobs"
	"github.com/yungbote/ainews-backend/internal/jobs/step"
	"github.com/yungbote/ainews-backend/internal/notify"
	"github.com/yungbote/ainews-backend/internal/observability"
	"github.com/yungbote/ainews-backend/internal/platform/ctxutil"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

const (
	StepReport = "report"
	StepIngest = "ingest"

	DefaultFreshnessThreshold = 24 * time.Hour
	DefaultStepTimeout        = 300 * time.Second
	DefaultPollInterval       = 60 * time.Second
)

type Config struct {
	DataDir            string
	FreshnessThreshold time.Duration
	StepTimeout        time.Duration
	PollInterval       time.Duration
	WeeklySpec         string
	DailySpec          string
	Location           *time.Location
}

// Steps are the two pipeline steps. Ingest is nil when no graph endpoint is
// configured.
type Steps struct {
	Report step.Step
	Ingest step.Step
}

// Ledger persists run summaries.
type Ledger interface {
	SaveRun(ctx context.Context, s jobs.RunSummary) error
}

type Orchestrator struct {
	cfg      Config
	steps    Steps
	notifier notify.Notifier
	ledger   Ledger
	log      *logger.Logger
	metrics  *observability.Metrics

	sm     *machine
	scheds []*schedule
	now    func() time.Time

	mu   sync.RWMutex
	last *jobs.RunSummary
}

func New(cfg Config, steps Steps, notifier notify.Notifier, ledger Ledger, log *logger.Logger, metrics *observability.Metrics) (*Orchestrator, error) {
	if steps.Report == nil {
		return nil, fmt.Errorf("orchestrator: report step required")
	}
	if cfg.FreshnessThreshold <= 0 {
		cfg.FreshnessThreshold = DefaultFreshnessThreshold
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = DefaultStepTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if strings.TrimSpace(cfg.WeeklySpec) == "" {
		cfg.WeeklySpec = DefaultWeeklySpec
	}
	if strings.TrimSpace(cfg.DailySpec) == "" {
		cfg.DailySpec = DefaultDailySpec
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	weekly, err := parseSchedule(jobs.TriggerWeekly, cfg.WeeklySpec)
	if err != nil {
		return nil, err
	}
	daily, err := parseSchedule(jobs.TriggerDaily, cfg.DailySpec)
	if err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = notify.NewLog(log)
	}

	return &Orchestrator{
		cfg:      cfg,
		steps:    steps,
		notifier: notifier,
		ledger:   ledger,
		log:      log.With("component", "Orchestrator"),
		metrics:  metrics,
		sm:       newMachine(),
		scheds:   []*schedule{weekly, daily},
		now:      time.Now,
	}, nil
}

func (o *Orchestrator) State() State { return o.sm.current() }

// LastRun returns the most recent cycle summary, or nil before the first cycle.
func (o *Orchestrator) LastRun() *jobs.RunSummary {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.last == nil {
		return nil
	}
	cp := *o.last
	return &cp
}

// NextRuns reports the armed fire time per cadence.
func (o *Orchestrator) NextRuns() map[jobs.Trigger]time.Time {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[jobs.Trigger]time.Time, len(o.scheds))
	for _, s := range o.scheds {
		out[s.trigger] = s.next
	}
	return out
}

// Start runs the poll loop until ctx is cancelled. A cycle in progress is
// never interrupted: cancellation is observed between cycles.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.arm(o.now())
	for trig, at := range o.NextRuns() {
		o.log.Info("Scheduled", "trigger", string(trig), "next_run", at.Format(time.RFC3339))
	}
	o.log.Info("Scheduler started", "poll_interval", o.cfg.PollInterval.String())

	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			o.log.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			o.tick(ctx, o.now())
		}
	}
}

func (o *Orchestrator) arm(now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, s := range o.scheds {
		s.arm(now, o.cfg.Location)
	}
}

// tick dispatches at most one due cycle and re-arms its schedule.
func (o *Orchestrator) tick(ctx context.Context, now time.Time) (jobs.RunSummary, bool) {
	o.mu.Lock()
	s := nextDue(o.scheds, now)
	if s != nil {
		s.arm(now, o.cfg.Location)
	}
	o.mu.Unlock()
	if s == nil {
		return jobs.RunSummary{}, false
	}
	return o.RunCycle(context.WithoutCancel(ctx), s.trigger), true
}

// RunCycle executes one timer-driven cycle: freshness check, steps, summary.
func (o *Orchestrator) RunCycle(ctx context.Context, trigger jobs.Trigger) jobs.RunSummary {
	sum := o.begin(trigger)
	log := o.log.With("run_id", sum.RunID, "trigger", string(trigger))
	log.Info("Cycle started")

	o.transition(StateCheckingFreshness)
	fr, err := CheckFreshness(o.cfg.DataDir, o.cfg.FreshnessThreshold, o.now())
	if err != nil {
		log.Warn("Freshness check failed, treating as missing", "error", err)
		fr = Freshness{Missing: true}
	}

	if fr.Missing {
		o.transition(StateAwaitingCollection)
		sum.Outcome = jobs.OutcomeAwaitingCollection
		log.Warn("No snapshot data found; manual collection required", "data_dir", o.cfg.DataDir)
		o.notify(ctx, log, notify.Message{
			Kind:    notify.KindAwaitingCollection,
			RunID:   sum.RunID,
			Subject: "AI news: data collection needed",
			Body:    fmt.Sprintf("No snapshot found in %s. Run the browser collector and save the export there.", o.cfg.DataDir),
		})
		return o.finish(ctx, log, sum)
	}

	sum.SnapshotPath = fr.Path
	sum.SnapshotAge = fr.Age
	sum.Stale = fr.Stale
	o.metrics.SetSnapshotAge(fr.Age)

	if fr.Stale {
		if trigger == jobs.TriggerDaily {
			sum.Outcome = jobs.OutcomeNoFreshData
			log.Info("No fresh data, skipping cycle", "snapshot", fr.Path, "age", fr.Age.Round(time.Minute).String())
			return o.finish(ctx, log, sum)
		}
		log.Warn("Snapshot is stale, proceeding anyway", "snapshot", fr.Path, "age", fr.Age.Round(time.Minute).String())
	}

	o.transition(StateRunning)
	return o.runSteps(ctx, log, sum)
}

// RunNow executes Running -> Summarizing immediately, skipping the freshness gate.
func (o *Orchestrator) RunNow(ctx context.Context) jobs.RunSummary {
	sum := o.begin(jobs.TriggerManual)
	log := o.log.With("run_id", sum.RunID, "trigger", string(jobs.TriggerManual))
	log.Info("Manual run started")
	o.transition(StateRunning)
	return o.runSteps(ctx, log, sum)
}

func (o *Orchestrator) begin(trigger jobs.Trigger) jobs.RunSummary {
	o.sm.reset()
	return jobs.RunSummary{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: o.now().UTC(),
	}
}

func (o *Orchestrator) runSteps(ctx context.Context, log *logger.Logger, sum jobs.RunSummary) jobs.RunSummary {
	ctx = ctxutil.WithTraceData(ctx, &ctxutil.TraceData{RunID: sum.RunID})
	sum.Steps = append(sum.Steps, o.runStep(ctx, log, o.steps.Report))

	if o.steps.Ingest != nil {
		sum.Steps = append(sum.Steps, o.runStep(ctx, log, o.steps.Ingest))
	} else {
		log.Info("Graph store not configured, skipping ingestion")
		sum.Steps = append(sum.Steps, jobs.StepOutcome{
			Name:      StepIngest,
			Status:    jobs.StepSkipped,
			Detail:    "graph store not configured",
			StartedAt: o.now().UTC(),
		})
	}

	o.transition(StateSummarizing)
	sum.Outcome = jobs.OutcomeCompleted

	if report, ok := sum.Step(StepReport); ok && report.Succeeded() {
		o.notify(ctx, log, successMessage(sum, report))
	}
	return o.finish(ctx, log, sum)
}

func (o *Orchestrator) runStep(ctx context.Context, log *logger.Logger, s step.Step) jobs.StepOutcome {
	log.Info("Step started", "step", s.Name(), "timeout", o.cfg.StepTimeout.String())
	out := step.Run(ctx, s, o.cfg.StepTimeout)
	o.metrics.ObserveStep(out.Name, string(out.Status), out.Duration)
	kv := []interface{}{"step", out.Name, "status", string(out.Status), "duration", out.Duration.Round(time.Millisecond).String()}
	switch out.Status {
	case jobs.StepSucceeded, jobs.StepSkipped:
		log.Info("Step finished", kv...)
	default:
		log.Error("Step failed", append(kv, "error", out.Error, "error_kind", out.ErrorKind)...)
	}
	return out
}

func (o *Orchestrator) finish(ctx context.Context, log *logger.Logger, sum jobs.RunSummary) jobs.RunSummary {
	sum.FinishedAt = o.now().UTC()
	if o.ledger != nil {
		if err := o.ledger.SaveRun(ctx, sum); err != nil {
			log.Warn("Run ledger write failed (continuing)", "error", err)
		}
	}
	o.metrics.ObserveCycle(string(sum.Trigger), string(sum.Outcome))

	o.mu.Lock()
	cp := sum
	o.last = &cp
	o.mu.Unlock()

	log.Info("Cycle finished",
		"outcome", string(sum.Outcome),
		"failed_steps", sum.Failed(),
		"stale", sum.Stale,
		"duration", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond).String(),
	)
	if o.sm.current() != StateIdle {
		o.transition(StateIdle)
	}
	return sum
}

func (o *Orchestrator) transition(next State) {
	if err := o.sm.to(next); err != nil {
		o.log.Error("State machine error", "error", err)
		o.sm.force(next)
	}
}

func (o *Orchestrator) notify(ctx context.Context, log *logger.Logger, msg notify.Message) {
	if err := o.notifier.Notify(ctx, msg); err != nil {
		log.Warn("Notification delivery incomplete", "kind", string(msg.Kind), "error", err)
	}
}

func successMessage(sum jobs.RunSummary, report jobs.StepOutcome) notify.Message {
	var b strings.Builder
	if p, ok := report.Attributes["report_path"].(string); ok && p != "" {
		fmt.Fprintf(&b, "Report: %s\n", p)
	}
	if ingest, ok := sum.Step(StepIngest); ok {
		fmt.Fprintf(&b, "Graph ingestion: %s\n", ingest.Status)
	}
	if sum.Stale {
		fmt.Fprintf(&b, "Warning: snapshot is %s old\n", sum.SnapshotAge.Round(time.Hour))
	}
	return notify.Message{
		Kind:    notify.KindReportReady,
		RunID:   sum.RunID,
		Subject: "AI news report generated",
		Body:    strings.TrimSpace(b.String()),
	}
}
