package app

import (
	"context"
	"fmt"

	"github.com/yungbote/ainews-backend/internal/ingest"
	"github.com/yungbote/ainews-backend/internal/jobs/orchestrator"
	"github.com/yungbote/ainews-backend/internal/observability"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
	"github.com/yungbote/ainews-backend/internal/report"

	httpserver "github.com/yungbote/ainews-backend/internal/http"
	httpH "github.com/yungbote/ainews-backend/internal/http/handlers"
)

const metricsNamespace = "ainews"

type App struct {
	Log     *logger.Logger
	Cfg     Config
	Metrics *observability.Metrics
	closers []func()
}

// New loads configuration and the logger. Clients are wired lazily by the
// entry point that needs them.
func New() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode, logger.Options{
		DisableRedaction: cfg.DisableRedaction,
		HashSalt:         cfg.LogHashSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &App{
		Log:     log,
		Cfg:     cfg,
		Metrics: observability.NewMetrics(metricsNamespace),
	}, nil
}

// ReportPipeline wires the generator and optional mirror.
func (a *App) ReportPipeline(ctx context.Context) *report.Pipeline {
	var mirror report.Mirror
	if b := wireMirror(ctx, a.Log, a.Cfg); b != nil {
		mirror = b
		a.closers = append(a.closers, func() { _ = b.Close() })
	}
	gen := wireGenerator(a.Log, a.Cfg)
	return report.NewPipeline(report.Config{
		DataDir:    a.Cfg.DataDir,
		ReportsDir: a.Cfg.ReportsDir,
	}, gen, mirror, a.Log, a.Metrics)
}

// Ingester connects to the graph store. The returned close func releases the
// driver; errors are apperr store_unavailable.
func (a *App) Ingester(ctx context.Context) (*ingest.Ingester, func(), error) {
	g, closeFn, err := wireGraph(ctx, a.Log, a.Cfg)
	if err != nil {
		return nil, nil, err
	}
	return ingest.NewIngester(g, a.Log, a.Metrics), func() { _ = closeFn(context.Background()) }, nil
}

// Scheduler is the daemon: the orchestrator plus an optional status server.
type Scheduler struct {
	Orchestrator *orchestrator.Orchestrator
	// Server is nil when STATUS_ADDR is empty.
	Server *httpserver.Server
}

func (a *App) Scheduler(ctx context.Context) (*Scheduler, error) {
	sc := a.Cfg.Scheduler
	loc, err := sc.Location()
	if err != nil {
		return nil, err
	}

	notifier, closeNotify := wireNotifier(ctx, a.Log, a.Cfg.Notify)
	a.closers = append(a.closers, closeNotify)

	ledger, closeLedger, err := wireLedger(a.Log, a.Cfg.RunLedgerDSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeLedger)

	var orchLedger orchestrator.Ledger
	if ledger != nil {
		orchLedger = ledger
	}

	o, err := orchestrator.New(orchestrator.Config{
		DataDir:            a.Cfg.DataDir,
		FreshnessThreshold: sc.FreshnessThreshold,
		StepTimeout:        sc.StepTimeout,
		PollInterval:       sc.PollInterval,
		WeeklySpec:         sc.WeeklySpec,
		DailySpec:          sc.DailySpec,
		Location:           loc,
	}, a.steps(a.ReportPipeline(ctx)), notifier, orchLedger, a.Log, a.Metrics)
	if err != nil {
		return nil, err
	}
	if !a.Cfg.NeoConfigured {
		a.Log.Info("NEO4J_URI not set, graph ingestion disabled for scheduled runs")
	}

	s := &Scheduler{Orchestrator: o}
	if a.Cfg.StatusAddr != "" {
		serviceName := ""
		if a.Cfg.Otel.Enabled {
			serviceName = a.Cfg.Otel.ServiceName
		}
		s.Server = httpserver.NewServer(httpserver.RouterConfig{
			Log:           a.Log,
			Metrics:       a.Metrics,
			ServiceName:   serviceName,
			CORSOrigins:   a.Cfg.CORSOrigins,
			HealthHandler: httpH.NewHealthHandler(func() string { return string(o.State()) }),
			RunHandler:    httpH.NewRunHandler(a.Log, o, ledger),
		})
	}
	return s, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.Log != nil {
		a.Log.Sync()
	}
}
