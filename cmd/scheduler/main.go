// Command scheduler runs the weekly report and daily freshness cycles.
//
// Daemon mode runs until SIGINT/SIGTERM; --now runs one cycle and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/ainews-backend/internal/app"
	"github.com/yungbote/ainews-backend/internal/observability"
	"github.com/yungbote/ainews-backend/internal/platform/apperr"
)

const usage = `AI news scheduler

Usage:
  scheduler          run as a daemon (weekly report, daily freshness check)
  scheduler --now    run the report and ingestion steps once, then exit
  scheduler --help   show this message

Environment:
  DATA_DIR                 snapshot directory (default data/tweets)
  REPORTS_DIR              report output directory (default reports)
  LLM_PROVIDER             anthropic (default) or openai
  ANTHROPIC_API_KEY        enables generated reports; fallback template otherwise
  OPENAI_API_KEY           used when LLM_PROVIDER=openai
  NEO4J_URI                enables graph ingestion (e.g. bolt://localhost:7687)
  NEO4J_USER               default neo4j
  NEO4J_PASSWORD           default password
  FRESHNESS_HOURS          snapshot age that counts as stale (default 24)
  STEP_TIMEOUT_SECONDS     per-step deadline (default 300)
  POLL_INTERVAL_SECONDS    scheduler poll interval (default 60)
  WEEKLY_CRON              weekly full run (default "0 9 * * 1")
  DAILY_CRON               daily freshness check (default "0 10 * * *")
  TZ                       schedule timezone (default local)
  STEP_MODE                inprocess (default) or process
  REPORT_BIN, INGEST_BIN   child binaries for STEP_MODE=process
  TELEGRAM_BOT_TOKEN       with TELEGRAM_CHAT_ID, send notifications to Telegram
  REDIS_URL                publish run events (REDIS_CHANNEL, default ainews:runs)
  SENDGRID_API_KEY         with NOTIFY_EMAIL_TO and SENDGRID_FROM_EMAIL, email notifications
  RUN_LEDGER_DSN           persist run summaries (sqlite path or postgres:// URL)
  STATUS_ADDR              serve /healthz, /runs, /runs/latest and /metrics (e.g. :8080)
  REPORT_BUCKET            mirror reports to this GCS bucket
  OTEL_ENABLED             export traces (OTEL_EXPORTER_OTLP_ENDPOINT)
  AINEWS_CONFIG_FILE       optional YAML base configuration
  LOG_MODE                 development (default) or production
`

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("scheduler", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	now := fs.Bool("now", false, "run one cycle immediately and exit")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	a, err := app.New()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOtel := observability.InitOTel(ctx, a.Log, a.Cfg.Otel)
	defer func() { _ = shutdownOtel(context.Background()) }()

	s, err := a.Scheduler(ctx)
	if err != nil {
		return fail(err)
	}

	if *now {
		sum := s.Orchestrator.RunNow(ctx)
		fmt.Printf("Run %s finished: %s\n", sum.RunID, sum.Outcome)
		for _, st := range sum.Steps {
			line := fmt.Sprintf("  %-7s %s", st.Name, st.Status)
			if st.Error != "" {
				line += ": " + st.Error
			} else if st.Detail != "" {
				line += ": " + st.Detail
			}
			fmt.Println(line)
		}
		if sum.Failed() > 0 {
			return 1
		}
		return 0
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Orchestrator.Start(gctx) })
	if s.Server != nil {
		g.Go(func() error {
			a.Log.Info("Status server listening", "addr", a.Cfg.StatusAddr)
			return s.Server.Run(gctx, a.Cfg.StatusAddr)
		})
	}
	if err := g.Wait(); err != nil {
		return fail(err)
	}
	return 0
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if hint := apperr.HintOf(err); hint != "" {
		fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
	}
	return apperr.ExitCode(err)
}
