package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/ainews-backend/internal/domain/news"
	"github.com/yungbote/ainews-backend/internal/observability"
	"github.com/yungbote/ainews-backend/internal/platform/apperr"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
	"github.com/yungbote/ainews-backend/internal/topics"
)

const (
	StrategyPrimary  = "primary"
	StrategyFallback = "fallback"
)

// Generator is the generative-text capability: system + user prompt -> text.
type Generator interface {
	Provider() string
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

// Mirror receives a copy of every written report.
type Mirror interface {
	Upload(ctx context.Context, name string, body []byte) (string, error)
}

type Config struct {
	DataDir    string
	ReportsDir string
}

type Pipeline struct {
	cfg     Config
	gen     Generator // nil when no credential is configured
	mirror  Mirror
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewPipeline(cfg Config, gen Generator, mirror Mirror, log *logger.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		gen:     gen,
		mirror:  mirror,
		log:     log.With("component", "ReportPipeline"),
		metrics: metrics,
	}
}

type Result struct {
	SnapshotPath string
	Date         string
	Relevant     int
	Strategy     string
	Path         string // empty when there was nothing to report
	MirrorURL    string
}

// Skipped reports the clean no-op outcome: no relevant posts.
func (r *Result) Skipped() bool { return r != nil && r.Path == "" }

// Rendered is one rendering of the report.
type Rendered struct {
	Markdown string
	Strategy string
	// PrimaryErr is why the primary strategy was not used, if it was attempted.
	PrimaryErr error
}

// Primary asks the generator for the report. The text is returned verbatim.
func Primary(ctx context.Context, gen Generator, items []topics.Item, date string) (string, error) {
	if gen == nil {
		return "", apperr.New(apperr.KindCapabilityUnavailable, errors.New("generator not configured"))
	}
	text, err := gen.GenerateText(ctx, Persona, BuildPrompt(items, date))
	if err != nil {
		return "", apperr.New(apperr.KindCapabilityUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", apperr.New(apperr.KindCapabilityUnavailable, errors.New("empty response"))
	}
	return text, nil
}

// Render tries the primary strategy once and falls back on any failure. The
// generator is never called when it is not configured.
func (p *Pipeline) Render(ctx context.Context, items []topics.Item, date string) Rendered {
	if p.gen == nil {
		p.log.Info("Skipping generative call (no API key)")
		return Rendered{Markdown: Fallback(items, date), Strategy: StrategyFallback}
	}

	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "report.primary", attribute.String("provider", p.gen.Provider()))
	text, err := Primary(ctx, p.gen, items, date)
	span.End()
	p.metrics.ObserveLLMRequest(p.gen.Provider(), err, time.Since(start))

	if err != nil {
		p.log.Warn("Primary report generation failed, using fallback", "provider", p.gen.Provider(), "error", err)
		return Rendered{Markdown: Fallback(items, date), Strategy: StrategyFallback, PrimaryErr: err}
	}
	p.log.Info("Report generated", "provider", p.gen.Provider(), "chars", len(text))
	return Rendered{Markdown: text, Strategy: StrategyPrimary}
}

// Run generates the report for the snapshot at path, or the latest snapshot in
// the data dir when path is empty.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		latest, err := news.LatestSnapshotPath(p.cfg.DataDir)
		if err != nil {
			return nil, err
		}
		path = latest
	}
	p.log.Info("Loading tweet data", "path", path)

	snap, err := news.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	p.log.Info("Loaded tweets", "count", snap.TweetCount, "date", snap.Date)

	items := topics.Filter(snap)
	res := &Result{SnapshotPath: path, Date: snap.Date, Relevant: len(items)}
	p.log.Info("Found AI-related topics", "count", len(items))
	if len(items) == 0 {
		p.log.Info("No AI-related topics found, nothing to report")
		return res, nil
	}

	rendered := p.Render(ctx, items, snap.DisplayDate())
	res.Strategy = rendered.Strategy

	out, err := p.write(snap.Date, rendered.Markdown)
	if err != nil {
		return nil, err
	}
	res.Path = out
	p.metrics.ObserveReport(rendered.Strategy)
	p.log.Info("Report saved", "path", out, "strategy", rendered.Strategy, "topics", len(items))

	if p.mirror != nil {
		url, err := p.mirror.Upload(ctx, news.ReportFileName(snap.Date), []byte(rendered.Markdown))
		if err != nil {
			p.log.Warn("Report mirror upload failed (continuing)", "error", err)
		} else {
			res.MirrorURL = url
		}
	}
	return res, nil
}

func (p *Pipeline) write(date8 string, markdown string) (string, error) {
	if err := os.MkdirAll(p.cfg.ReportsDir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	out := filepath.Join(p.cfg.ReportsDir, news.ReportFileName(date8))
	if err := os.WriteFile(out, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return out, nil
}
