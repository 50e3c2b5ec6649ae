package app

import (
	"context"
	"fmt"

	"github.com/yungbote/ainews-backend/internal/ingest"
	"github.com/yungbote/ainews-backend/internal/jobs/orchestrator"
	"github.com/yungbote/ainews-backend/internal/jobs/step"
	"github.com/yungbote/ainews-backend/internal/report"
)

func reportStep(p *report.Pipeline) step.Step {
	return step.Func{
		StepName: orchestrator.StepReport,
		Fn: func(ctx context.Context) (step.Outcome, error) {
			res, err := p.Run(ctx, "")
			if err != nil {
				return step.Outcome{}, err
			}
			return reportOutcome(res), nil
		},
	}
}

func reportOutcome(res *report.Result) step.Outcome {
	attrs := map[string]any{
		"snapshot": res.SnapshotPath,
		"relevant": res.Relevant,
	}
	if res.Skipped() {
		return step.Outcome{Skipped: true, Detail: "no AI-related posts in snapshot", Attributes: attrs}
	}
	attrs["report_path"] = res.Path
	attrs["strategy"] = res.Strategy
	if res.MirrorURL != "" {
		attrs["mirror_url"] = res.MirrorURL
	}
	return step.Outcome{
		Detail:     fmt.Sprintf("%d topics, %s strategy", res.Relevant, res.Strategy),
		Attributes: attrs,
	}
}

// ingestStep opens the graph connection per run so an unreachable store fails
// the step, not the scheduler.
func (a *App) ingestStep() step.Step {
	return step.Func{
		StepName: orchestrator.StepIngest,
		Fn: func(ctx context.Context) (step.Outcome, error) {
			in, closeFn, err := a.Ingester(ctx)
			if err != nil {
				return step.Outcome{}, err
			}
			defer closeFn()
			res, err := in.Run(ctx, a.Cfg.DataDir, "")
			if err != nil {
				return step.Outcome{}, err
			}
			return ingestOutcome(res), nil
		},
	}
}

func ingestOutcome(res *ingest.Result) step.Outcome {
	attrs := map[string]any{
		"snapshot":    res.SnapshotPath,
		"posts":       res.Posts,
		"articles":    res.Articles,
		"topic_links": res.TopicLinks,
		"failures":    res.Failures(),
	}
	detail := fmt.Sprintf("%d posts, %d articles, %d topic links", res.Posts, res.Articles, res.TopicLinks)
	if n := res.Failures(); n > 0 {
		detail += fmt.Sprintf(", %d failed writes", n)
	}
	return step.Outcome{Detail: detail, Attributes: attrs}
}

// steps builds the cycle steps for the configured mode. Ingest is nil when
// NEO4J_URI is not set.
func (a *App) steps(p *report.Pipeline) orchestrator.Steps {
	sc := a.Cfg.Scheduler
	if sc.StepMode == StepModeProcess {
		s := orchestrator.Steps{
			Report: step.Command{StepName: orchestrator.StepReport, Path: sc.ReportBin},
		}
		if a.Cfg.NeoConfigured {
			s.Ingest = step.Command{StepName: orchestrator.StepIngest, Path: sc.IngestBin}
		}
		return s
	}
	s := orchestrator.Steps{Report: reportStep(p)}
	if a.Cfg.NeoConfigured {
		s.Ingest = a.ingestStep()
	}
	return s
}
