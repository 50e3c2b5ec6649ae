// Package step runs pipeline steps under a hard deadline.
//
// A step runs in its own goroutine (or child process for Command). Run returns
// as soon as either the step finishes or the deadline passes, so a runaway step
// cannot hold the caller past its timeout. A step that ignores its context keeps
// running in the background until it returns; its result is discarded.
package step

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/ainews-backend/internal/domain/jobs"
	"github.com/yungbote/ainews-backend/internal/observability"
	"github.com/yungbote/ainews-backend/internal/platform/apperr"
)

// Outcome is what a step reports on success.
type Outcome struct {
	// Skipped marks a clean no-op (nothing to do).
	Skipped    bool
	Detail     string
	Attributes map[string]any
}

type Step interface {
	Name() string
	Run(ctx context.Context) (Outcome, error)
}

// Func adapts an in-process function to Step.
type Func struct {
	StepName string
	Fn       func(ctx context.Context) (Outcome, error)
}

func (f Func) Name() string { return f.StepName }

func (f Func) Run(ctx context.Context) (Outcome, error) {
	if f.Fn == nil {
		return Outcome{}, fmt.Errorf("step %s: no function", f.StepName)
	}
	return f.Fn(ctx)
}

type result struct {
	out Outcome
	err error
}

// Run executes s with the given timeout and always returns a StepOutcome.
// Timeouts are reported as StepTimedOut with an apperr step_timeout error.
func Run(ctx context.Context, s Step, timeout time.Duration) jobs.StepOutcome {
	started := time.Now()
	name := s.Name()
	so := jobs.StepOutcome{Name: name, StartedAt: started.UTC()}

	ctx, span := observability.StartSpan(ctx, "step."+name,
		attribute.String("step.name", name),
		attribute.Float64("step.timeout_s", timeout.Seconds()),
	)
	defer span.End()

	stepCtx := ctx
	cancel := func() {}
	if timeout > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("step %s panic: %v", name, r)}
			}
		}()
		out, err := s.Run(stepCtx)
		done <- result{out: out, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-stepCtx.Done():
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			res = result{err: apperr.WithHint(apperr.KindStepTimeout,
				"raise STEP_TIMEOUT or check the step's upstream dependency",
				fmt.Errorf("step %s exceeded %s", name, timeout))}
		} else {
			res = result{err: stepCtx.Err()}
		}
	}

	so.Duration = time.Since(started)
	switch {
	case res.err == nil && res.out.Skipped:
		so.Status = jobs.StepSkipped
	case res.err == nil:
		so.Status = jobs.StepSucceeded
	case apperr.Is(res.err, apperr.KindStepTimeout) || errors.Is(res.err, context.DeadlineExceeded):
		so.Status = jobs.StepTimedOut
	default:
		so.Status = jobs.StepFailed
	}
	so.Detail = res.out.Detail
	so.Attributes = res.out.Attributes
	if res.err != nil {
		so.Error = res.err.Error()
		so.ErrorKind = string(apperr.KindOf(res.err))
		if so.Status == jobs.StepTimedOut && so.ErrorKind == "" {
			so.ErrorKind = string(apperr.KindStepTimeout)
		}
		span.RecordError(res.err)
		span.SetStatus(codes.Error, so.Error)
	}
	span.SetAttributes(attribute.String("step.status", string(so.Status)))
	return so
}
