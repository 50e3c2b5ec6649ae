package step

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/yungbote/ainews-backend/internal/domain/jobs"
	"github.com/yungbote/ainews-backend/internal/platform/apperr"
)

func TestRunSucceeded(t *testing.T) {
	s := Func{StepName: "report", Fn: func(ctx context.Context) (Outcome, error) {
		return Outcome{Detail: "ok", Attributes: map[string]any{"relevant": 3}}, nil
	}}
	got := Run(context.Background(), s, time.Second)
	if got.Status != jobs.StepSucceeded || got.Detail != "ok" || got.Name != "report" {
		t.Fatalf("outcome: got=%+v", got)
	}
	if got.Attributes["relevant"] != 3 {
		t.Fatalf("attributes lost: %+v", got.Attributes)
	}
}

func TestRunSkipped(t *testing.T) {
	s := Func{StepName: "report", Fn: func(ctx context.Context) (Outcome, error) {
		return Outcome{Skipped: true}, nil
	}}
	if got := Run(context.Background(), s, time.Second); got.Status != jobs.StepSkipped {
		t.Fatalf("status: want=%q got=%q", jobs.StepSkipped, got.Status)
	}
}

func TestRunFailedKeepsKind(t *testing.T) {
	s := Func{StepName: "ingest", Fn: func(ctx context.Context) (Outcome, error) {
		return Outcome{}, apperr.New(apperr.KindStoreUnavailable, errors.New("connection refused"))
	}}
	got := Run(context.Background(), s, time.Second)
	if got.Status != jobs.StepFailed {
		t.Fatalf("status: want=%q got=%q", jobs.StepFailed, got.Status)
	}
	if got.ErrorKind != string(apperr.KindStoreUnavailable) {
		t.Fatalf("kind: got=%q", got.ErrorKind)
	}
}

func TestRunTimeoutReturnsAtDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	s := Func{StepName: "hang", Fn: func(ctx context.Context) (Outcome, error) {
		<-release // ignores ctx
		return Outcome{}, nil
	}}
	start := time.Now()
	got := Run(context.Background(), s, 50*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Run blocked past its deadline: %s", elapsed)
	}
	if got.Status != jobs.StepTimedOut || got.ErrorKind != string(apperr.KindStepTimeout) {
		t.Fatalf("outcome: got=%+v", got)
	}
}

func TestRunRecoversPanic(t *testing.T) {
	s := Func{StepName: "boom", Fn: func(ctx context.Context) (Outcome, error) {
		panic("bad")
	}}
	if got := Run(context.Background(), s, time.Second); got.Status != jobs.StepFailed {
		t.Fatalf("status: want=%q got=%q", jobs.StepFailed, got.Status)
	}
}

func TestCommandExitCode(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	ok := Run(context.Background(), Command{StepName: "echo", Path: sh, Args: []string{"-c", "echo hello"}}, 5*time.Second)
	if ok.Status != jobs.StepSucceeded || ok.Detail != "hello" {
		t.Fatalf("outcome: got=%+v", ok)
	}
	bad := Run(context.Background(), Command{StepName: "fail", Path: sh, Args: []string{"-c", "echo no snapshot >&2; exit 2"}}, 5*time.Second)
	if bad.Status != jobs.StepFailed {
		t.Fatalf("status: want=%q got=%q", jobs.StepFailed, bad.Status)
	}
	if bad.Error != "fail exited with code 2: no snapshot" {
		t.Fatalf("error: got=%q", bad.Error)
	}
}

func TestCommandKilledAtDeadline(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	start := time.Now()
	got := Run(context.Background(), Command{StepName: "sleep", Path: sh, Args: []string{"-c", "sleep 10"}, WaitDelay: 100 * time.Millisecond}, 100*time.Millisecond)
	if time.Since(start) > 5*time.Second {
		t.Fatalf("command outlived its deadline")
	}
	if got.Status != jobs.StepTimedOut {
		t.Fatalf("status: want=%q got=%q", jobs.StepTimedOut, got.Status)
	}
}

func TestCommandEmptyPath(t *testing.T) {
	got := Run(context.Background(), Command{StepName: "x"}, time.Second)
	if got.ErrorKind != string(apperr.KindConfigInvalid) {
		t.Fatalf("kind: got=%q", got.ErrorKind)
	}
}
