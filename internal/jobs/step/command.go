package step

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/yungbote/ainews-backend/internal/platform/apperr"
)

const outputTailBytes = 2048

// Command runs a child process. The process is killed when ctx is done.
type Command struct {
	StepName string
	Path     string
	Args     []string
	Dir      string
	// Env is appended to the parent environment.
	Env []string
	// WaitDelay bounds how long Run waits for output pipes after a kill.
	WaitDelay time.Duration
}

func (c Command) Name() string { return c.StepName }

func (c Command) Run(ctx context.Context) (Outcome, error) {
	if strings.TrimSpace(c.Path) == "" {
		return Outcome{}, apperr.Newf(apperr.KindConfigInvalid, "step %s: empty command path", c.StepName)
	}
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.WaitDelay = c.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = 5 * time.Second
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	detail := tail(out.String(), outputTailBytes)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{Detail: detail}, fmt.Errorf("%s: %w", c.StepName, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Outcome{Detail: detail}, fmt.Errorf("%s exited with code %d: %s", c.StepName, exitErr.ExitCode(), lastLine(detail))
		}
		return Outcome{Detail: detail}, fmt.Errorf("%s: %w", c.StepName, err)
	}
	return Outcome{Detail: detail}, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
