// Command report renders the AI news digest for a snapshot.
//
// Usage: report [snapshot.json]
//
// Without an argument the newest snapshot in DATA_DIR is used.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/ainews-backend/internal/app"
	"github.com/yungbote/ainews-backend/internal/platform/apperr"
)

func main() {
	os.Exit(run())
}

func run() int {
	a, err := app.New()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	res, err := a.ReportPipeline(ctx).Run(ctx, path)
	if err != nil {
		return fail(err)
	}
	if res.Skipped() {
		fmt.Println("No AI-related topics found, no report written.")
		return 0
	}
	fmt.Printf("Report saved to %s (%d topics, %s)\n", res.Path, res.Relevant, res.Strategy)
	if res.MirrorURL != "" {
		fmt.Printf("Mirrored to %s\n", res.MirrorURL)
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
