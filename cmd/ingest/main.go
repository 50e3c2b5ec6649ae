// Command ingest upserts a snapshot into the Neo4j news graph.
//
// Usage: ingest [snapshot.json]
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

	in, closeGraph, err := a.Ingester(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeGraph()

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	res, err := in.Run(ctx, a.Cfg.DataDir, path)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Ingested %s: %d posts, %d articles, %d topic links\n", res.SnapshotPath, res.Posts, res.Articles, res.TopicLinks)
	if n := res.Failures(); n > 0 {
		fmt.Printf("Failed writes: %d posts, %d articles, %d topic sets\n", res.FailedPosts, res.FailedArticles, res.FailedTopics)
	}
	if s := res.Stats; s != nil {
		fmt.Println("Graph statistics:")
		fmt.Printf("  Posts:         %d\n", s.Posts)
		fmt.Printf("  Articles:      %d\n", s.Articles)
		fmt.Printf("  Users:         %d\n", s.Users)
		fmt.Printf("  Topics:        %d\n", s.Topics)
		fmt.Printf("  Relationships: %d\n", s.Relationships)
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
