// Package ingest writes snapshots into the news graph.
//
// Every post is ingested regardless of report relevance; topic tagging, not
// filtering, decides which Topic nodes a post is attached to. All writes are
// merge-by-identity so re-ingesting a snapshot converges on the same graph.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/ainews-backend/internal/domain/news"
	"github.com/yungbote/ainews-backend/internal/observability"
	"github.com/yungbote/ainews-backend/internal/platform/ctxutil"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
	"github.com/yungbote/ainews-backend/internal/topics"
)

const progressEvery = 5

type PostRecord struct {
	ID          string
	Index       int
	Author      string
	Text        string
	Timestamp   string
	CollectedAt string
	Source      string
}

type Stats struct {
	Posts         int64
	Articles      int64
	Users         int64
	Topics        int64
	Relationships int64
}

// Store is the graph boundary. Implementations must make every method an
// idempotent merge.
type Store interface {
	EnsureSchema(ctx context.Context) error
	// UpsertPost merges the User, the Post and the POSTED edge.
	UpsertPost(ctx context.Context, p PostRecord) error
	// UpsertArticle merges the Article (latest attributes win) and the LINKS_TO edge.
	UpsertArticle(ctx context.Context, postID string, a news.LinkedArticle) error
	// UpsertTopics merges each Topic and a MENTIONS edge from the post.
	UpsertTopics(ctx context.Context, postID string, ts []topics.Topic) error
	Stats(ctx context.Context) (Stats, error)
}

type Result struct {
	SnapshotPath   string
	Date           string
	Posts          int
	Articles       int
	TopicLinks     int
	FailedPosts    int
	FailedArticles int
	FailedTopics   int
	Stats          *Stats
}

// Failures is the number of writes that did not land.
func (r *Result) Failures() int {
	return r.FailedPosts + r.FailedArticles + r.FailedTopics
}

type Ingester struct {
	store   Store
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func NewIngester(store Store, log *logger.Logger, metrics *observability.Metrics) *Ingester {
	return &Ingester{
		store:   store,
		log:     log.With("component", "GraphIngester"),
		metrics: metrics,
		now:     time.Now,
	}
}

// Run loads the snapshot at path (or the newest one in dataDir) and ingests it.
func (in *Ingester) Run(ctx context.Context, dataDir string, path string) (*Result, error) {
	if path == "" {
		latest, err := news.LatestSnapshotPath(dataDir)
		if err != nil {
			return nil, err
		}
		path = latest
	}
	in.log.Info("Loading data", "path", path)
	snap, err := news.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	res, err := in.Ingest(ctx, snap)
	if res != nil {
		res.SnapshotPath = path
	}
	return res, err
}

// Ingest writes one snapshot. Per-item write failures are counted, not
// returned; only context cancellation aborts the pass.
func (in *Ingester) Ingest(ctx context.Context, snap *news.Snapshot) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, "ingest.snapshot",
		attribute.String("snapshot.date", snap.Date),
		attribute.Int("snapshot.posts", len(snap.Posts)),
	)
	defer span.End()

	if err := in.store.EnsureSchema(ctx); err != nil {
		in.log.Warn("Schema init failed (continuing)", append(ctxutil.LogFields(ctx), "error", err)...)
	}

	collectedAt := snap.CollectedAt
	if collectedAt == "" {
		collectedAt = in.now().UTC().Format(time.RFC3339)
	}

	res := &Result{Date: snap.Date}
	in.log.Info("Processing tweets", "count", len(snap.Posts))

	for _, p := range snap.Posts {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("ingest interrupted after %d posts: %w", res.Posts, err)
		}
		postID := snap.PostID(p)
		rec := PostRecord{
			ID:          postID,
			Index:       p.Index,
			Author:      p.Author,
			Text:        p.Text,
			Timestamp:   p.Timestamp,
			CollectedAt: collectedAt,
			Source:      snap.Source,
		}
		if err := in.store.UpsertPost(ctx, rec); err != nil {
			res.FailedPosts++
			in.metrics.ObserveIngestedPost(false)
			in.log.Warn("Post upsert failed (continuing)", "post_id", postID, "error", err)
			continue
		}
		res.Posts++
		in.metrics.ObserveIngestedPost(true)

		for _, a := range p.LinkedContent {
			if err := in.store.UpsertArticle(ctx, postID, a); err != nil {
				res.FailedArticles++
				in.log.Warn("Article upsert failed (continuing)", "post_id", postID, "url", a.URL, "error", err)
				continue
			}
			res.Articles++
		}

		if found := topics.Tag(p.Text); len(found) > 0 {
			if err := in.store.UpsertTopics(ctx, postID, found); err != nil {
				res.FailedTopics++
				in.log.Warn("Topic tagging failed (continuing)", "post_id", postID, "error", err)
			} else {
				res.TopicLinks += len(found)
			}
		}

		if res.Posts%progressEvery == 0 {
			in.log.Info("Processed tweets", "count", res.Posts)
		}
	}

	stats, err := in.store.Stats(ctx)
	if err != nil {
		in.log.Warn("Statistics query failed", "error", err)
	} else {
		res.Stats = &stats
	}

	if res.Failures() > 0 {
		in.log.Warn("Ingestion finished with partial failures",
			"failed_posts", res.FailedPosts,
			"failed_articles", res.FailedArticles,
			"failed_topics", res.FailedTopics,
		)
	}
	in.log.Info("Save complete",
		"posts", res.Posts,
		"articles", res.Articles,
		"topic_links", res.TopicLinks,
	)
	return res, nil
}
