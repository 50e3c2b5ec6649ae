package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/ainews-backend/internal/domain/news"
	"github.com/yungbote/ainews-backend/internal/ingest"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
	"github.com/yungbote/ainews-backend/internal/platform/neo4jdb"
	"github.com/yungbote/ainews-backend/internal/topics"
)

var newsSchema = []string{
	`CREATE CONSTRAINT post_id_unique IF NOT EXISTS FOR (p:Post) REQUIRE p.id IS UNIQUE`,
	`CREATE CONSTRAINT article_url_unique IF NOT EXISTS FOR (a:Article) REQUIRE a.url IS UNIQUE`,
	`CREATE CONSTRAINT user_username_unique IF NOT EXISTS FOR (u:User) REQUIRE u.username IS UNIQUE`,
	`CREATE CONSTRAINT topic_name_unique IF NOT EXISTS FOR (t:Topic) REQUIRE t.name IS UNIQUE`,
}

const upsertPostCypher = `
MERGE (p:Post {id: $id})
SET p.text = $text,
    p.timestamp = $timestamp,
    p.collected_at = $collected_at,
    p.source = $source,
    p.index = $index,
    p.synced_at = $synced_at
MERGE (u:User {username: $author})
MERGE (u)-[:POSTED]->(p)
`

const upsertArticleCypher = `
MATCH (p:Post {id: $post_id})
MERGE (a:Article {url: $url})
SET a.title = $title,
    a.description = $description,
    a.content = $content,
    a.updated_at = $updated_at
MERGE (p)-[:LINKS_TO]->(a)
RETURN a.url AS url
`

const upsertTopicsCypher = `
MATCH (p:Post {id: $post_id})
UNWIND $topics AS name
MERGE (t:Topic {name: name})
MERGE (p)-[:MENTIONS]->(t)
RETURN count(t) AS linked
`

// Each count runs in its own subquery so an empty label yields 0 instead of
// collapsing the whole row.
const statsCypher = `
CALL { MATCH (p:Post) RETURN count(p) AS posts }
CALL { MATCH (a:Article) RETURN count(a) AS articles }
CALL { MATCH (u:User) RETURN count(u) AS users }
CALL { MATCH (t:Topic) RETURN count(t) AS topics }
CALL { MATCH ()-[r]->() RETURN count(r) AS relationships }
RETURN posts, articles, users, topics, relationships
`

// NewsGraph is the Neo4j implementation of ingest.Store.
type NewsGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
	now    func() time.Time
}

var _ ingest.Store = (*NewsGraph)(nil)

func NewNewsGraph(client *neo4jdb.Client, log *logger.Logger) *NewsGraph {
	return &NewsGraph{client: client, log: log.With("store", "NewsGraph"), now: time.Now}
}

func (g *NewsGraph) session(ctx context.Context, mode neo4j.AccessMode) (neo4j.SessionWithContext, error) {
	if g == nil || g.client == nil || g.client.Driver == nil {
		return nil, fmt.Errorf("news graph: neo4j client not initialized")
	}
	return g.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: g.client.Database,
	}), nil
}

// EnsureSchema creates the uniqueness constraints. Individual failures are
// logged and skipped; the error is non-nil only when no session can be opened.
func (g *NewsGraph) EnsureSchema(ctx context.Context) error {
	session, err := g.session(ctx, neo4j.AccessModeWrite)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	for _, q := range newsSchema {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			g.log.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		if _, err := res.Consume(ctx); err != nil {
			g.log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	}
	return nil
}

func (g *NewsGraph) UpsertPost(ctx context.Context, p ingest.PostRecord) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("upsert post: empty id")
	}
	params := map[string]any{
		"id":           p.ID,
		"author":       p.Author,
		"text":         p.Text,
		"timestamp":    p.Timestamp,
		"collected_at": p.CollectedAt,
		"source":       p.Source,
		"index":        int64(p.Index),
		"synced_at":    g.now().UTC().Format(time.RFC3339Nano),
	}
	return g.write(ctx, func(tx neo4j.ManagedTransaction) error {
		res, err := tx.Run(ctx, upsertPostCypher, params)
		if err != nil {
			return err
		}
		_, err = res.Consume(ctx)
		return err
	})
}

func (g *NewsGraph) UpsertArticle(ctx context.Context, postID string, a news.LinkedArticle) error {
	if strings.TrimSpace(a.URL) == "" {
		return fmt.Errorf("upsert article: empty url")
	}
	params := map[string]any{
		"post_id":     postID,
		"url":         a.URL,
		"title":       a.Title,
		"description": a.Description,
		"content":     a.Content,
		"updated_at":  g.now().UTC().Format(time.RFC3339Nano),
	}
	return g.write(ctx, func(tx neo4j.ManagedTransaction) error {
		res, err := tx.Run(ctx, upsertArticleCypher, params)
		if err != nil {
			return err
		}
		if _, err := res.Single(ctx); err != nil {
			return fmt.Errorf("post %s not found: %w", postID, err)
		}
		return nil
	})
}

func (g *NewsGraph) UpsertTopics(ctx context.Context, postID string, ts []topics.Topic) error {
	if len(ts) == 0 {
		return nil
	}
	names := make([]any, 0, len(ts))
	for _, t := range ts {
		names = append(names, string(t))
	}
	params := map[string]any{"post_id": postID, "topics": names}
	return g.write(ctx, func(tx neo4j.ManagedTransaction) error {
		res, err := tx.Run(ctx, upsertTopicsCypher, params)
		if err != nil {
			return err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return err
		}
		if n, _ := rec.Get("linked"); asInt64(n) == 0 {
			return fmt.Errorf("post %s not found", postID)
		}
		return nil
	})
}

func (g *NewsGraph) Stats(ctx context.Context) (ingest.Stats, error) {
	session, err := g.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return ingest.Stats{}, err
	}
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, statsCypher, nil)
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return statsFromRecord(rec), nil
	})
	if err != nil {
		return ingest.Stats{}, fmt.Errorf("graph stats: %w", err)
	}
	return out.(ingest.Stats), nil
}

func (g *NewsGraph) write(ctx context.Context, fn func(tx neo4j.ManagedTransaction) error) error {
	session, err := g.session(ctx, neo4j.AccessModeWrite)
	if err != nil {
		return err
	}
	defer session.Close(ctx)
	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(tx)
	})
	return err
}

func statsFromRecord(rec *neo4j.Record) ingest.Stats {
	get := func(key string) int64 {
		v, _ := rec.Get(key)
		return asInt64(v)
	}
	return ingest.Stats{
		Posts:         get("posts"),
		Articles:      get("articles"),
		Users:         get("users"),
		Topics:        get("topics"),
		Relationships: get("relationships"),
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
