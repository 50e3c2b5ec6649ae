package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/ainews-backend/internal/data/db"
	"github.com/yungbote/ainews-backend/internal/data/graph"
	"github.com/yungbote/ainews-backend/internal/notify"
	"github.com/yungbote/ainews-backend/internal/platform/anthropic"
	"github.com/yungbote/ainews-backend/internal/platform/gcp"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
	"github.com/yungbote/ainews-backend/internal/platform/neo4jdb"
	"github.com/yungbote/ainews-backend/internal/platform/openai"
	"github.com/yungbote/ainews-backend/internal/platform/sendgrid"
	"github.com/yungbote/ainews-backend/internal/report"
	"github.com/yungbote/ainews-backend/internal/repos"
)

// wireGenerator returns nil when the selected provider has no credential, so
// the report pipeline goes straight to the fallback template.
func wireGenerator(log *logger.Logger, cfg Config) report.Generator {
	switch cfg.LLMProvider {
	case ProviderOpenAI:
		if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
			log.Warn("OPENAI_API_KEY not set, using fallback report template")
			return nil
		}
		c, err := openai.New(log, cfg.OpenAI)
		if err != nil {
			log.Warn("OpenAI client init failed, using fallback report template", "error", err)
			return nil
		}
		return c
	default:
		if strings.TrimSpace(cfg.Anthropic.APIKey) == "" {
			log.Warn("ANTHROPIC_API_KEY not set, using fallback report template")
			return nil
		}
		c, err := anthropic.New(log, cfg.Anthropic)
		if err != nil {
			log.Warn("Anthropic client init failed, using fallback report template", "error", err)
			return nil
		}
		return c
	}
}

// wireMirror returns nil when no report bucket is configured or the client
// cannot be created; mirroring is best effort.
func wireMirror(ctx context.Context, log *logger.Logger, cfg Config) *gcp.ReportBucket {
	if strings.TrimSpace(cfg.ReportBucket.Bucket) == "" {
		return nil
	}
	b, err := gcp.NewReportBucket(ctx, log, cfg.ReportBucket)
	if err != nil {
		log.Warn("Report bucket unavailable, reports stay local", "error", err)
		return nil
	}
	return b
}

// wireGraph connects to Neo4j. Errors are apperr store_unavailable.
func wireGraph(ctx context.Context, log *logger.Logger, cfg Config) (*graph.NewsGraph, func(context.Context) error, error) {
	client, err := neo4jdb.New(ctx, log, cfg.Neo4j)
	if err != nil {
		return nil, nil, err
	}
	return graph.NewNewsGraph(client, log), client.Close, nil
}

// wireNotifier fans out to every configured channel. The log notifier is
// always present. The returned cleanup is never nil.
func wireNotifier(ctx context.Context, log *logger.Logger, cfg NotifyConfig) (*notify.Multi, func()) {
	var (
		targets  []notify.Notifier
		cleanups []func()
	)
	targets = append(targets, notify.NewLog(log))

	if cfg.TelegramToken != "" {
		if cfg.TelegramChatID == 0 {
			log.Warn("TELEGRAM_BOT_TOKEN set without TELEGRAM_CHAT_ID, telegram disabled")
		} else if t, err := notify.NewTelegram(log, cfg.TelegramToken, cfg.TelegramChatID); err != nil {
			log.Warn("Telegram notifier disabled", "error", err)
		} else {
			targets = append(targets, t)
		}
	}

	if cfg.RedisURL != "" {
		r, err := notify.NewRedis(ctx, log, cfg.RedisURL, cfg.RedisChannel)
		if err != nil {
			log.Warn("Redis notifier disabled", "error", err)
		} else {
			targets = append(targets, r)
			cleanups = append(cleanups, func() { _ = r.Close() })
		}
	}

	if cfg.SendGrid.APIKey != "" && len(cfg.EmailTo) > 0 {
		sg, err := sendgrid.New(log, cfg.SendGrid)
		if err != nil {
			log.Warn("Email notifier disabled", "error", err)
		} else if e, err := notify.NewEmail(sg, cfg.EmailTo); err != nil {
			log.Warn("Email notifier disabled", "error", err)
		} else {
			targets = append(targets, e)
		}
	}

	m := notify.NewMulti(log, targets...)
	log.Info("Notifiers configured", "targets", m.Names())
	return m, func() {
		for _, c := range cleanups {
			c()
		}
	}
}

// wireLedger opens the run ledger when RUN_LEDGER_DSN is set. A nil repo
// means no ledger.
func wireLedger(log *logger.Logger, dsn string) (repos.RunRecordRepo, func(), error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, func() {}, nil
	}
	svc, err := db.Open(log, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open run ledger: %w", err)
	}
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		_ = svc.Close()
		return nil, nil, fmt.Errorf("migrate run ledger: %w", err)
	}
	return repos.NewRunRecordRepo(svc.DB(), log), func() { _ = svc.Close() }, nil
}
