package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

const DefaultRedisChannel = "ainews:runs"

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// Redis publishes notifications as JSON on a pub/sub channel.
type Redis struct {
	rdb     redisPublisher
	closer  func() error
	channel string
	log     *logger.Logger
}

// NewRedis connects using a redis:// URL and verifies the connection.
func NewRedis(ctx context.Context, log *logger.Logger, url string, channel string) (*Redis, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("missing REDIS_URL")
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	rdb := goredis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	r := newRedis(log, rdb, channel)
	r.closer = rdb.Close
	return r, nil
}

func newRedis(log *logger.Logger, rdb redisPublisher, channel string) *Redis {
	if strings.TrimSpace(channel) == "" {
		channel = DefaultRedisChannel
	}
	return &Redis{rdb: rdb, channel: channel, log: log.With("notifier", "redis", "channel", channel)}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Notify(ctx context.Context, msg Message) error {
	if r == nil || r.rdb == nil {
		return fmt.Errorf("redis notifier not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, raw).Err()
}

func (r *Redis) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer()
}
