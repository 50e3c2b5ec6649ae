package neo4jdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/ainews-backend/internal/platform/apperr"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

const connectHint = "make sure Neo4j is running and set NEO4J_URI (e.g. bolt://localhost:7687), NEO4J_USER and NEO4J_PASSWORD"

type Config struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

// New opens a driver and verifies connectivity. Failures are StoreUnavailable.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("neo4jdb: logger required")
	}
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, apperr.WithHint(apperr.KindStoreUnavailable, connectHint, fmt.Errorf("neo4jdb: empty URI"))
	}
	user := strings.TrimSpace(cfg.User)
	if user == "" {
		user = "neo4j"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxPool := cfg.MaxPoolSize
	if maxPool <= 0 {
		maxPool = 10
	}

	auth := neo4j.BasicAuth(user, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(uri, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = maxPool
		c.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, apperr.WithHint(apperr.KindStoreUnavailable, connectHint, fmt.Errorf("neo4jdb: init driver: %w", err))
	}

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperr.WithHint(apperr.KindStoreUnavailable, connectHint, fmt.Errorf("neo4jdb: verify connectivity: %w", err))
	}

	l := log.With("client", "Neo4jDB")
	l.Info("Connected to Neo4j", "uri", uri, "user", user)
	return &Client{
		Driver:   driver,
		Database: strings.TrimSpace(cfg.Database),
		log:      l,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}
