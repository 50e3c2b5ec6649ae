package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

const (
	DefaultModel       = "claude-sonnet-4-20250514"
	DefaultMaxTokens   = 8000
	DefaultTemperature = 1.0
)

type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	BaseURL     string
	Timeout     time.Duration
}

// Client generates text through the Messages API. It never retries.
type Client struct {
	api         anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
	log         *logger.Logger
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("anthropic: logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing ANTHROPIC_API_KEY")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	return &Client{
		api:         anthropic.NewClient(opts...),
		model:       anthropic.Model(cfg.Model),
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		log:         log.With("client", "AnthropicClient"),
	}, nil
}

func (c *Client) Provider() string { return "anthropic" }

func (c *Client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	c.log.Info("Generating report with Claude API", "model", string(c.model), "max_tokens", c.maxTokens)

	resp, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	return extractText(resp.Content)
}

func extractText(blocks []anthropic.ContentBlockUnion) (string, error) {
	var out strings.Builder
	for _, b := range blocks {
		if b.Type == "text" {
			out.WriteString(b.Text)
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("no text in anthropic response")
	}
	return out.String(), nil
}
