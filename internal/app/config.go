package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/ainews-backend/internal/jobs/orchestrator"
	"github.com/yungbote/ainews-backend/internal/observability"
	"github.com/yungbote/ainews-backend/internal/platform/anthropic"
	"github.com/yungbote/ainews-backend/internal/platform/apperr"
	"github.com/yungbote/ainews-backend/internal/platform/envutil"
	"github.com/yungbote/ainews-backend/internal/platform/gcp"
	"github.com/yungbote/ainews-backend/internal/platform/neo4jdb"
	"github.com/yungbote/ainews-backend/internal/platform/openai"
	"github.com/yungbote/ainews-backend/internal/platform/sendgrid"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	StepModeInProcess = "inprocess"
	StepModeProcess   = "process"

	DefaultNeo4jURI      = "bolt://localhost:7687"
	DefaultNeo4jUser     = "neo4j"
	DefaultNeo4jPassword = "password"
)

type Config struct {
	LogMode          string
	DisableRedaction bool
	LogHashSalt      string

	DataDir    string
	ReportsDir string

	LLMProvider string
	Anthropic   anthropic.Config
	OpenAI      openai.Config

	Neo4j neo4jdb.Config
	// NeoConfigured is true only when NEO4J_URI is explicitly set. The
	// scheduler skips ingestion otherwise; the ingest command always tries.
	NeoConfigured bool

	Scheduler SchedulerConfig
	Notify    NotifyConfig

	RunLedgerDSN string
	StatusAddr   string
	CORSOrigins  []string

	ReportBucket gcp.Config
	Otel         observability.OtelConfig
}

type SchedulerConfig struct {
	FreshnessThreshold time.Duration
	StepTimeout        time.Duration
	PollInterval       time.Duration
	WeeklySpec         string
	DailySpec          string
	Timezone           string
	StepMode           string
	ReportBin          string
	IngestBin          string
}

type NotifyConfig struct {
	TelegramToken  string
	TelegramChatID int64
	RedisURL       string
	RedisChannel   string
	SendGrid       sendgrid.Config
	EmailTo        []string
}

// fileConfig is the optional YAML base layer. Environment variables win.
type fileConfig struct {
	LogMode    string `yaml:"log_mode"`
	DataDir    string `yaml:"data_dir"`
	ReportsDir string `yaml:"reports_dir"`

	LLM struct {
		Provider    string   `yaml:"provider"`
		Model       string   `yaml:"model"`
		MaxTokens   int      `yaml:"max_tokens"`
		Temperature *float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Neo4j struct {
		URI      string `yaml:"uri"`
		User     string `yaml:"user"`
		Database string `yaml:"database"`
	} `yaml:"neo4j"`

	Scheduler struct {
		FreshnessHours float64 `yaml:"freshness_hours"`
		StepTimeoutSec int     `yaml:"step_timeout_seconds"`
		PollSec        int     `yaml:"poll_interval_seconds"`
		WeeklyCron     string  `yaml:"weekly_cron"`
		DailyCron      string  `yaml:"daily_cron"`
		Timezone       string  `yaml:"timezone"`
		StepMode       string  `yaml:"step_mode"`
	} `yaml:"scheduler"`

	Notify struct {
		TelegramChatID int64    `yaml:"telegram_chat_id"`
		RedisChannel   string   `yaml:"redis_channel"`
		EmailTo        []string `yaml:"email_to"`
		EmailFrom      string   `yaml:"email_from"`
	} `yaml:"notify"`

	RunLedgerDSN string   `yaml:"run_ledger_dsn"`
	StatusAddr   string   `yaml:"status_addr"`
	CORSOrigins  []string `yaml:"cors_origins"`
	ReportBucket string   `yaml:"report_bucket"`
}

// LoadConfig reads .env (if present), the optional YAML file named by
// AINEWS_CONFIG_FILE, then environment overrides.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, apperr.WithHint(apperr.KindConfigInvalid, "fix or remove the .env file", fmt.Errorf("load .env: %w", err))
	}
	var fc fileConfig
	if path := envutil.String("AINEWS_CONFIG_FILE", ""); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, apperr.WithHint(apperr.KindConfigInvalid, "AINEWS_CONFIG_FILE must point to a readable YAML file", fmt.Errorf("read config file: %w", err))
		}
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return Config{}, apperr.WithHint(apperr.KindConfigInvalid, "AINEWS_CONFIG_FILE is not valid YAML", fmt.Errorf("parse config file %s: %w", path, err))
		}
	}
	return fromEnv(fc)
}

func fromEnv(fc fileConfig) (Config, error) {
	cfg := Config{
		LogMode:          envutil.String("LOG_MODE", or(fc.LogMode, "development")),
		DisableRedaction: envutil.Bool("LOG_DISABLE_REDACTION", false),
		LogHashSalt:      envutil.String("LOG_HASH_SALT", ""),
		DataDir:          envutil.String("DATA_DIR", or(fc.DataDir, "data/tweets")),
		ReportsDir:       envutil.String("REPORTS_DIR", or(fc.ReportsDir, "reports")),
		LLMProvider:      strings.ToLower(envutil.String("LLM_PROVIDER", or(fc.LLM.Provider, ProviderAnthropic))),
		RunLedgerDSN:     envutil.String("RUN_LEDGER_DSN", fc.RunLedgerDSN),
		StatusAddr:       envutil.String("STATUS_ADDR", fc.StatusAddr),
		CORSOrigins:      splitList(envutil.String("CORS_ALLOWED_ORIGINS", strings.Join(fc.CORSOrigins, ","))),
	}

	temp := anthropic.DefaultTemperature
	if fc.LLM.Temperature != nil {
		temp = *fc.LLM.Temperature
	}
	switch cfg.LLMProvider {
	case ProviderAnthropic:
		cfg.Anthropic = anthropic.Config{
			APIKey:      envutil.String("ANTHROPIC_API_KEY", ""),
			Model:       envutil.String("ANTHROPIC_MODEL", or(fc.LLM.Model, anthropic.DefaultModel)),
			MaxTokens:   envutil.Int("LLM_MAX_TOKENS", orInt(fc.LLM.MaxTokens, anthropic.DefaultMaxTokens)),
			Temperature: envutil.Float("LLM_TEMPERATURE", temp),
			BaseURL:     envutil.String("ANTHROPIC_BASE_URL", ""),
			Timeout:     envutil.Seconds("LLM_TIMEOUT_SECONDS", 120*time.Second),
		}
	case ProviderOpenAI:
		t := envutil.Float("LLM_TEMPERATURE", temp)
		cfg.OpenAI = openai.Config{
			APIKey:      envutil.String("OPENAI_API_KEY", ""),
			BaseURL:     envutil.String("OPENAI_BASE_URL", ""),
			Model:       envutil.String("OPENAI_MODEL", fc.LLM.Model),
			MaxTokens:   envutil.Int("LLM_MAX_TOKENS", orInt(fc.LLM.MaxTokens, anthropic.DefaultMaxTokens)),
			Temperature: &t,
			Timeout:     envutil.Seconds("LLM_TIMEOUT_SECONDS", 120*time.Second),
		}
	default:
		return Config{}, apperr.WithHint(apperr.KindConfigInvalid, "set LLM_PROVIDER to anthropic or openai",
			fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider))
	}

	cfg.NeoConfigured = envutil.Set("NEO4J_URI") || strings.TrimSpace(fc.Neo4j.URI) != ""
	cfg.Neo4j = neo4jdb.Config{
		URI:         envutil.String("NEO4J_URI", or(fc.Neo4j.URI, DefaultNeo4jURI)),
		User:        envutil.String("NEO4J_USER", or(fc.Neo4j.User, DefaultNeo4jUser)),
		Password:    envutil.String("NEO4J_PASSWORD", DefaultNeo4jPassword),
		Database:    envutil.String("NEO4J_DATABASE", fc.Neo4j.Database),
		Timeout:     envutil.Seconds("NEO4J_TIMEOUT_SECONDS", 10*time.Second),
		MaxPoolSize: envutil.Int("NEO4J_MAX_POOL_SIZE", 10),
	}

	sc := fc.Scheduler
	cfg.Scheduler = SchedulerConfig{
		FreshnessThreshold: envutil.Hours("FRESHNESS_HOURS", hours(sc.FreshnessHours, orchestrator.DefaultFreshnessThreshold)),
		StepTimeout:        envutil.Seconds("STEP_TIMEOUT_SECONDS", seconds(sc.StepTimeoutSec, orchestrator.DefaultStepTimeout)),
		PollInterval:       envutil.Seconds("POLL_INTERVAL_SECONDS", seconds(sc.PollSec, orchestrator.DefaultPollInterval)),
		WeeklySpec:         envutil.String("WEEKLY_CRON", or(sc.WeeklyCron, orchestrator.DefaultWeeklySpec)),
		DailySpec:          envutil.String("DAILY_CRON", or(sc.DailyCron, orchestrator.DefaultDailySpec)),
		Timezone:           envutil.String("TZ", sc.Timezone),
		StepMode:           strings.ToLower(envutil.String("STEP_MODE", or(sc.StepMode, StepModeInProcess))),
		ReportBin:          envutil.String("REPORT_BIN", "report"),
		IngestBin:          envutil.String("INGEST_BIN", "ingest"),
	}
	if cfg.Scheduler.StepMode != StepModeInProcess && cfg.Scheduler.StepMode != StepModeProcess {
		return Config{}, apperr.WithHint(apperr.KindConfigInvalid, "set STEP_MODE to inprocess or process",
			fmt.Errorf("unknown step mode %q", cfg.Scheduler.StepMode))
	}

	chatID := fc.Notify.TelegramChatID
	if raw := envutil.String("TELEGRAM_CHAT_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, apperr.WithHint(apperr.KindConfigInvalid, "TELEGRAM_CHAT_ID must be a numeric chat id",
				fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err))
		}
		chatID = id
	}
	cfg.Notify = NotifyConfig{
		TelegramToken:  envutil.String("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: chatID,
		RedisURL:       envutil.String("REDIS_URL", ""),
		RedisChannel:   envutil.String("REDIS_CHANNEL", fc.Notify.RedisChannel),
		SendGrid: sendgrid.Config{
			APIKey:           envutil.String("SENDGRID_API_KEY", ""),
			BaseURL:          envutil.String("SENDGRID_BASE_URL", ""),
			DefaultFromEmail: envutil.String("SENDGRID_FROM_EMAIL", fc.Notify.EmailFrom),
			DefaultFromName:  envutil.String("SENDGRID_FROM_NAME", "AI News"),
			Timeout:          envutil.Seconds("SENDGRID_TIMEOUT_SECONDS", 15*time.Second),
			MaxRetries:       envutil.Int("SENDGRID_MAX_RETRIES", 2),
		},
		EmailTo: splitList(envutil.String("NOTIFY_EMAIL_TO", strings.Join(fc.Notify.EmailTo, ","))),
	}

	cfg.ReportBucket = gcp.Config{
		Bucket:       envutil.String("REPORT_BUCKET", fc.ReportBucket),
		Prefix:       envutil.String("REPORT_BUCKET_PREFIX", "reports"),
		Credentials:  envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),
		EmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
	}

	cfg.Otel = observability.OtelConfig{
		Enabled:     envutil.Bool("OTEL_ENABLED", false),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "ainews"),
		Environment: envutil.String("OTEL_ENVIRONMENT", cfg.LogMode),
		Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
	}
	return cfg, nil
}

// Location resolves the scheduler timezone; empty means local time.
func (c SchedulerConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, apperr.WithHint(apperr.KindConfigInvalid, "set TZ to an IANA zone such as Europe/Berlin",
			fmt.Errorf("load timezone %q: %w", c.Timezone, err))
	}
	return loc, nil
}

func or(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func hours(h float64, def time.Duration) time.Duration {
	if h <= 0 {
		return def
	}
	return time.Duration(h * float64(time.Hour))
}

func seconds(s int, def time.Duration) time.Duration {
	if s <= 0 {
		return def
	}
	return time.Duration(s) * time.Second
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
