package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/ainews-backend/internal/platform/apperr"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AINEWS_CONFIG_FILE", "LOG_MODE", "DATA_DIR", "REPORTS_DIR", "LLM_PROVIDER",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD",
		"FRESHNESS_HOURS", "STEP_TIMEOUT_SECONDS", "POLL_INTERVAL_SECONDS", "WEEKLY_CRON",
		"DAILY_CRON", "TZ", "STEP_MODE", "TELEGRAM_CHAT_ID", "NOTIFY_EMAIL_TO", "RUN_LEDGER_DSN",
		"CORS_ALLOWED_ORIGINS", "REPORT_BUCKET", "STATUS_ADDR", "OPENAI_MODEL", "LLM_TEMPERATURE",
	} {
		t.Setenv(k, "")
	}
	// godotenv reads .env from the working directory.
	wd, _ := os.Getwd()
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataDir != "data/tweets" {
		t.Fatalf("DataDir: want=%q got=%q", "data/tweets", cfg.DataDir)
	}
	if cfg.ReportsDir != "reports" {
		t.Fatalf("ReportsDir: want=%q got=%q", "reports", cfg.ReportsDir)
	}
	if cfg.LLMProvider != ProviderAnthropic {
		t.Fatalf("LLMProvider: want=%q got=%q", ProviderAnthropic, cfg.LLMProvider)
	}
	if cfg.Neo4j.URI != DefaultNeo4jURI || cfg.Neo4j.User != DefaultNeo4jUser || cfg.Neo4j.Password != DefaultNeo4jPassword {
		t.Fatalf("neo4j defaults: got=%+v", cfg.Neo4j)
	}
	if cfg.NeoConfigured {
		t.Fatalf("NeoConfigured: want=false")
	}
	if cfg.Scheduler.FreshnessThreshold != 24*time.Hour {
		t.Fatalf("FreshnessThreshold: want=24h got=%s", cfg.Scheduler.FreshnessThreshold)
	}
	if cfg.Scheduler.StepTimeout != 300*time.Second {
		t.Fatalf("StepTimeout: want=300s got=%s", cfg.Scheduler.StepTimeout)
	}
	if cfg.Scheduler.PollInterval != 60*time.Second {
		t.Fatalf("PollInterval: want=60s got=%s", cfg.Scheduler.PollInterval)
	}
	if cfg.Scheduler.StepMode != StepModeInProcess {
		t.Fatalf("StepMode: want=%q got=%q", StepModeInProcess, cfg.Scheduler.StepMode)
	}
	if cfg.StatusAddr != "" || cfg.RunLedgerDSN != "" {
		t.Fatalf("optional surfaces should be off by default: status=%q ledger=%q", cfg.StatusAddr, cfg.RunLedgerDSN)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEO4J_URI", "bolt://graph:7687")
	t.Setenv("FRESHNESS_HOURS", "12")
	t.Setenv("STEP_TIMEOUT_SECONDS", "30")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("NOTIFY_EMAIL_TO", "a@example.com, b@example.com,")
	t.Setenv("STEP_MODE", "Process")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.NeoConfigured || cfg.Neo4j.URI != "bolt://graph:7687" {
		t.Fatalf("neo4j: configured=%v uri=%q", cfg.NeoConfigured, cfg.Neo4j.URI)
	}
	if cfg.Scheduler.FreshnessThreshold != 12*time.Hour {
		t.Fatalf("FreshnessThreshold: want=12h got=%s", cfg.Scheduler.FreshnessThreshold)
	}
	if cfg.Scheduler.StepTimeout != 30*time.Second {
		t.Fatalf("StepTimeout: want=30s got=%s", cfg.Scheduler.StepTimeout)
	}
	if cfg.Notify.TelegramChatID != -100123 {
		t.Fatalf("TelegramChatID: want=-100123 got=%d", cfg.Notify.TelegramChatID)
	}
	if len(cfg.Notify.EmailTo) != 2 || cfg.Notify.EmailTo[1] != "b@example.com" {
		t.Fatalf("EmailTo: got=%q", cfg.Notify.EmailTo)
	}
	if cfg.Scheduler.StepMode != StepModeProcess {
		t.Fatalf("StepMode: want=%q got=%q", StepModeProcess, cfg.Scheduler.StepMode)
	}
}

func TestLoadConfigYAMLBaseWithEnvPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ainews.yaml")
	body := `
data_dir: /srv/tweets
llm:
  provider: openai
  model: gpt-4.1-mini
scheduler:
  freshness_hours: 6
  weekly_cron: "30 8 * * 1"
notify:
  email_to: [ops@example.com]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("AINEWS_CONFIG_FILE", path)
	t.Setenv("DATA_DIR", "/override/tweets")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataDir != "/override/tweets" {
		t.Fatalf("DataDir: want=%q got=%q", "/override/tweets", cfg.DataDir)
	}
	if cfg.LLMProvider != ProviderOpenAI || cfg.OpenAI.Model != "gpt-4.1-mini" {
		t.Fatalf("llm: provider=%q model=%q", cfg.LLMProvider, cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature == nil || *cfg.OpenAI.Temperature != 1 {
		t.Fatalf("openai temperature should default to 1, got=%v", cfg.OpenAI.Temperature)
	}
	if cfg.Scheduler.FreshnessThreshold != 6*time.Hour {
		t.Fatalf("FreshnessThreshold: want=6h got=%s", cfg.Scheduler.FreshnessThreshold)
	}
	if cfg.Scheduler.WeeklySpec != "30 8 * * 1" {
		t.Fatalf("WeeklySpec: want=%q got=%q", "30 8 * * 1", cfg.Scheduler.WeeklySpec)
	}
	if len(cfg.Notify.EmailTo) != 1 || cfg.Notify.EmailTo[0] != "ops@example.com" {
		t.Fatalf("EmailTo: got=%q", cfg.Notify.EmailTo)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"provider", map[string]string{"LLM_PROVIDER": "cohere"}},
		{"step mode", map[string]string{"STEP_MODE": "threads"}},
		{"chat id", map[string]string{"TELEGRAM_CHAT_ID": "ops-channel"}},
		{"config file", map[string]string{"AINEWS_CONFIG_FILE": "/does/not/exist.yaml"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			if !apperr.Is(err, apperr.KindConfigInvalid) {
				t.Fatalf("want config_invalid, got=%v", err)
			}
			if apperr.HintOf(err) == "" {
				t.Fatalf("want a remediation hint")
			}
		})
	}
}

func TestSchedulerLocation(t *testing.T) {
	loc, err := SchedulerConfig{}.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("empty timezone: want local, got=%v err=%v", loc, err)
	}
	loc, err = SchedulerConfig{Timezone: "UTC"}.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("UTC: got=%v err=%v", loc, err)
	}
	if _, err := (SchedulerConfig{Timezone: "Mars/Olympus"}).Location(); !apperr.Is(err, apperr.KindConfigInvalid) {
		t.Fatalf("bad zone: want config_invalid, got=%v", err)
	}
}
