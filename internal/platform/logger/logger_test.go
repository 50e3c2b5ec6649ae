package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	r := redaction{enabled: true}
	out := r.sanitizeKVs([]interface{}{"neo4j_password", "hunter2", "anthropic_api_key", "sk-ant", "path", "reports/ai_news_20260114.md"})
	if out[1] != "[REDACTED]" {
		t.Fatalf("password: want=[REDACTED] got=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("api key: want=[REDACTED] got=%v", out[3])
	}
	if out[5] != "reports/ai_news_20260114.md" {
		t.Fatalf("path: want passthrough got=%v", out[5])
	}
}

func TestSanitizeKVsHashesRecipients(t *testing.T) {
	r := redaction{enabled: true, salt: "s"}
	out := r.sanitizeKVs([]interface{}{"chat_id", "12345"})
	got, ok := out[1].(string)
	if !ok || len(got) != len("hash:")+12 {
		t.Fatalf("chat_id: want hashed value got=%v", out[1])
	}
}

func TestSanitizeKVsDisabled(t *testing.T) {
	r := redaction{enabled: false}
	out := r.sanitizeKVs([]interface{}{"token", "abc"})
	if out[1] != "abc" {
		t.Fatalf("disabled redaction: want=abc got=%v", out[1])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	r := redaction{enabled: true}
	out := r.sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("odd kv: got=%v", out)
	}
}
