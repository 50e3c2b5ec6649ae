package gcp

import "testing"

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("reports", "ai_news_20260114.md"); got != "reports/ai_news_20260114.md" {
		t.Fatalf("ObjectKey: got=%q", got)
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := contentTypeForKey("reports/ai_news_20260114.md"); got != "text/markdown; charset=utf-8" {
		t.Fatalf("markdown: got=%q", got)
	}
	if got := contentTypeForKey("x.bin"); got != "application/octet-stream" {
		t.Fatalf("default: got=%q", got)
	}
}

func TestClientOptions(t *testing.T) {
	if opts := clientOptions(Config{}); opts != nil {
		t.Fatalf("no creds: want nil options, got=%d", len(opts))
	}
	if opts := clientOptions(Config{EmulatorHost: "http://fake-gcs:4443"}); len(opts) != 2 {
		t.Fatalf("emulator: want=2 options got=%d", len(opts))
	}
	if opts := clientOptions(Config{Credentials: `{"type":"service_account"}`}); len(opts) != 1 {
		t.Fatalf("json creds: want=1 option got=%d", len(opts))
	}
}
