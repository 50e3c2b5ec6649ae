package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveReport("fallback")
	m.ObserveLLMRequest("anthropic", nil, time.Second)
	m.ObserveStep("report", "ok", time.Second)
	m.ObserveIngestedPost(true)
	m.ObserveCycle("weekly", "ran")
	m.SetSnapshotAge(time.Hour)
	if m.Registry() != nil {
		t.Fatalf("nil metrics: want nil registry")
	}
}

func TestMetricsCount(t *testing.T) {
	m := NewMetrics("ainews_test")
	m.ObserveReport("primary")
	m.ObserveReport("fallback")
	m.ObserveReport("fallback")
	if got := testutil.ToFloat64(m.reports.WithLabelValues("fallback")); got != 2 {
		t.Fatalf("fallback reports: want=2 got=%v", got)
	}
	m.ObserveLLMRequest("anthropic", errors.New("boom"), time.Second)
	if got := testutil.ToFloat64(m.llmRequests.WithLabelValues("anthropic", "error")); got != 1 {
		t.Fatalf("llm errors: want=1 got=%v", got)
	}
	m.ObserveIngestedPost(false)
	if got := testutil.ToFloat64(m.ingestPosts.WithLabelValues("failed")); got != 1 {
		t.Fatalf("failed posts: want=1 got=%v", got)
	}
}

func TestParseHeaders(t *testing.T) {
	h := parseHeaders("api-key=abc, x=1 ,bad,=v")
	if len(h) != 2 || h["api-key"] != "abc" || h["x"] != "1" {
		t.Fatalf("parseHeaders: got=%v", h)
	}
	if parseHeaders("  ") != nil {
		t.Fatalf("parseHeaders: want nil for blank")
	}
}
