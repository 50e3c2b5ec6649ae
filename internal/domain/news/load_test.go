package news

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/ainews-backend/internal/platform/apperr"
)

const sampleSnapshot = `{
  "collectedAt": "2026-01-14T08:00:00.000Z",
  "source": "timeline",
  "tweetCount": 2,
  "tweets": [
    {"index": 0, "author": "alice", "text": "New transformer model beats GPT benchmarks", "timestamp": "2026-01-14T07:00:00.000Z", "urls": []},
    {"index": 1, "author": "bob", "text": "lunch", "timestamp": "2026-01-14T07:30:00.000Z",
     "urls": ["https://example.com/a"],
     "linkedContent": [{"url": "https://example.com/a", "title": "A", "description": "d", "content": "body"}]}
  ]
}`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "20260114_timeline.json", sampleSnapshot)

	snap, err := LoadSnapshot(p)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Date != "20260114" {
		t.Fatalf("Date: want=%q got=%q", "20260114", snap.Date)
	}
	if snap.DisplayDate() != "2026-01-14" {
		t.Fatalf("DisplayDate: want=%q got=%q", "2026-01-14", snap.DisplayDate())
	}
	if len(snap.Posts) != 2 {
		t.Fatalf("posts: want=2 got=%d", len(snap.Posts))
	}
	if got := snap.PostID(snap.Posts[1]); got != "20260114_1" {
		t.Fatalf("PostID: want=%q got=%q", "20260114_1", got)
	}
	if snap.Posts[1].LinkedContent[0].URL != "https://example.com/a" {
		t.Fatalf("linked url: got=%q", snap.Posts[1].LinkedContent[0].URL)
	}
	if snap.Username != "unknown" {
		t.Fatalf("Username default: want=unknown got=%q", snap.Username)
	}
}

func TestParseSnapshotDefaults(t *testing.T) {
	snap, err := ParseSnapshot("20260114", []byte(`{"timestamp":"2026-01-14T00:00:00Z","tweets":[]}`))
	if err != nil {
		t.Fatalf("ParseSnapshot: %v", err)
	}
	if snap.Source != "unknown" {
		t.Fatalf("Source: want=unknown got=%q", snap.Source)
	}
	if snap.CollectedAt != "2026-01-14T00:00:00Z" {
		t.Fatalf("CollectedAt: want timestamp fallback got=%q", snap.CollectedAt)
	}
	if snap.TweetCount != 0 {
		t.Fatalf("TweetCount: want=0 got=%d", snap.TweetCount)
	}
}

func TestParseSnapshotMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing tweets", `{"source":"x"}`},
		{"missing index", `{"tweets":[{"author":"a","text":"t"}]}`},
		{"missing text", `{"tweets":[{"index":0,"author":"a"}]}`},
		{"article without url", `{"tweets":[{"index":0,"author":"a","text":"t","linkedContent":[{"title":"x"}]}]}`},
		{"duplicate index", `{"tweets":[{"index":0,"author":"a","text":"t"},{"index":0,"author":"b","text":"u"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSnapshot("20260114", []byte(tc.body))
			if err == nil {
				t.Fatalf("ParseSnapshot: expected error")
			}
			if !apperr.Is(err, apperr.KindInputMalformed) {
				t.Fatalf("kind: want=%q got=%q (%v)", apperr.KindInputMalformed, apperr.KindOf(err), err)
			}
		})
	}
}

func TestParseSnapshotValidationNamesField(t *testing.T) {
	_, err := ParseSnapshot("20260114", []byte(`{"tweets":[{"author":"a","text":"t"}]}`))
	if err == nil || !strings.Contains(err.Error(), "Index") {
		t.Fatalf("expected field name in error, got=%v", err)
	}
}

func TestLatestSnapshotPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20260107_timeline.json", sampleSnapshot)
	writeFile(t, dir, "20260114_timeline.json", sampleSnapshot)
	writeFile(t, dir, "notes.txt", "ignored")

	got, err := LatestSnapshotPath(dir)
	if err != nil {
		t.Fatalf("LatestSnapshotPath: %v", err)
	}
	if filepath.Base(got) != "20260114_timeline.json" {
		t.Fatalf("latest: want=%q got=%q", "20260114_timeline.json", filepath.Base(got))
	}
}

func TestLatestSnapshotPathEmpty(t *testing.T) {
	_, err := LatestSnapshotPath(t.TempDir())
	if !apperr.Is(err, apperr.KindInputMissing) {
		t.Fatalf("kind: want=%q got=%q", apperr.KindInputMissing, apperr.KindOf(err))
	}
	if apperr.HintOf(err) == "" {
		t.Fatalf("expected remediation hint")
	}
}

func TestDateFromPath(t *testing.T) {
	if d, err := DateFromPath("/data/tweets/20260114_goromian.json"); err != nil || d != "20260114" {
		t.Fatalf("DateFromPath: want=20260114 got=%q err=%v", d, err)
	}
	if _, err := DateFromPath("/data/tweets/latest.json"); !apperr.Is(err, apperr.KindInputMalformed) {
		t.Fatalf("DateFromPath: expected malformed, got=%v", err)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "20260114_x.json"))
	if !apperr.Is(err, apperr.KindInputMissing) {
		t.Fatalf("kind: want=%q got=%q", apperr.KindInputMissing, apperr.KindOf(err))
	}
}
