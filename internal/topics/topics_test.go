package topics

import (
	"reflect"
	"strings"
	"testing"

	"github.com/yungbote/ainews-backend/internal/domain/news"
)

func snapshot(posts ...news.Post) *news.Snapshot {
	return &news.Snapshot{Date: "20260114", Source: "timeline", Posts: posts}
}

func TestFilterWorkedExample(t *testing.T) {
	snap := snapshot(news.Post{Index: 0, Author: "alice", Text: "New transformer model beats GPT benchmarks"})
	items := Filter(snap)
	if len(items) != 1 {
		t.Fatalf("relevant: want=1 got=%d", len(items))
	}
	if items[0].Author != "alice" {
		t.Fatalf("author: want=alice got=%q", items[0].Author)
	}
}

func TestFilterNothingRelevant(t *testing.T) {
	snap := snapshot(
		news.Post{Index: 0, Author: "a", Text: "Lunch with friends"},
		news.Post{Index: 1, Author: "b", Text: "Good morning"},
	)
	items := Filter(snap)
	if items == nil || len(items) != 0 {
		t.Fatalf("want empty non-nil result, got=%v", items)
	}
}

func TestFilterLinkedContentAlwaysRelevant(t *testing.T) {
	snap := snapshot(news.Post{Index: 0, Author: "a", Text: "look", LinkedContent: []news.LinkedArticle{{URL: "https://x.test"}}})
	if got := len(Filter(snap)); got != 1 {
		t.Fatalf("relevant: want=1 got=%d", got)
	}
}

func TestFilterSubstringOverMatch(t *testing.T) {
	// "said" contains "ai": accepted false positive.
	snap := snapshot(news.Post{Index: 0, Author: "a", Text: "She said hello"})
	if got := len(Filter(snap)); got != 1 {
		t.Fatalf("substring semantics: want=1 got=%d", got)
	}
}

func TestFilterNonLatinKeyword(t *testing.T) {
	snap := snapshot(news.Post{Index: 0, Author: "a", Text: "メタバースで会おう"})
	if got := len(Filter(snap)); got != 1 {
		t.Fatalf("japanese keyword: want=1 got=%d", got)
	}
}

func TestFilterTruncatesArticleContent(t *testing.T) {
	long := strings.Repeat("あ", 800)
	snap := snapshot(news.Post{Index: 0, Author: "a", Text: "x", LinkedContent: []news.LinkedArticle{{URL: "u", Content: long}}})
	items := Filter(snap)
	got := items[0].LinkedContent[0].Content
	if n := len([]rune(got)); n != 500 {
		t.Fatalf("excerpt runes: want=500 got=%d", n)
	}
	if !strings.HasPrefix(long, got) {
		t.Fatalf("excerpt must be a prefix of the content")
	}
}

func TestFilterDeterministicOrder(t *testing.T) {
	snap := snapshot(
		news.Post{Index: 0, Author: "a", Text: "OpenAI ships"},
		news.Post{Index: 1, Author: "b", Text: "nothing"},
		news.Post{Index: 2, Author: "c", Text: "Unity update"},
	)
	first := Filter(snap)
	second := Filter(snap)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Filter not deterministic")
	}
	if len(first) != 2 || first[0].Author != "a" || first[1].Author != "c" {
		t.Fatalf("order: got=%+v", first)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abc", 5); got != "abc" {
		t.Fatalf("short: got=%q", got)
	}
	if got := Truncate("日本語テキスト", 3); got != "日本語" {
		t.Fatalf("runes: got=%q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("zero: got=%q", got)
	}
}

func TestTagWorkedExample(t *testing.T) {
	got := Tag("New transformer model beats GPT benchmarks")
	want := []Topic{TopicAI, TopicGPT}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tag: want=%v got=%v", want, got)
	}
}

func TestTagMultipleTopicsOnce(t *testing.T) {
	got := Tag("AI and more AI: ChatGPT, Claude, LLM coding in Unity with WebGL")
	want := []Topic{TopicAI, TopicUnity, TopicWebGL, TopicGPT, TopicDevelopment}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tag: want=%v got=%v", want, got)
	}
}

func TestTagIdempotentAndClosed(t *testing.T) {
	allowed := map[Topic]bool{}
	for _, tp := range Taxonomy() {
		allowed[tp] = true
	}
	texts := []string{"", "VR quest metaverse", "開発中のメタバース", "augmented reality glasses", "plain"}
	for _, text := range texts {
		first := Tag(text)
		for i := 0; i < 3; i++ {
			if !reflect.DeepEqual(first, Tag(text)) {
				t.Fatalf("Tag(%q) not idempotent", text)
			}
		}
		for _, tp := range first {
			if !allowed[tp] {
				t.Fatalf("Tag(%q) produced %q outside taxonomy", text, tp)
			}
		}
	}
}

func TestTagCaseInsensitive(t *testing.T) {
	if !reflect.DeepEqual(Tag("WEBGL"), Tag("webgl")) {
		t.Fatalf("Tag must lower-case its input")
	}
}

func TestTagNoBareARVariant(t *testing.T) {
	for _, tp := range Tag("benchmarks start early") {
		if tp == TopicVRAR {
			t.Fatalf("bare \"ar\" substring must not tag VR/AR")
		}
	}
}
