// Package topics selects AI/VR/AR posts and tags them against a fixed taxonomy.
//
// All matching is plain substring containment on the lower-cased post text.
// There are no word boundaries, so short keywords over-match ("ai" hits
// "said", "ar" hits "start"). That is accepted: the filter favours recall and
// callers rely on exactly these semantics.
package topics

import (
	"strings"

	"github.com/yungbote/ainews-backend/internal/domain/news"
)

const articleExcerptRunes = 500

// RelevanceKeywords decide whether a post belongs in the report.
var RelevanceKeywords = []string{
	"ai", "gpt", "llm", "machine learning", "deep learning",
	"neural", "transformer", "anthropic", "openai", "claude",
	"gemini", "chatgpt", "vrchat", "unity", "vr", "ar", "xr",
	"metaverse", "webgl", "機械学習", "深層学習", "ディープラーニング",
	"メタバース", "quest",
}

// Item is the report-side view of a relevant post.
type Item struct {
	Author        string
	Text          string
	Timestamp     string
	URLs          []string
	LinkedContent []Article
}

type Article struct {
	URL         string
	Title       string
	Description string
	Content     string // first 500 characters of the extracted text
}

// IsRelevant reports whether a post mentions a keyword or carries linked content.
func IsRelevant(p news.Post) bool {
	return len(p.LinkedContent) > 0 || containsAny(strings.ToLower(p.Text), RelevanceKeywords)
}

// Filter returns the relevant posts of a snapshot in input order.
// An empty result means there is nothing to report.
func Filter(snap *news.Snapshot) []Item {
	if snap == nil {
		return nil
	}
	out := make([]Item, 0, len(snap.Posts))
	for _, p := range snap.Posts {
		if !IsRelevant(p) {
			continue
		}
		it := Item{
			Author:    p.Author,
			Text:      p.Text,
			Timestamp: p.Timestamp,
			URLs:      append([]string(nil), p.URLs...),
		}
		for _, a := range p.LinkedContent {
			it.LinkedContent = append(it.LinkedContent, Article{
				URL:         a.URL,
				Title:       a.Title,
				Description: a.Description,
				Content:     Truncate(a.Content, articleExcerptRunes),
			})
		}
		out = append(out, it)
	}
	return out
}

// Truncate keeps the first n characters (runes) of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
