package news

import (
	"fmt"
	"time"
)

// Snapshot is one collection run of posts, read from <YYYYMMDD>_<source>.json.
type Snapshot struct {
	Date        string // 8-digit date from the artifact name
	CollectedAt string
	Source      string
	Username    string
	TweetCount  int
	Posts       []Post
}

type Post struct {
	Index         int
	Author        string
	Text          string
	Timestamp     string
	URLs          []string
	LinkedContent []LinkedArticle
}

// LinkedArticle identity is the raw URL string; no normalization is applied.
type LinkedArticle struct {
	URL         string
	Title       string
	Description string
	Content     string
}

// PostID is the graph identity of a post: the same index in two snapshots is two posts.
func PostID(snapshotDate string, index int) string {
	return fmt.Sprintf("%s_%d", snapshotDate, index)
}

func (s *Snapshot) PostID(p Post) string {
	return PostID(s.Date, p.Index)
}

// DisplayDate renders the snapshot date as YYYY-MM-DD.
func (s *Snapshot) DisplayDate() string {
	return DisplayDate(s.Date)
}

func DisplayDate(date8 string) string {
	if len(date8) != 8 {
		return date8
	}
	return date8[:4] + "-" + date8[4:6] + "-" + date8[6:8]
}

// ReportFileName is the Markdown artifact name for a snapshot date.
func ReportFileName(date8 string) string {
	return "ai_news_" + date8 + ".md"
}

func validDate8(s string) bool {
	if len(s) != 8 {
		return false
	}
	_, err := time.Parse("20060102", s)
	return err == nil
}
