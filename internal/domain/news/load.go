package news

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/ainews-backend/internal/platform/apperr"
)

const collectHint = "collect tweets with the browser extension (open https://x.com/home, click 'Collect Tweets from Timeline') or pass a snapshot path"

var validate = validator.New()

type snapshotWire struct {
	CollectedAt string     `json:"collectedAt"`
	Timestamp   string     `json:"timestamp"`
	Source      string     `json:"source"`
	Username    string     `json:"username"`
	TweetCount  *int       `json:"tweetCount" validate:"omitempty,gte=0"`
	Tweets      []postWire `json:"tweets" validate:"required,dive"`
}

type postWire struct {
	Index         *int          `json:"index" validate:"required,gte=0"`
	Author        *string       `json:"author" validate:"required"`
	Text          *string       `json:"text" validate:"required"`
	Timestamp     string        `json:"timestamp"`
	URLs          []string      `json:"urls"`
	LinkedContent []articleWire `json:"linkedContent" validate:"dive"`
}

type articleWire struct {
	URL         string `json:"url" validate:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// LatestSnapshotPath returns the newest snapshot in dir by reverse name sort.
func LatestSnapshotPath(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", apperr.WithHint(apperr.KindInputMissing, collectHint, fmt.Errorf("scan %s: %w", dir, err))
	}
	if len(matches) == 0 {
		return "", apperr.WithHint(apperr.KindInputMissing, collectHint, fmt.Errorf("no tweet data files found in %s", dir))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches[0], nil
}

// DateFromPath extracts the 8-digit date prefix of a snapshot file name.
func DateFromPath(path string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	date, _, _ := strings.Cut(stem, "_")
	if !validDate8(date) {
		return "", apperr.WithHint(apperr.KindInputMalformed,
			"snapshot files must be named <YYYYMMDD>_<source>.json",
			fmt.Errorf("snapshot %s: no 8-digit date prefix", filepath.Base(path)))
	}
	return date, nil
}

func LoadSnapshot(path string) (*Snapshot, error) {
	date, err := DateFromPath(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.WithHint(apperr.KindInputMissing, collectHint, fmt.Errorf("snapshot %s: %w", path, err))
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	snap, err := ParseSnapshot(date, raw)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", filepath.Base(path), err)
	}
	return snap, nil
}

// ParseSnapshot decodes and validates the collector's JSON shape.
func ParseSnapshot(date string, raw []byte) (*Snapshot, error) {
	if !validDate8(date) {
		return nil, apperr.Newf(apperr.KindInputMalformed, "invalid snapshot date %q", date)
	}
	var w snapshotWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, apperr.WithHint(apperr.KindInputMalformed, "re-export the snapshot from the collector", fmt.Errorf("decode: %w", err))
	}
	if err := validate.Struct(&w); err != nil {
		return nil, apperr.WithHint(apperr.KindInputMalformed, "re-export the snapshot from the collector", describeValidation(err))
	}

	snap := &Snapshot{
		Date:        date,
		CollectedAt: w.CollectedAt,
		Source:      w.Source,
		Username:    w.Username,
		Posts:       make([]Post, 0, len(w.Tweets)),
	}
	if snap.CollectedAt == "" {
		snap.CollectedAt = w.Timestamp
	}
	if snap.Source == "" {
		snap.Source = "unknown"
	}
	if snap.Username == "" {
		snap.Username = "unknown"
	}
	if w.TweetCount != nil {
		snap.TweetCount = *w.TweetCount
	} else {
		snap.TweetCount = len(w.Tweets)
	}

	seen := make(map[int]struct{}, len(w.Tweets))
	for i, pw := range w.Tweets {
		if _, dup := seen[*pw.Index]; dup {
			return nil, apperr.Newf(apperr.KindInputMalformed, "tweets[%d]: duplicate index %d", i, *pw.Index)
		}
		seen[*pw.Index] = struct{}{}

		p := Post{
			Index:     *pw.Index,
			Author:    *pw.Author,
			Text:      *pw.Text,
			Timestamp: pw.Timestamp,
			URLs:      pw.URLs,
		}
		for _, aw := range pw.LinkedContent {
			p.LinkedContent = append(p.LinkedContent, LinkedArticle{
				URL:         aw.URL,
				Title:       aw.Title,
				Description: aw.Description,
				Content:     aw.Content,
			})
		}
		snap.Posts = append(snap.Posts, p)
	}
	return snap, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid snapshot: %s", strings.Join(parts, "; "))
}
