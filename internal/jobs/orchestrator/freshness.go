package orchestrator

import (
	"fmt"
	"os"
	"time"

	"github.com/yungbote/ainews-backend/internal/domain/news"
	"github.com/yungbote/ainews-backend/internal/platform/apperr"
)

type Freshness struct {
	Missing bool
	Path    string
	ModTime time.Time
	Age     time.Duration
	Stale   bool
}

// CheckFreshness locates the newest snapshot and ages it by modification time.
// An artifact exactly threshold old is stale.
func CheckFreshness(dataDir string, threshold time.Duration, now time.Time) (Freshness, error) {
	path, err := news.LatestSnapshotPath(dataDir)
	if err != nil {
		if apperr.Is(err, apperr.KindInputMissing) {
			return Freshness{Missing: true}, nil
		}
		return Freshness{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Freshness{Missing: true}, nil
		}
		return Freshness{}, fmt.Errorf("stat snapshot: %w", err)
	}
	age := now.Sub(info.ModTime())
	if age < 0 {
		age = 0
	}
	return Freshness{
		Path:    path,
		ModTime: info.ModTime(),
		Age:     age,
		Stale:   age >= threshold,
	}, nil
}
