package neo4jdb

import (
	"context"
	"testing"

	"github.com/yungbote/ainews-backend/internal/platform/apperr"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

func TestNewEmptyURIIsStoreUnavailable(t *testing.T) {
	_, err := New(context.Background(), logger.Nop(), Config{})
	if !apperr.Is(err, apperr.KindStoreUnavailable) {
		t.Fatalf("kind: want=%q got=%q", apperr.KindStoreUnavailable, apperr.KindOf(err))
	}
	if apperr.HintOf(err) == "" {
		t.Fatalf("expected remediation hint")
	}
}

func TestNewBadSchemeIsStoreUnavailable(t *testing.T) {
	_, err := New(context.Background(), logger.Nop(), Config{URI: "ftp://nowhere"})
	if !apperr.Is(err, apperr.KindStoreUnavailable) {
		t.Fatalf("kind: want=%q got=%q", apperr.KindStoreUnavailable, apperr.KindOf(err))
	}
}

func TestCloseNil(t *testing.T) {
	var c *Client
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close(nil): %v", err)
	}
}
