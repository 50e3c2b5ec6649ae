package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

// ReportBucket mirrors written reports into a GCS bucket.
type ReportBucket struct {
	client *storage.Client
	bucket string
	prefix string
	log    *logger.Logger
}

func NewReportBucket(ctx context.Context, log *logger.Logger, cfg Config) (*ReportBucket, error) {
	if log == nil {
		return nil, fmt.Errorf("gcp: logger required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("gcp: missing REPORT_BUCKET")
	}
	client, err := storage.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("gcp: init storage client: %w", err)
	}
	prefix := strings.Trim(strings.TrimSpace(cfg.Prefix), "/")
	if prefix == "" {
		prefix = "reports"
	}
	return &ReportBucket{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    log.With("client", "ReportBucket", "bucket", bucket),
	}, nil
}

// ObjectKey is where a report named name is stored.
func ObjectKey(prefix, name string) string {
	return path.Join(prefix, name)
}

func (b *ReportBucket) Upload(ctx context.Context, name string, body []byte) (string, error) {
	key := ObjectKey(b.prefix, name)
	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentTypeForKey(key)
	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcp: write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcp: close %s: %w", key, err)
	}
	url := fmt.Sprintf("gs://%s/%s", b.bucket, key)
	b.log.Info("Report mirrored", "url", url)
	return url, nil
}

func (b *ReportBucket) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Close()
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
