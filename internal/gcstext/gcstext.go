// Package gcstext reads and writes document text in Google Cloud Storage.
package gcstext

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const opTimeout = 2 * time.Minute

// Fetcher wraps a shared storage client. Application Default Credentials
// are assumed (gcloud auth application-default login).
type Fetcher struct {
	client *storage.Client
}

// NewFetcher creates a Fetcher backed by a single storage client.
func NewFetcher(ctx context.Context) (*Fetcher, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Fetcher{client: client}, nil
}

// Close releases the underlying client.
func (f *Fetcher) Close() error {
	return f.client.Close()
}

// FetchText downloads the object at the given gs:// URI and returns its
// contents as text.
func (f *Fetcher) FetchText(ctx context.Context, gcsURI string) (string, error) {
	bucket, object, err := ParseURI(gcsURI)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rc, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("read object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read object bytes: %w", err)
	}
	return string(data), nil
}

// UploadText writes text to bucket/object and returns the resulting gs:// URI.
func (f *Fetcher) UploadText(ctx context.Context, bucket, object, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	w := f.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.WriteString(w, text); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return FormatURI(bucket, object), nil
}

// ParseURI splits a gs://bucket/object URI into bucket and object path.
func ParseURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}
	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}
	return parts[0], parts[1], nil
}

// FormatURI builds a gs:// URI from bucket and object path.
func FormatURI(bucket, object string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, object)
}

// Filename returns the base filename of a gs:// URI.
// e.g. "gs://bucket/folder/extrato.txt" → "extrato.txt".
func Filename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
