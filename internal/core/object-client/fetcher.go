package objectclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
)

// maxSourceBytes bounds how much of a remote document is read into memory.
const maxSourceBytes = 200 << 20

// Fetcher resolves document URLs: s3://bucket/key and virtual-hosted S3
// https URLs go through the object client, other http(s) URLs are downloaded
// and file:// paths are read from disk.
type Fetcher struct {
	objects core.ObjectClient
	http    *http.Client
}

var _ core.SourceFetcher = (*Fetcher)(nil)

// NewFetcher builds a fetcher. objects may be nil when S3 is not configured.
func NewFetcher(objects core.ObjectClient, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Fetcher{objects: objects, http: client}
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse source url: %w", err)
	}

	if bucket, key, ok := ParseS3URL(u); ok {
		if f.objects == nil {
			return nil, "", fmt.Errorf("fetch %s: object storage not configured", rawURL)
		}
		b, err := f.objects.GetFile(ctx, bucket, key)
		return b, "", err
	}

	switch u.Scheme {
	case "http", "https":
		return f.download(ctx, u.String())
	case "file", "":
		b, err := os.ReadFile(u.Path)
		if err != nil {
			return nil, "", fmt.Errorf("read source file: %w", err)
		}
		return b, "", nil
	}
	return nil, "", fmt.Errorf("unsupported source url scheme %q", u.Scheme)
}

func (f *Fetcher) download(ctx context.Context, u string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download source: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download source: status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("download source: %w", err)
	}
	if len(b) > maxSourceBytes {
		return nil, "", fmt.Errorf("download source: larger than %d bytes", maxSourceBytes)
	}
	return b, resp.Header.Get("Content-Type"), nil
}

// S3URL is the canonical URL stored for uploaded objects.
func S3URL(bucket, key string) string {
	return "s3://" + bucket + "/" + strings.TrimPrefix(key, "/")
}

// ParseS3URL recognizes s3://bucket/key and https://bucket.s3.region.amazonaws.com/key.
func ParseS3URL(u *url.URL) (bucket, key string, ok bool) {
	switch u.Scheme {
	case "s3":
		key = strings.TrimPrefix(u.Path, "/")
		return u.Host, key, u.Host != "" && key != ""
	case "https":
		host := u.Hostname()
		i := strings.Index(host, ".s3.")
		if i <= 0 || !strings.HasSuffix(host, ".amazonaws.com") {
			return "", "", false
		}
		key = strings.TrimPrefix(u.Path, "/")
		return host[:i], key, key != ""
	}
	return "", "", false
}
