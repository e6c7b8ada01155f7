// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/j-mckerracher/comp-sys-rankings/internal/httputil"
)

// HTTPSource downloads the dataset document from a fixed URL and stores it
// under today's dated file name.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Logger *zap.Logger
	Now    func() time.Time
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, dir string) (string, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, client, req, httputil.RetryOptions{Logger: s.Logger})
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", s.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: HTTP %d", s.URL, resp.StatusCode)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dataset directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing download: %w", err)
	}

	dst := filepath.Join(dir, FileName(now()))
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("placing download: %w", err)
	}
	return dst, nil
}
