// Package fetcher downloads remote dataset archives with rate limiting and
// retry, and extracts ZIP archives into the data directory.
package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RatePerSec float64
}

// HTTPFetcher implements rate-limited downloads with retry.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "atlas-cli/1.0"
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 2
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout, Transport: transport},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
	}
}

// Fetch downloads a URL and returns the response body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.doWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body from %s", url)
	}
	return data, nil
}

// Download fetches a URL and writes it to destDir, named after the URL's
// final path segment. Returns the written file path.
func (f *HTTPFetcher) Download(ctx context.Context, url, destDir string) (string, error) {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "fetcher: create dest dir %s", destDir)
	}

	name := filepath.Base(url)
	if name == "." || name == "/" {
		name = "download"
	}
	dest := filepath.Join(destDir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "fetcher: write %s", dest)
	}

	zap.L().Info("fetcher: downloaded",
		zap.String("url", url),
		zap.String("dest", dest),
		zap.Int("bytes", len(data)),
	)
	return dest, nil
}

func (f *HTTPFetcher) doWithRetry(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < f.opts.MaxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: build request for %s", url)
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("fetcher: request failed, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("fetcher: %s returned %d", url, resp.StatusCode)
			f.backoff(ctx, attempt)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, eris.Errorf("fetcher: %s returned %d", url, resp.StatusCode)
		}

		return resp, nil
	}
	return nil, eris.Wrapf(lastErr, "fetcher: %s failed after %d attempts", url, f.opts.MaxRetries)
}

// backoff sleeps with exponential backoff and jitter, honoring cancellation.
func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	base := time.Duration(math.Pow(2, float64(attempt))) * 500 * time.Millisecond
	jitter := time.Duration(rand.Int64N(int64(base / 2)))
	select {
	case <-time.After(base + jitter):
	case <-ctx.Done():
	}
}
