package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.AssetFetcher = (*Fetcher)(nil)

// DefaultMaxBytes bounds a downloaded asset body.
const DefaultMaxBytes int64 = 256 << 20

// StatusError is returned for non-2xx responses. It matches domain.ErrIO.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error {
	return domain.ErrIO
}

// Fetcher downloads remote assets over HTTP.
type Fetcher struct {
	client   *http.Client
	limiter  *RateLimiter
	metrics  driven.Metrics
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client. The client timeout is kept as given.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithMaxBytes bounds the downloaded body size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// NewFetcher creates a fetcher paced and bounded by settings.
// metrics may be nil.
func NewFetcher(settings domain.FetchSettings, metrics driven.Metrics, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: settings.Timeout},
		limiter:  NewRateLimiter(settings.RequestsPerSecond, settings.Burst),
		metrics:  metrics,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body served at rawURL.
// Only http and https URLs are fetched.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	data, err := f.fetch(ctx, rawURL)
	if f.metrics != nil {
		f.metrics.AssetFetched(err == nil)
	}
	if err != nil {
		logger.Debug("fetch %s: %v", rawURL, err)
	}
	return data, err
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: cannot fetch %q", domain.ErrInvalidInput, rawURL)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		f.limiter.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrIO, rawURL, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrIO, rawURL, f.maxBytes)
	}
	return data, nil
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		return time.Until(at)
	}
	return 0
}

