package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/validation"
)

const (
	defaultUserAgent = "reel/1.0 (https://github.com/pders01/reel)"
	defaultTimeout   = 30 * time.Second
	maxBodySize      = 10 << 20
)

// HTTPSource reads pages from GET {base}/videos?cursor=... and comments from
// GET {base}/comments. Comments are revalidated with ETag.
type HTTPSource struct {
	client    *http.Client
	baseURL   string
	userAgent string

	mu           sync.Mutex
	commentsETag string
	comments     []*storage.Comment
}

func NewHTTPSource(cfg *config.SourceConfig) (*HTTPSource, error) {
	validator := validation.NewSourceURLValidator()
	if cfg.Permissive {
		validator = validator.Permissive()
	}
	base, err := validator.ValidateAndNormalize(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &HTTPSource{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(base, "/"),
		userAgent: ua,
	}, nil
}

func (s *HTTPSource) Name() string { return "http:" + s.baseURL }

func (s *HTTPSource) FetchPage(ctx context.Context, cursor string) (*storage.Page, error) {
	endpoint := s.baseURL + "/videos"
	if cursor != "" {
		endpoint += "?cursor=" + url.QueryEscape(cursor)
	}

	body, _, err := s.get(ctx, endpoint, "")
	if err != nil {
		return nil, err
	}
	page, err := storage.DecodePage(body)
	if err != nil {
		return nil, classify("decoding page", err)
	}
	return page, nil
}

func (s *HTTPSource) FetchComments(ctx context.Context) ([]*storage.Comment, error) {
	s.mu.Lock()
	etag := s.commentsETag
	s.mu.Unlock()

	body, resp, err := s.get(ctx, s.baseURL+"/comments", etag)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if resp.StatusCode == http.StatusNotModified {
		return s.comments, nil
	}

	comments, err := storage.DecodeComments(body)
	if err != nil {
		return nil, classify("decoding comments", err)
	}
	s.comments = comments
	s.commentsETag = resp.Header.Get("ETag")
	return comments, nil
}

func (s *HTTPSource) get(ctx context.Context, endpoint, etag string) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return nil, resp, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil, fmt.Errorf("fetching %s: %w", endpoint, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		wait := retryAfter(resp)
		debuglog.Warnf("source %s throttled, retry after %s", s.baseURL, wait)
		return nil, nil, fmt.Errorf("HTTP error: %d (retry after %s)", resp.StatusCode, wait)
	case resp.StatusCode >= 400:
		return nil, nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}
	return body, resp, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil {
			if d := time.Until(at); d > 0 {
				return d
			}
		}
	}
	return 30 * time.Second
}
