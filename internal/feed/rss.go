package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/validation"
)

const maxConcurrentFeeds = 5

// RSSSource aggregates the video items of several RSS/Atom feeds. The feeds
// are fetched when the empty cursor is requested; later cursors page
// through that snapshot by offset.
type RSSSource struct {
	client    *http.Client
	feeds     []string
	userAgent string
	pageSize  int
	parser    *Parser

	mu     sync.Mutex
	videos []*storage.Video
}

func NewRSSSource(cfg *config.SourceConfig) (*RSSSource, error) {
	validator := validation.NewSourceURLValidator()
	if cfg.Permissive {
		validator = validator.Permissive()
	}

	feeds := make([]string, 0, len(cfg.RSSFeeds))
	for _, raw := range cfg.RSSFeeds {
		normalized, err := validator.ValidateAndNormalize(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid feed URL %q: %w", raw, err)
		}
		feeds = append(feeds, normalized)
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("no RSS feeds configured")
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &RSSSource{
		client:    &http.Client{Timeout: timeout},
		feeds:     feeds,
		userAgent: ua,
		pageSize:  cfg.PageSize,
		parser:    NewParser(),
	}, nil
}

func (s *RSSSource) Name() string { return "rss:" + strings.Join(s.feeds, ",") }

func (s *RSSSource) FetchPage(ctx context.Context, cursor string) (*storage.Page, error) {
	offset, err := parseOffset(cursor)
	if err != nil {
		return nil, err
	}

	if cursor == "" {
		videos, err := s.fetchAll(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.videos = videos
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.videos)
	if offset >= n {
		return &storage.Page{Videos: []*storage.Video{}, NextCursor: cursor}, nil
	}
	size := s.pageSize
	if size <= 0 {
		size = n
	}
	end := offset + size
	if end > n {
		end = n
	}
	return &storage.Page{
		Videos:     s.videos[offset:end],
		NextCursor: strconv.Itoa(end),
	}, nil
}

// FetchComments always fails: feeds carry no shared comment list.
func (s *RSSSource) FetchComments(ctx context.Context) ([]*storage.Comment, error) {
	return nil, fmt.Errorf("rss comments: %w", ErrNotFound)
}

// fetchAll downloads every feed with bounded concurrency. Individual feed
// failures are logged; the call fails only when every feed failed.
func (s *RSSSource) fetchAll(ctx context.Context) ([]*storage.Video, error) {
	results := make([][]*storage.Video, len(s.feeds))
	errs := make([]error, len(s.feeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFeeds)
	for i, feedURL := range s.feeds {
		g.Go(func() error {
			videos, err := s.fetchFeed(gctx, feedURL)
			if err != nil {
				debuglog.WithFields(debuglog.Fields{"feed": feedURL}).Warnf("fetch failed: %v", err)
				errs[i] = err
				return nil
			}
			results[i] = videos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*storage.Video
	failed := 0
	for i := range s.feeds {
		if errs[i] != nil {
			failed++
			continue
		}
		all = append(all, results[i]...)
	}
	if failed == len(s.feeds) {
		return nil, fmt.Errorf("fetching feeds: %w", errors.Join(errs...))
	}
	if all == nil {
		all = []*storage.Video{}
	}
	return all, nil
}

func (s *RSSSource) fetchFeed(ctx context.Context, feedURL string) ([]*storage.Video, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetching feed: %w", ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return s.parser.Parse(bytes.NewReader(body), feedURL)
}
