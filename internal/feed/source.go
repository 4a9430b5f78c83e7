package feed

import (
	"context"
	"fmt"
	"os"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/storage"
)

// Source fetches pages of videos and the shared comment list. A source has
// no side effects on the coordinator; it may be called repeatedly, and an
// empty page means it has nothing more to offer.
type Source interface {
	FetchPage(ctx context.Context, cursor string) (*storage.Page, error)
	FetchComments(ctx context.Context) ([]*storage.Comment, error)
	// Name identifies the source in cache keys and log lines.
	Name() string
}

// NewSource builds the source selected by cfg.Source.Kind. Fixture sources
// read from cfg.Source.FixturesDir, or from fallback when that is empty.
// When store is non-nil and caching is enabled the result is wrapped in a
// CachedSource.
func NewSource(cfg *config.Config, fallback *FixtureSource, store *storage.Store) (Source, error) {
	var src Source
	switch cfg.Source.Kind {
	case config.SourceFixture:
		if cfg.Source.FixturesDir == "" {
			if fallback == nil {
				return nil, fmt.Errorf("no fixtures configured")
			}
			src = fallback
			break
		}
		src = NewFixtureSource(os.DirFS(cfg.Source.FixturesDir), cfg.Source.PageSize, cfg.Source.Loop)
	case config.SourceHTTP:
		httpSrc, err := NewHTTPSource(&cfg.Source)
		if err != nil {
			return nil, err
		}
		src = httpSrc
	case config.SourceRSS:
		rssSrc, err := NewRSSSource(&cfg.Source)
		if err != nil {
			return nil, err
		}
		src = rssSrc
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}

	if store != nil && cfg.Source.Cache && cfg.Source.Kind != config.SourceFixture {
		src = NewCachedSource(src, store)
	}
	return src, nil
}
