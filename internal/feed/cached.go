package feed

import (
	"context"
	"errors"

	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/storage"
)

// CachedSource stores every page and comment list the wrapped source
// returns, and replays the stored copy when the source cannot be reached.
// Decode failures are not masked.
type CachedSource struct {
	inner Source
	store *storage.Store
}

func NewCachedSource(inner Source, store *storage.Store) *CachedSource {
	return &CachedSource{inner: inner, store: store}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

func (s *CachedSource) FetchPage(ctx context.Context, cursor string) (*storage.Page, error) {
	page, err := s.inner.FetchPage(ctx, cursor)
	if err == nil {
		if saveErr := s.store.SavePage(s.inner.Name(), cursor, page); saveErr != nil {
			debuglog.Warnf("caching page %q: %v", cursor, saveErr)
		}
		return page, nil
	}
	if errors.Is(err, ErrDecode) {
		return nil, err
	}

	cached, cacheErr := s.store.GetPage(s.inner.Name(), cursor)
	if cacheErr != nil {
		return nil, err
	}
	debuglog.WithFields(debuglog.Fields{"cursor": cursor, "stored_at": cached.StoredAt.Format("2006-01-02 15:04")}).
		Infof("serving cached page: %v", err)
	return cached.Page, nil
}

func (s *CachedSource) FetchComments(ctx context.Context) ([]*storage.Comment, error) {
	comments, err := s.inner.FetchComments(ctx)
	if err == nil {
		if saveErr := s.store.SaveComments(s.inner.Name(), comments); saveErr != nil {
			debuglog.Warnf("caching comments: %v", saveErr)
		}
		return comments, nil
	}
	if errors.Is(err, ErrDecode) {
		return nil, err
	}

	cached, cacheErr := s.store.GetComments(s.inner.Name())
	if cacheErr != nil {
		return nil, err
	}
	debuglog.Infof("serving cached comments: %v", err)
	return cached, nil
}
