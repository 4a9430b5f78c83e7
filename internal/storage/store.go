package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	pagesBucket    = []byte("pages")
	commentsBucket = []byte("comments")
	historyBucket  = []byte("history")
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{pagesBucket, commentsBucket, historyBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func pageKey(source, cursor string) []byte {
	return []byte(source + "\x00" + cursor)
}

// SavePage caches the page a source returned for cursor.
func (s *Store) SavePage(source, cursor string, page *Page) error {
	entry := CachedPage{
		Source:   source,
		Cursor:   cursor,
		Page:     page,
		StoredAt: time.Now(),
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return tx.Bucket(pagesBucket).Put(pageKey(source, cursor), data)
	})
}

func (s *Store) GetPage(source, cursor string) (*CachedPage, error) {
	var entry CachedPage
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(pagesBucket).Get(pageKey(source, cursor))
		if data == nil {
			return fmt.Errorf("page %q: %w", cursor, ErrNotFound)
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) SaveComments(source string, comments []*Comment) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(comments)
		if err != nil {
			return err
		}
		return tx.Bucket(commentsBucket).Put([]byte(source), data)
	})
}

func (s *Store) GetComments(source string) ([]*Comment, error) {
	var comments []*Comment
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(commentsBucket).Get([]byte(source))
		if data == nil {
			return fmt.Errorf("comments for %q: %w", source, ErrNotFound)
		}
		return json.Unmarshal(data, &comments)
	})
	return comments, err
}

// RecordWatch appends a history entry. IDs are UUIDv7 so keys sort by time.
func (s *Store) RecordWatch(video *Video) (*WatchEntry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating watch id: %w", err)
	}
	entry := &WatchEntry{
		ID:        id.String(),
		VideoID:   video.ID,
		Username:  video.Username,
		Video:     video.Video,
		StartedAt: time.Now(),
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return tx.Bucket(historyBucket).Put([]byte(entry.ID), data)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecentWatches returns up to limit entries, newest first.
func (s *Store) RecentWatches(limit int) ([]*WatchEntry, error) {
	var entries []*WatchEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(historyBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var entry WatchEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	return entries, err
}

// ClearCache drops every cached page and comment list, keeping history.
func (s *Store) ClearCache() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pagesBucket, commentsBucket} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}
