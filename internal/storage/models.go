package storage

import (
	"time"
)

// Video is one feed entry as served by a video source. JSON field names are
// fixed by the wire format.
type Video struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userID"`
	Username      string `json:"username"`
	ProfilePicURL string `json:"profilePicURL"`
	Description   string `json:"description"`
	Topic         string `json:"topic"`
	Viewers       int64  `json:"viewers"`
	Likes         int64  `json:"likes"`
	Video         string `json:"video"`
	Thumbnail     string `json:"thumbnail"`
}

// Comment is read-only decoration shared across rendered cards.
type Comment struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	PicURL   string `json:"picURL"`
	Comment  string `json:"comment"`
}

// Page is one batch of videos plus the cursor for the batch after it.
// An empty Videos slice means the source is exhausted.
type Page struct {
	Videos     []*Video `json:"videos"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type CachedPage struct {
	Source   string    `json:"source"`
	Cursor   string    `json:"cursor"`
	Page     *Page     `json:"page"`
	StoredAt time.Time `json:"stored_at"`
}

// WatchEntry records one activation of a video.
type WatchEntry struct {
	ID        string    `json:"id"`
	VideoID   int64     `json:"video_id"`
	Username  string    `json:"username"`
	Video     string    `json:"video"`
	StartedAt time.Time `json:"started_at"`
}
