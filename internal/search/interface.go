package search

import "github.com/pders01/reel/internal/storage"

// Searcher defines the minimal search API used by the TUI.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
	// Index adds or replaces videos in the searchable set.
	Index(videos []*storage.Video) error
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// Result is one matching video, best first.
type Result struct {
	VideoID     int64
	Username    string
	Description string
	Topic       string
	Score       float64
	Matches     []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "username", "description", "topic"
	Text   string
	Weight float64
}
