package tui

import (
	"github.com/pders01/reel/internal/search"
)

type View int

const (
	ViewFeed View = iota
	ViewSearch
)

// Messages delivered to App.Update.

type feedChangedMsg struct{}

type playbackFailedMsg struct {
	index int
	err   error
}

type fetchFailedMsg struct {
	err error
}

// settledMsg carries the absolute position (index plus evicted count) the
// feed came to rest on, so eviction between report and delivery is safe.
type settledMsg struct {
	position int
}

type autoplayMsg struct{}

type loadDoneMsg struct {
	err error
}

type searchResultsMsg struct {
	query   string
	results []*search.Result
	err     error
}

type searchDebounceFireMsg struct {
	seq int
}

type statusClearMsg struct {
	seq int
}
