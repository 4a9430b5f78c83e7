package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/reel/internal/debuglog"
)

const (
	searchDebounce = 150 * time.Millisecond
	searchLimit    = 20
)

func (a *App) loadFeed() tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{err: a.coord.Load(context.Background())}
	}
}

func (a *App) reload() tea.Cmd {
	a.cursor = 0
	a.presented = false
	return tea.Batch(a.setStatus(MsgReloading, StatusInfo, 0), a.reloadFeed())
}

func (a *App) reloadFeed() tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{err: a.coord.Reload(context.Background())}
	}
}

// scheduleAutoplay starts playback of the first item once the feed has
// been on screen for the autoplay delay.
func (a *App) scheduleAutoplay() tea.Cmd {
	delay := a.config.Playback.AutoplayDelay
	if delay <= 0 {
		return func() tea.Msg { return autoplayMsg{} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return autoplayMsg{} })
}

func (a *App) scheduleSearch(raw string) tea.Cmd {
	a.pendingQuery = sanitizeQuery(raw)
	a.searchSeq++
	seq := a.searchSeq
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg { return searchDebounceFireMsg{seq: seq} })
}

func (a *App) performSearch(query string) tea.Cmd {
	searcher := a.searcher
	return func() tea.Msg {
		results, err := searcher.Search(query, searchLimit)
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

func (a *App) applySearchResults(msg searchResultsMsg) tea.Cmd {
	if msg.query != a.pendingQuery {
		return nil
	}
	if msg.err != nil {
		debuglog.Warnf("search %q: %v", msg.query, msg.err)
		return a.setStatus(fmt.Sprintf("Search failed: %v", msg.err), StatusError, defaultStatusTTL)
	}
	items := make([]list.Item, len(msg.results))
	for i, r := range msg.results {
		items[i] = searchResultItem{result: r}
	}
	a.searchList.SetItems(items)
	if len(items) == 0 {
		return a.setStatus(MsgNoResults, StatusWarn, defaultStatusTTL)
	}
	return a.setStatus(MsgResultsCount(len(items)), StatusInfo, defaultStatusTTL)
}

func (a *App) selectSearchResult() tea.Cmd {
	item, ok := a.searchList.SelectedItem().(searchResultItem)
	if !ok {
		return nil
	}
	a.searchInput.Blur()
	a.view = ViewFeed

	index := a.coord.IndexOf(item.result.VideoID)
	if index < 0 {
		return a.setStatus("That video is no longer in the feed", StatusWarn, defaultStatusTTL)
	}
	return a.moveTo(index)
}
