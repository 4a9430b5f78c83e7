package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/storage"
)

// Observer receives coordinator notifications. Calls are made outside the
// coordinator lock and may arrive from fetch goroutines.
type Observer interface {
	FeedChanged()
	PlaybackFailed(index int, err error)
	FetchFailed(err error)
}

// History records activations.
type History interface {
	RecordWatch(video *storage.Video) (*storage.WatchEntry, error)
}

// Indexer receives every appended video.
type Indexer interface {
	Index(videos []*storage.Video) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver sets the observer that receives notifications.
func WithObserver(o Observer) Option { return func(c *Coordinator) { c.observer = o } }

// WithHistory records every successful activation.
func WithHistory(h History) Option { return func(c *Coordinator) { c.history = h } }

// WithIndexer hands every appended page to ix.
func WithIndexer(ix Indexer) Option { return func(c *Coordinator) { c.indexer = ix } }

// Coordinator owns the ordered feed and decides which single item plays.
// Every state transition runs to completion under mu.
type Coordinator struct {
	source  Source
	factory HandleFactory

	prefetch     int
	maxItems     int
	fetchTimeout time.Duration

	mu          sync.Mutex
	items       []*Item
	comments    []*storage.Comment
	activeIndex int
	loadingMore bool
	cursor      string
	exhausted   bool
	evicted     int
	presented   bool
	closed      bool
	observer    Observer
	history     History
	indexer     Indexer

	// building is the item whose handle is being constructed outside mu.
	// A construction applies only if activation still equals its sequence.
	building   *Item
	activation uint64

	fetchDone *sync.Cond
	fetches   sync.WaitGroup
}

// NewCoordinator returns a coordinator with no items and nothing active.
func NewCoordinator(src Source, factory HandleFactory, cfg *config.PlaybackConfig, fetchTimeout time.Duration, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:       src,
		factory:      factory,
		prefetch:     cfg.PrefetchDistance,
		maxItems:     cfg.MaxItems,
		fetchTimeout: fetchTimeout,
		activeIndex:  -1,
	}
	c.fetchDone = sync.NewCond(&c.mu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetObserver replaces the observer. A nil observer drops notifications.
func (c *Coordinator) SetObserver(o Observer) {
	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

// Load fetches the comments and then the first page. The two steps fail
// independently: a comment failure leaves the comment list empty and still
// fetches videos. Load returns the page error, if any.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.loadingMore {
		c.mu.Unlock()
		return nil
	}
	c.loadingMore = true
	cursor := c.cursor
	c.mu.Unlock()

	return c.load(ctx, cursor)
}

// load runs with loadingMore already set.
func (c *Coordinator) load(ctx context.Context, cursor string) error {
	c.fetches.Add(1)
	defer c.fetches.Done()

	cctx, cancel := c.fetchContext(ctx)
	comments, err := c.source.FetchComments(cctx)
	cancel()

	c.mu.Lock()
	if err != nil {
		c.comments = nil
	} else {
		c.comments = comments
	}
	obs := c.observer
	c.mu.Unlock()
	if err != nil {
		debuglog.Warnf("loading comments from %s: %v", c.source.Name(), err)
		if obs != nil {
			obs.FetchFailed(fmt.Errorf("loading comments: %w", err))
		}
	}

	return c.fetchPage(ctx, cursor)
}

// Reload drops every item, closing their handles, and loads from the
// first page again. A fetch already in flight is waited for first.
func (c *Coordinator) Reload(ctx context.Context) error {
	c.mu.Lock()
	for c.loadingMore {
		c.fetchDone.Wait()
	}
	for _, it := range c.items {
		it.close()
	}
	c.items = nil
	c.activeIndex = -1
	c.cursor = ""
	c.exhausted = false
	c.presented = false
	c.loadingMore = true
	obs := c.observer
	c.mu.Unlock()

	if obs != nil {
		obs.FeedChanged()
	}
	return c.load(ctx, "")
}

// Presented is called by the presenter once it has rendered the feed. The
// first call that finds items activates index 0; later calls do nothing.
func (c *Coordinator) Presented() bool {
	c.mu.Lock()
	if c.presented || len(c.items) == 0 {
		c.mu.Unlock()
		return false
	}
	c.presented = true
	c.mu.Unlock()

	return c.Activate(0) == nil
}

// Activate makes index the playing item, pausing the previous one. An
// item whose handle cannot be built is reported through PlaybackFailed and
// leaves the current playback untouched.
//
// The first activation of an item builds its handle without holding the
// lock. If another activation, a Deactivate of the same index, an eviction
// or Close happens meanwhile, the result is dropped and Activate returns
// nil.
func (c *Coordinator) Activate(index int) error {
	var spare Handle
	defer func() {
		if spare != nil {
			if err := spare.Close(); err != nil {
				debuglog.Warnf("closing unused handle: %v", err)
			}
		}
	}()

	c.mu.Lock()
	if index < 0 || index >= len(c.items) {
		n := len(c.items)
		c.mu.Unlock()
		return fmt.Errorf("activate %d of %d: %w", index, n, ErrIndexOutOfRange)
	}
	if c.activeIndex == index || c.closed {
		c.mu.Unlock()
		return nil
	}

	item := c.items[index]
	if item.needsHandle() {
		c.activation++
		seq := c.activation
		c.building = item
		factory := c.factory
		c.mu.Unlock()

		h, buildErr := factory(item.Video.Video)

		c.mu.Lock()
		current := c.activation == seq && !c.closed && index < len(c.items) && c.items[index] == item
		if c.building == item && c.activation == seq {
			c.building = nil
		}
		switch {
		case buildErr != nil:
			item.fail(buildErr)
		case current && item.needsHandle():
			item.handle = h
		default:
			spare = h
		}
		if !current {
			c.mu.Unlock()
			return nil
		}
	}

	if item.inert != nil {
		err := item.inert
		obs := c.observer
		c.mu.Unlock()
		c.playbackFailed(obs, index, err)
		return err
	}

	if c.activeIndex >= 0 {
		c.items[c.activeIndex].pause()
	}
	if err := item.play(); err != nil {
		c.activeIndex = -1
		obs := c.observer
		c.mu.Unlock()
		c.playbackFailed(obs, index, err)
		return err
	}
	c.activeIndex = index
	video := item.Video
	history := c.history
	c.mu.Unlock()

	debuglog.WithFields(debuglog.Fields{"index": index, "id": video.ID}).Debugf("activated")
	if history != nil {
		if _, err := history.RecordWatch(video); err != nil {
			debuglog.Warnf("recording watch of video %d: %v", video.ID, err)
		}
	}
	return nil
}

// Deactivate pauses index only if it is still the active item. Stale
// reports about items that already lost focus are ignored.
func (c *Coordinator) Deactivate(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.building != nil && index >= 0 && index < len(c.items) && c.items[index] == c.building {
		c.activation++
		c.building = nil
	}
	if index < 0 || index != c.activeIndex {
		return
	}
	c.items[index].pause()
	c.activeIndex = -1
}

// TogglePlayPause flips the active item between playing and paused
// without changing which item is active. It reports whether the item is
// now playing.
func (c *Coordinator) TogglePlayPause() bool {
	c.mu.Lock()
	if c.activeIndex < 0 {
		c.mu.Unlock()
		return false
	}
	index := c.activeIndex
	item := c.items[index]
	if item.playing {
		item.pause()
		c.mu.Unlock()
		return false
	}
	if err := item.play(); err != nil {
		obs := c.observer
		c.mu.Unlock()
		c.playbackFailed(obs, index, err)
		return false
	}
	c.mu.Unlock()
	return true
}

// RequestMoreIfNearEnd starts a background page fetch when index is within
// the prefetch distance of the tail and no fetch is in flight. It reports
// whether a fetch was started.
func (c *Coordinator) RequestMoreIfNearEnd(index int) bool {
	c.mu.Lock()
	last := len(c.items) - 1
	if c.loadingMore || c.exhausted || c.closed || index > last || index < last-c.prefetch {
		c.mu.Unlock()
		return false
	}
	c.loadingMore = true
	cursor := c.cursor
	c.mu.Unlock()

	c.fetches.Add(1)
	go func() {
		defer c.fetches.Done()
		if err := c.fetchPage(context.Background(), cursor); err != nil {
			debuglog.Warnf("fetching page %q: %v", cursor, err)
		}
	}()
	return true
}

// fetchPage runs with loadingMore already set and clears it when done.
func (c *Coordinator) fetchPage(ctx context.Context, cursor string) error {
	fctx, cancel := c.fetchContext(ctx)
	page, err := c.source.FetchPage(fctx, cursor)
	cancel()

	c.mu.Lock()
	c.loadingMore = false
	c.fetchDone.Broadcast()
	obs := c.observer
	if err != nil {
		c.mu.Unlock()
		if obs != nil {
			obs.FetchFailed(err)
		}
		return err
	}

	appended := make([]*storage.Video, 0, len(page.Videos))
	for _, v := range page.Videos {
		c.items = append(c.items, newItem(v))
		appended = append(appended, v)
	}
	if len(page.Videos) == 0 || page.NextCursor == "" {
		c.exhausted = true
	}
	c.cursor = page.NextCursor
	if c.maxItems > 0 && len(c.items) > c.maxItems {
		c.evictLocked(len(c.items) - c.maxItems)
	}
	indexer := c.indexer
	c.mu.Unlock()

	debuglog.WithFields(debuglog.Fields{"cursor": cursor, "next": page.NextCursor}).Debugf("appended %d videos", len(appended))
	if indexer != nil && len(appended) > 0 {
		if err := indexer.Index(appended); err != nil {
			debuglog.Warnf("indexing videos: %v", err)
		}
	}
	if obs != nil {
		obs.FeedChanged()
	}
	return nil
}

// EvictBefore drops the first n items, closing their handles. The active
// index shifts with the feed, or is cleared if its item was evicted.
func (c *Coordinator) EvictBefore(n int) {
	c.mu.Lock()
	removed := c.evictLocked(n)
	obs := c.observer
	c.mu.Unlock()

	if removed > 0 && obs != nil {
		obs.FeedChanged()
	}
}

func (c *Coordinator) evictLocked(n int) int {
	if n <= 0 {
		return 0
	}
	if n > len(c.items) {
		n = len(c.items)
	}
	for _, it := range c.items[:n] {
		it.close()
	}
	c.items = append([]*Item(nil), c.items[n:]...)

	switch {
	case c.activeIndex < 0:
	case c.activeIndex < n:
		c.activeIndex = -1
	default:
		c.activeIndex -= n
	}
	c.evicted += n
	return n
}

// OnScrollSettled activates the item the feed came to rest on and
// prefetches if it is near the tail.
func (c *Coordinator) OnScrollSettled(index int) {
	if err := c.Activate(index); err != nil {
		debuglog.Debugf("settle on %d: %v", index, err)
	}
	c.RequestMoreIfNearEnd(index)
}

// OnItemLeftView pauses index if it is still active.
func (c *Coordinator) OnItemLeftView(index int) { c.Deactivate(index) }

// OnTogglePlayPauseTapped toggles the active item.
func (c *Coordinator) OnTogglePlayPauseTapped() { c.TogglePlayPause() }

// OnCellWillDisplay prefetches when index is about to appear near the tail.
func (c *Coordinator) OnCellWillDisplay(index int) { c.RequestMoreIfNearEnd(index) }

// ItemView is a copy of one item's state for rendering.
type ItemView struct {
	Video   storage.Video
	Active  bool
	Playing bool
	Inert   bool
}

// State is a consistent copy of the coordinator for the presenter.
type State struct {
	Items       []ItemView
	Comments    []*storage.Comment
	ActiveIndex int
	Loading     bool
	Exhausted   bool
	// Evicted counts items dropped from the head since creation, so a
	// presenter can keep its position across evictions.
	Evicted int
}

// Snapshot copies the feed state under the lock.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	views := make([]ItemView, len(c.items))
	for i, it := range c.items {
		views[i] = ItemView{
			Video:   *it.Video,
			Active:  i == c.activeIndex,
			Playing: it.playing,
			Inert:   it.inert != nil,
		}
	}
	return State{
		Items:       views,
		Comments:    c.comments,
		ActiveIndex: c.activeIndex,
		Loading:     c.loadingMore,
		Exhausted:   c.exhausted,
		Evicted:     c.evicted,
	}
}

// ActiveIndex returns the active index, or -1.
func (c *Coordinator) ActiveIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeIndex
}

// Len returns the number of items currently held.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// IndexOf returns the first index holding videoID, or -1.
func (c *Coordinator) IndexOf(videoID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.Video.ID == videoID {
			return i
		}
	}
	return -1
}

// Wait blocks until every started fetch has completed.
func (c *Coordinator) Wait() {
	c.fetches.Wait()
}

// Close pauses and releases every handle. In-flight fetches are not
// cancelled; their results are appended to the closed feed.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items {
		it.close()
	}
	c.activeIndex = -1
	c.closed = true
}

func (c *Coordinator) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.fetchTimeout > 0 {
		return context.WithTimeout(ctx, c.fetchTimeout)
	}
	return context.WithCancel(ctx)
}

func (c *Coordinator) playbackFailed(obs Observer, index int, err error) {
	debuglog.WithFields(debuglog.Fields{"index": index}).Warnf("playback failed: %v", err)
	if obs != nil {
		obs.PlaybackFailed(index, err)
	}
}
