package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pders01/reel/internal/storage"
)

func makeVideos(first, n int) []*storage.Video {
	videos := make([]*storage.Video, 0, n)
	for id := first; id < first+n; id++ {
		videos = append(videos, &storage.Video{
			ID:            int64(id),
			UserID:        int64(id * 10),
			Username:      fmt.Sprintf("creator%d", id),
			ProfilePicURL: "https://cdn.reel.dev/avatar.png",
			Description:   fmt.Sprintf("clip %d", id),
			Topic:         "travel",
			Viewers:       int64(id * 100),
			Likes:         int64(id),
			Video:         fmt.Sprintf("https://cdn.reel.dev/v%d.mp4", id),
			Thumbnail:     fmt.Sprintf("https://cdn.reel.dev/v%d.jpg", id),
		})
	}
	return videos
}

// eventLog records handle commands as "play:<uri-id>" style strings.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// assertExclusivePlayback replays the log and fails if two handles were
// ever playing at once.
func assertExclusivePlayback(t *testing.T, log *eventLog) {
	t.Helper()
	playing := map[string]bool{}
	for _, e := range log.all() {
		cmd, name, _ := strings.Cut(e, ":")
		switch cmd {
		case "play":
			for other, on := range playing {
				if on && other != name {
					t.Fatalf("play %s issued while %s still playing (log %v)", name, other, log.all())
				}
			}
			playing[name] = true
		case "pause", "close":
			playing[name] = false
		}
	}
}

type fakeHandle struct {
	name    string
	log     *eventLog
	playErr error
}

func (h *fakeHandle) Play() error {
	if h.playErr != nil {
		return h.playErr
	}
	h.log.add("play:" + h.name)
	return nil
}

func (h *fakeHandle) Pause() error {
	h.log.add("pause:" + h.name)
	return nil
}

func (h *fakeHandle) Close() error {
	h.log.add("close:" + h.name)
	return nil
}

// fakeFactory names handles after the video file, e.g. "v3".
type fakeFactory struct {
	log     *eventLog
	mu      sync.Mutex
	broken  map[string]bool
	noPlay  map[string]bool
	created map[string]int
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		log:     &eventLog{},
		broken:  map[string]bool{},
		noPlay:  map[string]bool{},
		created: map[string]int{},
	}
}

func (f *fakeFactory) build(uri string) (Handle, error) {
	name := strings.TrimSuffix(uri[strings.LastIndex(uri, "/")+1:], ".mp4")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created[name]++
	if f.broken[name] {
		return nil, errors.New("unsupported media")
	}
	h := &fakeHandle{name: name, log: f.log}
	if f.noPlay[name] {
		h.playErr = errors.New("player exited")
	}
	return h, nil
}

func (f *fakeFactory) createdCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[name]
}

// fakeSource serves pages keyed by cursor. When gate is set, FetchPage
// blocks until a value is sent on it.
type fakeSource struct {
	mu          sync.Mutex
	pages       map[string]*storage.Page
	pageErr     error
	comments    []*storage.Comment
	commentsErr error
	gate        chan struct{}
	entered     chan string
	calls       int
}

func newFakeSource() *fakeSource {
	return &fakeSource{pages: map[string]*storage.Page{}}
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) FetchPage(ctx context.Context, cursor string) (*storage.Page, error) {
	s.mu.Lock()
	s.calls++
	gate, entered := s.gate, s.entered
	s.mu.Unlock()

	if entered != nil {
		entered <- cursor
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	page, ok := s.pages[cursor]
	if !ok {
		return &storage.Page{Videos: []*storage.Video{}}, nil
	}
	return page, nil
}

func (s *fakeSource) FetchComments(ctx context.Context) ([]*storage.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commentsErr != nil {
		return nil, s.commentsErr
	}
	return s.comments, nil
}

func (s *fakeSource) setPageErr(err error) {
	s.mu.Lock()
	s.pageErr = err
	s.mu.Unlock()
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingObserver struct {
	mu             sync.Mutex
	changed        int
	fetchErrs      []error
	playbackErrs   map[int]error
	playbackFailed []int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{playbackErrs: map[int]error{}}
}

func (o *recordingObserver) FeedChanged() {
	o.mu.Lock()
	o.changed++
	o.mu.Unlock()
}

func (o *recordingObserver) PlaybackFailed(index int, err error) {
	o.mu.Lock()
	o.playbackFailed = append(o.playbackFailed, index)
	o.playbackErrs[index] = err
	o.mu.Unlock()
}

func (o *recordingObserver) FetchFailed(err error) {
	o.mu.Lock()
	o.fetchErrs = append(o.fetchErrs, err)
	o.mu.Unlock()
}

func (o *recordingObserver) changedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.changed
}

func (o *recordingObserver) fetchErrors() []error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]error(nil), o.fetchErrs...)
}

type fakeHistory struct {
	mu  sync.Mutex
	ids []int64
}

func (h *fakeHistory) RecordWatch(v *storage.Video) (*storage.WatchEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = append(h.ids, v.ID)
	return &storage.WatchEntry{VideoID: v.ID}, nil
}

type fakeIndexer struct {
	mu  sync.Mutex
	ids []int64
}

func (ix *fakeIndexer) Index(videos []*storage.Video) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, v := range videos {
		ix.ids = append(ix.ids, v.ID)
	}
	return nil
}

// blockingFactory holds construction of one video's handle until release
// is closed, signalling entered first.
type blockingFactory struct {
	*fakeFactory
	name    string
	entered chan struct{}
	release chan struct{}
}

func newBlockingFactory(name string) *blockingFactory {
	return &blockingFactory{
		fakeFactory: newFakeFactory(),
		name:        name,
		entered:     make(chan struct{}, 4),
		release:     make(chan struct{}),
	}
}

func (f *blockingFactory) build(uri string) (Handle, error) {
	if strings.HasSuffix(uri, "/"+f.name+".mp4") {
		f.entered <- struct{}{}
		<-f.release
	}
	return f.fakeFactory.build(uri)
}
