package feed

import (
	"fmt"

	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/storage"
)

// Handle is an opaque playable media object. Commands are fire-and-forget
// from the coordinator's point of view; errors are logged or reported.
type Handle interface {
	Play() error
	Pause() error
	Close() error
}

// HandleFactory builds a handle for a media URI.
type HandleFactory func(uri string) (Handle, error)

// Item is one feed entry. Its handle is created on first play and owned by
// the item alone.
type Item struct {
	Video *storage.Video

	handle  Handle
	playing bool
	// inert holds the construction error once the handle could not be built
	inert error
}

func newItem(v *storage.Video) *Item {
	return &Item{Video: v}
}

func (it *Item) needsHandle() bool {
	return it.handle == nil && it.inert == nil
}

// fail marks the item inert unless a handle was built in the meantime.
func (it *Item) fail(err error) {
	if !it.needsHandle() {
		return
	}
	it.inert = fmt.Errorf("video %d: %w: %v", it.Video.ID, ErrPlaybackUnavailable, err)
}

func (it *Item) play() error {
	if err := it.handle.Play(); err != nil {
		it.playing = false
		return fmt.Errorf("video %d: %w: %v", it.Video.ID, ErrPlaybackUnavailable, err)
	}
	it.playing = true
	return nil
}

func (it *Item) pause() {
	if it.handle == nil || !it.playing {
		return
	}
	if err := it.handle.Pause(); err != nil {
		debuglog.Warnf("pausing video %d: %v", it.Video.ID, err)
	}
	it.playing = false
}

func (it *Item) close() {
	if it.handle == nil {
		return
	}
	it.pause()
	if err := it.handle.Close(); err != nil {
		debuglog.Warnf("closing video %d: %v", it.Video.ID, err)
	}
	it.handle = nil
}
