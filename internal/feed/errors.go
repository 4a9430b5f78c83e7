package feed

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/pders01/reel/internal/storage"
)

var (
	// ErrNotFound means the backing resource of a source is absent.
	ErrNotFound = errors.New("feed resource not found")
	// ErrDecode means a source payload did not match the wire format.
	ErrDecode = errors.New("feed payload malformed")
	// ErrPlaybackUnavailable means an item's media handle could not be
	// constructed or refused to play.
	ErrPlaybackUnavailable = errors.New("playback unavailable")
	// ErrIndexOutOfRange is returned for indexes outside the current feed.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// classify maps storage and filesystem failures onto the feed sentinels.
func classify(what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDecode):
		return fmt.Errorf("%s: %w", what, err)
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w: %v", what, ErrNotFound, err)
	case errors.Is(err, storage.ErrMalformed):
		return fmt.Errorf("%s: %w: %v", what, ErrDecode, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
