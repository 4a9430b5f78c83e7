package media

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
)

// Handle is a playable media object owned by exactly one feed item.
type Handle interface {
	Play() error
	Pause() error
	Close() error
}

var errHandleClosed = errors.New("media handle closed")

// ProcessHandle drives an external player process. Pause suspends the
// process where the platform allows it and stops it otherwise; Play
// resumes a suspended process or starts a new one, so a player that ran to
// the end of its video starts over on the next Play.
type ProcessHandle struct {
	name string
	args []string

	mu     sync.Mutex
	cmd    *exec.Cmd
	done   chan struct{}
	paused bool
	closed bool
	starts int
}

func NewProcessHandle(name string, args []string) *ProcessHandle {
	return &ProcessHandle{name: name, args: args}
}

func (h *ProcessHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return errHandleClosed
	}
	if h.runningLocked() {
		if !h.paused {
			return nil
		}
		if err := resume(h.cmd.Process); err != nil {
			return fmt.Errorf("resuming %s: %w", h.name, err)
		}
		h.paused = false
		return nil
	}

	cmd := exec.Command(h.name, h.args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", h.name, err)
	}
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	h.cmd = cmd
	h.done = done
	h.paused = false
	h.starts++
	return nil
}

func (h *ProcessHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.paused || !h.runningLocked() {
		return nil
	}
	err := suspend(h.cmd.Process)
	if errors.Is(err, errSuspendUnsupported) {
		h.stopLocked()
		return nil
	}
	if err != nil {
		return fmt.Errorf("suspending %s: %w", h.name, err)
	}
	h.paused = true
	return nil
}

func (h *ProcessHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.stopLocked()
	return nil
}

// Running reports whether the player process is alive.
func (h *ProcessHandle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runningLocked()
}

func (h *ProcessHandle) runningLocked() bool {
	if h.cmd == nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *ProcessHandle) stopLocked() {
	if !h.runningLocked() {
		h.cmd = nil
		return
	}
	if h.paused {
		_ = resume(h.cmd.Process)
	}
	_ = h.cmd.Process.Kill()
	<-h.done
	h.cmd = nil
	h.paused = false
}

// HeadlessHandle keeps playback state in memory. It is used when no
// player should be spawned.
type HeadlessHandle struct {
	URI string

	mu      sync.Mutex
	playing bool
	closed  bool
	plays   int
}

func (h *HeadlessHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errHandleClosed
	}
	h.playing = true
	h.plays++
	return nil
}

func (h *HeadlessHandle) Pause() error {
	h.mu.Lock()
	h.playing = false
	h.mu.Unlock()
	return nil
}

func (h *HeadlessHandle) Close() error {
	h.mu.Lock()
	h.playing = false
	h.closed = true
	h.mu.Unlock()
	return nil
}

func (h *HeadlessHandle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}
