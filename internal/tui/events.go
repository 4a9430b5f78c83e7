package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/reel/internal/debuglog"
)

// eventBridge turns coordinator notifications, which arrive on arbitrary
// goroutines, into tea messages. Sends never block: FeedChanged signals
// coalesce, and other events are dropped once the buffer is full or the
// bridge is closed.
type eventBridge struct {
	changed chan struct{}
	events  chan tea.Msg
	done    chan struct{}
	once    sync.Once
}

func newEventBridge() *eventBridge {
	return &eventBridge{
		changed: make(chan struct{}, 1),
		events:  make(chan tea.Msg, 32),
		done:    make(chan struct{}),
	}
}

func (b *eventBridge) FeedChanged() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

func (b *eventBridge) PlaybackFailed(index int, err error) {
	b.send(playbackFailedMsg{index: index, err: err})
}

func (b *eventBridge) FetchFailed(err error) {
	b.send(fetchFailedMsg{err: err})
}

func (b *eventBridge) settled(position int) {
	b.send(settledMsg{position: position})
}

func (b *eventBridge) send(msg tea.Msg) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.events <- msg:
	default:
		debuglog.Warnf("ui event buffer full, dropping %T", msg)
	}
}

// wait returns a command that blocks for the next event. Update re-arms
// it after every delivery.
func (b *eventBridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.changed:
			return feedChangedMsg{}
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}

func (b *eventBridge) Close() {
	b.once.Do(func() { close(b.done) })
}
