package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusKind indicates severity for status messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

func (k StatusKind) style() func(...string) string {
	switch k {
	case StatusSuccess:
		return StatusSuccessStyle.Render
	case StatusWarn:
		return StatusWarnStyle.Render
	case StatusError:
		return StatusErrorStyle.Render
	default:
		return StatusInfoStyle.Render
	}
}

// Canonical short status messages used across the app.
const (
	MsgLoading      = "Loading…"
	MsgReloading    = "Reloading…"
	MsgPlaying      = "Playing"
	MsgPaused       = "Paused"
	MsgNoResults    = "No results"
	MsgEndOfFeed    = "End of feed"
	MsgNothingPlays = "Nothing is playing"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgPlaybackFailed(position int, err error) string {
	return fmt.Sprintf("Can't play #%d: %v", position+1, err)
}

func MsgFetchFailed(err error) string {
	return fmt.Sprintf("Fetch failed: %v", err)
}

const defaultStatusTTL = 4 * time.Second

// setStatus shows text in the status bar. A positive ttl returns a command
// that clears it unless a newer status replaced it first.
func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.status = text
	a.statusKind = kind
	a.statusSeq++
	if ttl <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func (a *App) clearStatus(seq int) {
	if seq == a.statusSeq {
		a.status = ""
	}
}
