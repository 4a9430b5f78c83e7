package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/reel/internal/config"
)

type keyMap struct {
	Next      key.Binding
	Previous  key.Binding
	PlayPause key.Binding
	Search    key.Binding
	Reload    key.Binding
	Back      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap(cfg *config.KeyConfig) keyMap {
	b := cfg.Bindings
	mod := cfg.Modifier + "+"
	return keyMap{
		Next:      key.NewBinding(key.WithKeys(b.Next, "down"), key.WithHelp(displayKey(b.Next)+"/↓", "next")),
		Previous:  key.NewBinding(key.WithKeys(b.Previous, "up"), key.WithHelp(displayKey(b.Previous)+"/↑", "previous")),
		PlayPause: key.NewBinding(key.WithKeys(b.PlayPause, "p"), key.WithHelp(displayKey(b.PlayPause), "play/pause")),
		Search:    key.NewBinding(key.WithKeys(b.Search, mod+"s"), key.WithHelp(displayKey(b.Search), "search")),
		Reload:    key.NewBinding(key.WithKeys(b.Reload, mod+"r"), key.WithHelp(displayKey(b.Reload), "reload")),
		Back:      key.NewBinding(key.WithKeys(b.Back), key.WithHelp(displayKey(b.Back), "back")),
		Help:      key.NewBinding(key.WithKeys(b.Help), key.WithHelp(displayKey(b.Help), "help")),
		Quit:      key.NewBinding(key.WithKeys(b.Quit, "ctrl+c"), key.WithHelp(displayKey(b.Quit), "quit")),
	}
}

func displayKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.PlayPause, k.Search, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous, k.PlayPause},
		{k.Search, k.Reload, k.Back},
		{k.Help, k.Quit},
	}
}

type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, keys: newKeyMap(&cfg.Keys)}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kh.app.view == ViewSearch {
		return kh.handleSearchKeys(msg)
	}
	return kh.handleFeedKeys(msg)
}

func (kh *KeyHandler) handleFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, kh.keys.Next):
		return a, a.next()
	case key.Matches(msg, kh.keys.Previous):
		return a, a.previous()
	case key.Matches(msg, kh.keys.PlayPause):
		return a, a.togglePlayPause()
	case key.Matches(msg, kh.keys.Search):
		return a, kh.enterSearchMode()
	case key.Matches(msg, kh.keys.Reload):
		return a, a.reload()
	case key.Matches(msg, kh.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	case key.Matches(msg, kh.keys.Back):
		a.help.ShowAll = false
		return a, nil
	}
	return a, nil
}

func (kh *KeyHandler) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "enter":
		return a, a.selectSearchResult()
	case "up", "shift+tab":
		a.searchList.CursorUp()
		return a, nil
	case "down", "tab":
		a.searchList.CursorDown()
		return a, nil
	}
	if key.Matches(msg, kh.keys.Back) {
		a.searchInput.Blur()
		a.view = ViewFeed
		return a, nil
	}

	prev := a.searchInput.Value()
	input, cmd := a.searchInput.Update(msg)
	a.searchInput = input
	if a.searchInput.Value() == prev {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.scheduleSearch(a.searchInput.Value()))
}

// enterSearchMode switches to the search view with an empty query.
func (kh *KeyHandler) enterSearchMode() tea.Cmd {
	a := kh.app
	if a.searcher == nil {
		return a.setStatus("Search is unavailable", StatusWarn, defaultStatusTTL)
	}
	a.view = ViewSearch
	a.searchInput.Reset()
	a.searchList.SetItems(nil)
	a.pendingQuery = ""
	return a.searchInput.Focus()
}
