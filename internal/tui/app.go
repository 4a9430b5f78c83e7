package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/feed"
	"github.com/pders01/reel/internal/search"
)

// App renders the feed and forwards scroll, visibility, and tap events to
// the coordinator. It holds no playback state of its own beyond the
// position it is showing.
type App struct {
	config     *config.Config
	coord      *feed.Coordinator
	searcher   search.Searcher
	keyHandler *KeyHandler
	bridge     *eventBridge
	settler    *feed.Settler

	searchInput textinput.Model
	searchList  list.Model
	help        help.Model
	spinner     spinner.Model

	view      View
	state     feed.State
	cursor    int
	loaded    bool
	presented bool
	width     int
	height    int

	status     string
	statusKind StatusKind
	statusSeq  int

	pendingQuery string
	searchSeq    int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
	descriptions    map[int64]string
}

// NewApp wires the presenter to coord. searcher may be nil, which disables
// the search view.
func NewApp(coord *feed.Coordinator, searcher search.Searcher, cfg *config.Config) *App {
	searchList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	searchList.Title = "› results"
	searchList.SetShowStatusBar(false)
	searchList.SetShowHelp(false)
	searchList.SetFilteringEnabled(false)

	si := textinput.New()
	si.Placeholder = "Search by user, description or topic..."
	si.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	app := &App{
		config:       cfg,
		coord:        coord,
		searcher:     searcher,
		bridge:       newEventBridge(),
		searchInput:  si,
		searchList:   searchList,
		help:         help.New(),
		spinner:      sp,
		view:         ViewFeed,
		descriptions: make(map[int64]string),
	}
	app.keyHandler = NewKeyHandler(app, cfg)
	app.settler = feed.NewSettler(cfg.Playback.SettleInterval, app.bridge.settled)
	coord.SetObserver(app.bridge)

	return app
}

// Close detaches the presenter. Notifications that arrive afterwards are
// dropped.
func (a *App) Close() {
	a.settler.Stop()
	a.coord.SetObserver(nil)
	a.bridge.Close()
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.bridge.wait(),
		a.loadFeed(),
		a.spinner.Tick,
		a.setStatus(MsgLoading, StatusInfo, 0),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		listHeight := msg.Height - 8
		if listHeight < 5 {
			listHeight = 5
		}
		a.searchList.SetSize(msg.Width, listHeight)
		inputWidth := msg.Width - 8
		if inputWidth < 10 {
			inputWidth = msg.Width
		}
		a.searchInput.Width = inputWidth

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case feedChangedMsg:
		a.refresh()
		if !a.presented && len(a.state.Items) > 0 {
			a.presented = true
			cmds = append(cmds, a.scheduleAutoplay())
		}
		cmds = append(cmds, a.bridge.wait())

	case playbackFailedMsg:
		a.refresh()
		cmds = append(cmds, a.setStatus(MsgPlaybackFailed(msg.index, msg.err), StatusError, defaultStatusTTL), a.bridge.wait())

	case fetchFailedMsg:
		a.refresh()
		cmds = append(cmds, a.setStatus(MsgFetchFailed(msg.err), StatusError, defaultStatusTTL), a.bridge.wait())

	case settledMsg:
		a.refresh()
		if index := msg.position - a.state.Evicted; index == a.cursor {
			a.coord.OnScrollSettled(index)
			a.refresh()
		}
		cmds = append(cmds, a.bridge.wait())

	case autoplayMsg:
		// A scroll before the delay elapsed hands activation to the settler.
		if a.cursor == 0 {
			a.coord.Presented()
			a.refresh()
		}

	case loadDoneMsg:
		a.loaded = true
		a.refresh()
		if msg.err != nil {
			debuglog.Errorf("loading feed: %v", msg.err)
			cmds = append(cmds, a.setStatus(MsgFetchFailed(msg.err), StatusError, 0))
		} else if a.status == MsgLoading || a.status == MsgReloading {
			a.status = ""
		}

	case searchDebounceFireMsg:
		if msg.seq == a.searchSeq && a.view == ViewSearch {
			if a.pendingQuery == "" {
				a.searchList.SetItems(nil)
			} else {
				cmds = append(cmds, a.performSearch(a.pendingQuery))
			}
		}

	case searchResultsMsg:
		if a.view == ViewSearch {
			cmds = append(cmds, a.applySearchResults(msg))
		}

	case statusClearMsg:
		a.clearStatus(msg.seq)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

// refresh pulls a fresh snapshot and keeps the cursor on the same item
// when older items were evicted from the head.
func (a *App) refresh() {
	st := a.coord.Snapshot()
	if delta := st.Evicted - a.state.Evicted; delta > 0 {
		a.cursor -= delta
	}
	a.state = st
	if a.cursor >= len(st.Items) {
		a.cursor = len(st.Items) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// moveTo scrolls to index: the item leaving view is deactivated, the
// incoming one may trigger pagination, and activation waits for the feed
// to settle.
func (a *App) moveTo(index int) tea.Cmd {
	if index < 0 || index >= len(a.state.Items) || index == a.cursor {
		return nil
	}
	prev := a.cursor
	a.cursor = index
	a.coord.OnItemLeftView(prev)
	a.coord.OnCellWillDisplay(index)
	a.settler.Report(index + a.state.Evicted)
	a.refresh()
	return nil
}

func (a *App) next() tea.Cmd {
	if a.cursor >= len(a.state.Items)-1 {
		if a.state.Exhausted {
			return a.setStatus(MsgEndOfFeed, StatusInfo, defaultStatusTTL)
		}
		a.coord.OnCellWillDisplay(a.cursor)
		a.refresh()
		return nil
	}
	return a.moveTo(a.cursor + 1)
}

func (a *App) previous() tea.Cmd {
	return a.moveTo(a.cursor - 1)
}

func (a *App) togglePlayPause() tea.Cmd {
	a.coord.OnTogglePlayPauseTapped()
	a.refresh()

	active := a.state.ActiveIndex
	if active < 0 {
		return a.setStatus(MsgNothingPlays, StatusWarn, defaultStatusTTL)
	}
	if a.state.Items[active].Playing {
		return a.setStatus(MsgPlaying, StatusSuccess, defaultStatusTTL)
	}
	return a.setStatus(MsgPaused, StatusInfo, defaultStatusTTL)
}

func (a *App) contentWidth() int {
	if a.width <= 0 {
		return 80
	}
	return a.width
}

func (a *App) contentHeight() int {
	if a.height <= 0 {
		return 24
	}
	return a.height - 3
}

func (a *App) View() string {
	var content string
	switch a.view {
	case ViewSearch:
		content = a.searchView()
	default:
		content = a.feedView()
	}

	content = lipgloss.NewStyle().
		Width(a.contentWidth()).
		Height(a.contentHeight()).
		MaxHeight(a.contentHeight()).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Top, content, renderSeparator(a.contentWidth()-1), a.statusBar())
}

func (a *App) feedView() string {
	width := a.contentWidth()
	items := a.state.Items
	if len(items) == 0 {
		msg := GetWelcomeMessage()
		if a.loaded && !a.state.Loading {
			msg = GetCompactBanner("No videos. Press " + displayKey(a.config.Keys.Bindings.Reload) + " to reload.")
		}
		return renderCentered(width, a.contentHeight(), msg)
	}

	subtitle := ""
	switch {
	case a.state.Loading:
		subtitle = a.spinner.View() + " loading more"
	case a.state.Exhausted:
		subtitle = "end of feed"
	}
	header := renderHeader(fmt.Sprintf("%s › %d/%d", CompactLogo, a.cursor+1, len(items)), subtitle, width)

	rows := []string{header, ""}
	if a.cursor > 0 {
		rows = append(rows, renderPeek("↑", items[a.cursor-1], width))
	}
	rows = append(rows, a.renderCard(items[a.cursor], a.state.Comments, width))
	if a.cursor < len(items)-1 {
		rows = append(rows, renderPeek("↓", items[a.cursor+1], width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) searchView() string {
	width := a.contentWidth()
	input := renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)

	hint := "Type to search • ↑↓: navigate • Enter: jump • Esc: back"
	if a.pendingQuery != "" && len(a.searchList.Items()) == 0 {
		hint = "No results • Esc: back"
	}

	return lipgloss.JoinVertical(lipgloss.Top,
		renderHeader("› search", "", width),
		"",
		input,
		renderMuted(hint),
		"",
		a.searchList.View(),
	)
}

func (a *App) statusBar() string {
	style := lipgloss.NewStyle().Width(a.contentWidth()).Padding(0, 1)
	if a.status != "" {
		return style.Render(a.statusKind.style()(a.status))
	}
	return style.Render(a.help.View(a.keyHandler.keys))
}
