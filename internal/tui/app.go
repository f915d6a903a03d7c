package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unifai-network/unifai-toolkits/internal/browser"
	"github.com/unifai-network/unifai-toolkits/internal/news"
)

const fetchTimeout = 30 * time.Second

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilter
	modeHelp
)

type App struct {
	svc     *news.Service
	entries []entry
	cursor  int
	focus   focusPane
	mode    mode

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
	help        help.Model
	filterBar   filterBar

	refreshing    bool
	loading       bool
	previewScroll int
	currentDate   string
	fetchedAt     time.Time
	state         string
	err           error

	openURL func(string) error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	News *news.Service
	// Feeds are the filter tabs, in display order.
	Feeds []string
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search headlines..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return &App{
		svc:         opts.News,
		filterBar:   newFilterBar(opts.Feeds),
		searchInput: ti,
		spinner:     sp,
		help:        help.New(),
		currentDate: time.Now().Format("Jan 2"),
		loading:     true,
		openURL:     browser.Open,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCmd(), a.spinner.Tick)
}

// loadCmd captures current query state into the closure to avoid races.
func (a *App) loadCmd() tea.Cmd {
	svc := a.svc
	limit := news.Count(news.MaxPerFeed)
	payload := news.Payload{LimitPerFeed: &limit, Sources: a.filterBar.activeFeeds()}
	search := a.searchInput.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		records, err := svc.Latest(ctx, payload)
		if err != nil {
			return newsErrMsg{err: err}
		}
		snap := svc.Collection().Snapshot()
		return newsLoadedMsg{
			entries:   entriesFrom(records, search),
			fetchedAt: snap.FetchedAt,
			state:     snap.State.String(),
		}
	}
}

// refreshCmd forces an upstream fetch. A failed refresh keeps the old
// headlines, so the error comes from the snapshot rather than Refresh.
func (a *App) refreshCmd() tea.Cmd {
	coll := a.svc.Collection()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if _, err := coll.Refresh(ctx); err != nil {
			return refreshDoneMsg{err: err}
		}
		return refreshDoneMsg{err: coll.Snapshot().LastErr}
	}
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.openURL
	return func() tea.Msg {
		if err := open(url); err != nil {
			return newsErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) selected() *entry {
	if len(a.entries) == 0 || a.cursor >= len(a.entries) {
		return nil
	}
	return &a.entries[a.cursor]
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case newsLoadedMsg:
		a.loading = false
		a.entries = msg.entries
		a.fetchedAt = msg.fetchedAt
		a.state = msg.state
		if a.cursor >= len(a.entries) {
			a.cursor = max(0, len(a.entries)-1)
		}
		return a, nil

	case newsErrMsg:
		a.loading = false
		a.err = msg.err
		return a, nil

	case refreshDoneMsg:
		a.refreshing = false
		a.err = msg.err
		return a, a.loadCmd()

	case spinner.TickMsg:
		if a.refreshing || a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if key.Matches(msg, keys.Help, keys.Quit) || msg.String() == "esc" {
			a.mode = modeNormal
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Down):
		a.move(1)
	case key.Matches(msg, keys.Up):
		a.move(-1)
	case key.Matches(msg, keys.Top):
		a.cursor, a.previewScroll = 0, 0
	case key.Matches(msg, keys.Bottom):
		a.cursor, a.previewScroll = max(0, len(a.entries)-1), 0
	case key.Matches(msg, keys.SwitchPane):
		a.focus = 1 - a.focus
	case key.Matches(msg, keys.Open):
		if e := a.selected(); e != nil && e.Link != "" {
			return a, a.openCmd(e.Link)
		}
	case key.Matches(msg, keys.Search):
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case key.Matches(msg, keys.Filter):
		a.mode = modeFilter
		a.filterBar.filterMode = true
	case key.Matches(msg, keys.Refresh):
		if !a.refreshing {
			a.refreshing = true
			return a, tea.Batch(a.refreshCmd(), a.spinner.Tick)
		}
	case key.Matches(msg, keys.Help):
		a.mode = modeHelp
	}
	return a, nil
}

// move steps the cursor in the list pane or scrolls the preview.
func (a *App) move(delta int) {
	if a.focus == focusPreview {
		a.previewScroll = max(0, a.previewScroll+delta)
		return
	}
	next := a.cursor + delta
	if next < 0 || next >= len(a.entries) {
		return
	}
	a.cursor = next
	a.previewScroll = 0
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		return a, a.loadCmd()
	case tea.KeyEnter:
		a.mode = modeNormal
		a.searchInput.Blur()
		a.cursor = 0
		return a, a.loadCmd()
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fb := &a.filterBar
	switch {
	case key.Matches(msg, keys.ExitFilter):
		a.mode = modeNormal
		fb.filterMode = false
		return a, nil
	case key.Matches(msg, keys.TabLeft):
		fb.filterCursor = max(0, fb.filterCursor-1)
		return a, nil
	case key.Matches(msg, keys.TabRight):
		fb.filterCursor = min(len(fb.feeds)-1, fb.filterCursor+1)
		return a, nil
	case key.Matches(msg, keys.Toggle):
		fb.toggleCurrent()
	case key.Matches(msg, keys.ShowAll):
		fb.clear()
	default:
		// 1-9 toggle a feed by its tab number
		s := msg.String()
		if len(s) != 1 || s[0] < '1' || s[0] > '9' || int(s[0]-'1') >= len(fb.feeds) {
			return a, nil
		}
		fb.toggle(fb.feeds[s[0]-'1'])
	}
	a.cursor = 0
	return a, a.loadCmd()
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  web3 news")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1

	if contentHeight < 3 {
		contentHeight = 3
	}

	headerLeft := headerStyle.Render("web3 news")
	headerRight := headerDateStyle.Render(a.currentDate)
	headerGap := max(0, a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight))
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	filter := a.filterBar.render(a.width)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	innerListW := listWidth - 4 // border + padding
	listContent := renderList(a.entries, a.cursor, contentHeight, innerListW)
	if a.loading && len(a.entries) == 0 {
		listContent = lipglossCenter(a.spinner.View()+" loading headlines", innerListW, contentHeight)
	}

	listStyle := listPaneStyle
	if a.focus == focusList {
		listStyle = listPaneActiveStyle
	}
	listPane := listStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	previewContent := renderPreview(a.selected(), previewWidth-4, contentHeight, a.previewScroll)
	previewStyle := previewPaneStyle
	if a.focus == focusPreview {
		previewStyle = previewPaneActiveStyle
	}
	previewPane := previewStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(statusInfo{
		count:      len(a.entries),
		filter:     a.filterBar.activeLabel(),
		state:      a.state,
		fetchedAt:  a.fetchedAt,
		searching:  a.mode == modeSearch,
		refreshing: a.refreshing,
	}, a.width)
	if a.refreshing {
		status = a.spinner.View() + " " + status
	}
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("web3 news")
	card := helpCardStyle.Render(title + helpDimStyle.Render(" keyboard shortcuts") + "\n\n" + a.help.FullHelpView(keys.FullHelp()))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
