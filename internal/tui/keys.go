package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down, Top, Bottom key.Binding
	SwitchPane           key.Binding
	Open, Refresh        key.Binding
	Search, Filter       key.Binding
	Help, Quit           key.Binding

	// filter mode
	TabLeft, TabRight, Toggle, ShowAll, ExitFilter key.Binding
}

var keys = keyMap{
	Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
	Top:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
	Bottom:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
	SwitchPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "list/preview")),
	Open:       key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "open in browser")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh feeds")),
	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter feeds")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	TabLeft:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev feed")),
	TabRight:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next feed")),
	Toggle:     key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle feed")),
	ShowAll:    key.NewBinding(key.WithKeys("0", "a"), key.WithHelp("0/a", "all feeds")),
	ExitFilter: key.NewBinding(key.WithKeys("esc", "f"), key.WithHelp("esc", "done")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Search, k.Filter, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.SwitchPane},
		{k.Open, k.Refresh, k.Search, k.Filter},
		{k.TabLeft, k.TabRight, k.Toggle, k.ShowAll, k.ExitFilter},
		{k.Help, k.Quit},
	}
}
