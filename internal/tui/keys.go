package tui

import "github.com/charmbracelet/bubbles/key"

// DashboardKeys are the bindings of the approval dashboard.
type DashboardKeys struct {
	Up       key.Binding
	Down     key.Binding
	Approve  key.Binding
	Reject   key.Binding
	Sign     key.Binding
	Refresh  key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Filter   key.Binding
	Dismiss  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// NewDashboardKeys creates the dashboard key bindings.
func NewDashboardKeys() DashboardKeys {
	return DashboardKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Approve: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "approve"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject"),
		),
		Sign: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "upload signature"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p", "prev page"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle status filter"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "dismiss alert"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k DashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Approve, k.Reject, k.Sign, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k DashboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage},
		{k.Approve, k.Reject, k.Sign},
		{k.Refresh, k.Filter, k.Dismiss, k.Help, k.Quit},
	}
}
