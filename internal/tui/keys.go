package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextPara   key.Binding
	PrevPara   key.Binding
	Confirm    key.Binding
	ConfirmAll key.Binding
	Reject     key.Binding
	Toggle     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	NextPara: key.NewBinding(
		key.WithKeys("n", "tab"),
		key.WithHelp("n/tab", "next paragraph"),
	),
	PrevPara: key.NewBinding(
		key.WithKeys("N", "shift+tab"),
		key.WithHelp("N/S-tab", "prev paragraph"),
	),
	Confirm: key.NewBinding(
		key.WithKeys(" ", "c"),
		key.WithHelp("space/c", "confirm paragraph"),
	),
	ConfirmAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "confirm all & apply"),
	),
	Reject: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reject & discard"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "paragraphs/records"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
