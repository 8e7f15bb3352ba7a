package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up             key.Binding
	Down           key.Binding
	Focus          key.Binding
	Toggle         key.Binding
	Delete         key.Binding
	Edit           key.Binding
	Commit         key.Binding
	Cancel         key.Binding
	ToggleAll      key.Binding
	ClearCompleted key.Binding
	FilterAll      key.Binding
	FilterActive   key.Binding
	FilterDone     key.Binding
	Dismiss        key.Binding
	Quit           key.Binding
}

var keys = keyMap{
	Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Focus:          key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "new/list")),
	Toggle:         key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	Delete:         key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Edit:           key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
	Commit:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Cancel:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	ToggleAll:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle all")),
	ClearCompleted: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
	FilterAll:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
	FilterActive:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
	FilterDone:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
	Dismiss:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
	Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Edit, k.Delete, k.ToggleAll, k.ClearCompleted, k.FilterAll, k.FilterActive, k.FilterDone, k.Focus, k.Quit}
}
