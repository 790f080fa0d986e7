package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Skip    key.Binding
	End     key.Binding
	Restart key.Binding
	Start   key.Binding
	Visit   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:    key.NewBinding(key.WithKeys("n", "right", "enter"), key.WithHelp("n/→", "next")),
		Prev:    key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "back")),
		Skip:    key.NewBinding(key.WithKeys("s", "esc"), key.WithHelp("s", "skip")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "finish")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Start:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "start tour")),
		Visit:   key.NewBinding(key.WithKeys("H", "F", "C", "W", "P"), key.WithHelp("H/F/C/W/P", "open page")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Skip, k.Start, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Restart},
		{k.Skip, k.End},
		{k.Start, k.Visit},
		{k.Help, k.Quit},
	}
}
