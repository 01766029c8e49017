package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	toggle   key.Binding
	next     key.Binding
	prev     key.Binding
	volUp    key.Binding
	volDown  key.Binding
	like     key.Binding
	seekFwd  key.Binding
	seekBack key.Binding

	search    key.Binding
	library   key.Binding
	playlists key.Binding
	queue     key.Binding
	player    key.Binding

	up    key.Binding
	down  key.Binding
	enter key.Binding
	add   key.Binding
	back  key.Binding
	help  key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		volUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volDown:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "volume down")),
		like:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like/unlike")),
		seekFwd:  key.NewBinding(key.WithKeys("f", "right"), key.WithHelp("f", "seek +10s")),
		seekBack: key.NewBinding(key.WithKeys("b", "left"), key.WithHelp("b", "seek -10s")),

		search:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "search")),
		library:   key.NewBinding(key.WithKeys("a", "2"), key.WithHelp("a", "liked songs")),
		playlists: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "playlists")),
		queue:     key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "queue")),
		player:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "player")),

		up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		add:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "add to queue")),
		back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.next, k.search, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.next, k.prev, k.like},
		{k.seekBack, k.seekFwd, k.volDown, k.volUp},
		{k.player, k.library, k.playlists, k.queue},
		{k.search, k.enter, k.add, k.back},
		{k.help, k.quit},
	}
}
