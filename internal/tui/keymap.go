package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start     key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Technique key.Binding
	Finish    key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Choose    key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/pause")),
		Faster:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		Technique: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "technique")),
		Finish:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "finish")),
		Up:        key.NewBinding(key.WithKeys("up", "k")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Left:      key.NewBinding(key.WithKeys("left", "h")),
		Right:     key.NewBinding(key.WithKeys("right", "l")),
		Choose:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "choose")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

// readingKeys are shown in the footer while reading.
type readingKeys keyMap

func (k readingKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Faster, k.Slower, k.Technique, k.Finish, k.Quit}
}

func (k readingKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// choiceKeys are shown in the footer while answering questions.
type choiceKeys keyMap

func (k choiceKeys) ShortHelp() []key.Binding {
	up := k.Up
	up.SetHelp("↑/↓", "move")
	return []key.Binding{up, k.Choose, k.Quit}
}

func (k choiceKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// optionIndex maps 1-4 and a-d to an option index.
func optionIndex(s string, n int) (int, bool) {
	if len(s) != 1 {
		return 0, false
	}
	var idx int
	switch c := s[0]; {
	case c >= '1' && c <= '9':
		idx = int(c - '1')
	case c >= 'a' && c <= 'i':
		idx = int(c - 'a')
	default:
		return 0, false
	}
	return idx, idx < n
}
