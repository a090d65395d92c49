package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up        key.Binding
	down      key.Binding
	nextTab   key.Binding
	prevTab   key.Binding
	enter     key.Binding
	esc       key.Binding
	quit      key.Binding
	newItem   key.Binding
	delete    key.Binding
	sync      key.Binding
	copy      key.Binding
	review    key.Binding
	reveal    key.Binding
	buildInfo key.Binding
	yes       key.Binding
	no        key.Binding
}

var keys = keyMap{
	up:        key.NewBinding(key.WithKeys("up", "k")),
	down:      key.NewBinding(key.WithKeys("down", "j")),
	nextTab:   key.NewBinding(key.WithKeys("tab", "right", "l")),
	prevTab:   key.NewBinding(key.WithKeys("shift+tab", "left", "h")),
	enter:     key.NewBinding(key.WithKeys("enter")),
	esc:       key.NewBinding(key.WithKeys("esc")),
	quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
	newItem:   key.NewBinding(key.WithKeys("n")),
	delete:    key.NewBinding(key.WithKeys("d")),
	sync:      key.NewBinding(key.WithKeys("s")),
	copy:      key.NewBinding(key.WithKeys("c")),
	review:    key.NewBinding(key.WithKeys("r")),
	reveal:    key.NewBinding(key.WithKeys(" ")),
	buildInfo: key.NewBinding(key.WithKeys("v")),
	yes:       key.NewBinding(key.WithKeys("y")),
	no:        key.NewBinding(key.WithKeys("n", "esc")),
}
