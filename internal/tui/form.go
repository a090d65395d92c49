package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// formModel is the create form of one collection: one text input per field.
type formModel struct {
	title  string
	inputs []textinput.Model
	focus  int
	err    string
	saving bool
}

func newForm(title string, fields []string) formModel {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Placeholder = f
		in.Width = 50
		if i == 0 {
			in.Focus()
		}
		inputs[i] = in
	}
	return formModel{title: title, inputs: inputs}
}

func (f formModel) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Value()
	}
	return out
}

// update moves focus on tab/shift+tab and feeds everything else to the
// focused input. enter and esc are handled by the caller.
func (f formModel) update(msg tea.Msg) (formModel, tea.Cmd) {
	if len(f.inputs) == 0 {
		return f, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab", "down":
			f.inputs[f.focus].Blur()
			f.focus = (f.focus + 1) % len(f.inputs)
			f.inputs[f.focus].Focus()
			return f, nil
		case "shift+tab", "up":
			f.inputs[f.focus].Blur()
			f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
			f.inputs[f.focus].Focus()
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f formModel) View() string {
	var b strings.Builder
	for i, in := range f.inputs {
		b.WriteString(in.Placeholder)
		b.WriteString("\n")
		b.WriteString(in.View())
		if i < len(f.inputs)-1 {
			b.WriteString("\n\n")
		}
	}
	if f.saving {
		b.WriteString("\n\nSaving...")
	}
	if f.err != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(f.err))
	}
	return renderPage("NEW "+strings.ToUpper(f.title), b.String(), "tab: next field  enter: save  esc: cancel")
}

// isSubmit reports whether msg submits the form.
func isSubmit(msg tea.KeyMsg) bool {
	return key.Matches(msg, keys.enter)
}
