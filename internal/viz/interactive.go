package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Builder creates the live view for a named preset.
type Builder func(name string) (Model, error)

// Entry is one row of the preset menu.
type Entry struct {
	Name        string
	Description string
}

const (
	stateMenu = iota
	stateSim
)

// picker lists presets and hands over to a live Model once one is chosen.
// Esc in the live view returns to the menu.
type picker struct {
	state   int
	cursor  int
	entries []Entry
	build   Builder
	live    Model
	err     error
	st      styles
}

func NewPicker(entries []Entry, build Builder) tea.Model {
	return picker{entries: entries, build: build, st: newStyles(Themes[0])}
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			p.state = stateMenu
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.entries)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.entries) == 0 {
			return p, nil
		}
		live, err := p.build(p.entries[p.cursor].Name)
		if err != nil {
			p.err = err
			return p, nil
		}
		p.live, p.state, p.err = live, stateSim, nil
		return p, p.live.Init()
	}
	return p, nil
}

func (p picker) View() string {
	if p.state == stateSim {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + p.st.header.Render("CLOTHSIM") + "\n")
	b.WriteString("    " + p.st.subtle.Render("mass-spring cloth") + "\n\n")
	for i, e := range p.entries {
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", p.st.key.Render("▸"), p.st.value.Bold(true).Render(fmt.Sprintf("%-10s", e.Name)), p.st.selected.Render(e.Description)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", p.st.subtle.Render(fmt.Sprintf("%-10s", e.Name)), p.st.hint.Render(e.Description)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + p.st.failed.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + p.st.keyHints("j/k", "navigate", "enter", "select", "esc", "back", "q", "quit") + "\n")
	return b.String()
}

// RunPicker shows the preset menu full screen and blocks until it quits.
func RunPicker(entries []Entry, build Builder) error {
	_, err := tea.NewProgram(NewPicker(entries, build), tea.WithAltScreen()).Run()
	return err
}
