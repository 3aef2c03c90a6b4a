package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel is the bubbletea model behind the interactive approval prompt.
// The user must type the root path verbatim to approve the pending changes.
type confirmModel struct {
	rootPath  string
	input     textinput.Model
	confirmed bool
	cancelled bool
}

func newConfirmModel(rootPath string) confirmModel {
	ti := textinput.New()
	ti.Placeholder = rootPath
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	return confirmModel{
		rootPath: rootPath,
		input:    ti,
	}
}

// Init implements tea.Model.
func (m confirmModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.confirmed = strings.TrimSpace(m.input.Value()) == m.rootPath
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m confirmModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("⚠ You are about to modify the filesystem under"))
	b.WriteString(" ")
	b.WriteString(PathStyle.Render(m.rootPath))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Type the root path %s to confirm:\n", PathStyle.Render(m.rootPath)))
	b.WriteString(InputStyle.Render(m.input.View()))
	b.WriteString(HelpStyle.Render("\nenter confirm • esc cancel"))
	b.WriteString("\n")

	return b.String()
}
