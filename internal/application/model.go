package application

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// Model is the bubbletea model behind `taskimport menu`.
type Model struct {
	current *Menu
	cursor  int

	svc   *core.Service
	input textinput.Model

	// prompting is set while the file path input has focus.
	prompting bool
	pending   core.ImportKind

	busy   bool
	status string
	err    error
}

// NewModel builds the menu tree for svc. Templates are written to dir.
func NewModel(svc *core.Service, dir string) Model {
	in := textinput.New()
	in.Placeholder = "path/to/file.csv"
	in.CharLimit = 512
	in.Width = 60

	return Model{
		current: buildMenuTree(svc, dir),
		svc:     svc,
		input:   in,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DoneMsg:
		m.busy = false
		m.status, m.err = string(msg), nil
		return m, nil

	case ErrMsg:
		m.busy = false
		m.status, m.err = "", msg.Err
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.prompting {
			return m.updatePrompt(msg)
		}
		if m.busy {
			return m, nil
		}
		return m.updateMenu(msg)
	}

	if m.prompting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.current.Items)-1 {
			m.cursor++
		}

	case "esc", "backspace":
		if m.current.Parent != nil {
			m.current = m.current.Parent
			m.cursor = 0
		}

	case "enter":
		item := m.current.Items[m.cursor]
		switch {
		case item.PromptKind != "":
			m.prompting = true
			m.pending = item.PromptKind
			m.input.SetValue("")
			m.status, m.err = "", nil
			return m, m.input.Focus()

		case item.Submenu != nil:
			m.current = item.Submenu
			m.cursor = 0

		case item.Action != nil:
			m.busy = true
			m.status, m.err = "Working...", nil
			return m, item.Action()
		}
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompting = false
		m.input.Blur()
		return m, nil

	case "enter":
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return m, nil
		}
		m.prompting = false
		m.input.Blur()
		m.busy = true
		m.status, m.err = fmt.Sprintf("Importing %s...", path), nil
		return m, runImport(m.svc, m.pending, path)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("taskdesk / " + m.current.Title))
	b.WriteString("\n\n")

	for i, item := range m.current.Items {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + item.Label))
		} else {
			b.WriteString("  " + item.Label)
		}
		b.WriteString("\n")
	}

	if m.prompting {
		fmt.Fprintf(&b, "\nFile to import as %s:\n%s\n", m.pending, m.input.View())
	}

	switch {
	case m.err != nil:
		b.WriteString("\n" + errStyle.Render(m.err.Error()) + "\n")
	case m.status != "":
		b.WriteString("\n" + doneStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n" + footerStyle.Render("enter: select  esc: back  q: quit"))
	return b.String()
}
