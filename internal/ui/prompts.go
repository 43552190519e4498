package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"})

	promptSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#00FF00"})

	promptUnselectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"})

	promptCursorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"})

	promptDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"}).
			Padding(0, 1)
)

// YesNoPrompt is an interactive yes/no question.
type YesNoPrompt struct {
	question    string
	description string
	selected    bool // true = Yes, false = No
	confirmed   bool
	cancelled   bool
}

// NewYesNoPrompt creates a new yes/no prompt
func NewYesNoPrompt(question, description string, defaultYes bool) *YesNoPrompt {
	return &YesNoPrompt{
		question:    question,
		description: description,
		selected:    defaultYes,
	}
}

func (m YesNoPrompt) Init() tea.Cmd {
	return nil
}

func (m YesNoPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "left", "right", "h", "l", "tab":
			m.selected = !m.selected
		case "y", "Y":
			m.selected = true
			m.confirmed = true
			return m, tea.Quit
		case "n", "N":
			m.selected = false
			m.confirmed = true
			return m, tea.Quit
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m YesNoPrompt) View() string {
	var b strings.Builder
	b.WriteString(promptTitleStyle.Render("? "+m.question) + "\n")
	if m.description != "" {
		b.WriteString(promptDimStyle.Render("  "+m.description) + "\n")
	}

	yes, no := promptUnselectedStyle.Render("Yes"), promptUnselectedStyle.Render("No")
	if m.selected {
		yes = promptSelectedStyle.Render("❯ Yes")
	} else {
		no = promptSelectedStyle.Render("❯ No")
	}
	b.WriteString("\n  " + yes + "   " + no + "\n\n")
	b.WriteString(promptDimStyle.Render("  ← → to choose • enter to confirm • esc to cancel"))
	return b.String()
}

// Result returns the answer and whether it was confirmed.
func (m YesNoPrompt) Result() (bool, bool) {
	return m.selected, m.confirmed && !m.cancelled
}

// RunYesNoPrompt asks the question and returns the answer. A cancelled
// prompt answers no.
func RunYesNoPrompt(question, description string, defaultYes bool) (bool, error) {
	model, err := tea.NewProgram(NewYesNoPrompt(question, description, defaultYes)).Run()
	if err != nil {
		return false, err
	}
	selected, confirmed := model.(YesNoPrompt).Result()
	return selected && confirmed, nil
}

// SelectOption represents an option in the select prompt
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// SelectPrompt is an interactive list selection.
type SelectPrompt struct {
	title       string
	description string
	options     []SelectOption
	cursor      int
	confirmed   bool
	cancelled   bool
}

// NewSelectPrompt creates a new selection prompt
func NewSelectPrompt(title, description string, options []SelectOption) *SelectPrompt {
	return &SelectPrompt{
		title:       title,
		description: description,
		options:     options,
	}
}

func (m SelectPrompt) Init() tea.Cmd {
	return nil
}

func (m SelectPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SelectPrompt) View() string {
	var b strings.Builder

	b.WriteString(promptTitleStyle.Render("? "+m.title) + "\n")
	if m.description != "" {
		b.WriteString(promptDimStyle.Render("  "+m.description) + "\n")
	}
	b.WriteString("\n")

	for i, opt := range m.options {
		cursor := "  "
		style := promptUnselectedStyle
		if i == m.cursor {
			cursor = promptCursorStyle.Render("❯ ")
			style = promptSelectedStyle
		}

		b.WriteString(cursor + style.Render(opt.Label))
		if opt.Description != "" && i == m.cursor {
			b.WriteString(promptDimStyle.Render(" - " + opt.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(promptDimStyle.Render("  ↑ ↓ to navigate • enter to select • esc to cancel"))
	return b.String()
}

// Result returns the selected option and whether it was confirmed
func (m SelectPrompt) Result() (SelectOption, bool) {
	if m.cursor < 0 || m.cursor >= len(m.options) {
		return SelectOption{}, false
	}
	return m.options[m.cursor], m.confirmed && !m.cancelled
}

// RunSelectPrompt runs the selection prompt. A cancelled prompt returns the
// zero option.
func RunSelectPrompt(title, description string, options []SelectOption) (SelectOption, error) {
	model, err := tea.NewProgram(NewSelectPrompt(title, description, options)).Run()
	if err != nil {
		return SelectOption{}, err
	}

	selected, confirmed := model.(SelectPrompt).Result()
	if !confirmed {
		return SelectOption{}, nil
	}
	return selected, nil
}

// Box prints content in a rounded box under an optional title.
func Box(title, content string) {
	if title != "" {
		printLine(promptTitleStyle.Render("  " + title))
	}
	printLine(boxStyle.Render(content))
}
