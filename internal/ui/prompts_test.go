package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(m tea.Model, key string) tea.Model {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, _ = m.Update(msg)
	return m
}

func TestSelectPrompt(t *testing.T) {
	options := []SelectOption{{Label: "web", Value: "web"}, {Label: "api", Value: "api", Description: "packages/api"}}

	var m tea.Model = *NewSelectPrompt("Pick", "", options)
	m = press(m, "down")
	m = press(m, "down") // stays on the last option
	if !strings.Contains(m.View(), "packages/api") {
		t.Errorf("description of the current option missing:\n%s", m.View())
	}
	m = press(m, "enter")

	got, ok := m.(SelectPrompt).Result()
	if !ok || got.Value != "api" {
		t.Errorf("Result() = %+v, %v", got, ok)
	}

	m = press(*NewSelectPrompt("Pick", "", options), "esc")
	if _, ok := m.(SelectPrompt).Result(); ok {
		t.Error("cancelled prompt should not confirm")
	}

	if _, ok := NewSelectPrompt("Pick", "", nil).Result(); ok {
		t.Error("empty prompt should not confirm")
	}
}

func TestYesNoPrompt(t *testing.T) {
	var m tea.Model = *NewYesNoPrompt("Overwrite?", "", false)
	m = press(m, "tab")
	m = press(m, "enter")
	if yes, ok := m.(YesNoPrompt).Result(); !yes || !ok {
		t.Errorf("Result() = %v, %v", yes, ok)
	}

	m = press(*NewYesNoPrompt("Overwrite?", "", true), "n")
	if yes, ok := m.(YesNoPrompt).Result(); yes || !ok {
		t.Errorf("Result() after n = %v, %v", yes, ok)
	}

	m = press(*NewYesNoPrompt("Overwrite?", "", true), "q")
	if _, ok := m.(YesNoPrompt).Result(); ok {
		t.Error("cancelled prompt should not confirm")
	}
}

func TestBox(t *testing.T) {
	var buf bytes.Buffer
	prev := Output()
	SetOutput(&buf)
	defer SetOutput(prev)

	Box("Doctor", "all good")
	if !strings.Contains(buf.String(), "Doctor") || !strings.Contains(buf.String(), "all good") {
		t.Errorf("Box output = %q", buf.String())
	}
}
