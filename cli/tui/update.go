package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"gemchat/cli/tui/styles"
	"gemchat/internal/attachment"
	"gemchat/store"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Always update the alert model with every message.
	outAlert, alertCmd := m.alert.Update(msg)
	m.alert = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.anyPending() {
			m.refreshViewport()
		}
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case generationResultMsg:
		if msg.err != nil {
			m.controller.Fail(msg.request, msg.err)
		} else {
			m.controller.Complete(msg.request, msg.text)
		}
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.mode != modeCompose {
			return m.updateInputMode(msg, cmds)
		}

		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "ctrl+n":
			m.controller.NewSession()
			m.attachments = nil
			m.refreshViewport()
			return m, tea.Batch(cmds...)

		case "ctrl+x":
			m.controller.DeleteSession(m.controller.Store().CurrentID())
			m.attachments = nil
			m.refreshViewport()
			return m, tea.Batch(cmds...)

		case "ctrl+j", "ctrl+down":
			m.selectAdjacentSession(1)
			return m, tea.Batch(cmds...)

		case "ctrl+k", "ctrl+up":
			m.selectAdjacentSession(-1)
			return m, tea.Batch(cmds...)

		case "ctrl+r":
			m.mode = modeRename
			m.input.Placeholder = "New title"
			m.input.SetValue(m.controller.Store().Current().Title)
			m.input.CursorEnd()
			m.input.Focus()
			m.textarea.Blur()
			return m, textinput.Blink

		case "ctrl+o":
			m.mode = modeAttach
			m.input.Placeholder = "Path to file"
			m.input.SetValue("")
			m.input.Focus()
			m.textarea.Blur()
			return m, textinput.Blink

		case "ctrl+t":
			m.theme = m.theme.Toggle()
			m.styles = styles.New(m.theme)
			m.refreshViewport()
			return m, tea.Batch(cmds...)

		case "alt+w":
			if content, ok := m.lastAssistantContent(); ok && m.clipboardOK {
				clipboard.Write(clipboard.FmtText, []byte(content))
				cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.InfoKey, "Copied to clipboard!"))
			}
			return m, tea.Batch(cmds...)

		case "enter":
			if cmd := m.sendMessage(); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}

		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		m.adjustTextareaHeight()
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// updateInputMode handles keys while the single-line input is active
// (rename or attach).
func (m *Model) updateInputMode(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.exitInputMode()
		return m, tea.Batch(cmds...)

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		switch m.mode {
		case modeRename:
			m.controller.RenameSession(m.controller.Store().CurrentID(), value)
		case modeAttach:
			if value != "" {
				files, err := attachment.Load([]string{value})
				if err != nil {
					log.Error("loading attachment", "path", value, "error", err)
					cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.ErrorKey, "Could not read file"))
				} else {
					m.attachments = append(m.attachments, files...)
				}
			}
		}
		m.exitInputMode()
		m.refreshViewport()
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) exitInputMode() {
	m.mode = modeCompose
	m.input.Blur()
	m.input.SetValue("")
	m.textarea.Focus()
}

// selectAdjacentSession moves the current pointer up or down the
// sidebar.
func (m *Model) selectAdjacentSession(delta int) {
	sessions := m.controller.Store().Sessions()
	currentID := m.controller.Store().CurrentID()
	for i, session := range sessions {
		if session.ID == currentID {
			next := i + delta
			if next >= 0 && next < len(sessions) {
				m.controller.SelectSession(sessions[next].ID)
				m.refreshViewport()
				m.viewport.GotoBottom()
			}
			return
		}
	}
}

// lastAssistantContent returns the content of the current session's
// most recent assistant message.
func (m *Model) lastAssistantContent() (string, bool) {
	session := m.controller.Store().Current()
	for i := len(session.Messages) - 1; i >= 0; i-- {
		message := session.Messages[i]
		if message.Role == store.RoleAssistant && !message.IsError() {
			return message.Content, true
		}
	}
	return "", false
}

// anyPending reports whether any session is awaiting a response.
func (m *Model) anyPending() bool {
	for _, session := range m.controller.Store().Sessions() {
		if session.Pending {
			return true
		}
	}
	return false
}
