package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gemchat/cli/tui/styles"
)

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	chatPane := m.viewport.View()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), chatPane)
	b.WriteString(body)
	b.WriteString("\n")

	if len(m.attachments) > 0 {
		b.WriteString(m.renderAttachmentBar())
		b.WriteString("\n")
	}

	switch m.mode {
	case modeRename:
		b.WriteString(m.styles.PromptMode.Render("Rename: "))
		b.WriteString(m.input.View())
	case modeAttach:
		b.WriteString(m.styles.PromptMode.Render("Attach: "))
		b.WriteString(m.input.View())
	default:
		b.WriteString(m.styles.TextArea.Render(m.textarea.View()))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.styles.ErrorMessage.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render(
		"enter send │ ctrl+n new │ ctrl+j/k switch │ ctrl+r rename │ ctrl+x delete │ ctrl+o attach │ ctrl+t theme │ alt+w copy │ ctrl+c quit"))

	return m.alert.Render(b.String())
}

func (m *Model) renderTitle() string {
	session := m.controller.Store().Current()
	title := fmt.Sprintf(" 💬 %s │ 🤖 %s ", session.Title, m.config.Model)
	return m.styles.Title.Width(m.width).Render(title)
}

// renderSidebar paints the session list, newest first, current
// highlighted, a spinner on sessions awaiting a response.
func (m *Model) renderSidebar() string {
	var b strings.Builder
	currentID := m.controller.Store().CurrentID()
	for _, session := range m.controller.Store().Sessions() {
		title := styles.Truncate(session.Title, styles.TruncateLength)
		switch {
		case session.ID == currentID:
			b.WriteString(m.styles.SidebarCurrent.Render(title))
		case session.Pending:
			b.WriteString(m.styles.SidebarPending.Render(m.spinner.View() + title))
		default:
			b.WriteString(m.styles.SidebarItem.Render(title))
		}
		b.WriteString("\n")
	}
	return m.styles.Sidebar.Height(m.viewport.Height).Render(b.String())
}

func (m *Model) renderAttachmentBar() string {
	chips := make([]string, 0, len(m.attachments))
	for _, file := range m.attachments {
		chips = append(chips, m.styles.FileChip.Render(fileIcon(file.MediaType)+" "+file.Name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, chips...)
}

func fileIcon(mediaType string) string {
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return "🖼"
	case mediaType == "application/pdf":
		return "📄"
	default:
		return "📎"
	}
}
