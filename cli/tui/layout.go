package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"gemchat/cli/tui/styles"
)

// adjustTextareaHeight resizes the textarea based on content line count.
func (m *Model) adjustTextareaHeight() {
	lineCount := strings.Count(m.textarea.Value(), "\n") + 1

	newHeight := lineCount
	if newHeight < styles.MinTextareaHeight {
		newHeight = styles.MinTextareaHeight
	}
	if newHeight > styles.MaxTextareaHeight {
		newHeight = styles.MaxTextareaHeight
	}

	if m.textarea.Height() != newHeight {
		m.textarea.SetHeight(newHeight)
		m.recalculateLayout()
	}
}

// recalculateLayout adjusts viewport and input dimensions.
func (m *Model) recalculateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	viewportHeight := m.height - styles.HeaderHeight - m.textarea.Height() - styles.InputBorderHeight
	if len(m.attachments) > 0 {
		viewportHeight -= 3
	}
	if m.err != nil {
		viewportHeight--
	}
	if viewportHeight < styles.MinViewportHeight {
		viewportHeight = styles.MinViewportHeight
	}
	viewportWidth := m.width - styles.SidebarWidth

	if !m.ready {
		m.viewport = viewport.New(viewportWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = viewportWidth
		m.viewport.Height = viewportHeight
	}
	m.refreshViewport()
	m.viewport.GotoBottom()

	m.textarea.SetWidth(m.width - m.styles.TextArea.GetHorizontalFrameSize())
	m.input.Width = m.width - 12
}

// refreshViewport re-renders the current session into the viewport.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
}
