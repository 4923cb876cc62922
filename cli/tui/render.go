package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"

	"gemchat/internal/markup"
	"gemchat/store"
)

// renderMessages paints the current session into viewport content.
func (m *Model) renderMessages() string {
	session := m.controller.Store().Current()
	width := m.viewport.Width

	if len(session.Messages) == 0 {
		empty := m.styles.EmptyState.Render("How can I help you today?\nType a message or attach a file below.")
		return lipgloss.Place(width, m.viewport.Height, lipgloss.Center, lipgloss.Center, empty)
	}

	var b strings.Builder
	for i, message := range session.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(message, width))
	}

	if session.Pending {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Thinking.Render(m.spinner.View() + " thinking…"))
	}
	return b.String()
}

func (m *Model) renderMessage(message *store.Message, width int) string {
	var b strings.Builder

	switch {
	case message.IsError():
		b.WriteString(m.styles.ErrorMessage.Render("⚠ " + message.Error))

	case message.Role == store.RoleUser:
		bubble := m.styles.UserMessage.MaxWidth(width * 4 / 5).Render(message.Content)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble))

	default:
		b.WriteString(m.renderBlocks(markup.Render(message.Content), width))
	}

	if len(message.Files) > 0 {
		b.WriteString("\n")
		for i, descriptor := range message.Files {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(m.styles.FileChip.Render(fileIcon(descriptor.MediaType) + " " + descriptor.Name))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Timestamp.Render(message.Timestamp.Format("15:04")))
	return b.String()
}

// renderBlocks paints display nodes with the active theme.
func (m *Model) renderBlocks(blocks []markup.Block, width int) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		switch block := block.(type) {
		case *markup.HeadingBlock:
			b.WriteString(m.styles.Heading.Render(m.renderSpans(block.Spans)))
		case *markup.CodeBlock:
			b.WriteString(m.renderCode(block, width))
		case *markup.TextBlock:
			b.WriteString(m.styles.AIMessage.MaxWidth(width * 4 / 5).Render(m.renderSpans(block.Spans)))
		}
	}
	return b.String()
}

func (m *Model) renderSpans(spans []markup.Span) string {
	var b strings.Builder
	for _, span := range spans {
		switch span := span.(type) {
		case *markup.BoldSpan:
			b.WriteString(m.styles.Bold.Render(span.Text))
		case *markup.LinkSpan:
			b.WriteString(m.styles.Link.Render(span.URL))
		case *markup.TextSpan:
			b.WriteString(span.Text)
		}
	}
	return b.String()
}

// renderCode syntax-highlights a code block node, falling back to the
// plain code style when the language is unknown.
func (m *Model) renderCode(block *markup.CodeBlock, width int) string {
	var b strings.Builder
	if block.Language != "" {
		b.WriteString(m.styles.CodeLanguage.Render(block.Language))
		b.WriteString("\n")
	}

	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, block.Code, block.Language, "terminal256", m.styles.ChromaStyle); err != nil {
		b.WriteString(m.styles.CodeBlock.MaxWidth(width).Render(block.Code))
		return b.String()
	}
	b.WriteString(strings.TrimSuffix(highlighted.String(), "\n"))
	return b.String()
}
