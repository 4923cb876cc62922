package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"gemchat/chat"
	"gemchat/internal/llm"
)

// generationResultMsg carries the settled outcome of a dispatched
// request back onto the event loop, still bound to its originating
// session.
type generationResultMsg struct {
	request *chat.Request
	text    string
	err     error
}

// sendMessage validates the composer content, applies the optimistic
// user-message insert, and returns the command resolving the request
// off the event loop.
func (m *Model) sendMessage() tea.Cmd {
	content := m.textarea.Value()
	files := m.attachments

	request, err := m.controller.Prepare(m.controller.Store().CurrentID(), content, files)
	if err != nil {
		// Validation rejections leave the store untouched; anything
		// else is unexpected and logged.
		if llm.KindOf(err) != llm.KindValidation {
			log.Error("preparing message", "error", err)
		}
		m.err = err
		return nil
	}
	m.err = nil
	m.textarea.Reset()
	m.attachments = nil
	m.adjustTextareaHeight()
	m.refreshViewport()
	m.viewport.GotoBottom()

	return tea.Batch(m.spinner.Tick, m.resolve(request))
}

// resolve runs the generation call in the background and feeds the
// outcome back as a message.
func (m *Model) resolve(request *chat.Request) tea.Cmd {
	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		text, err := controller.Resolve(ctx, request)
		return generationResultMsg{request: request, text: text, err: errors.WithStack(err)}
	}
}
