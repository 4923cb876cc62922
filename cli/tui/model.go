// Package tui implements the full-screen chat interface: a session
// sidebar, a message viewport and a composer, over the lifecycle
// controller.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"gemchat/chat"
	"gemchat/cli/tui/styles"
	"gemchat/internal/attachment"
	"gemchat/internal/configuration"
	"gemchat/internal/debug"
)

var log = debug.GetLogger()

// inputMode selects what the bottom input line is editing.
type inputMode int

const (
	modeCompose inputMode = iota
	modeRename
	modeAttach
)

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	// Core dependencies
	ctx        context.Context
	config     *configuration.Config
	controller *chat.Controller

	// UI components
	textarea textarea.Model
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	alert    bubbleup.AlertModel

	// UI state
	mode        inputMode
	theme       styles.Theme
	styles      styles.Styles
	attachments []*attachment.File
	width       int
	height      int
	ready       bool
	quitting    bool
	// clipboardOK gates the copy keybind on the system clipboard
	// being usable.
	clipboardOK bool
	err         error
}

// New creates a new chat interface model.
func New(ctx context.Context, config *configuration.Config, controller *chat.Controller) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message… (enter to send)"
	ta.Prompt = "┃ "
	ta.SetHeight(styles.MinTextareaHeight)
	ta.ShowLineNumbers = false
	ta.Focus()

	input := textinput.New()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	alert := bubbleup.NewAlertModel(25, true, 1)

	clipboardOK := true
	if err := clipboard.Init(); err != nil {
		log.Error("initializing clipboard", "error", err)
		clipboardOK = false
	}

	theme := styles.ThemeDark
	return &Model{
		ctx:         ctx,
		config:      config,
		controller:  controller,
		textarea:    ta,
		input:       input,
		spinner:     sp,
		alert:       *alert,
		theme:       theme,
		styles:      styles.New(theme),
		clipboardOK: clipboardOK,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.alert.Init(),
	)
}
