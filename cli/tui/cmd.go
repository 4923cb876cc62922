package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gemchat/chat"
	"gemchat/internal/configuration"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config, controller *chat.Controller) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m := New(ctx, config, controller)
			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithMouseCellMotion(),
			)
			if _, err := p.Run(); err != nil {
				return errors.Wrap(err, "running chat")
			}
			return nil
		},
	}
}
