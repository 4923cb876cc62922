// Package ask implements the one-shot terminal surface: a single
// prompt, optionally with one attached file, answered and rendered in
// place.
package ask

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gemchat/chat"
	"gemchat/internal/attachment"
	"gemchat/internal/cli"
	"gemchat/internal/configuration"
	"gemchat/internal/markup"
)

// NewCmd instantiates and returns the ask command.
func NewCmd(config *configuration.Config, controller *chat.Controller) *cobra.Command {
	var opts struct {
		Files []string
		Save  bool
	}
	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send one prompt and print the rendered response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var prompt string
			var err error
			if len(args) > 0 {
				prompt = args[0]
			} else {
				prompt, err = cli.PromptUser()
				if err != nil {
					return errors.Wrap(err, "reading prompt")
				}
			}

			files, err := attachment.Load(opts.Files)
			if err != nil {
				return errors.Wrap(err, "loading attachments")
			}
			for i, file := range files {
				cli.FileInfo("attaching file #%d: %s (%s)\n", i+1, file.Name, file.MediaType)
			}

			session := controller.Store().Current()
			cli.Title("GEMCHAT [%s](%s)", config.Model, session.ID)
			cli.UserInput("> %s\n", prompt)
			cli.Separator()

			if err := controller.Send(ctx, session.ID, prompt, files); err != nil {
				cli.Error("%v\n", err)
				return err
			}

			messages := session.Messages
			last := messages[len(messages)-1]
			if last.IsError() {
				cli.Error("%s\n", last.Error)
				return errors.New(last.Error)
			}

			blocks := markup.Render(last.Content)
			cli.PrintBlocks(blocks)

			if opts.Save {
				saveCodeBlocks(blocks)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&opts.Files, "file", "f", nil, "attach a file to the prompt (only the first is forwarded)")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "offer to save code blocks from the response to files")
	return cmd
}

// saveCodeBlocks offers to write each code block node to a file.
func saveCodeBlocks(blocks []markup.Block) {
	index := 0
	for _, block := range blocks {
		code, ok := block.(*markup.CodeBlock)
		if !ok {
			continue
		}
		index++
		extension := code.Language
		if extension == "" {
			extension = "txt"
		}
		filename := fmt.Sprintf("block-%d.%s", index, extension)
		if !cli.QueryUser(fmt.Sprintf("Save code block #%d to %s?", index, filename)) {
			continue
		}
		if err := os.WriteFile(filename, []byte(code.Code+"\n"), 0644); err != nil {
			cli.Error("writing %s: %v\n", filename, err)
			continue
		}
		cli.FileInfo("wrote %s\n", filename)
	}
}
