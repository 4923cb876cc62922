package main

import (
	"context"

	"github.com/spf13/cobra"

	"gemchat/ask"
	"gemchat/chat"
	"gemchat/cli/tui"
	"gemchat/internal/attachment"
	"gemchat/internal/configuration"
	"gemchat/internal/llm"
	"gemchat/store"
	"gemchat/webserver"
)

const configFilepath = "~/.config/gemchat/config.json"

var rootCmd = &cobra.Command{
	Use:     "gemchat",
	Short:   "A CLI for chatting with Gemini",
	Version: "1.0",
}

func main() {
	config, err := configuration.Parse(configFilepath)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	client, err := llm.NewGeminiClient(ctx, config.GeminiAPIKey)
	if err != nil {
		panic(err)
	}

	controller := chat.NewController(store.New(), client, attachment.NewRegistry(), config)

	rootCmd.AddCommand(tui.NewCmd(config, controller))
	rootCmd.AddCommand(ask.NewCmd(config, controller))
	rootCmd.AddCommand(webserver.NewServeCmd(config, controller))
	rootCmd.Execute()
}
