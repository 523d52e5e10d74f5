package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"chatbox/src/app"
	"chatbox/src/engine"
)

// CLI represents the main CLI structure
type CLI struct {
	SettingsFile      string        `help:"Path to the model settings file (defaults to the XDG config dir)"`
	ConversationsFile string        `help:"Path to the conversations file (defaults to the XDG data dir)"`
	IdleTimeout       time.Duration `default:"0" help:"Abort a stream after this much silence (0 disables)"`
	LogLevel          string        `default:"warn" help:"Log level"`

	Chat          ChatCmd          `cmd:"" default:"1" help:"Interactive chat session (default)"`
	Send          SendCmd          `cmd:"" help:"Send a single message"`
	Models        ModelsCmd        `cmd:"" help:"Manage configured models"`
	Conversations ConversationsCmd `cmd:"" help:"Manage stored conversations"`
}

// newApp builds the application instance shared by all commands.
func newApp(cli *CLI, sink engine.Sink) *app.App {
	return app.New(app.Config{
		SettingsPath:      cli.SettingsFile,
		ConversationsPath: cli.ConversationsFile,
		IdleTimeout:       cli.IdleTimeout,
		Sink:              sink,
		Logger:            createCLILogger(cli.LogLevel),
	})
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("chatbox"),
		kong.Description("Chat with configurable LLM backends, with code context and saved conversations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
