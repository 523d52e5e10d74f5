package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"chatbox/src/chat"
	"chatbox/src/engine"
	"chatbox/src/termsink"
)

// SendCmd sends a single message and exits.
type SendCmd struct {
	Message      string   `arg:"" help:"The message to send"`
	Model        string   `required:"" short:"m" help:"Name of the configured model to use"`
	Conversation string   `short:"c" help:"Continue an existing conversation by id"`
	ContextFile  []string `help:"Attach file contents as code context (repeatable)"`
	NoStream     bool     `help:"Use a plain completion instead of streaming; the result is not saved"`
}

// Run executes the send command
func (c *SendCmd) Run(cli *CLI) error {
	sink := termsink.New(os.Stdout)
	a := newApp(cli, sink)

	var codeContext chat.CodeContext
	for _, path := range c.ContextFile {
		code, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read context file: %w", err)
		}
		codeContext.Add(string(code), filepath.Base(path), 0, 0)
	}

	if c.NoStream {
		// The non-streaming path mirrors the original one-shot panel:
		// print the reply, persist nothing.
		model, err := a.Settings.FindModel(c.Model)
		if err != nil {
			return err
		}
		reply, err := a.Client.CreateChatCompletion(context.Background(), model, []chat.Message{
			{Role: chat.RoleSystem, Content: model.SystemPrompt},
			{Role: chat.RoleUser, Content: chat.ComposePrompt(codeContext.Join(), c.Message)},
		})
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	}

	conversation, err := a.Engine.Send(context.Background(), engine.SendRequest{
		Message:        c.Message,
		Context:        codeContext.Join(),
		Model:          c.Model,
		ConversationID: c.Conversation,
	})
	sink.EndStream()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "conversation %s saved\n", conversation.ID)
	return nil
}
