package main

import (
	"context"
	"fmt"
	"os"

	"chatbox/src/engine"
	"chatbox/src/termsink"
)

// ConversationsCmd manages stored conversations.
type ConversationsCmd struct {
	List   ConversationsListCmd   `cmd:"" default:"1" help:"List stored conversations"`
	Show   ConversationsShowCmd   `cmd:"" help:"Print one conversation"`
	Delete ConversationsDeleteCmd `cmd:"" help:"Delete a conversation"`
}

// ConversationsListCmd lists stored conversations.
type ConversationsListCmd struct{}

// Run executes the conversations list command
func (c *ConversationsListCmd) Run(cli *CLI) error {
	sink := termsink.New(os.Stdout)
	sink.AnnounceLists(true)
	a := newApp(cli, sink)
	return a.Dispatcher.Handle(context.Background(), engine.GetConversationsRequest{})
}

// ConversationsShowCmd prints one conversation.
type ConversationsShowCmd struct {
	ID string `arg:"" help:"Conversation id"`
}

// Run executes the conversations show command
func (c *ConversationsShowCmd) Run(cli *CLI) error {
	sink := termsink.New(os.Stdout)
	a := newApp(cli, sink)
	return a.Dispatcher.Handle(context.Background(), engine.LoadConversationRequest{ConversationID: c.ID})
}

// ConversationsDeleteCmd deletes a conversation.
type ConversationsDeleteCmd struct {
	ID string `arg:"" help:"Conversation id"`
}

// Run executes the conversations delete command
func (c *ConversationsDeleteCmd) Run(cli *CLI) error {
	a := newApp(cli, nil)
	if err := a.Dispatcher.Handle(context.Background(), engine.DeleteConversationRequest{ConversationID: c.ID}); err != nil {
		return err
	}
	fmt.Println("deleted")
	return nil
}
