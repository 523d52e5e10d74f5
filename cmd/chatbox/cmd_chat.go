package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chatbox/src/app"
	"chatbox/src/chat"
	"chatbox/src/engine"
	"chatbox/src/termsink"
)

// ChatCmd runs an interactive chat session.
type ChatCmd struct {
	Model        string `short:"m" help:"Name of the configured model to use (defaults to the first configured model)"`
	Conversation string `short:"c" help:"Resume an existing conversation by id"`
}

const chatHelp = `commands:
  /new               start a new conversation
  /models            list configured models
  /model <name>      switch model
  /list              list saved conversations
  /load <id>         load a conversation into the transcript
  /delete <id>       delete a conversation
  /code <file>       attach a file as code context for the next message
  /context           show attached code blocks
  /drop <id>         remove one attached block
  /quit              exit`

// chatSession holds the presentation-local state of one REPL run.
type chatSession struct {
	app            *app.App
	sink           *termsink.Sink
	modelName      string
	conversationID string
	codeContext    chat.CodeContext
}

// Run executes the chat command
func (c *ChatCmd) Run(cli *CLI) error {
	sink := termsink.New(os.Stdout)
	a := newApp(cli, sink)

	modelName := c.Model
	if modelName == "" {
		s, err := a.Settings.Load()
		if err == nil && len(s.Models) > 0 {
			modelName = s.Models[0].Name
		}
	}
	if modelName == "" {
		return fmt.Errorf("no models configured; edit %s", a.Settings.Path())
	}

	session := &chatSession{
		app:            a,
		sink:           sink,
		modelName:      modelName,
		conversationID: c.Conversation,
	}

	fmt.Printf("chatting with %s (/help for commands)\n", modelName)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ctx := context.Background()
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := session.handleCommand(ctx, line)
			if err != nil {
				sink.OnError(err.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		session.send(ctx, line)
	}
}

func (s *chatSession) send(ctx context.Context, message string) {
	conversation, err := s.app.Engine.Send(ctx, engine.SendRequest{
		Message:        message,
		Context:        s.codeContext.Join(),
		Model:          s.modelName,
		ConversationID: s.conversationID,
	})
	s.sink.EndStream()
	if err != nil {
		// The engine already pushed the user-visible error; the echoed
		// turn stays on screen but nothing was saved.
		return
	}
	s.conversationID = conversation.ID
	s.codeContext.Clear()
}

func (s *chatSession) handleCommand(ctx context.Context, line string) (quit bool, err error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true, nil

	case "/help":
		fmt.Println(chatHelp)

	case "/new":
		s.conversationID = ""
		s.codeContext.Clear()
		fmt.Println("started a new conversation")

	case "/models":
		return false, s.app.Dispatcher.Handle(ctx, engine.GetModelsRequest{})

	case "/model":
		if arg == "" {
			return false, fmt.Errorf("usage: /model <name>")
		}
		if _, err := s.app.Settings.FindModel(arg); err != nil {
			return false, err
		}
		s.modelName = arg
		fmt.Printf("switched to %s\n", arg)

	case "/list":
		s.sink.AnnounceLists(true)
		err := s.app.Dispatcher.Handle(ctx, engine.GetConversationsRequest{})
		s.sink.AnnounceLists(false)
		return false, err

	case "/load":
		if arg == "" {
			return false, fmt.Errorf("usage: /load <id>")
		}
		if err := s.app.Dispatcher.Handle(ctx, engine.LoadConversationRequest{ConversationID: arg}); err != nil {
			return false, err
		}
		s.conversationID = arg

	case "/delete":
		if arg == "" {
			return false, fmt.Errorf("usage: /delete <id>")
		}
		if err := s.app.Dispatcher.Handle(ctx, engine.DeleteConversationRequest{ConversationID: arg}); err != nil {
			return false, err
		}
		if s.conversationID == arg {
			s.conversationID = ""
		}
		fmt.Println("deleted")

	case "/code":
		if arg == "" {
			return false, fmt.Errorf("usage: /code <file>")
		}
		code, err := os.ReadFile(arg)
		if err != nil {
			return false, fmt.Errorf("failed to read file: %w", err)
		}
		id := s.codeContext.Add(string(code), filepath.Base(arg), 0, 0)
		fmt.Printf("attached %s (block %d)\n", arg, id)

	case "/context":
		blocks := s.codeContext.Blocks()
		if len(blocks) == 0 {
			fmt.Println("no code attached")
		}
		for _, b := range blocks {
			s.sink.RenderCodeBlock(b)
		}

	case "/drop":
		id, convErr := strconv.ParseInt(arg, 10, 64)
		if convErr != nil {
			return false, fmt.Errorf("usage: /drop <id>")
		}
		s.codeContext.Remove(id)

	default:
		return false, fmt.Errorf("unknown command %s", cmd)
	}
	return false, nil
}
