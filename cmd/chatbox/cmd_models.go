package main

import (
	"context"
	"fmt"
	"os"

	"chatbox/src/chat"
	"chatbox/src/engine"
	"chatbox/src/termsink"
)

// ModelsCmd manages configured models.
type ModelsCmd struct {
	List ModelsListCmd `cmd:"" default:"1" help:"List configured models"`
	Add  ModelsAddCmd  `cmd:"" help:"Add a model to the settings file"`
	Path ModelsPathCmd `cmd:"" help:"Print the settings file path"`
}

// ModelsListCmd lists configured models.
type ModelsListCmd struct{}

// Run executes the models list command
func (c *ModelsListCmd) Run(cli *CLI) error {
	sink := termsink.New(os.Stdout)
	a := newApp(cli, sink)
	return a.Dispatcher.Handle(context.Background(), engine.GetModelsRequest{})
}

// ModelsAddCmd adds a model to the settings file.
type ModelsAddCmd struct {
	Name         string  `arg:"" help:"Unique model name"`
	URL          string  `required:"" help:"Chat-completions endpoint URL"`
	Token        string  `required:"" help:"API token"`
	ModelID      string  `required:"" help:"Backend model identifier (e.g. gpt-4o)"`
	SystemPrompt string  `default:"You are a helpful assistant." help:"System prompt"`
	Temperature  float64 `default:"0.7" help:"Sampling temperature"`
}

// Run executes the models add command
func (c *ModelsAddCmd) Run(cli *CLI) error {
	a := newApp(cli, nil)

	s, err := a.Settings.Load()
	if err != nil {
		// A corrupt file already degraded to an empty list; adding a
		// model rewrites it with valid content.
		a.Logger.Warn("settings load failed, starting fresh", "error", err)
	}
	s.Models = append(s.Models, chat.ModelConfig{
		Name:         c.Name,
		APIURL:       c.URL,
		APIToken:     c.Token,
		ModelID:      c.ModelID,
		SystemPrompt: c.SystemPrompt,
		Temperature:  c.Temperature,
	})
	if err := a.Settings.Save(s); err != nil {
		return err
	}
	fmt.Printf("added %s\n", c.Name)
	return nil
}

// ModelsPathCmd prints the settings file path.
type ModelsPathCmd struct{}

// Run executes the models path command
func (c *ModelsPathCmd) Run(cli *CLI) error {
	a := newApp(cli, nil)
	fmt.Println(a.Settings.Path())
	return nil
}
