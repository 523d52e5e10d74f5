// Package app wires the stores, the HTTP client, and the engine into
// one application instance shared by the CLI commands.
package app

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"

	"chatbox/src/convstore"
	"chatbox/src/engine"
	"chatbox/src/llmclient"
	"chatbox/src/settings"
)

// Config holds options for creating a new App instance.
type Config struct {
	// SettingsPath and ConversationsPath override the XDG defaults.
	SettingsPath      string
	ConversationsPath string

	// IdleTimeout bounds streaming silence. Zero disables it.
	IdleTimeout time.Duration

	Fs     afero.Fs
	Sink   engine.Sink
	Logger *slog.Logger
}

// App holds all services for one running instance.
type App struct {
	Settings      *settings.Store
	Conversations *convstore.Store
	Client        *llmclient.Client
	Engine        *engine.Engine
	Dispatcher    *engine.Dispatcher
	Logger        *slog.Logger
}

// New creates an App with all services initialized.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	settingsPath := cfg.SettingsPath
	if settingsPath == "" {
		settingsPath = settings.DefaultPath()
	}
	conversationsPath := cfg.ConversationsPath
	if conversationsPath == "" {
		conversationsPath = convstore.DefaultPath()
	}

	settingsStore := settings.NewStore(fs, settingsPath, logger)
	conversationStore := convstore.NewStore(fs, conversationsPath, logger)
	client := llmclient.NewClient(llmclient.Config{
		IdleTimeout: cfg.IdleTimeout,
		Logger:      logger,
	})

	eng := engine.New(settingsStore, conversationStore, client, cfg.Sink, logger)

	return &App{
		Settings:      settingsStore,
		Conversations: conversationStore,
		Client:        client,
		Engine:        eng,
		Dispatcher:    engine.NewDispatcher(eng),
		Logger:        logger,
	}
}
