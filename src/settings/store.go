// Package settings loads and persists the model-endpoint settings
// file. The file is plain pretty-printed JSON so users can edit it by
// hand, the same shape the editor extension writes.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"

	"chatbox/src/chat"
)

var (
	// ErrModelNotFound indicates the requested model name is not in
	// the settings file.
	ErrModelNotFound = errors.New("model not found in configuration")

	// ErrNoModels indicates the settings file holds no models at all.
	// Callers should tell the user to configure one, which is a
	// different situation from a bad model name.
	ErrNoModels = errors.New("no models configured")

	// ErrSettingsCorrupt indicates the settings file exists but could
	// not be parsed. The store recovers with an empty model list.
	ErrSettingsCorrupt = errors.New("settings file is corrupt")
)

// Settings is the root of the settings file.
type Settings struct {
	Models []chat.ModelConfig `json:"models"`
}

// DefaultPath returns the settings file location under the user's XDG
// config directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "chatbox", "llm-settings.json")
}

// Store reads and writes the settings file.
type Store struct {
	fs        afero.Fs
	path      string
	logger    *slog.Logger
	validator *Validator
}

// NewStore creates a settings store backed by the given filesystem.
func NewStore(fs afero.Fs, path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		fs:        fs,
		path:      path,
		logger:    logger.With("component", "settings"),
		validator: NewValidator(),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// defaultSettings is written when no settings file exists yet. The
// placeholder token makes the required edit obvious.
func defaultSettings() *Settings {
	return &Settings{
		Models: []chat.ModelConfig{
			{
				Name:         "Default Model",
				APIURL:       "https://api.openai.com/v1/chat/completions",
				APIToken:     "YOUR_API_TOKEN",
				ModelID:      "gpt-3.5-turbo",
				SystemPrompt: "You are a helpful assistant.",
				Temperature:  0.7,
			},
		},
	}
}

// Load reads the settings file, creating it with one placeholder
// model when absent. A file that exists but fails to parse yields an
// empty model list and a recoverable ErrSettingsCorrupt; callers log
// it and carry on rather than crashing.
func (s *Store) Load() (*Settings, error) {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return &Settings{}, fmt.Errorf("failed to stat settings file: %w", err)
	}
	if !exists {
		def := defaultSettings()
		if err := s.write(def); err != nil {
			return &Settings{}, fmt.Errorf("failed to create default settings: %w", err)
		}
		s.logger.Info("created default settings file", "path", s.path)
		return def, nil
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return &Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		s.logger.Error("failed to parse settings file", "path", s.path, "error", err)
		return &Settings{}, fmt.Errorf("%w: %v", ErrSettingsCorrupt, err)
	}

	return &settings, nil
}

// Save validates and writes the settings file.
func (s *Store) Save(settings *Settings) error {
	if err := s.validator.Validate(settings); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}
	return s.write(settings)
}

// FindModel resolves a model by exact name match, first match wins.
// Distinguishes a missing name (ErrModelNotFound) from an empty
// configuration (ErrNoModels) so the caller can surface the right
// message.
func (s *Store) FindModel(name string) (chat.ModelConfig, error) {
	settings, err := s.Load()
	if err != nil && !errors.Is(err, ErrSettingsCorrupt) {
		return chat.ModelConfig{}, err
	}
	if len(settings.Models) == 0 {
		return chat.ModelConfig{}, ErrNoModels
	}
	for _, m := range settings.Models {
		if m.Name == name {
			return m, nil
		}
	}
	return chat.ModelConfig{}, fmt.Errorf("%w: %q", ErrModelNotFound, name)
}

func (s *Store) write(settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
