// Package config reads and writes the generator settings file.
//
// The settings are read-only input to the generation path; nothing in the
// compiler or the layout engine consults them.
package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Provider selects the chat-completion backend.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderLlama      Provider = "llama"
)

// DefaultLlamaURL is the usual address of a local Ollama server.
const DefaultLlamaURL = "http://localhost:11434"

// ErrNotConfigured is returned by Validate when no provider is selected.
var ErrNotConfigured = errors.New("no model provider configured")

// Settings mirrors the JSON settings file.
type Settings struct {
	Selected            Provider `json:"selected"`
	OpenRouterAPIKey    string   `json:"openRouterApiKey"`
	OpenRouterModelName string   `json:"openRouterModelName"`
	LlamaModelName      string   `json:"llamaModelName"`
	LlamaURL            string   `json:"llamaUrl"`
}

// Default returns empty settings with the local server address filled in.
func Default() Settings {
	return Settings{LlamaURL: DefaultLlamaURL}
}

// FromBytes parses settings; missing fields keep their defaults.
func FromBytes(data []byte) (Settings, error) {
	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, errors.Wrap(err, "could not parse settings")
	}
	if strings.TrimSpace(s.LlamaURL) == "" {
		s.LlamaURL = DefaultLlamaURL
	}
	return s, nil
}

// Load reads the settings file at path.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrap(err, "could not open settings")
	}
	return FromBytes(data)
}

// Save writes s to path, readable by the owner only since it holds an API key.
func (s Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode settings")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o600), "could not write settings")
}

// Validate checks that the selected provider can be called.
func (s Settings) Validate() error {
	switch s.Selected {
	case "":
		return ErrNotConfigured
	case ProviderOpenRouter:
		if strings.TrimSpace(s.OpenRouterAPIKey) == "" {
			return errors.New("openrouter API key is missing")
		}
	case ProviderLlama:
		if strings.TrimSpace(s.LlamaURL) == "" {
			return errors.New("local llama URL is missing")
		}
	default:
		return errors.Errorf("unknown provider %q", s.Selected)
	}
	return nil
}
