// Package generate asks a chat-completion model for a deck about a topic.
//
// Both supported providers speak the OpenAI chat-completions protocol:
// OpenRouter in the cloud and a local Llama server (Ollama). Failures are
// returned as one descriptive error; the caller's document is never touched.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ByLCY/slidescript/config"
)

// tracer traces with key 'slidescript.generate'.
func tracer() tracing.Trace {
	return tracing.Select("slidescript.generate")
}

// OpenRouterURL is the OpenRouter chat-completions endpoint.
const OpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// Temperature is sent with every request.
const Temperature = 0.7

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error (%d): %s", e.Status, e.Body)
}

// Client calls the provider selected in Settings.
type Client struct {
	Settings config.Settings
	HTTP     *http.Client
	// OpenRouterURL overrides the OpenRouter endpoint when set.
	OpenRouterURL string
}

// New creates a client; a nil httpClient selects http.DefaultClient.
func New(settings config.Settings, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Settings: settings, HTTP: httpClient}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Generate returns cleaned-up deck markup for topic.
func (c *Client) Generate(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", errors.New("generate: topic is empty")
	}
	if err := c.Settings.Validate(); err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	prompt, err := Prompt(topic)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	url, model := c.endpoint()
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: prompt},
			{Role: "user", Content: topic},
		},
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("generate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Settings.Selected == config.ProviderOpenRouter {
		req.Header.Set("Authorization", "Bearer "+c.Settings.OpenRouterAPIKey)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	tracer().Infof("requesting deck from %s (model %q)", c.Settings.Selected, model)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: connection failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("generate: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("generate: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrNoContent
	}
	return Cleanup(parsed.Choices[0].Message.Content)
}

// endpoint returns the request URL and model for the selected provider.
func (c *Client) endpoint() (string, string) {
	if c.Settings.Selected == config.ProviderOpenRouter {
		url := c.OpenRouterURL
		if url == "" {
			url = OpenRouterURL
		}
		return url, c.Settings.OpenRouterModelName
	}
	base := strings.TrimSuffix(c.Settings.LlamaURL, "/")
	return base + "/v1/chat/completions", c.Settings.LlamaModelName
}
