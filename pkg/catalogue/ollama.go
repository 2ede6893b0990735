package catalogue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"triviafetch/pkg/logger"
)

// OllamaClient generates short asset descriptions through a local
// Ollama instance
type OllamaClient struct {
	host        string
	model       string
	temperature float64
	httpClient  *http.Client
	logger      logger.Logger
}

// NewOllamaClient creates a description client for the given host and model
func NewOllamaClient(host, model string, temperature float64, log logger.Logger) *OllamaClient {
	return &OllamaClient{
		host:        strings.TrimRight(host, "/"),
		model:       model,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log,
	}
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Available reports whether the Ollama API responds on this host
func (c *OllamaClient) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Debug("ollama availability check failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Describe asks the model for a one-sentence description of an asset
func (c *OllamaClient) Describe(ctx context.Context, assetType, assetName string) (string, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: buildPrompt(assetType, assetName),
		Stream: false,
		Options: map[string]interface{}{
			"temperature": c.temperature,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generate response: %w", err)
	}

	var gen generateResponse
	if err := json.Unmarshal(data, &gen); err != nil {
		return "", fmt.Errorf("failed to parse generate response: %w", err)
	}

	return strings.TrimSpace(gen.Response), nil
}

// buildPrompt produces a per-type prompt asking for one concise sentence
func buildPrompt(assetType, assetName string) string {
	switch assetType {
	case "image":
		return fmt.Sprintf("Describe in one short sentence what the image file %q likely depicts, judging by its name.", assetName)
	case "audio":
		return fmt.Sprintf("Describe in one short sentence what the audio file %q likely contains, judging by its name.", assetName)
	case "video":
		return fmt.Sprintf("Describe in one short sentence what the video file %q likely shows, judging by its name.", assetName)
	default:
		return fmt.Sprintf("Describe in one short sentence the media file %q, judging by its name.", assetName)
	}
}
