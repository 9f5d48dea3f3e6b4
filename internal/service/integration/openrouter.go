package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/config"
)

// chatMessage is one turn of an OpenRouter chat-completions conversation.
// Content is either a plain string or a []contentPart for multimodal turns.
type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenRouterClient is the shared transport for both generative wrappers.
// It always asks for a JSON object response; callers parse the content.
type OpenRouterClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	retryCount  int
	retryDelay  time.Duration
	client      *http.Client
	logger      zerolog.Logger
}

func NewOpenRouterClient(cfg config.OpenRouterConfig, logger zerolog.Logger) *OpenRouterClient {
	return &OpenRouterClient{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		retryCount:  cfg.RetryCount,
		retryDelay:  cfg.RetryDelay,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

func (c *OpenRouterClient) Complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	url := c.baseURL + "/chat/completions"

	var lastErr error

	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Msg("Retrying completion request")
			time.Sleep(c.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("completion request failed: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var completion completionResponse
			if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
				resp.Body.Close()
				lastErr = fmt.Errorf("failed to decode completion response: %w", err)
				continue
			}
			resp.Body.Close()

			if len(completion.Choices) == 0 {
				lastErr = fmt.Errorf("completion response contained no choices")
				continue
			}
			return completion.Choices[0].Message.Content, nil
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("completion endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return "", fmt.Errorf("completion failed after %d attempts: %w", c.retryCount+1, lastErr)
}
