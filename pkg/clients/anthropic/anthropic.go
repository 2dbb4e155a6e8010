package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	model          = "claude-3-haiku-20240307"
	maxTokens      = 512
)

const systemPrompt = `You advise smallholder farmers on when and where to sell a harvest.
You receive a comparison of four selling scenarios that was already computed.
Never recompute or contradict the numbers. In at most four short sentences, explain
why the recommended option wins, name the main trade-off against the runner-up,
and remind the farmer to confirm prices at the market before travelling.
Reply in plain text without markdown.`

// Client defines the interface for AI text generation.
type Client interface {
	Advise(ctx context.Context, summary string) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string) Client {
	return newClient(apiKey, defaultBaseURL)
}

func newClient(apiKey, baseURL string) *anthropicClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Advise asks the model for a short narrative about an evaluation summary.
func (c *anthropicClient) Advise(ctx context.Context, summary string) (string, error) {
	if strings.TrimSpace(summary) == "" {
		return "", errors.New("empty summary")
	}

	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: summary}},
	}

	var respBody messageResponse
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		SetError(apiErr).
		Post("/v1/messages")

	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: status=%d, message=%s", resp.StatusCode(), apiErr.Error.Message)
	}

	var parts []string
	for _, block := range respBody.Content {
		if text := strings.TrimSpace(block.Text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("empty response from ai")
	}

	return strings.Join(parts, "\n"), nil
}
