package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tendorai/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	openAIBaseURL      = "https://api.openai.com"
	defaultOpenAIModel = "gpt-4o"
)

// OpenAIClient is the plain-chat fallback used when the web-search provider
// fails. No tools; the system message demands bare JSON.
type OpenAIClient struct {
	httpClient *resty.Client
	apiKey     string
	model      string
	logger     *zap.Logger
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewOpenAIClient(apiKey, model string, logger *zap.Logger) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	client := resty.New().
		SetBaseURL(openAIBaseURL).
		SetTimeout(120*time.Second).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey)
	return &OpenAIClient{
		httpClient: client,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

// Complete sends one chat completion. 429s retry on the same linear schedule
// as the primary provider.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: openai api key not configured", domain.ErrConfig)
	}

	req := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	for attempt := 0; ; attempt++ {
		var out openAIResponse
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&out).
			SetError(&out).
			Post("/v1/chat/completions")
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err())
			}
			return "", fmt.Errorf("%w: openai request: %v", domain.ErrUpstreamTemporary, err)
		}

		status := resp.StatusCode()
		switch {
		case status == http.StatusOK:
			if len(out.Choices) == 0 {
				return "", fmt.Errorf("%w: openai returned no choices", domain.ErrUpstreamPermanent)
			}
			return out.Choices[0].Message.Content, nil
		case status == http.StatusTooManyRequests:
			if attempt >= maxRetries-1 {
				return "", fmt.Errorf("%w: openai rate limited after %d attempts", domain.ErrUpstreamTemporary, maxRetries)
			}
			wait := retryWaits[min(attempt, len(retryWaits)-1)]
			c.logger.Warn("openai 429, backing off",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
			)
			if err := sleepCtx(ctx, wait); err != nil {
				return "", err
			}
		case status >= 500:
			return "", fmt.Errorf("%w: openai status %d", domain.ErrUpstreamTemporary, status)
		default:
			msg := "unexpected response"
			if out.Error != nil {
				msg = out.Error.Message
			}
			return "", fmt.Errorf("%w: openai status %d: %s", domain.ErrUpstreamPermanent, status, msg)
		}
	}
}
