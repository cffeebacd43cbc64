package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tendorai/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	anthropicBaseURL     = "https://api.anthropic.com"
	anthropicVersion     = "2023-06-01"
	defaultClaudeModel   = "claude-3-7-sonnet-latest"
	maxConversationTurns = 8
	maxRetries           = 4
)

// retryWaits is the linear backoff applied to provider 429s. Each sleep is
// cancellable through the request context.
var retryWaits = []time.Duration{30 * time.Second, 60 * time.Second, 90 * time.Second}

// AnthropicClient drives a multi-turn messages conversation with the
// web_search tool enabled. It is the primary research provider.
type AnthropicClient struct {
	httpClient *resty.Client
	apiKey     string
	model      string
	logger     *zap.Logger
}

type anthropicMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicTool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

// anthropicContentBlock is the partial view used to pull text out of a
// turn. The content array also carries server_tool_use and tool-result
// blocks, so the raw array is what gets echoed back as assistant history.
type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicResponse struct {
	Content    json.RawMessage `json:"content"`
	StopReason string          `json:"stop_reason"`
	Error      *anthropicError `json:"error,omitempty"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewAnthropicClient(apiKey, model string, logger *zap.Logger) *AnthropicClient {
	if model == "" {
		model = defaultClaudeModel
	}
	client := resty.New().
		SetBaseURL(anthropicBaseURL).
		SetTimeout(120*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("x-api-key", apiKey)
	return &AnthropicClient{
		httpClient: client,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

// Research runs the research conversation: the model searches the web, and
// the loop feeds "Continue." until it emits end_turn or the turn cap is hit.
// All text blocks from every turn are concatenated.
func (c *AnthropicClient) Research(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: anthropic api key not configured", domain.ErrConfig)
	}

	messages := []anthropicMessage{userMessage(prompt)}
	var collected string

	for turn := 0; turn < maxConversationTurns; turn++ {
		resp, err := c.send(ctx, anthropicRequest{
			Model:     c.model,
			MaxTokens: 8192,
			Messages:  messages,
			Tools:     []anthropicTool{{Type: "web_search_20250305", Name: "web_search", MaxUses: 6}},
		})
		if err != nil {
			return "", err
		}

		collected += textFromContent(resp.Content)

		if resp.StopReason == "end_turn" {
			return collected, nil
		}

		c.logger.Debug("anthropic conversation continuing",
			zap.Int("turn", turn+1),
			zap.String("stop_reason", resp.StopReason),
		)
		// The content array goes back verbatim: re-marshalling through the
		// partial block view would strip tool-use blocks and the API rejects
		// that history.
		messages = append(messages,
			anthropicMessage{Role: "assistant", Content: resp.Content},
			userMessage("Continue."),
		)
	}

	// The turn cap bounds total conversation time; whatever text accumulated
	// is handed to the parser rather than discarded.
	c.logger.Warn("anthropic conversation hit turn cap", zap.Int("turns", maxConversationTurns))
	return collected, nil
}

// send performs one messages call, retrying 429s on the linear backoff
// schedule. Other failures classify as temporary (5xx, transport) or
// permanent (remaining 4xx).
func (c *AnthropicClient) send(ctx context.Context, req anthropicRequest) (*anthropicResponse, error) {
	for attempt := 0; ; attempt++ {
		var out anthropicResponse
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&out).
			SetError(&out).
			Post("/v1/messages")
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err())
			}
			return nil, fmt.Errorf("%w: anthropic request: %v", domain.ErrUpstreamTemporary, err)
		}

		status := resp.StatusCode()
		switch {
		case status == http.StatusOK:
			return &out, nil
		case status == http.StatusTooManyRequests:
			if attempt >= maxRetries-1 {
				return nil, fmt.Errorf("%w: anthropic rate limited after %d attempts", domain.ErrUpstreamTemporary, maxRetries)
			}
			wait := retryWaits[min(attempt, len(retryWaits)-1)]
			c.logger.Warn("anthropic 429, backing off",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
			)
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
		case status >= 500:
			return nil, fmt.Errorf("%w: anthropic status %d", domain.ErrUpstreamTemporary, status)
		default:
			msg := "unexpected response"
			if out.Error != nil {
				msg = out.Error.Message
			}
			return nil, fmt.Errorf("%w: anthropic status %d: %s", domain.ErrUpstreamPermanent, status, msg)
		}
	}
}

func textFromContent(raw json.RawMessage) string {
	var blocks []anthropicContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	text := ""
	for _, block := range blocks {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}

func userMessage(text string) anthropicMessage {
	raw, _ := json.Marshal(text)
	return anthropicMessage{Role: "user", Content: raw}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err())
	case <-timer.C:
		return nil
	}
}
