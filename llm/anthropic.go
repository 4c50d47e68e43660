package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/researchaccelerator-hub/comment-sentiment/client"
	"github.com/rs/zerolog/log"
)

// DefaultAnthropicModel is used when no model is configured for the anthropic provider
const DefaultAnthropicModel = "claude-haiku-4-5"

const defaultAnthropicBaseURL = "https://api.anthropic.com"

// defaultAnthropicMaxTokens applies when the request leaves MaxTokens unset, the Messages API requires one
const defaultAnthropicMaxTokens = 1024

// ErrNoText is returned when the message carries no text block
var ErrNoText = errors.New("no text content in language model response")

// AnthropicClient implements ChatClient against the Anthropic Messages API
type AnthropicClient struct {
	client   *anthropic.Client
	model    anthropic.Model
	endpoint string
}

// NewAnthropicClient creates a chat client that shares the fetcher's transport and timeout
func NewAnthropicClient(config Config, fetcher *client.Fetcher) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("language model API key is required")
	}
	if fetcher == nil {
		fetcher = client.NewFetcher()
	}

	base := strings.TrimRight(config.BaseURL, "/")
	if base == "" {
		base = defaultAnthropicBaseURL
	}
	model := config.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	c := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(base+"/"),
		option.WithHTTPClient(fetcher.HTTPClient()),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(fetcher.Timeout()),
	)

	return &AnthropicClient{
		client:   &c,
		model:    anthropic.Model(model),
		endpoint: base + "/v1/messages",
	}, nil
}

// Complete sends one message and returns the first text block
func (c *AnthropicClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(req.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	})
	if err != nil {
		return "", c.classify(err)
	}

	log.Ctx(ctx).Debug().
		Str("model", string(message.Model)).
		Int64("input_tokens", message.Usage.InputTokens).
		Int64("output_tokens", message.Usage.OutputTokens).
		Msg("Language model call completed")

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", ErrNoText
}

func (c *AnthropicClient) classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &client.FetchError{
			Kind:       client.FetchHTTPStatus,
			URL:        c.endpoint,
			StatusCode: apiErr.StatusCode,
			Body:       http.StatusText(apiErr.StatusCode),
			Err:        err,
		}
	}
	return classifySDKError(c.endpoint, err)
}
