package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/researchaccelerator-hub/comment-sentiment/client"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the DeepSeek API host
	DefaultBaseURL = "https://api.deepseek.com"

	// DefaultModel is the chat model used for both requests
	DefaultModel = "deepseek-chat"
)

// ErrNoChoices is returned when the completion carries no choices
var ErrNoChoices = errors.New("no response from language model")

// OpenAIClient implements ChatClient against any OpenAI-compatible endpoint
type OpenAIClient struct {
	client   *openai.Client
	model    openai.ChatModel
	endpoint string
}

// NewOpenAIClient creates a chat client that shares the fetcher's transport and timeout.
// Retries are disabled; the fallback policy belongs to the callers.
func NewOpenAIClient(config Config, fetcher *client.Fetcher) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("language model API key is required")
	}
	if fetcher == nil {
		fetcher = client.NewFetcher()
	}

	base := strings.TrimRight(config.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	c := openai.NewClient(
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(base+"/v1/"),
		option.WithHTTPClient(fetcher.HTTPClient()),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(fetcher.Timeout()),
	)

	return &OpenAIClient{
		client:   &c,
		model:    openai.ChatModel(model),
		endpoint: base + "/v1/chat/completions",
	}, nil
}

// Complete sends one chat completion request
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", c.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	log.Ctx(ctx).Debug().
		Str("model", resp.Model).
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("Language model call completed")

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &client.FetchError{
			Kind:       client.FetchHTTPStatus,
			URL:        c.endpoint,
			StatusCode: apiErr.StatusCode,
			Body:       apiErr.Message,
			Err:        err,
		}
	}
	return classifySDKError(c.endpoint, err)
}
