package llm

import (
	"fmt"

	"github.com/researchaccelerator-hub/comment-sentiment/client"
)

const (
	// ProviderOpenAI speaks the chat completions protocol, which DeepSeek serves
	ProviderOpenAI = "openai"
	// ProviderAnthropic speaks the Anthropic Messages API
	ProviderAnthropic = "anthropic"
)

// Config configures the chat endpoint
type Config struct {
	Provider string // Default: openai
	APIKey   string
	BaseURL  string
	Model    string // Default depends on the provider
}

// NewChatClient creates the chat client named by config.Provider.
// The returned interface is nil whenever err is non-nil.
func NewChatClient(config Config, fetcher *client.Fetcher) (ChatClient, error) {
	switch config.Provider {
	case "", ProviderOpenAI:
		c, err := NewOpenAIClient(config, fetcher)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderAnthropic:
		c, err := NewAnthropicClient(config, fetcher)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported language model provider: %s", config.Provider)
	}
}
