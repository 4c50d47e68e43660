// Package config provides configuration structures for the analysis service
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/researchaccelerator-hub/comment-sentiment/client"
	"github.com/researchaccelerator-hub/comment-sentiment/common"
	"github.com/researchaccelerator-hub/comment-sentiment/llm"
	"github.com/researchaccelerator-hub/comment-sentiment/notify"
	"github.com/researchaccelerator-hub/comment-sentiment/retriever"
)

// Config holds the complete service configuration
type Config struct {
	Server ServerConfig     `mapstructure:"server" yaml:"server" json:"server"`
	HTTP   HTTPConfig       `mapstructure:"http" yaml:"http" json:"http"`
	Source SourceConfig     `mapstructure:"source" yaml:"source" json:"source"`
	LLM    LLMConfig        `mapstructure:"llm" yaml:"llm" json:"llm"`
	Events EventsConfig     `mapstructure:"events" yaml:"events" json:"events"`
	Log    common.LogConfig `mapstructure:"log" yaml:"log" json:"log"`
}

// ServerConfig configures the inbound HTTP API
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr" json:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// HTTPConfig configures every outbound call
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent" json:"user_agent"`
}

// SourceConfig selects the comment source and its retrieval behavior
type SourceConfig struct {
	Provider      string   `mapstructure:"provider" yaml:"provider" json:"provider"` // "rapidapi" or "youtube"
	RapidAPIKey   string   `mapstructure:"rapidapi_key" yaml:"-" json:"-"`
	RapidAPIHost  string   `mapstructure:"rapidapi_host" yaml:"rapidapi_host" json:"rapidapi_host"`
	YouTubeAPIKey string   `mapstructure:"youtube_api_key" yaml:"-" json:"-"`
	Strategies    []string `mapstructure:"strategies" yaml:"strategies" json:"strategies,omitempty"` // Empty: the source's defaults
	MaxComments   int      `mapstructure:"max_comments" yaml:"max_comments" json:"max_comments"`
}

// LLMConfig configures the chat endpoint. Empty BaseURL and Model take the provider's defaults.
type LLMConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider" json:"provider"` // "openai" or "anthropic"
	APIKey   string `mapstructure:"api_key" yaml:"-" json:"-"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url" json:"base_url,omitempty"`
	Model    string `mapstructure:"model" yaml:"model" json:"model,omitempty"`
}

// EventsConfig configures optional result events over Dapr pubsub
type EventsConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	PubSubComponent string `mapstructure:"pubsub_component" yaml:"pubsub_component" json:"pubsub_component"`
	Topic           string `mapstructure:"topic" yaml:"topic" json:"topic"`
	GRPCPort        string `mapstructure:"grpc_port" yaml:"grpc_port" json:"grpc_port"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:   client.DefaultTimeout,
			UserAgent: client.BrowserUserAgent,
		},
		Source: SourceConfig{
			Provider:     client.SourceRapidAPI,
			RapidAPIHost: client.DefaultRapidAPIHost,
			MaxComments:  retriever.DefaultMaxComments,
		},
		LLM: LLMConfig{
			Provider: llm.ProviderOpenAI,
		},
		Events: EventsConfig{
			Enabled:         false,
			PubSubComponent: "pubsub",
			Topic:           notify.DefaultTopic,
			GRPCPort:        notify.DefaultGRPCPort,
		},
		Log: common.LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks if the configuration is valid. Missing credentials are not
// errors: the affected stage reports ConfigMissing per run instead.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}

	switch c.Source.Provider {
	case client.SourceRapidAPI, client.SourceYouTubeData:
	default:
		return fmt.Errorf("invalid source.provider '%s', must be one of: %s, %s",
			c.Source.Provider, client.SourceRapidAPI, client.SourceYouTubeData)
	}

	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderAnthropic:
	default:
		return fmt.Errorf("invalid llm.provider '%s', must be one of: %s, %s",
			c.LLM.Provider, llm.ProviderOpenAI, llm.ProviderAnthropic)
	}

	if c.Source.MaxComments < 1 {
		return fmt.Errorf("source.max_comments must be at least 1")
	}

	if c.Events.Enabled && c.Events.PubSubComponent == "" {
		return fmt.Errorf("events.pubsub_component cannot be empty when events are enabled")
	}

	return nil
}

// Warnings lists configuration gaps that degrade but do not prevent service
func (c *Config) Warnings() []string {
	var warnings []string
	switch c.Source.Provider {
	case client.SourceRapidAPI:
		if c.Source.RapidAPIKey == "" {
			warnings = append(warnings, "RAPIDAPI_KEY is not set: every analysis will fail with CONFIG_MISSING")
		}
	case client.SourceYouTubeData:
		if c.Source.YouTubeAPIKey == "" {
			warnings = append(warnings, "YOUTUBE_API_KEY is not set: every analysis will fail with CONFIG_MISSING")
		}
	}
	if c.LLM.APIKey == "" {
		warnings = append(warnings, "llm.api_key (DEEPSEEK_API_KEY) is not set: sentiment analysis will fail with CONFIG_MISSING")
	}
	return warnings
}

// YAML renders the effective configuration. Credentials are never included.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return out, nil
}
