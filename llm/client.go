// Package llm wraps the chat-completion endpoint used for sentiment and summary requests.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/researchaccelerator-hub/comment-sentiment/client"
)

// ChatRequest is a single system+user exchange
type ChatRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
}

// ChatClient returns the text content of the first completion choice
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// ExtractJSONObject returns the span from the first '{' to the last '}', if any
func ExtractJSONObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// classifySDKError maps SDK errors other than API status errors onto the fetch error kinds.
// A reply the SDK could not decode is FetchDecode, anything else goes through transport classification.
func classifySDKError(endpoint string, err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &client.FetchError{Kind: client.FetchDecode, URL: endpoint, Err: err}
	}
	return client.ClassifyTransportError(endpoint, err)
}
