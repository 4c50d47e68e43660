package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/researchaccelerator-hub/comment-sentiment/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(content string) string {
	encoded, _ := json.Marshal(content)
	return fmt.Sprintf(`{"id":"cmpl-1","object":"chat.completion","created":1,"model":"deepseek-chat",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%s}}],
		"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`, encoded)
}

func TestOpenAIClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, client.BrowserUserAgent, r.Header.Get("User-Agent"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int64   `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "deepseek-chat", body.Model)
		assert.Equal(t, 0.3, body.Temperature)
		assert.Equal(t, int64(200), body.MaxTokens)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "be brief", body.Messages[0].Content)
		assert.Equal(t, "user", body.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody(`{"positive":0.5}`))
	}))
	defer server.Close()

	c, err := NewOpenAIClient(Config{APIKey: "sk-test", BaseURL: server.URL + "/"}, client.NewFetcher())
	require.NoError(t, err)

	content, err := c.Complete(context.Background(), ChatRequest{
		System:      "be brief",
		User:        "hello",
		Temperature: 0.3,
		MaxTokens:   200,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"positive":0.5}`, content)
}

func TestOpenAIClientErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewOpenAIClient(Config{}, nil)
		assert.Error(t, err)
	})

	t.Run("upstream status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"message":"invalid key","type":"auth"}}`)
		}))
		defer server.Close()

		c, err := NewOpenAIClient(Config{APIKey: "bad", BaseURL: server.URL}, nil)
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), ChatRequest{User: "x"})
		var fe *client.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, client.FetchHTTPStatus, fe.Kind)
		assert.Equal(t, http.StatusUnauthorized, fe.StatusCode)
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
		}))
		defer server.Close()

		c, err := NewOpenAIClient(Config{APIKey: "k", BaseURL: server.URL}, nil)
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), ChatRequest{User: "x"})
		assert.ErrorIs(t, err, ErrNoChoices)
	})
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose around", "Sure! {\"a\":1} hope this helps", `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, true},
		{"no braces", "no json here", "", false},
		{"reversed braces", "} {", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.content)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenAIClientUndecodableReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "<html>gateway page</html>")
	}))
	defer server.Close()

	c, err := NewOpenAIClient(Config{APIKey: "sk", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), ChatRequest{User: "hi"})
	var fe *client.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, client.FetchDecode, fe.Kind)
}
