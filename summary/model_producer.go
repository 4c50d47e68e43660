package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/researchaccelerator-hub/comment-sentiment/common"
	"github.com/researchaccelerator-hub/comment-sentiment/llm"
	"github.com/researchaccelerator-hub/comment-sentiment/model"
)

const (
	// MaxInputChars caps the joined comment text sent to the model
	MaxInputChars = 6000

	Temperature = 0.3
	MaxTokens   = 500
)

// ErrIncompleteSummary is returned when the model omits or empties a field
var ErrIncompleteSummary = errors.New("model summary is incomplete")

const systemPrompt = `You are a professional comment analyst. Analyze the YouTube comments you are given and produce a structured summary.
Respond with JSON only, no other text:
{
  "mainTopics": ["topic 1", "topic 2", "topic 3"],
  "overallSentiment": "one sentence describing the overall mood",
  "keyInsights": ["insight 1", "insight 2", "insight 3"],
  "commonPhrases": ["phrase 1", "phrase 2", "phrase 3"]
}
Give 3 to 5 entries for every list.`

// ModelProducer asks the language model for a summary
type ModelProducer struct {
	chat llm.ChatClient
}

// NewModelProducer creates a model-backed producer
func NewModelProducer(chat llm.ChatClient) *ModelProducer {
	return &ModelProducer{chat: chat}
}

// Produce sends one request and validates the reply. The reply must be a bare JSON object.
func (p *ModelProducer) Produce(ctx context.Context, comments []model.Comment, _ model.SentimentDistribution) (model.Summary, error) {
	if p.chat == nil {
		return model.Summary{}, errors.New("no language model configured")
	}

	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Text
	}
	input := common.TruncateRunes(strings.Join(texts, "\n"), MaxInputChars)

	content, err := p.chat.Complete(ctx, llm.ChatRequest{
		System:      systemPrompt,
		User:        "Analyze these comments:\n\n" + input,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return model.Summary{}, fmt.Errorf("summary request failed: %w", err)
	}

	return ParseSummary(content)
}

// ParseSummary decodes and validates a model summary
func ParseSummary(content string) (model.Summary, error) {
	var s model.Summary
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &s); err != nil {
		return model.Summary{}, fmt.Errorf("failed to parse summary: %w", err)
	}

	s.OverallSentiment = strings.TrimSpace(s.OverallSentiment)
	s.MainTopics = cleanList(s.MainTopics)
	s.KeyInsights = cleanList(s.KeyInsights)
	s.CommonPhrases = cleanList(s.CommonPhrases)

	if !s.IsComplete() {
		return model.Summary{}, ErrIncompleteSummary
	}
	return s, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, MaxListItems)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == MaxListItems {
			break
		}
	}
	return out
}
