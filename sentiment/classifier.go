// Package sentiment classifies the aggregate sentiment of a comment set and scores it.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/researchaccelerator-hub/comment-sentiment/common"
	"github.com/researchaccelerator-hub/comment-sentiment/llm"
	"github.com/researchaccelerator-hub/comment-sentiment/model"
	"github.com/rs/zerolog/log"
)

const (
	// MaxInputChars caps the joined comment text sent to the model
	MaxInputChars = 8000

	// Temperature favors repeatable classifications
	Temperature = 0.3

	// MaxTokens is the completion budget for the distribution object
	MaxTokens = 200
)

// FallbackDistribution replaces a valid distribution whose classes sum to zero
var FallbackDistribution = model.SentimentDistribution{Positive: 0.33, Neutral: 0.34, Negative: 0.33}

const systemPrompt = `You are a sentiment analysis expert. Analyze the overall sentiment of the YouTube comments you are given.
Respond with JSON only, no other text:
{"positive": 0.0, "neutral": 0.0, "negative": 0.0}
The three values are the proportions of positive, neutral and negative sentiment and must sum to 1.`

// Classifier performs one model call per comment set
type Classifier struct {
	chat llm.ChatClient
}

// NewClassifier creates a classifier. A nil client yields ConfigMissing on every call.
func NewClassifier(chat llm.ChatClient) *Classifier {
	return &Classifier{chat: chat}
}

// Classify returns the normalized sentiment distribution of the comments
func (c *Classifier) Classify(ctx context.Context, comments []model.Comment) (model.SentimentDistribution, error) {
	if c.chat == nil {
		return model.SentimentDistribution{}, model.NewError(model.KindConfigMissing, "language model credential is not configured", nil)
	}

	input := common.TruncateRunes(JoinTexts(comments), MaxInputChars)

	content, err := c.chat.Complete(ctx, llm.ChatRequest{
		System:      systemPrompt,
		User:        "Analyze the sentiment of these YouTube comments:\n\n" + input,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Sentiment request failed")
		return model.SentimentDistribution{}, model.NewError(model.KindSentimentUnavailable, "sentiment request failed", err)
	}

	raw, err := ParseDistribution(content)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("content", common.Preview(content, 200)).Msg("Could not read sentiment response")
		return model.SentimentDistribution{}, err
	}

	dist := Normalize(raw)
	log.Ctx(ctx).Info().
		Float64("positive", dist.Positive).
		Float64("neutral", dist.Neutral).
		Float64("negative", dist.Negative).
		Msg("Sentiment classified")

	return dist, nil
}

// JoinTexts concatenates comment texts, one per line
func JoinTexts(comments []model.Comment) string {
	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n")
}

// ParseDistribution reads the raw (unnormalized) distribution from model output.
// The whole content is tried first, then the outermost {...} span.
func ParseDistribution(content string) (model.SentimentDistribution, error) {
	payload := strings.TrimSpace(content)
	if !json.Valid([]byte(payload)) {
		span, ok := llm.ExtractJSONObject(payload)
		if !ok || !json.Valid([]byte(span)) {
			return model.SentimentDistribution{}, model.NewError(model.KindUnparsableSentiment, "no JSON object in model output", nil)
		}
		payload = span
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil || fields == nil {
		return model.SentimentDistribution{}, model.NewError(model.KindMalformedSentiment, "model output is not a JSON object", err)
	}

	var dist model.SentimentDistribution
	var err error
	if dist.Positive, err = numberField(fields, "positive"); err != nil {
		return model.SentimentDistribution{}, err
	}
	if dist.Neutral, err = numberField(fields, "neutral"); err != nil {
		return model.SentimentDistribution{}, err
	}
	if dist.Negative, err = numberField(fields, "negative"); err != nil {
		return model.SentimentDistribution{}, err
	}
	return dist, nil
}

func numberField(fields map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return 0, model.NewError(model.KindMalformedSentiment, fmt.Sprintf("missing field %q", name), nil)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, model.NewError(model.KindMalformedSentiment, fmt.Sprintf("field %q is not a number", name), nil)
	}
	if v < 0 || math.IsInf(v, 0) {
		return 0, model.NewError(model.KindMalformedSentiment, fmt.Sprintf("field %q is out of range", name), nil)
	}
	return v, nil
}

// Normalize scales a non-negative distribution to sum to one. A zero sum
// yields FallbackDistribution.
func Normalize(d model.SentimentDistribution) model.SentimentDistribution {
	sum := d.Sum()
	if math.IsInf(sum, 0) {
		m := max(d.Positive, d.Neutral, d.Negative)
		d = model.SentimentDistribution{Positive: d.Positive / m, Neutral: d.Neutral / m, Negative: d.Negative / m}
		sum = d.Sum()
	}
	if sum == 0 {
		return FallbackDistribution
	}
	return model.SentimentDistribution{
		Positive: d.Positive / sum,
		Neutral:  d.Neutral / sum,
		Negative: d.Negative / sum,
	}
}
