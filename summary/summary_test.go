package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/researchaccelerator-hub/comment-sentiment/llm"
	"github.com/researchaccelerator-hub/comment-sentiment/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func comments(texts ...string) []model.Comment {
	out := make([]model.Comment, len(texts))
	for i, text := range texts {
		out[i] = model.Comment{Text: text, Author: model.DefaultAuthor}
	}
	return out
}

var sampleDist = model.SentimentDistribution{Positive: 0.7, Neutral: 0.2, Negative: 0.1}

func TestGeneratorUsesModelSummary(t *testing.T) {
	chat := new(MockChatClient)
	chat.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.ChatRequest) bool {
		return req.MaxTokens == MaxTokens && req.Temperature == Temperature
	})).Return(`{"mainTopics":["audio","editing"],"overallSentiment":"Viewers are happy","keyInsights":["people like the mix"],"commonPhrases":["great sound"]}`, nil)

	s, source := NewGenerator(NewModelProducer(chat)).Generate(context.Background(), comments("great sound"), sampleDist)
	assert.Equal(t, SourceModel, source)
	assert.Equal(t, []string{"audio", "editing"}, s.MainTopics)
	assert.Equal(t, "Viewers are happy", s.OverallSentiment)
	chat.AssertExpectations(t)
}

func TestGeneratorFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
	}{
		{"transport error", "", errors.New("HTTP 503: overloaded")},
		{"not json", "Here is a summary: viewers liked it", nil},
		{"prose wrapped json", `Sure! {"mainTopics":["a"],"overallSentiment":"b","keyInsights":["c"],"commonPhrases":["d"]}`, nil},
		{"all fields empty", `{"mainTopics":[],"overallSentiment":"","keyInsights":[],"commonPhrases":[]}`, nil},
		{"missing field", `{"mainTopics":["a"],"overallSentiment":"b","keyInsights":["c"]}`, nil},
		{"blank strings", `{"mainTopics":["  "],"overallSentiment":"b","keyInsights":["c"],"commonPhrases":["d"]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := new(MockChatClient)
			chat.On("Complete", mock.Anything, mock.Anything).Return(tt.content, tt.err)

			input := comments("The audio is great, great audio!", "Editing could be better", "great video")
			s, source := NewGenerator(NewModelProducer(chat)).Generate(context.Background(), input, sampleDist)
			assert.Equal(t, SourceHeuristic, source)
			assert.True(t, s.IsComplete())
			assert.LessOrEqual(t, len(s.MainTopics), MaxListItems)
			assert.LessOrEqual(t, len(s.CommonPhrases), MaxListItems)
			assert.Len(t, s.KeyInsights, 4)
			assert.Equal(t, "great", s.MainTopics[0])
		})
	}
}

func TestGeneratorWithoutModel(t *testing.T) {
	s, source := NewGenerator(nil).Generate(context.Background(), comments("hello world"), sampleDist)
	assert.Equal(t, SourceHeuristic, source)
	assert.Equal(t, []string{"hello", "world"}, s.MainTopics)
}

func TestParseSummaryCapsLists(t *testing.T) {
	s, err := ParseSummary(`{"mainTopics":["1","2","3","4","5","6","7"],"overallSentiment":" ok ","keyInsights":["a","","b"],"commonPhrases":["x"]}`)
	require.NoError(t, err)
	assert.Len(t, s.MainTopics, MaxListItems)
	assert.Equal(t, []string{"a", "b"}, s.KeyInsights)
	assert.Equal(t, "ok", s.OverallSentiment)

	_, err = ParseSummary(`{"mainTopics":["a"],"overallSentiment":"","keyInsights":["c"],"commonPhrases":["d"]}`)
	assert.ErrorIs(t, err, ErrIncompleteSummary)
}

func TestHeuristic(t *testing.T) {
	input := comments(
		"Great video! Great editing.",
		"The editing was great & the music too",
		"a b c",
	)
	s := Heuristic(input, model.SentimentDistribution{Positive: 0.5, Neutral: 0.3, Negative: 0.2})

	assert.Equal(t, []string{"great", "editing", "the", "video", "was"}, s.MainTopics)
	assert.Equal(t, s.MainTopics, s.CommonPhrases)
	assert.Equal(t, LabelLeaningPositive, s.OverallSentiment)
	assert.Equal(t, []string{
		"Analyzed 3 comments",
		"Overall sentiment: leaning positive",
		"Positive comments: 50.0%",
		"Comments cover a wide range of topics",
	}, s.KeyInsights)
}

func TestHeuristicNoUsableWords(t *testing.T) {
	s := Heuristic(comments("!!!", "a", "👍👍"), model.SentimentDistribution{Neutral: 1})
	assert.Equal(t, []string{FallbackTopic}, s.MainTopics)
	assert.Equal(t, []string{FallbackTopic}, s.CommonPhrases)
	assert.True(t, s.IsComplete())
	assert.Len(t, s.KeyInsights, 4)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		dist model.SentimentDistribution
		want string
	}{
		{model.SentimentDistribution{Positive: 0.61, Neutral: 0.39}, LabelStronglyPositive},
		{model.SentimentDistribution{Negative: 0.61, Neutral: 0.39}, LabelStronglyNegative},
		{model.SentimentDistribution{Positive: 0.6, Negative: 0.4}, LabelLeaningPositive},
		{model.SentimentDistribution{Positive: 0.2, Neutral: 0.4, Negative: 0.4}, LabelLeaningNegative},
		{model.SentimentDistribution{Positive: 0.33, Neutral: 0.34, Negative: 0.33}, LabelNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.dist))
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"héllo", "wörld", "it", "s_ok"}, Tokenize("Héllo, WÖRLD! it's_ok x"))
	assert.Equal(t, []string{"это", "видео", "日本語"}, Tokenize("Это видео — 日本語"))
	assert.Empty(t, Tokenize("   "))
}

func TestTopWordsTies(t *testing.T) {
	// every word appears twice; order follows first occurrence
	text := strings.Repeat("zeta alpha mid ", 2)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, TopWords(text, 5))
	assert.Equal(t, []string{"zeta"}, TopWords(text, 1))
}
