package summary

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/researchaccelerator-hub/comment-sentiment/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FallbackTopic fills the topic lists when no comment yields a usable word
const FallbackTopic = "general discussion"

// Sentiment labels
const (
	LabelStronglyPositive = "strongly positive"
	LabelStronglyNegative = "strongly negative"
	LabelLeaningPositive  = "leaning positive"
	LabelLeaningNegative  = "leaning negative"
	LabelNeutral          = "neutral"
)

// Heuristic builds a summary from word frequency and the distribution. It never fails.
func Heuristic(comments []model.Comment, dist model.SentimentDistribution) model.Summary {
	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Text
	}

	topics := TopWords(strings.Join(texts, " "), MaxListItems)
	if len(topics) == 0 {
		topics = []string{FallbackTopic}
	}

	label := Label(dist)
	return model.Summary{
		MainTopics:       topics,
		OverallSentiment: label,
		KeyInsights: []string{
			fmt.Sprintf("Analyzed %d comments", len(comments)),
			fmt.Sprintf("Overall sentiment: %s", label),
			fmt.Sprintf("Positive comments: %.1f%%", dist.Positive*100),
			"Comments cover a wide range of topics",
		},
		CommonPhrases: append([]string(nil), topics...),
	}
}

// Label maps a distribution to one of five fixed labels
func Label(d model.SentimentDistribution) string {
	switch {
	case d.Positive > 0.6:
		return LabelStronglyPositive
	case d.Negative > 0.6:
		return LabelStronglyNegative
	case d.Positive > d.Negative:
		return LabelLeaningPositive
	case d.Negative > d.Positive:
		return LabelLeaningNegative
	default:
		return LabelNeutral
	}
}

// Tokenize lowercases text, turns everything except letters, digits, marks and
// underscores into spaces, and drops single-character tokens.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' {
			return r
		}
		return ' '
	}, cases.Lower(language.Und).String(text))

	fields := strings.Fields(cleaned)
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// TopWords returns up to n tokens by descending frequency, ties in first-occurrence order
func TopWords(text string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range Tokenize(text) {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}
