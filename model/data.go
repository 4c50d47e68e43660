package model

import "math"

// DefaultAuthor is used when the upstream source does not report a comment author.
const DefaultAuthor = "Anonymous"

// distributionTolerance bounds the rounding error accepted when checking that a
// distribution sums to one.
const distributionTolerance = 1e-9

// Comment is a sanitized public comment. Text is never empty.
type Comment struct {
	Text        string `json:"text"`
	Author      string `json:"author"`
	LikeCount   int64  `json:"likeCount"`
	PublishedAt string `json:"publishedAt"`
}

// SentimentDistribution is a three way probability split across sentiment classes.
// Consumers receive it only after normalization, so the fields are non-negative and sum to one.
type SentimentDistribution struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Sum returns the total mass of the distribution.
func (d SentimentDistribution) Sum() float64 {
	return d.Positive + d.Neutral + d.Negative
}

// IsNormalized reports whether every class is non-negative and the classes sum to one.
func (d SentimentDistribution) IsNormalized() bool {
	if d.Positive < 0 || d.Neutral < 0 || d.Negative < 0 {
		return false
	}
	return math.Abs(d.Sum()-1) <= distributionTolerance
}

// Summary is the structured, human readable digest of a comment set.
type Summary struct {
	MainTopics       []string `json:"mainTopics"`
	OverallSentiment string   `json:"overallSentiment"`
	KeyInsights      []string `json:"keyInsights"`
	CommonPhrases    []string `json:"commonPhrases"`
}

// IsComplete reports whether all four fields carry content.
func (s Summary) IsComplete() bool {
	return len(nonEmpty(s.MainTopics)) > 0 &&
		s.OverallSentiment != "" &&
		len(nonEmpty(s.KeyInsights)) > 0 &&
		len(nonEmpty(s.CommonPhrases)) > 0
}

// AnalysisResult is the outcome of one successful pipeline run.
type AnalysisResult struct {
	Score              int     `json:"score"`
	TotalComments      int     `json:"totalComments"`
	PositiveCount      int     `json:"positiveCount"`
	NeutralCount       int     `json:"neutralCount"`
	NegativeCount      int     `json:"negativeCount"`
	PositivePercentage float64 `json:"positivePercentage"`
	NeutralPercentage  float64 `json:"neutralPercentage"`
	NegativePercentage float64 `json:"negativePercentage"`
	Summary            Summary `json:"summary"`
}

// VideoDetails is the subset of video metadata the pipeline logs and reports.
type VideoDetails struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ChannelName  string `json:"channelName"`
	CommentCount int64  `json:"commentCount"`
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
