package pipeline

import (
	"math"

	"github.com/researchaccelerator-hub/comment-sentiment/model"
	"github.com/researchaccelerator-hub/comment-sentiment/sentiment"
)

// BuildResult aggregates counts and percentages. Positive and neutral counts are
// rounded from the distribution and negative takes the remainder, so the three
// counts always sum to total. When rounding overshoots, neutral gives way first
// and no count goes below zero.
func BuildResult(total int, dist model.SentimentDistribution, summary model.Summary) model.AnalysisResult {
	positive := clamp(int(math.Round(dist.Positive*float64(total))), 0, total)
	neutral := clamp(int(math.Round(dist.Neutral*float64(total))), 0, total-positive)
	negative := total - positive - neutral

	result := model.AnalysisResult{
		Score:         sentiment.Score(dist),
		TotalComments: total,
		PositiveCount: positive,
		NeutralCount:  neutral,
		NegativeCount: negative,
		Summary:       summary,
	}
	if total > 0 {
		result.PositivePercentage = percentage(positive, total)
		result.NeutralPercentage = percentage(neutral, total)
		result.NegativePercentage = percentage(negative, total)
	}
	return result
}

func percentage(count, total int) float64 {
	return float64(count) / float64(total) * 100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
