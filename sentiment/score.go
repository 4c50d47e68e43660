package sentiment

import (
	"math"

	"github.com/researchaccelerator-hub/comment-sentiment/model"
)

// Score maps a distribution to 0..100: full positive mass is 100, full neutral 50, full negative 0.
func Score(d model.SentimentDistribution) int {
	score := int(math.Round(d.Positive*100 + d.Neutral*50))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
