// Package summary produces the structured digest of a comment set. The model
// producer is tried first; the heuristic producer cannot fail and backs it up.
package summary

import (
	"context"

	"github.com/researchaccelerator-hub/comment-sentiment/metrics"
	"github.com/researchaccelerator-hub/comment-sentiment/model"
	"github.com/rs/zerolog/log"
)

const (
	SourceModel     = "model"
	SourceHeuristic = "heuristic"
)

// MaxListItems caps every list field of a summary
const MaxListItems = 5

// Producer builds a summary from comments and their sentiment distribution
type Producer interface {
	Produce(ctx context.Context, comments []model.Comment, dist model.SentimentDistribution) (model.Summary, error)
}

// Generator tries the primary producer and substitutes the heuristic on any failure
type Generator struct {
	primary Producer
}

// NewGenerator creates a Generator. A nil primary always uses the heuristic.
func NewGenerator(primary Producer) *Generator {
	return &Generator{primary: primary}
}

// Generate always returns a complete summary, along with the producer that made it
func (g *Generator) Generate(ctx context.Context, comments []model.Comment, dist model.SentimentDistribution) (model.Summary, string) {
	if g.primary != nil {
		s, err := g.primary.Produce(ctx, comments, dist)
		if err == nil {
			metrics.RecordSummary(SourceModel)
			return s, SourceModel
		}
		log.Ctx(ctx).Warn().Err(err).Msg("Model summary unavailable, using heuristic summary")
	} else {
		log.Ctx(ctx).Info().Msg("No summary model configured, using heuristic summary")
	}

	metrics.RecordSummary(SourceHeuristic)
	return Heuristic(comments, dist), SourceHeuristic
}
