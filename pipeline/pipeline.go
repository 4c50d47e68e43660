// Package pipeline sequences retrieval, classification, scoring and summarization
// for one video and defines the success and failure contract of a run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/researchaccelerator-hub/comment-sentiment/client"
	"github.com/researchaccelerator-hub/comment-sentiment/common"
	"github.com/researchaccelerator-hub/comment-sentiment/metrics"
	"github.com/researchaccelerator-hub/comment-sentiment/model"
	"github.com/researchaccelerator-hub/comment-sentiment/notify"
	"github.com/researchaccelerator-hub/comment-sentiment/retriever"
	"github.com/rs/zerolog/log"
)

// Stage is a step of the run state machine
type Stage string

const (
	StageStart           Stage = "start"
	StageCommentsFetched Stage = "comments_fetched"
	StageSentimentScored Stage = "sentiment_scored"
	StageSummarized      Stage = "summarized"
	StageComplete        Stage = "complete"
	StageFailed          Stage = "failed"
)

// CommentRetriever fetches sanitized comments for a video
type CommentRetriever interface {
	Retrieve(ctx context.Context, videoID string) (*retriever.Result, error)
}

// SentimentClassifier returns a normalized distribution for a comment set
type SentimentClassifier interface {
	Classify(ctx context.Context, comments []model.Comment) (model.SentimentDistribution, error)
}

// SummaryGenerator always returns a complete summary and the name of its producer
type SummaryGenerator interface {
	Generate(ctx context.Context, comments []model.Comment, dist model.SentimentDistribution) (model.Summary, string)
}

// Report is the outcome of a successful run
type Report struct {
	RunID         string
	VideoID       string
	Video         model.VideoDetails
	Strategy      string
	SummarySource string
	Distribution  model.SentimentDistribution
	Result        model.AnalysisResult
	Elapsed       time.Duration
}

// RunFailure is returned by Run on any terminal failure
type RunFailure struct {
	RunID string
	// Reached is the last stage completed before the failure
	Reached Stage
	Elapsed time.Duration
	Err     *model.AnalysisError
}

func (f *RunFailure) Error() string {
	return fmt.Sprintf("analysis failed after %s: %v", f.Reached, f.Err)
}

func (f *RunFailure) Unwrap() error {
	return f.Err
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithPublisher publishes an event after each successful run
func WithPublisher(p notify.Publisher) Option {
	return func(pl *Pipeline) {
		pl.publisher = p
	}
}

// WithClock sets the time source for elapsed-time measurement
func WithClock(now func() time.Time) Option {
	return func(pl *Pipeline) {
		if now != nil {
			pl.now = now
		}
	}
}

// Pipeline holds only immutable collaborators, so concurrent runs are independent
type Pipeline struct {
	retriever  CommentRetriever
	classifier SentimentClassifier
	summarizer SummaryGenerator
	publisher  notify.Publisher
	now        func() time.Time
}

// New creates a Pipeline
func New(r CommentRetriever, c SentimentClassifier, s SummaryGenerator, opts ...Option) *Pipeline {
	p := &Pipeline{
		retriever:  r,
		classifier: c,
		summarizer: s,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run analyzes one video. No partial result is returned on failure.
func (p *Pipeline) Run(ctx context.Context, videoID string) (*Report, error) {
	start := p.now()
	runID := common.GenerateRunID()
	videoID, inputErr := client.NormalizeVideoID(videoID)

	logger := log.Ctx(ctx).With().Str("run_id", runID).Str("video_id", videoID).Logger()
	ctx = logger.WithContext(ctx)

	stage := StageStart
	advance := func(next Stage) {
		stage = next
		logger.Debug().Str("stage", string(stage)).Dur("elapsed", p.now().Sub(start)).Msg("Stage reached")
	}
	fail := func(err error) (*Report, error) {
		ae := model.AsAnalysisError(err)
		elapsed := p.now().Sub(start)
		logger.Error().
			Err(err).
			Str("kind", string(ae.Kind)).
			Str("stage", string(StageFailed)).
			Str("reached", string(stage)).
			Int64("processing_time_ms", elapsed.Milliseconds()).
			Msg("Analysis failed")
		metrics.RecordRun(string(ae.Kind), elapsed.Seconds())
		return nil, &RunFailure{RunID: runID, Reached: stage, Elapsed: elapsed, Err: ae}
	}

	logger.Info().Msg("Starting analysis")

	if inputErr != nil {
		return fail(model.NewError(model.KindInputInvalid, inputErr.Error(), nil))
	}
	if !client.LooksLikeYouTubeID(videoID) {
		logger.Warn().Msg("Video ID does not look like a YouTube ID, passing it through unchanged")
	}

	retrieved, err := p.retriever.Retrieve(ctx, videoID)
	if err != nil {
		return fail(err)
	}
	comments := retrieved.Comments
	advance(StageCommentsFetched)

	dist, err := p.classifier.Classify(ctx, comments)
	if err != nil {
		return fail(err)
	}
	advance(StageSentimentScored)

	summary, summarySource := p.summarizer.Generate(ctx, comments, dist)
	advance(StageSummarized)

	result := BuildResult(len(comments), dist, summary)
	elapsed := p.now().Sub(start)
	advance(StageComplete)

	logger.Info().
		Int("score", result.Score).
		Int("total_comments", result.TotalComments).
		Int("positive", result.PositiveCount).
		Int("neutral", result.NeutralCount).
		Int("negative", result.NegativeCount).
		Str("summary_source", summarySource).
		Int64("processing_time_ms", elapsed.Milliseconds()).
		Msg("Analysis complete")
	metrics.RecordRun("ok", elapsed.Seconds())

	report := &Report{
		RunID:         runID,
		VideoID:       videoID,
		Video:         retrieved.Video,
		Strategy:      retrieved.Strategy,
		SummarySource: summarySource,
		Distribution:  dist,
		Result:        result,
		Elapsed:       elapsed,
	}
	p.publish(ctx, report)

	return report, nil
}

// publish never fails the run
func (p *Pipeline) publish(ctx context.Context, r *Report) {
	if p.publisher == nil {
		return
	}
	err := p.publisher.Publish(ctx, notify.Event{
		RunID:            r.RunID,
		VideoID:          r.VideoID,
		Title:            r.Video.Title,
		Strategy:         r.Strategy,
		SummarySource:    r.SummarySource,
		ProcessingTimeMs: r.Elapsed.Milliseconds(),
		CompletedAt:      p.now().UTC(),
		Result:           r.Result,
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to publish analysis event")
	}
}
