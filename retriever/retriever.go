// Package retriever pulls a video's comments through an ordered list of
// retrieval strategies and turns them into sanitized comments.
package retriever

import (
	"context"
	"fmt"
	"time"

	"github.com/researchaccelerator-hub/comment-sentiment/common"
	"github.com/researchaccelerator-hub/comment-sentiment/metrics"
	"github.com/researchaccelerator-hub/comment-sentiment/model"
	youtubemodel "github.com/researchaccelerator-hub/comment-sentiment/model/youtube"
	"github.com/rs/zerolog/log"
)

// DefaultMaxComments caps the comments handed downstream
const DefaultMaxComments = 100

const previewCount = 3

// Option customizes a Retriever
type Option func(*Retriever)

// WithStrategies overrides the source's default strategy order
func WithStrategies(strategies []string) Option {
	return func(r *Retriever) {
		if len(strategies) > 0 {
			r.strategies = append([]string(nil), strategies...)
		}
	}
}

// WithMaxComments overrides the comment cap
func WithMaxComments(n int) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.maxComments = n
		}
	}
}

// WithClock sets the time source used for missing timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Retriever) {
		if now != nil {
			r.now = now
		}
	}
}

// Retriever fetches and cleans comments for one video at a time. It holds no per-run state.
type Retriever struct {
	source      youtubemodel.CommentSource
	strategies  []string
	maxComments int
	now         func() time.Time
}

// Result is the output of a successful retrieval
type Result struct {
	Video    model.VideoDetails
	Comments []model.Comment
	Strategy string
}

// New creates a Retriever. A nil source fails every run with ConfigMissing.
func New(source youtubemodel.CommentSource, opts ...Option) *Retriever {
	r := &Retriever{
		source:      source,
		maxComments: DefaultMaxComments,
		now:         time.Now,
	}
	if source != nil {
		r.strategies = source.DefaultStrategies()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strategies returns the strategy order in use
func (r *Retriever) Strategies() []string {
	return append([]string(nil), r.strategies...)
}

// Retrieve checks that the video exists, then tries each strategy in order until one returns comments
func (r *Retriever) Retrieve(ctx context.Context, videoID string) (*Result, error) {
	if r.source == nil {
		return nil, model.NewError(model.KindConfigMissing, "comment source credential is not configured", nil)
	}
	logger := log.Ctx(ctx).With().Str("source", r.source.Name()).Str("video_id", videoID).Logger()

	video, err := r.source.GetVideo(ctx, videoID)
	if err != nil {
		logger.Error().Err(err).Msg("Video lookup failed")
		return nil, model.NewError(model.KindVideoNotFound, "video lookup failed", err)
	}
	if video == nil {
		logger.Warn().Msg("Video lookup returned no data")
		return nil, model.NewError(model.KindVideoNotFound, "video lookup returned no data", nil)
	}
	logger.Info().Str("title", video.Title).Str("channel", video.ChannelName).Msg("Video found")

	raw, strategy, err := r.fetchComments(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if len(raw) > r.maxComments {
		raw = raw[:r.maxComments]
	}

	comments := r.clean(raw)
	if len(comments) == 0 {
		logger.Warn().Int("raw", len(raw)).Msg("No comment survived sanitization")
		return nil, model.NewError(model.KindNoValidComments, fmt.Sprintf("%d comments had no text", len(raw)), nil)
	}

	logger.Info().
		Str("strategy", strategy).
		Int("raw", len(raw)).
		Int("valid", len(comments)).
		Msg("Comments retrieved")
	for i := 0; i < len(comments) && i < previewCount; i++ {
		logger.Debug().Int("index", i).Str("author", comments[i].Author).Str("text", common.Preview(comments[i].Text, 100)).Msg("Comment preview")
	}
	metrics.RecordComments(len(comments))

	return &Result{
		Video: model.VideoDetails{
			ID:           videoID,
			Title:        video.Title,
			ChannelName:  video.ChannelName,
			CommentCount: video.CommentCount,
		},
		Comments: comments,
		Strategy: strategy,
	}, nil
}

// fetchComments runs the strategy loop sequentially and stops at the first non-empty page
func (r *Retriever) fetchComments(ctx context.Context, videoID string) ([]youtubemodel.RawComment, string, error) {
	var lastErr error
	for _, strategy := range r.strategies {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		comments, err := r.source.GetComments(ctx, videoID, strategy)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("strategy", strategy).Msg("Comment strategy failed, trying next")
			metrics.RecordStrategyAttempt(r.source.Name(), strategy, "error")
			lastErr = err
			continue
		}
		if len(comments) == 0 {
			log.Ctx(ctx).Info().Str("strategy", strategy).Msg("Comment strategy returned nothing, trying next")
			metrics.RecordStrategyAttempt(r.source.Name(), strategy, "empty")
			continue
		}

		metrics.RecordStrategyAttempt(r.source.Name(), strategy, "ok")
		return comments, strategy, nil
	}

	return nil, "", model.NewError(model.KindNoCommentsAvailable,
		fmt.Sprintf("all %d strategies failed or returned nothing", len(r.strategies)), lastErr)
}

func (r *Retriever) clean(raw []youtubemodel.RawComment) []model.Comment {
	retrievedAt := r.now().UTC().Format(time.RFC3339)

	comments := make([]model.Comment, 0, len(raw))
	for _, rc := range raw {
		text := SanitizeText(rc.Text)
		if text == "" {
			continue
		}

		c := model.Comment{
			Text:        text,
			Author:      SanitizeText(rc.AuthorName),
			LikeCount:   rc.LikeCount,
			PublishedAt: rc.PublishedAt,
		}
		if c.Author == "" {
			c.Author = model.DefaultAuthor
		}
		if c.LikeCount < 0 {
			c.LikeCount = 0
		}
		if c.PublishedAt == "" {
			c.PublishedAt = retrievedAt
		}
		comments = append(comments, c)
	}
	return comments
}
