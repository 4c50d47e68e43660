// Package youtube contains YouTube-specific data models
package youtube

import (
	"context"
)

// Video is the metadata an upstream source reports for a video.
type Video struct {
	ID           string
	Title        string
	ChannelName  string
	CommentCount int64
}

// RawComment is a comment exactly as returned by an upstream source, before sanitization.
// Empty fields mean the source did not report them.
type RawComment struct {
	Text        string
	AuthorName  string
	LikeCount   int64
	PublishedAt string
}

// CommentSource defines the operations needed to pull comments for a video
type CommentSource interface {
	// Name identifies the source in logs and metrics
	Name() string

	// DefaultStrategies returns the retrieval strategies the source understands, in preferred order
	DefaultStrategies() []string

	// GetVideo retrieves video metadata. A nil video with a nil error means the source returned an empty body.
	GetVideo(ctx context.Context, videoID string) (*Video, error)

	// GetComments retrieves the first page of comments for a video using one retrieval strategy
	GetComments(ctx context.Context, videoID string, strategy string) ([]RawComment, error)
}
