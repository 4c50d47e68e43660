package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	youtubemodel "github.com/researchaccelerator-hub/comment-sentiment/model/youtube"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// SourceYouTubeData names the YouTube Data API comment source
const SourceYouTubeData = "youtube"

// YouTubeDataStrategies are the commentThreads orderings, in preferred order
var YouTubeDataStrategies = []string{"relevance", "time"}

// youtubePageSize is the largest page commentThreads.list serves
const youtubePageSize = 100

// YouTubeDataConfig contains configuration for the YouTube Data API comment source
type YouTubeDataConfig struct {
	APIKey string
	// Endpoint overrides the API base URL, mostly for tests
	Endpoint string
}

// YouTubeDataClient implements youtubemodel.CommentSource using the YouTube Data API v3
type YouTubeDataClient struct {
	mu       sync.Mutex
	service  *ytapi.Service
	fetcher  *Fetcher
	apiKey   string
	endpoint string
}

// NewYouTubeDataClient creates a new YouTube Data API comment source
func NewYouTubeDataClient(config YouTubeDataConfig, fetcher *Fetcher) (*YouTubeDataClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}
	if fetcher == nil {
		fetcher = NewFetcher()
	}

	return &YouTubeDataClient{
		fetcher:  fetcher,
		apiKey:   config.APIKey,
		endpoint: config.Endpoint,
	}, nil
}

// Connect creates the underlying API service. It is called lazily by the fetch methods.
func (c *YouTubeDataClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.service != nil {
		return nil
	}

	// WithHTTPClient overrides WithAPIKey, so the key rides on the transport instead
	httpClient := &http.Client{
		Transport: &transport.APIKey{Key: c.apiKey, Transport: c.fetcher.HTTPClient().Transport},
	}
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to create YouTube service")
		return fmt.Errorf("failed to create YouTube service: %w", err)
	}

	c.service = service
	log.Ctx(ctx).Debug().Msg("Connected to YouTube API successfully")
	return nil
}

// Name returns "youtube"
func (c *YouTubeDataClient) Name() string {
	return SourceYouTubeData
}

// DefaultStrategies returns the commentThreads orderings
func (c *YouTubeDataClient) DefaultStrategies() []string {
	return append([]string(nil), YouTubeDataStrategies...)
}

// GetVideo retrieves video details
func (c *YouTubeDataClient) GetVideo(ctx context.Context, videoID string) (*youtubemodel.Video, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.fetcher.Timeout())
	defer cancel()

	response, err := c.service.Videos.List([]string{"snippet", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("video_id", videoID).Msg("Failed to get video from YouTube API")
		return nil, classifyGoogleError("videos.list", err)
	}

	if len(response.Items) == 0 {
		return nil, nil
	}

	item := response.Items[0]
	video := &youtubemodel.Video{ID: item.Id}
	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.ChannelName = item.Snippet.ChannelTitle
	}
	if item.Statistics != nil {
		video.CommentCount = int64(item.Statistics.CommentCount)
	}

	return video, nil
}

// GetComments retrieves the first page of top-level comments ordered by strategy
func (c *YouTubeDataClient) GetComments(ctx context.Context, videoID string, strategy string) ([]youtubemodel.RawComment, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.fetcher.Timeout())
	defer cancel()

	response, err := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		Order(strategy).
		TextFormat("plainText").
		MaxResults(youtubePageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyGoogleError("commentThreads.list", err)
	}

	comments := make([]youtubemodel.RawComment, 0, len(response.Items))
	for _, thread := range response.Items {
		if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		snippet := thread.Snippet.TopLevelComment.Snippet
		comments = append(comments, youtubemodel.RawComment{
			Text:        snippet.TextDisplay,
			AuthorName:  snippet.AuthorDisplayName,
			LikeCount:   snippet.LikeCount,
			PublishedAt: snippet.PublishedAt,
		})
	}

	return comments, nil
}

// classifyGoogleError maps API client errors onto the fetch error kinds
func classifyGoogleError(call string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &FetchError{
			Kind:       FetchHTTPStatus,
			URL:        call,
			StatusCode: apiErr.Code,
			Body:       apiErr.Message,
			Err:        err,
		}
	}
	return ClassifyTransportError(call, err)
}
