package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	youtubemodel "github.com/researchaccelerator-hub/comment-sentiment/model/youtube"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultRapidAPIHost is the RapidAPI host of the YouTube v2 comment API
	DefaultRapidAPIHost = "youtube-v2.p.rapidapi.com"

	// SourceRapidAPI names the RapidAPI comment source
	SourceRapidAPI = "rapidapi"
)

// RapidAPIStrategies are the sort orders the RapidAPI comment endpoint accepts, in preferred order
var RapidAPIStrategies = []string{"top_comments", "newest_first", "oldest_first"}

// RapidAPIConfig contains configuration for the RapidAPI comment source
type RapidAPIConfig struct {
	APIKey  string
	Host    string // Default: youtube-v2.p.rapidapi.com
	BaseURL string // Default: https://<Host>
}

// RapidAPIClient implements youtubemodel.CommentSource against the RapidAPI YouTube v2 API
type RapidAPIClient struct {
	fetcher *Fetcher
	apiKey  string
	host    string
	baseURL string
}

// NewRapidAPIClient creates a new RapidAPI comment source
func NewRapidAPIClient(config RapidAPIConfig, fetcher *Fetcher) (*RapidAPIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("RapidAPI key is required")
	}
	if fetcher == nil {
		fetcher = NewFetcher()
	}

	host := config.Host
	if host == "" {
		host = DefaultRapidAPIHost
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://" + host
	}

	return &RapidAPIClient{
		fetcher: fetcher,
		apiKey:  config.APIKey,
		host:    host,
		baseURL: baseURL,
	}, nil
}

// Name returns "rapidapi"
func (c *RapidAPIClient) Name() string {
	return SourceRapidAPI
}

// DefaultStrategies returns the RapidAPI sort orders
func (c *RapidAPIClient) DefaultStrategies() []string {
	return append([]string(nil), RapidAPIStrategies...)
}

func (c *RapidAPIClient) headers() map[string]string {
	return map[string]string{
		"x-rapidapi-key":  c.apiKey,
		"x-rapidapi-host": c.host,
	}
}

type rapidVideoDetails struct {
	VideoID          string      `json:"video_id"`
	Title            string      `json:"title"`
	Author           string      `json:"author"`
	ChannelName      string      `json:"channel_name"`
	NumberOfComments flexibleInt `json:"number_of_comments"`
}

// GetVideo retrieves video details
func (c *RapidAPIClient) GetVideo(ctx context.Context, videoID string) (*youtubemodel.Video, error) {
	endpoint := fmt.Sprintf("%s/video/details?video_id=%s", c.baseURL, url.QueryEscape(videoID))

	raw, err := c.fetcher.FetchJSON(ctx, Request{URL: endpoint, Headers: c.headers()})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("video_id", videoID).Msg("Failed to get video details from RapidAPI")
		return nil, err
	}

	if isEmptyJSON(raw) {
		return nil, nil
	}

	var details rapidVideoDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, &FetchError{Kind: FetchDecode, URL: endpoint, Err: err}
	}

	channel := details.ChannelName
	if channel == "" {
		channel = details.Author
	}

	return &youtubemodel.Video{
		ID:           videoID,
		Title:        details.Title,
		ChannelName:  channel,
		CommentCount: int64(details.NumberOfComments),
	}, nil
}

type rapidCommentsResponse struct {
	Comments []rapidComment `json:"comments"`
}

type rapidComment struct {
	Text   string `json:"text"`
	Author *struct {
		Name string `json:"name"`
	} `json:"author"`
	LikesCount flexibleInt `json:"likes_count"`
	CreatedAt  string      `json:"created_at"`
}

// GetComments retrieves the first page of comments sorted by strategy
func (c *RapidAPIClient) GetComments(ctx context.Context, videoID string, strategy string) ([]youtubemodel.RawComment, error) {
	query := url.Values{}
	query.Set("video_id", videoID)
	query.Set("sort_by", strategy)
	query.Set("type", "video")
	query.Set("next", "0")
	endpoint := fmt.Sprintf("%s/video/comments?%s", c.baseURL, query.Encode())

	raw, err := c.fetcher.FetchJSON(ctx, Request{URL: endpoint, Headers: c.headers()})
	if err != nil {
		return nil, err
	}

	if isEmptyJSON(raw) {
		return nil, nil
	}

	var resp rapidCommentsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &FetchError{Kind: FetchDecode, URL: endpoint, Err: err}
	}

	comments := make([]youtubemodel.RawComment, 0, len(resp.Comments))
	for _, rc := range resp.Comments {
		comment := youtubemodel.RawComment{
			Text:        rc.Text,
			LikeCount:   int64(rc.LikesCount),
			PublishedAt: rc.CreatedAt,
		}
		if rc.Author != nil {
			comment.AuthorName = rc.Author.Name
		}
		comments = append(comments, comment)
	}

	return comments, nil
}

// flexibleInt accepts counts encoded as numbers, numeric strings or null
type flexibleInt int64

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexibleInt(n)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexibleInt(v)
		return nil
	}
	// Abbreviated counts such as "1.2K" are not worth failing a whole page over
	*f = 0
	return nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}"))
}
