package client

import (
	"fmt"

	youtubemodel "github.com/researchaccelerator-hub/comment-sentiment/model/youtube"
)

// SourceConfig selects and configures a comment source
type SourceConfig struct {
	Provider string
	RapidAPI RapidAPIConfig
	YouTube  YouTubeDataConfig
}

// NewCommentSource creates the comment source named by config.Provider.
// The returned interface is nil whenever err is non-nil.
func NewCommentSource(config SourceConfig, fetcher *Fetcher) (youtubemodel.CommentSource, error) {
	switch config.Provider {
	case "", SourceRapidAPI:
		c, err := NewRapidAPIClient(config.RapidAPI, fetcher)
		if err != nil {
			return nil, err
		}
		return c, nil
	case SourceYouTubeData:
		c, err := NewYouTubeDataClient(config.YouTube, fetcher)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported comment source: %s", config.Provider)
	}
}
