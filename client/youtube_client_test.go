package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewYouTubeDataClient(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantErr bool
	}{
		{name: "valid API key", apiKey: "test-api-key-12345"},
		{name: "empty API key", apiKey: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewYouTubeDataClient(YouTubeDataConfig{APIKey: tt.apiKey}, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.apiKey, c.apiKey)
			assert.Equal(t, SourceYouTubeData, c.Name())
			assert.Equal(t, []string{"relevance", "time"}, c.DefaultStrategies())
		})
	}
}

func newYouTubeTestClient(t *testing.T, mux *http.ServeMux) (*YouTubeDataClient, func()) {
	t.Helper()
	server := httptest.NewServer(mux)
	c, err := NewYouTubeDataClient(YouTubeDataConfig{APIKey: "yt-key", Endpoint: server.URL + "/"}, NewFetcher())
	require.NoError(t, err)
	return c, server.Close
}

func TestYouTubeDataClient_GetVideo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "yt-key", r.URL.Query().Get("key"))
		assert.Equal(t, BrowserUserAgent, r.Header.Get("User-Agent"))
		if r.URL.Query().Get("id") != "abc123" {
			fmt.Fprint(w, `{"items":[]}`)
			return
		}
		fmt.Fprint(w, `{"items":[{"id":"abc123","snippet":{"title":"Launch day","channelTitle":"Acme"},"statistics":{"commentCount":"42"}}]}`)
	})
	c, done := newYouTubeTestClient(t, mux)
	defer done()

	video, err := c.GetVideo(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, video)
	assert.Equal(t, "Launch day", video.Title)
	assert.Equal(t, "Acme", video.ChannelName)
	assert.Equal(t, int64(42), video.CommentCount)

	missing, err := c.GetVideo(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestYouTubeDataClient_GetComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/commentThreads", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "abc123", q.Get("videoId"))
		assert.Equal(t, "time", q.Get("order"))
		assert.Equal(t, "plainText", q.Get("textFormat"))
		fmt.Fprint(w, `{"items":[
			{"snippet":{"topLevelComment":{"snippet":{"textDisplay":"first!","authorDisplayName":"ann","likeCount":3,"publishedAt":"2024-02-01T10:00:00Z"}}}},
			{"snippet":{}}
		]}`)
	})
	c, done := newYouTubeTestClient(t, mux)
	defer done()

	comments, err := c.GetComments(context.Background(), "abc123", "time")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first!", comments[0].Text)
	assert.Equal(t, "ann", comments[0].AuthorName)
	assert.Equal(t, int64(3), comments[0].LikeCount)
}

func TestYouTubeDataClient_ConnectLogsToContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel).With().Str("run_id", "run-7").Logger()
	ctx := logger.WithContext(context.Background())

	c, done := newYouTubeTestClient(t, http.NewServeMux())
	defer done()

	require.NoError(t, c.Connect(ctx))
	assert.Contains(t, buf.String(), "Connected to YouTube API")
	assert.Contains(t, buf.String(), `"run_id":"run-7"`)
}

func TestYouTubeDataClient_GetCommentsDisabled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/commentThreads", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"comments disabled"}}`)
	})
	c, done := newYouTubeTestClient(t, mux)
	defer done()

	_, err := c.GetComments(context.Background(), "abc123", "relevance")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FetchHTTPStatus, fe.Kind)
	assert.Equal(t, http.StatusForbidden, fe.StatusCode)
}

func TestNewCommentSource(t *testing.T) {
	src, err := NewCommentSource(SourceConfig{RapidAPI: RapidAPIConfig{APIKey: "k"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceRapidAPI, src.Name())

	src, err = NewCommentSource(SourceConfig{Provider: SourceYouTubeData, YouTube: YouTubeDataConfig{APIKey: "k"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceYouTubeData, src.Name())

	src, err = NewCommentSource(SourceConfig{Provider: "vimeo"}, nil)
	assert.Error(t, err)
	assert.Nil(t, src)

	src, err = NewCommentSource(SourceConfig{}, nil)
	assert.Error(t, err)
	assert.True(t, src == nil)
}

func TestVideoIDHelpers(t *testing.T) {
	id, err := NormalizeVideoID("  dQw4w9WgXcQ ")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", id)
	assert.True(t, LooksLikeYouTubeID(id))

	_, err = NormalizeVideoID("   ")
	assert.Error(t, err)

	assert.False(t, LooksLikeYouTubeID("abc123"))
	assert.False(t, LooksLikeYouTubeID("dQw4w9WgXc!"))
}
