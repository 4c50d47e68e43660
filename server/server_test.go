package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/researchaccelerator-hub/comment-sentiment/model"
	"github.com/researchaccelerator-hub/comment-sentiment/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Run(ctx context.Context, videoID string) (*pipeline.Report, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Report), args.Error(1)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeSuccess(t *testing.T) {
	analyzer := new(MockAnalyzer)
	analyzer.On("Run", mock.Anything, "abc123").Return(&pipeline.Report{
		Elapsed: 1234 * time.Millisecond,
		Result: model.AnalysisResult{
			Score:              65,
			TotalComments:      10,
			PositiveCount:      5,
			NeutralCount:       3,
			NegativeCount:      2,
			PositivePercentage: 50,
			NeutralPercentage:  30,
			NegativePercentage: 20,
			Summary: model.Summary{
				MainTopics:       []string{"video"},
				OverallSentiment: "leaning positive",
				KeyInsights:      []string{"a", "b", "c", "d"},
				CommonPhrases:    []string{"video"},
			},
		},
	}, nil)

	rec := doRequest(t, New(analyzer, Config{}), http.MethodPost, "/api/analyze", `{"videoId":"abc123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1234", rec.Header().Get(ProcessingTimeHeader))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(65), body["score"])
	assert.Equal(t, float64(10), body["totalComments"])
	assert.Equal(t, float64(50), body["positivePercentage"])
	assert.Contains(t, body, "summary")
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "input invalid",
			err:        &pipeline.RunFailure{Reached: pipeline.StageStart, Elapsed: 2 * time.Millisecond, Err: model.NewError(model.KindInputInvalid, "empty", nil)},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INPUT_INVALID",
		},
		{
			name:       "video not found",
			err:        &pipeline.RunFailure{Reached: pipeline.StageStart, Elapsed: 40 * time.Millisecond, Err: model.NewError(model.KindVideoNotFound, "lookup", nil)},
			wantStatus: http.StatusNotFound,
			wantCode:   "VIDEO_NOT_FOUND",
		},
		{
			name: "sentiment unavailable hides the cause",
			err: &pipeline.RunFailure{Reached: pipeline.StageCommentsFetched, Elapsed: time.Second,
				Err: model.NewError(model.KindSentimentUnavailable, "", &net.OpError{Op: "dial", Net: "tcp"})},
			wantStatus: http.StatusBadGateway,
			wantCode:   "SENTIMENT_UNAVAILABLE",
		},
		{
			name:       "config missing",
			err:        &pipeline.RunFailure{Err: model.NewError(model.KindConfigMissing, "", nil)},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "CONFIG_MISSING",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := new(MockAnalyzer)
			analyzer.On("Run", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := doRequest(t, New(analyzer, Config{}), http.MethodPost, "/api/analyze", `{"videoId":"abc123"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
			assert.NotContains(t, body.Error.Message, "dial")

			failure := tt.err.(*pipeline.RunFailure)
			assert.Equal(t, failure.Elapsed.Milliseconds(), body.ProcessingTimeMs)
		})
	}
}

func TestAnalyzeMalformedBody(t *testing.T) {
	analyzer := new(MockAnalyzer)
	rec := doRequest(t, New(analyzer, Config{}), http.MethodPost, "/api/analyze", `{"videoId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INPUT_INVALID", body.Error.Code)
	analyzer.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestHealthAndMetrics(t *testing.T) {
	s := New(new(MockAnalyzer), Config{})

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = doRequest(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRoute(t *testing.T) {
	rec := doRequest(t, New(new(MockAnalyzer), Config{}), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "HTTP_ERROR", body.Error.Code)
}

func TestStartAndShutdown(t *testing.T) {
	s := New(new(MockAnalyzer), Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
