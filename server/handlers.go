package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/researchaccelerator-hub/comment-sentiment/model"
	"github.com/researchaccelerator-hub/comment-sentiment/pipeline"
	"github.com/rs/zerolog/log"
)

type analyzeRequest struct {
	VideoID string `json:"videoId"`
}

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error            ErrorDetail `json:"error"`
	ProcessingTimeMs int64       `json:"processingTimeMs"`
}

// ErrorDetail carries the error code and the redacted message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return model.NewError(model.KindInputInvalid, "malformed request body", err)
	}

	report, err := s.analyzer.Run(c.Request().Context(), req.VideoID)
	if err != nil {
		return err
	}

	c.Response().Header().Set(ProcessingTimeHeader, strconv.FormatInt(report.Elapsed.Milliseconds(), 10))
	return c.JSON(http.StatusOK, report.Result)
}

// ErrorHandler renders analysis failures with their redacted message. Causes are logged, never returned.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status  int
		detail  ErrorDetail
		elapsed time.Duration
	)

	if started, ok := c.Get(startedAtKey).(time.Time); ok {
		elapsed = time.Since(started)
	}

	var failure *pipeline.RunFailure
	var analysisErr *model.AnalysisError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &failure):
		elapsed = failure.Elapsed
		status = failure.Err.HTTPStatus()
		detail = ErrorDetail{Code: string(failure.Err.Kind), Message: failure.Err.PublicMessage()}
	case errors.As(err, &analysisErr):
		status = analysisErr.HTTPStatus()
		detail = ErrorDetail{Code: string(analysisErr.Kind), Message: analysisErr.PublicMessage()}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		detail = ErrorDetail{Code: "HTTP_ERROR", Message: http.StatusText(status)}
	default:
		status = http.StatusInternalServerError
		detail = ErrorDetail{Code: "INTERNAL", Message: "analysis failed"}
	}

	logger := log.Ctx(c.Request().Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Str("code", detail.Code).Msg("Request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Str("code", detail.Code).Msg("Request rejected")
	}

	c.Response().Header().Set(ProcessingTimeHeader, strconv.FormatInt(elapsed.Milliseconds(), 10))
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	if err := c.JSON(status, ErrorBody{Error: detail, ProcessingTimeMs: elapsed.Milliseconds()}); err != nil {
		logger.Error().Err(err).Msg("Failed to send error response")
	}
}
